// Package slack sends critical triage alerts to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

const (
	maxComplaintLen = 500
	httpTimeout     = 10 * time.Second
)

// Notifier sends triage results to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout:   httpTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Send posts a triage result to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, result *triage.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(result))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(r *triage.Result) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(r),
			{"type": "divider"},
			fieldsBlock(r),
			{"type": "divider"},
			recommendationsBlock(r),
			{"type": "divider"},
			contextBlock(r),
		},
	}
}

func headerBlock(r *triage.Result) map[string]any {
	text := fmt.Sprintf("%s Triage level %s: %s",
		levelEmoji(r.Assessment.Level), r.Assessment.Level, levelName(r.Assessment.Level))

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *triage.Result) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Chief complaint:* %s", truncate(r.ChiefComplaint, maxComplaintLen)),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority score:* %d", r.Assessment.PriorityScore),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Estimated wait:* %d min", r.Assessment.EstimatedWaitTime),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Basis:* %s", basis(r.Path)),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func recommendationsBlock(r *triage.Result) map[string]any {
	text := "_No recommendations._"
	if len(r.Assessment.Recommendations) > 0 {
		text = "• " + strings.Join(r.Assessment.Recommendations, "\n• ")
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Recommendations*\n\n%s", text),
		},
	}
}

func contextBlock(r *triage.Result) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("vitaltriage • assessment %s • %s", r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func levelEmoji(l triage.Level) string {
	switch l {
	case triage.LevelImmediate:
		return "\U0001f534" // red circle
	case triage.LevelVeryUrgent:
		return "\U0001f7e0" // orange circle
	case triage.LevelUrgent:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func levelName(l triage.Level) string {
	switch l {
	case triage.LevelImmediate:
		return "Immediate"
	case triage.LevelVeryUrgent:
		return "Very urgent"
	case triage.LevelUrgent:
		return "Urgent"
	case triage.LevelSemiUrgent:
		return "Semi-urgent"
	case triage.LevelNonUrgent:
		return "Non-urgent"
	default:
		return "Unknown"
	}
}

func basis(p triage.Path) string {
	if p == triage.PathVitals {
		return "vital signs"
	}
	return "complaint keywords"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
