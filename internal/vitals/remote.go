package vitals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

const (
	extractPath     = "/api/vital-signs/extract"
	maxResponseBody = 1 << 20
)

// RemoteExtractor forwards uploads to an external vital-signs service that
// speaks the same extract endpoint as this one.
type RemoteExtractor struct {
	endpoint string
	client   *http.Client
}

// NewRemoteExtractor returns an extractor posting to baseURL. The timeout
// bounds the whole round trip; the service applies its own deadline too.
func NewRemoteExtractor(baseURL string, timeout time.Duration) *RemoteExtractor {
	return &RemoteExtractor{
		endpoint: strings.TrimRight(baseURL, "/") + extractPath,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type extractResponse struct {
	Success    bool               `json:"success"`
	VitalSigns *triage.VitalSigns `json:"vitalSigns"`
}

// Extract posts the video as multipart field "video" and decodes the reply.
func (e *RemoteExtractor) Extract(ctx context.Context, video []byte) (*triage.VitalSigns, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("video", "upload.video")
	if err != nil {
		return nil, fmt.Errorf("remote extract: create form: %w", err)
	}
	if _, err := part.Write(video); err != nil {
		return nil, fmt.Errorf("remote extract: write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("remote extract: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("remote extract: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req) //nolint:gosec // G704: endpoint is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("remote extract: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote extract: service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out extractResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("remote extract: decode response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("remote extract: service reported failure")
	}
	if out.VitalSigns != nil && out.VitalSigns.Source == "" {
		out.VitalSigns.Source = SourceVideo
	}
	return out.VitalSigns, nil
}
