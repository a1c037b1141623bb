package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/go-core/log"

	vc "github.com/linnemanlabs/vitaltriage/internal/cfg"
	"github.com/linnemanlabs/vitaltriage/internal/notify/slack"
	"github.com/linnemanlabs/vitaltriage/internal/triage"
	"github.com/linnemanlabs/vitaltriage/internal/vitals"
)

// newServices builds the triage and vitals services from config and
// registers their metrics on reg.
func newServices(ctx context.Context, c *vc.Config, L log.Logger, reg prometheus.Registerer) (*triage.Service, *vitals.Service) {
	var notifier triage.Notifier
	if c.SlackWebhookURL != "" {
		notifier = slack.New(c.SlackWebhookURL)
		L.Info(ctx, "notifier enabled", "type", "slack", "notify_level", c.NotifyLevel)
	}

	triageMetrics := triage.NewMetrics(reg)
	triageSvc := triage.NewService(triage.NewEngine(), L, triage.Options{
		NotifyLevel: c.NotifyLevel,
		Notifier:    notifier,
		Hooks:       triageMetrics.Hooks(),
	})

	var extractor vitals.Extractor
	if c.ExtractorURL != "" {
		extractor = vitals.NewRemoteExtractor(c.ExtractorURL, c.ExtractTimeout())
		L.Info(ctx, "vital sign extractor", "type", extractorKind(c), "url", c.ExtractorURL)
	} else {
		extractor = vitals.NewPlaceholderExtractor(c.TempDir, L)
		L.Info(ctx, "vital sign extractor", "type", extractorKind(c))
	}

	vitalsMetrics := vitals.NewMetrics(reg)
	vitalsSvc := vitals.NewService(extractor, L, vitals.Options{
		Timeout: c.ExtractTimeout(),
		Hooks:   vitalsMetrics.Hooks(),
	})

	return triageSvc, vitalsSvc
}

// extractorKind names the extractor newServices selects for c.
func extractorKind(c *vc.Config) string {
	if c.ExtractorURL != "" {
		return "remote"
	}
	return "placeholder"
}
