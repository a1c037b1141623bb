package cfg

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	MaxUploadMB           int
	ExtractTimeoutSeconds int
	ExtractorURL          string
	TempDir               string
	CORSOrigins           string
	RateLimit             int
	SlackWebhookURL       string
	NotifyLevel           int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.IntVar(&c.MaxUploadMB, "max-upload-mb", 100, "maximum video upload size in MiB (1..1024)")
	fs.IntVar(&c.ExtractTimeoutSeconds, "extract-timeout-seconds", 30, "deadline for one vital-sign extraction (1..300)")
	fs.StringVar(&c.ExtractorURL, "extractor-url", "", "base URL of an external vital-sign extraction service (empty = built-in placeholder)")
	fs.StringVar(&c.TempDir, "temp-dir", "", "directory for staging uploaded videos (empty = OS default)")
	fs.StringVar(&c.CORSOrigins, "cors-origins", "*", "comma-separated allowed CORS origins")
	fs.IntVar(&c.RateLimit, "rate-limit", 0, "API requests per minute per client IP (0 = unlimited)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for critical triage notifications")
	fs.IntVar(&c.NotifyLevel, "notify-level", 2, "least severe triage level that triggers a notification (0 = off, 1..5)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.MaxUploadMB <= 0 || c.MaxUploadMB > 1024 {
		errs = append(errs, fmt.Errorf("invalid MAX_UPLOAD_MB %d (must be 1..1024)", c.MaxUploadMB))
	}
	if c.ExtractTimeoutSeconds <= 0 || c.ExtractTimeoutSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid EXTRACT_TIMEOUT_SECONDS %d (must be 1..300)", c.ExtractTimeoutSeconds))
	}

	if c.ExtractorURL != "" && !isHTTPURL(c.ExtractorURL) {
		errs = append(errs, fmt.Errorf("invalid EXTRACTOR_URL %q (must be an http or https URL)", c.ExtractorURL))
	}
	if c.SlackWebhookURL != "" && !isHTTPURL(c.SlackWebhookURL) {
		errs = append(errs, errors.New("invalid SLACK_WEBHOOK_URL (must be an http or https URL)"))
	}

	if len(c.Origins()) == 0 {
		errs = append(errs, errors.New("CORS_ORIGINS must list at least one origin"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT %d (must be >= 0)", c.RateLimit))
	}
	if c.NotifyLevel < 0 || c.NotifyLevel > 5 {
		errs = append(errs, fmt.Errorf("invalid NOTIFY_LEVEL %d (must be 0..5)", c.NotifyLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ExtractTimeout is ExtractTimeoutSeconds as a duration.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.ExtractTimeoutSeconds) * time.Second
}

// Origins splits CORSOrigins on commas, dropping blanks.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
