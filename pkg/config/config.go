package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every externally supplied knob. Values come from the
// environment (a .env file is loaded first if present); nothing in the
// pipelines is hardcoded.
type Config struct {
	// Generation collaborator
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Mail account used for both SMTP and IMAP
	EmailAccount  string `envconfig:"EMAIL_ACCOUNT"`
	EmailPassword string `envconfig:"EMAIL_PASSWORD"`
	SenderName    string `envconfig:"SENDER_NAME"`
	SMTPServer    string `envconfig:"SMTP_SERVER"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"465"`
	IMAPServer    string `envconfig:"IMAP_SERVER"`
	IMAPPort      int    `envconfig:"IMAP_PORT" default:"993"`

	// Lead store (Google Sheets). Credentials are a base64-encoded
	// service-account JSON so the whole deployment fits in env vars.
	GoogleCredentialsJSON string `envconfig:"GOOGLE_CREDENTIALS_JSON"`
	SpreadsheetID         string `envconfig:"SPREADSHEET_ID"`
	LeadsWorksheet        string `envconfig:"LEADS_WORKSHEET" default:"Incoming Leads"`
	CategoriesWorksheet   string `envconfig:"CATEGORIES_WORKSHEET" default:"Categories"`

	// Discovery collaborator
	ApifyAPIKey string `envconfig:"APIFY_API_KEY"`

	Timezone string `envconfig:"TIMEZONE" default:"Asia/Dubai"`

	// Content
	TemplatePath string `envconfig:"EMAIL_TEMPLATE_PATH" default:"templates/outreach_template.html"`
	PromptsDir   string `envconfig:"PROMPTS_DIR" default:"prompts"`

	// Ingest
	TargetLeads    int           `envconfig:"TARGET_LEADS" default:"300"`
	LeadsPerSearch int           `envconfig:"LEADS_PER_SEARCH" default:"75"`
	SearchDelay    time.Duration `envconfig:"SEARCH_DELAY" default:"10s"`

	// Outreach
	SheetUpdateDelay time.Duration `envconfig:"SHEET_UPDATE_DELAY" default:"1s"`
	SendDelay        time.Duration `envconfig:"SEND_DELAY" default:"10s"`

	// Follow-up
	FollowupSendDelay time.Duration `envconfig:"FOLLOWUP_SEND_DELAY" default:"2s"`
	NonResponderDays  int           `envconfig:"NON_RESPONDER_DAYS" default:"7"`
	NotInterestedDays int           `envconfig:"NOT_INTERESTED_DAYS" default:"14"`
	MaxFollowups      int           `envconfig:"MAX_FOLLOWUPS" default:"3"`

	// Reply monitor
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	ReportInterval time.Duration `envconfig:"REPORT_INTERVAL" default:"5m"`
	MinWorkers     int           `envconfig:"MIN_WORKERS" default:"2"`
	MaxWorkers     int           `envconfig:"MAX_WORKERS" default:"5"`
	LeadsPerWorker int           `envconfig:"LEADS_PER_WORKER" default:"50"`
	QueueSize      int           `envconfig:"QUEUE_SIZE" default:"100"`

	// Ops surface; empty disables the status server
	StatusPort string `envconfig:"STATUS_PORT"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every missing required variable at once. A failure here is
// fatal: the process must not start half-configured.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
		{"EMAIL_ACCOUNT", c.EmailAccount},
		{"EMAIL_PASSWORD", c.EmailPassword},
		{"SENDER_NAME", c.SenderName},
		{"SMTP_SERVER", c.SMTPServer},
		{"IMAP_SERVER", c.IMAPServer},
		{"GOOGLE_CREDENTIALS_JSON", c.GoogleCredentialsJSON},
		{"SPREADSHEET_ID", c.SpreadsheetID},
		{"APIFY_API_KEY", c.ApifyAPIKey},
	}

	var missing []string
	for _, v := range required {
		if strings.TrimSpace(v.value) == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC on an
// unknown name rather than failing startup.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DecodeGoogleCredentials returns the raw service-account JSON.
func (c *Config) DecodeGoogleCredentials() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.GoogleCredentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS_JSON is not valid base64: %w", err)
	}
	return raw, nil
}
