package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	GCP     GCPConfig
	Storage StorageConfig
	Sheets  SheetsConfig
	Uploads UploadsConfig
	Session SessionConfig
	CORS    CORSConfig
	Web     WebConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STAFFDIR_APP_ENV" required:"true"`
	Port         string `envconfig:"STAFFDIR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STAFFDIR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STAFFDIR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STAFFDIR_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"STAFFDIR_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STAFFDIR_GOOGLE_APPLICATION_CREDENTIALS"`
}

type StorageConfig struct {
	Bucket string `envconfig:"STAFFDIR_STORAGE_BUCKET" required:"true"`
}

// SheetsConfig locates the pending-registration staging queue. The
// spreadsheet id may be empty, in which case registration endpoints report
// the queue as unavailable instead of failing at startup.
type SheetsConfig struct {
	SpreadsheetID string `envconfig:"STAFFDIR_SHEETS_SPREADSHEET_ID"`
	Tab           string `envconfig:"STAFFDIR_SHEETS_TAB" default:"Registrations"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"STAFFDIR_UPLOAD_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"STAFFDIR_MAX_UPLOAD_MB" default:"50"`
}

type SessionConfig struct {
	Secret string `envconfig:"STAFFDIR_SESSION_SECRET" default:"change-this-secret"`
}

type CORSConfig struct {
	Origins []string `envconfig:"STAFFDIR_CORS_ORIGINS" default:"*"`
}

type WebConfig struct {
	TemplatesDir string `envconfig:"STAFFDIR_TEMPLATES_DIR" default:"web/templates"`
	StaticDir    string `envconfig:"STAFFDIR_STATIC_DIR" default:"web/static"`
}
