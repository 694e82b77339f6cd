package config

const (
	EnvPrefix = "STAFFDIR"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical environment variable names, shared with tests and deploy docs.
const (
	EnvAppEnv        = "STAFFDIR_APP_ENV"
	EnvPort          = "STAFFDIR_APP_PORT"
	EnvLogLevel      = "STAFFDIR_LOG_LEVEL"
	EnvGCPProjectID  = "STAFFDIR_GCP_PROJECT_ID"
	EnvCredsJSON     = "STAFFDIR_GCP_CREDENTIALS_JSON"
	EnvCredsFile     = "STAFFDIR_GOOGLE_APPLICATION_CREDENTIALS"
	EnvStorageBucket = "STAFFDIR_STORAGE_BUCKET"
	EnvSpreadsheetID = "STAFFDIR_SHEETS_SPREADSHEET_ID"
	EnvSheetsTab     = "STAFFDIR_SHEETS_TAB"
	EnvUploadDir     = "STAFFDIR_UPLOAD_DIR"
	EnvMaxUploadMB   = "STAFFDIR_MAX_UPLOAD_MB"
	EnvSessionSecret = "STAFFDIR_SESSION_SECRET"
	EnvCORSOrigins   = "STAFFDIR_CORS_ORIGINS"
)
