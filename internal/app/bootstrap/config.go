// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minSecretLen is the shortest accepted JWT secret or session key.
const minSecretLen = 32

// appConfigKeys defines the configuration keys for TaskHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: TASKHUB_MONGO_URI, TASKHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "taskhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Session tokens
	{Name: "jwt_secret", Default: "", Desc: "HMAC secret for session tokens (at least 32 bytes; generated in dev when blank)"},
	{Name: "token_ttl", Default: "24h", Desc: "Session token lifetime (e.g., 24h, 90m)"},

	// Session cookie
	{Name: "session_key", Default: "", Desc: "Session cookie signing key (at least 32 bytes; generated in dev when blank)"},
	{Name: "session_name", Default: "taskhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Attachments
	{Name: "upload_dir", Default: "./uploads/attachments", Desc: "Directory for attachment files"},
	{Name: "max_file_size", Default: 10 << 20, Desc: "Maximum attachment size in bytes (default: 10 MiB)"},
	{Name: "max_files_per_task", Default: 20, Desc: "Maximum attachments per task"},

	// Accounts
	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt cost for password hashes"},
	{Name: "min_password_length", Default: 8, Desc: "Minimum password length"},

	// HTTP
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated CORS origins (blank disables CORS)"},
	{Name: "login_per_ip", Default: 10, Desc: "Sign-in attempts allowed per IP per minute"},
	{Name: "login_per_email", Default: 5, Desc: "Sign-in attempts allowed per account per 5 minutes"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health check ping deadline"},
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list and report operations"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for cascades and file transfers"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TASKHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
//
// Outside prod a blank jwt_secret or session_key is replaced with a random
// key so a fresh checkout starts without setup. Sessions then do not survive
// a restart.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		TokenTTL:  appValues.Duration("token_ttl", 24*time.Hour),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		UploadDir:       appValues.String("upload_dir"),
		MaxFileSize:     int64(appValues.Int("max_file_size")),
		MaxFilesPerTask: appValues.Int("max_files_per_task"),

		BcryptCost:        appValues.Int("bcrypt_cost"),
		MinPasswordLength: appValues.Int("min_password_length"),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		LoginPerIP:         appValues.Int("login_per_ip"),
		LoginPerEmail:      appValues.Int("login_per_email"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	if coreCfg.Env != "prod" {
		if appCfg.JWTSecret == "" {
			appCfg.JWTSecret = randomKey()
			logger.Warn("jwt_secret not set; using a random key for this process")
		}
		if appCfg.SessionKey == "" {
			appCfg.SessionKey = randomKey()
			logger.Warn("session_key not set; using a random key for this process")
		}
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

func validateAppConfig(c AppConfig) error {
	var errs []error
	if c.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}
	if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d bytes", minSecretLen))
	}
	if len(c.SessionKey) < minSecretLen {
		errs = append(errs, fmt.Errorf("session_key must be at least %d bytes", minSecretLen))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("upload_dir is required"))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("max_file_size must be positive"))
	}
	if c.MaxFilesPerTask <= 0 {
		errs = append(errs, errors.New("max_files_per_task must be positive"))
	}
	if c.MinPasswordLength <= 0 {
		errs = append(errs, errors.New("min_password_length must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomKey() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(32))
}
