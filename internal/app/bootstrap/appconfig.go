// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side (ports, TLS, log level); everything TaskHub itself needs
// lives here and is handed to component constructors as plain values.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session tokens
	JWTSecret string        // HMAC key for session tokens, at least 32 bytes
	TokenTTL  time.Duration // Lifetime of an issued token

	// Session cookie configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: taskhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Attachments
	UploadDir       string // Directory holding attachment bytes
	MaxFileSize     int64  // Per-file upload limit in bytes
	MaxFilesPerTask int

	// Accounts
	BcryptCost        int
	MinPasswordLength int

	// HTTP
	CORSAllowedOrigins []string // Empty disables CORS
	LoginPerIP         int      // Sign-in attempts per IP per minute
	LoginPerEmail      int      // Sign-in attempts per account per 5 minutes

	// Per-operation deadlines
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
