// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to Melodica. Add
// fields here as the application grows — the struct is passed to every
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: melodica-session)
	SessionDomain string // Cookie domain (blank means current host)

	// CodePepper is the server-side secret folded into every credential
	// digest. Codes hashed under one pepper are unredeemable under
	// another, so rotating it requires staged re-issuance of all
	// outstanding codes. Required; startup fails without it.
	CodePepper string
}
