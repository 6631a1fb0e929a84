// internal/app/system/limits/limits.go
package limits

// Request body size limits for various endpoints.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxCodeRequestSize bounds redemption and issuance bodies, which
	// carry at most a code string and a few numeric options.
	MaxCodeRequestSize = 4 << 10 // 4 KB

	// MaxProfileUpdateSize bounds profile update submissions, which may
	// carry a bio.
	MaxProfileUpdateSize = 64 << 10 // 64 KB
)
