package config

import (
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

// Signing key for company tokens, shared by the auth controller and the middleware.
var JWT_KEY []byte

// Claims carried inside a company token.
type JWTClaims struct {
	CompanyId int64 `json:"company_id"`
	jwt.RegisteredClaims
}

// Default acceptance threshold for descriptor distance. A match is verified only
// when its distance is strictly below this value.
const DefaultMatchThreshold = 0.6

func init() {
	// Try to load .env (local development only). In production the file is
	// usually absent and the variables come from the real environment, so the
	// error is only informational.
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, using system environment variables.")
	}

	JWT_KEY = []byte(os.Getenv("JWT_KEY"))
}

// MustJWTKey refuses to start the server without a signing key; running
// without one would mean forgeable sessions.
func MustJWTKey() {
	if len(JWT_KEY) == 0 {
		log.Fatal("FATAL ERROR: JWT_KEY is not set. Add it to .env or the service environment.")
	}
}

// Port returns the HTTP listen port, defaulting to 3000.
func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "3000"
}

// ExtractorURL returns the base URL of the face descriptor service.
func ExtractorURL() string {
	if u := os.Getenv("EXTRACTOR_URL"); u != "" {
		return u
	}
	return "http://127.0.0.1:5000"
}

// MatchThreshold returns the configured acceptance threshold, falling back to the
// default when the variable is missing or unparsable.
func MatchThreshold() float64 {
	raw := os.Getenv("MATCH_THRESHOLD")
	if raw == "" {
		return DefaultMatchThreshold
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || t <= 0 {
		log.Printf("Warning: invalid MATCH_THRESHOLD %q, using %.2f", raw, DefaultMatchThreshold)
		return DefaultMatchThreshold
	}
	return t
}
