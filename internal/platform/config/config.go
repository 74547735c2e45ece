package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
//
// SiteTitle is passed down to the transport layer explicitly rather than
// living in process-global state, so tests and embedders can run two sites
// side by side.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisAddr     string
	JWTSigningKey string
	SessionTTL    time.Duration
	SiteTitle     string

	// BootstrapAdminEmail/Password seed a staff account on first start so a
	// fresh deployment has someone who can approve applications. Empty
	// disables seeding.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CRM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("CRM_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	sessionTTL := 24 * time.Hour
	if raw := os.Getenv("CRM_SESSION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			sessionTTL = time.Duration(hours) * time.Hour
		}
	}

	siteTitle := os.Getenv("CRM_SITE_TITLE")
	if siteTitle == "" {
		siteTitle = "Together Culture CRM"
	}

	return Server{
		Addr:                   addr,
		DatabaseURL:            os.Getenv("CRM_DATABASE_URL"),
		RedisAddr:              os.Getenv("CRM_REDIS_ADDR"),
		JWTSigningKey:          jwtSigningKey,
		SessionTTL:             sessionTTL,
		SiteTitle:              siteTitle,
		BootstrapAdminEmail:    os.Getenv("CRM_BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("CRM_BOOTSTRAP_ADMIN_PASSWORD"),
	}
}
