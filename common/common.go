package common

import (
	"os"
)

// TestProjectID is the project used by unit tests that construct real clients.
var TestProjectID = "penni-console-test"

var (
	// ProjectID is the GCP project the service runs in.
	ProjectID = GetEnv("GOOGLE_CLOUD_PROJECT", "penni-console-dev")

	// Production reports whether the service runs against the production project.
	Production = ProjectID == "penni-console-prod"

	// IsLocalhost is set when running outside App Engine.
	IsLocalhost = os.Getenv("GAE_SERVICE") == ""
)

// GetEnv returns the value of the environment variable named by key,
// or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// CtxKeys are the gin context keys set by the auth middleware.
var CtxKeys = struct {
	UID    string
	Email  string
	Claims string
}{
	UID:    "uid",
	Email:  "email",
	Claims: "claims",
}
