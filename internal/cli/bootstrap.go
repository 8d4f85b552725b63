// Package cli provides CLI commands for the warden application.
package cli

import (
	gocontext "context"
	"os"

	"github.com/example/warden/internal/ctxutil"
)

// globalSessionID stores the session ID for the current CLI invocation.
// Set once at startup by DetectAndStoreSession().
var globalSessionID string

// DetectAndStoreSession resolves the host session ID and stores it
// globally. Should be called once at CLI startup in PersistentPreRun.
// The WARDEN_SESSION_ID environment variable is how the host agent
// identifies itself; absence is fine, dispatch mints its own ID.
func DetectAndStoreSession() {
	globalSessionID = os.Getenv("WARDEN_SESSION_ID")
}

// GetSessionID returns the stored session ID from CLI startup.
func GetSessionID() string {
	return globalSessionID
}

// NewContext creates a context.Background() with the current session ID
// embedded. CLI commands should use this instead of context.Background()
// directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalSessionID != "" {
		return ctxutil.WithSessionID(ctx, globalSessionID)
	}
	return ctx
}
