package core

import (
	"context"

	"github.com/huangsam/cohort/internal/contract"
)

// Context keys for calculation options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runIDKey          contextKey = "runID"
	storeManagerKey   contextKey = "storeManager"
)

// withSuppressHeader marks the context so that header lines are not printed
func withSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// WithSuppressHeader is the exported form used by non-CLI callers such as the MCP server.
func WithSuppressHeader(ctx context.Context) context.Context {
	return withSuppressHeader(ctx)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the tracked run ID in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the tracked run ID from context, if any
func getRunID(ctx context.Context) (int64, bool) {
	runID, ok := ctx.Value(runIDKey).(int64)
	return runID, ok
}

// contextWithStoreManager stores the store manager in the context
func contextWithStoreManager(ctx context.Context, mgr contract.StoreManager) context.Context {
	return context.WithValue(ctx, storeManagerKey, mgr)
}

// storeManagerFromContext returns the store manager from context, or nil
func storeManagerFromContext(ctx context.Context) contract.StoreManager {
	mgr, _ := ctx.Value(storeManagerKey).(contract.StoreManager)
	return mgr
}
