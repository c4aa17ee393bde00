package common

import (
	"context"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyTenantID   ContextKey = "tenant_id"
	ContextKeyCredential ContextKey = "credential"
)

// WithTenantID adds tenant ID to context
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenantID)
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(ContextKeyTenantID).(string)
	return tenantID, ok
}

// WithCredential adds the caller's upstream API credential to context
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, ContextKeyCredential, credential)
}

// GetCredential extracts the upstream API credential from context
func GetCredential(ctx context.Context) (string, bool) {
	credential, ok := ctx.Value(ContextKeyCredential).(string)
	return credential, ok
}
