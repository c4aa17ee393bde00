// Package middleware holds the REST middleware: credential extraction,
// request logging, and the upstream circuit breaker. Authentication
// itself happens at the API Gateway; by the time a request lands here
// its JWT has already been verified.
package middleware

import (
	"net/http"

	"mab-backend/pkg/auth"
	"mab-backend/pkg/common"
)

// Header names carrying the tenant's upstream credentials.
const (
	HeaderAPIKey   = "x-api-key"
	HeaderTenantID = "x-tenant-id"
)

// QueryTenantID is the query-param fallback for the tenant id, kept for
// portal pages that cannot set custom headers.
const QueryTenantID = "tenantId"

// Credentials extracts the tenant id and upstream API key from the
// request and stores them on the context. Nothing is rejected here:
// endpoints differ in which credential they need, so the services
// decide what is missing.
func Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if tenantID := TenantID(r); tenantID != "" {
			ctx = common.WithTenantID(ctx, tenantID)
		}
		if apiKey := APIKey(r); apiKey != "" {
			ctx = common.WithCredential(ctx, apiKey)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantID reads the tenant id from the request: the x-tenant-id
// header, else the tenantId query param.
func TenantID(r *http.Request) string {
	if tenantID := r.Header.Get(HeaderTenantID); tenantID != "" {
		return tenantID
	}
	return r.URL.Query().Get(QueryTenantID)
}

// APIKey reads the upstream API key from the request: the x-api-key
// header, else the Authorization bearer token.
func APIKey(r *http.Request) string {
	if apiKey := r.Header.Get(HeaderAPIKey); apiKey != "" {
		return apiKey
	}
	return auth.BearerToken(r)
}
