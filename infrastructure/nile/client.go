// Package nile implements the client for the Nile cloud REST API: the
// credentialed facility reads and the MAC authorization update.
package nile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/pkg/observability"
	"mab-backend/pkg/retry"
)

const (
	// DefaultBaseURL is the production Nile cloud endpoint.
	DefaultBaseURL = "https://u1.nile-global.cloud"

	// DefaultTimeout bounds each upstream request.
	DefaultTimeout = 30 * time.Second

	// DefaultDescription annotates MAC authorization updates that arrive
	// without their own description.
	DefaultDescription = "Updated via MAB Onboarding API"

	// maxAuthAttempts is the request budget when the upstream keeps
	// answering 401: the initial request plus five retries.
	maxAuthAttempts = 6

	previewLimit = 500
)

const (
	segmentsPath      = "/api/v1/settings/segments"
	sitesPath         = "/api/v1/sites"
	buildingsPath     = "/api/v1/buildings"
	floorsPath        = "/api/v1/floors"
	clientConfigsPath = "/api/v3/client-configs/tenant/%s?action=AUTH_WAITING_FOR_APPROVAL&pageNumber=0&pageSize=99999"
	macAuthPath       = "/api/v1/client-configs"
)

// errUnauthorized marks a 401 inside the retry loop. Freshly issued keys
// can lag on the upstream side, so 401 is the one status worth retrying.
var errUnauthorized = errors.New("upstream returned 401 unauthorized")

var _ ports.NileAPI = (*Client)(nil)

// Client talks to the Nile cloud API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics

	// backoff paces 401 retries; tests shrink it
	backoff func(attempt int) time.Duration
}

// NewClient creates a Nile API client. An empty baseURL selects the
// production endpoint; a nil httpClient gets the default timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
		metrics: metrics,
		backoff: retry.UniformRandom(time.Second, 5*time.Second),
	}
}

// GetSegments retrieves the tenant's network segments. The segments
// endpoint nests its payload one level deeper than the other reads.
func (c *Client) GetSegments(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	data, raw, err := c.getJSON(ctx, cred, segmentsPath, "segments")
	if err != nil {
		return nil, err
	}

	envelope, ok := data.(map[string]interface{})
	if !ok {
		return nil, formatError("segments", "response is not a JSON object", raw)
	}
	inner, ok := envelope["data"].(map[string]interface{})
	if !ok {
		return nil, formatError("segments", fmt.Sprintf("'data' key missing, found keys %v", sortedKeys(envelope)), raw)
	}
	items, ok := inner["content"].([]interface{})
	if !ok {
		return nil, formatError("segments", fmt.Sprintf("'data.content' key missing, found keys %v", sortedKeys(inner)), raw)
	}

	list := collectMaps(items)
	if len(list) == 0 {
		return nil, pkgerrors.NewNoDataError("network segments", cred.TenantID)
	}
	return list, nil
}

// GetSites retrieves the tenant's sites.
func (c *Client) GetSites(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	items, err := c.getContent(ctx, cred, sitesPath, "sites")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.NewNoDataError("sites", cred.TenantID)
	}
	return items, nil
}

// GetBuildings retrieves the tenant's buildings.
func (c *Client) GetBuildings(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	items, err := c.getContent(ctx, cred, buildingsPath, "buildings")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.NewNoDataError("buildings", cred.TenantID)
	}
	return items, nil
}

// GetFloors retrieves the tenant's floors.
func (c *Client) GetFloors(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	items, err := c.getContent(ctx, cred, floorsPath, "floors")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.NewNoDataError("floors", cred.TenantID)
	}
	return items, nil
}

// GetClients retrieves the clients waiting for MAC authorization. Unlike
// the other reads an empty list is a valid outcome: a tenant with nothing
// waiting for approval is the steady state.
func (c *Client) GetClients(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	path := fmt.Sprintf(clientConfigsPath, url.PathEscape(cred.TenantID))
	data, raw, err := c.getJSON(ctx, cred, path, "clients")
	if err != nil {
		return nil, err
	}

	items, ok := data.([]interface{})
	if !ok {
		return nil, formatError("clients", "response is not a JSON list", raw)
	}
	return collectMaps(items), nil
}

// UpdateMACAuth approves or denies a client's MAC authorization. Upstream
// non-2xx statuses come back inside the result so callers can relay them;
// the error return covers credential, transport, and encoding failures.
func (c *Client) UpdateMACAuth(ctx context.Context, apiKey string, update ports.MACAuthUpdate) (*ports.MACAuthResult, error) {
	if apiKey == "" {
		return nil, pkgerrors.NewMissingCredentialError("API key (x-api-key header)")
	}

	description := update.Description
	if description == "" {
		description = DefaultDescription
	}

	payload := map[string]interface{}{
		"macsList": []map[string]interface{}{
			{
				"id":          fmt.Sprintf("%s-%s", update.ClientID, update.MACAddress),
				"macAddress":  update.MACAddress,
				"segmentId":   update.SegmentID,
				"state":       update.State,
				"description": description,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode mac auth payload").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+macAuthPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build upstream request").WithCause(err)
	}
	// The upstream expects the portal credential under its own header name
	req.Header.Set("x-nile-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("Sending MAC auth update",
		zap.String("clientId", update.ClientID),
		zap.String("state", update.State))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamCall(ctx, "mac-auth", 0, time.Since(start))
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read upstream response")
	}
	c.metrics.RecordUpstreamCall(ctx, "mac-auth", resp.StatusCode, time.Since(start))

	return c.macAuthResult(resp.StatusCode, data), nil
}

// macAuthResult normalizes the upstream response. Any 2xx becomes a 200
// for the portal; other statuses propagate with the upstream detail
// wrapped so the caller never relays a raw non-JSON body.
func (c *Client) macAuthResult(status int, data []byte) *ports.MACAuthResult {
	var decoded interface{}
	hasJSON := len(data) > 0 && json.Unmarshal(data, &decoded) == nil

	if status >= 200 && status < 300 {
		switch {
		case len(data) == 0:
			return &ports.MACAuthResult{
				Status: http.StatusOK,
				Body:   map[string]interface{}{"message": "Operation successful, no content returned from upstream."},
			}
		case hasJSON:
			return &ports.MACAuthResult{Status: http.StatusOK, Body: decoded}
		default:
			c.logger.Warn("Upstream returned non-JSON success body",
				zap.Int("status", status))
			return &ports.MACAuthResult{
				Status: http.StatusOK,
				Body: map[string]interface{}{
					"message":                   "Operation successful, but upstream response was not valid JSON.",
					"upstream_response_preview": preview(data),
				},
			}
		}
	}

	c.logger.Error("Upstream rejected MAC auth update",
		zap.Int("status", status),
		zap.String("preview", preview(data)))

	switch {
	case len(data) == 0:
		return &ports.MACAuthResult{
			Status: status,
			Body: map[string]interface{}{
				"error":           "Upstream API error with no content.",
				"upstream_status": status,
			},
		}
	case hasJSON:
		return &ports.MACAuthResult{
			Status: status,
			Body: map[string]interface{}{
				"error":            "Upstream API error",
				"upstream_details": decoded,
			},
		}
	default:
		return &ports.MACAuthResult{
			Status: status,
			Body: map[string]interface{}{
				"error":                     "Upstream API error with non-JSON response.",
				"upstream_status":           status,
				"upstream_response_preview": preview(data),
			},
		}
	}
}

// getContent fetches a read endpoint whose list sits under a top-level
// "content" key.
func (c *Client) getContent(ctx context.Context, cred ports.Credential, path, resource string) ([]map[string]interface{}, error) {
	data, raw, err := c.getJSON(ctx, cred, path, resource)
	if err != nil {
		return nil, err
	}

	envelope, ok := data.(map[string]interface{})
	if !ok {
		return nil, formatError(resource, "response is not a JSON object", raw)
	}
	items, ok := envelope["content"].([]interface{})
	if !ok {
		return nil, formatError(resource, fmt.Sprintf("'content' key missing, found keys %v", sortedKeys(envelope)), raw)
	}
	return collectMaps(items), nil
}

// getJSON performs one credentialed GET, retrying only 401 responses.
// It returns the decoded body plus the raw bytes for error previews.
func (c *Client) getJSON(ctx context.Context, cred ports.Credential, path, resource string) (interface{}, []byte, error) {
	if err := validateCredential(cred); err != nil {
		return nil, nil, err
	}

	var (
		status      int
		contentType string
		body        []byte
	)

	policy := retry.Policy{
		MaxAttempts: maxAuthAttempts,
		Backoff:     c.backoff,
		Retryable:   func(err error) bool { return errors.Is(err, errUnauthorized) },
	}

	start := time.Now()
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return pkgerrors.NewInternalError("failed to build upstream request").WithCause(err)
		}
		req.Header.Set("Authorization", "Bearer "+cred.APIKey)
		req.Header.Set("x-tenant-id", cred.TenantID)

		resp, err := c.http.Do(req)
		if err != nil {
			return classifyTransport(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to read upstream response")
		}

		status = resp.StatusCode
		contentType = resp.Header.Get("Content-Type")
		body = data

		if status == http.StatusUnauthorized {
			c.logger.Warn("Upstream returned 401, retrying",
				zap.String("resource", resource))
			return errUnauthorized
		}
		return nil
	})
	c.metrics.RecordUpstreamCall(ctx, resource, status, time.Since(start))

	if err != nil {
		if errors.Is(err, errUnauthorized) {
			return nil, nil, pkgerrors.NewUpstreamAuthError(resource, maxAuthAttempts)
		}
		return nil, nil, err
	}

	if status != http.StatusOK {
		return nil, nil, pkgerrors.NewUpstreamStatusError(status,
			fmt.Sprintf("upstream returned status %d for %s: %s", status, resource, preview(body)))
	}
	if !strings.Contains(contentType, "application/json") {
		return nil, nil, formatError(resource, fmt.Sprintf("content type %q is not JSON", contentType), body)
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, nil, formatError(resource, fmt.Sprintf("invalid JSON: %v", err), body)
	}
	return decoded, body, nil
}

func validateCredential(cred ports.Credential) error {
	if cred.APIKey == "" {
		return pkgerrors.NewMissingCredentialError("API key (x-api-key header)")
	}
	if cred.TenantID == "" {
		return pkgerrors.NewMissingCredentialError("tenant id (x-tenant-id header)")
	}
	return nil
}

// classifyTransport maps request failures onto gateway statuses: timeouts
// to 504, connection failures to 503, anything else to an internal error.
func classifyTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return pkgerrors.NewUpstreamStatusError(http.StatusGatewayTimeout, "upstream request timed out").WithCause(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return pkgerrors.NewUnavailableError("nile API").WithCause(err)
	}
	return pkgerrors.Wrap(err, "upstream request failed")
}

func formatError(resource, problem string, raw []byte) error {
	return pkgerrors.NewUpstreamFormatError(fmt.Sprintf("unexpected %s response: %s", resource, problem)).
		WithDetails(map[string]interface{}{"preview": preview(raw)})
}

// collectMaps keeps the object elements of a decoded list; the payload
// constructors filter malformed records afterwards.
func collectMaps(items []interface{}) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			result = append(result, m)
		}
	}
	return result
}

func preview(b []byte) string {
	if len(b) > previewLimit {
		return string(b[:previewLimit])
	}
	return string(b)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
