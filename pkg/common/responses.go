package common

import (
	"encoding/json"
	"net/http"
)

// The proxy endpoints return upstream-shaped payloads at the top level,
// so responses are written as-is rather than wrapped in an envelope. The
// frontend consumes the same JSON it would get from the facility API.

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// MessageResponse is the body for simple confirmation responses
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondMessage sends a plain `{"message": ...}` response
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, MessageResponse{Message: message})
}

// DiagnosticError is the verbose failure body for the facility read
// endpoints. It echoes the request headers and query params for
// operational debugging; not a stable client-facing contract.
type DiagnosticError struct {
	Error            string            `json:"error"`
	TenantID         string            `json:"tenant_id"`
	APIKeyPresent    bool              `json:"api_key_present"`
	EventHeaders     map[string]string `json:"event_headers"`
	EventQueryParams map[string]string `json:"event_query_params"`
}

// RespondDiagnostic sends the diagnostic failure body for a facility
// read that could not be served.
func RespondDiagnostic(w http.ResponseWriter, r *http.Request, err error, tenantID string, credentialPresent bool) {
	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for name := range query {
		params[name] = query.Get(name)
	}

	RespondJSON(w, http.StatusInternalServerError, DiagnosticError{
		Error:            err.Error(),
		TenantID:         tenantID,
		APIKeyPresent:    credentialPresent,
		EventHeaders:     headers,
		EventQueryParams: params,
	})
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(v); err != nil {
		return err
	}

	return nil
}
