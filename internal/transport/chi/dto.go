package chi

import (
	"github.com/kailas-cloud/burner/internal/domain"
	"github.com/kailas-cloud/burner/internal/usecase/status"
)

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeStoreUnavailable ErrorCode = "store_unavailable"
	ErrorCodeShuttingDown     ErrorCode = "shutting_down"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SetModelRequest is the body of PUT /model. Empty or "auto" clears the constraint.
type SetModelRequest struct {
	Model string `json:"model"`
}

// SetIntervalRequest is the body of PUT /interval. Value is raw user input.
type SetIntervalRequest struct {
	Value string `json:"value"`
}

// BurnResponse is returned by POST /burn.
type BurnResponse struct {
	Accepted bool             `json:"accepted"`
	Outcome  domain.Outcome   `json:"outcome,omitempty"`
	State    domain.BurnState `json:"state"`
}

// MenuResponse is returned by GET /menu and GET /models.
type MenuResponse struct {
	Items []status.MenuItem `json:"items"`
}

// LogResponse is returned by GET /log.
type LogResponse struct {
	Lines []string `json:"lines"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Phase   domain.Phase      `json:"phase,omitempty"`
	Version string            `json:"version"`
}
