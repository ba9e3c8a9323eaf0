// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	Cause          string `json:"cause,omitempty"`
	Mode           string `json:"mode,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response with an explicit status.
func Error(w http.ResponseWriter, status int, err error) {
	write(w, status, buildDetail(err))
}

// GatewayError writes an error response with a status derived from the
// error: validation and mode errors are the caller's fault, missing
// credentials map to 424, brokerage rejections pass through as 502 with
// the verbatim upstream status and body, and connection failures are 504.
func GatewayError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrOrderInvalid), errors.Is(err, core.ErrModeInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrConfigMissing), errors.Is(err, core.ErrConfigInvalid):
		status = http.StatusFailedDependency
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrRemote), errors.Is(err, core.ErrMalformedData):
		status = http.StatusBadGateway
	case errors.Is(err, core.ErrTransport):
		status = http.StatusGatewayTimeout
	}
	write(w, status, buildDetail(err))
}

func buildDetail(err error) ErrorDetail {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}

	var remote *broker.RemoteError
	if errors.As(err, &remote) {
		detail.Mode = remote.Mode.String()
		detail.UpstreamStatus = remote.Status
		detail.UpstreamBody = remote.Body
	}
	var transport *broker.TransportError
	if errors.As(err, &transport) {
		detail.Mode = transport.Mode.String()
		detail.Cause = transport.Err.Error()
	}

	return detail
}

func write(w http.ResponseWriter, status int, detail ErrorDetail) {
	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
