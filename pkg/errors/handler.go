package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error     bool           `json:"error"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
}

// ErrorHandler turns errors into HTTP replies and logs them
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode unclassified
// errors expose their message.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the reply for err. Node service errors keep their message,
// AppErrors their type and code, anything else becomes a generic 500.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, response := h.classify(err)
	response.Error = true
	response.RequestID = requestIDFrom(r)
	response.TraceID = traceIDFrom(r)

	fields := []zap.Field{
		zap.String("type", response.Type),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", response.RequestID),
	}
	if response.TraceID != "" {
		fields = append(fields, zap.String("trace_id", response.TraceID))
	}
	if response.Code != "" {
		fields = append(fields, zap.String("code", response.Code))
	}
	fields = append(fields, zap.Error(err))

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Warn("Request rejected", fields...)
	}

	h.sendJSON(w, status, response)
}

func (h *ErrorHandler) classify(err error) (int, ErrorResponse) {
	if nodeErr := GetNodeValidationError(err); nodeErr != nil {
		resp := ErrorResponse{
			Type:    string(nodeErr.Kind),
			Message: nodeErr.Error(),
			Code:    string(nodeErr.Op),
		}
		if nodeErr.NodeID != "" {
			resp.Details = map[string]any{"node_id": nodeErr.NodeID}
		}
		return nodeErr.HTTPStatus(), resp
	}

	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ErrorResponse{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}

	resp := ErrorResponse{
		Type:    string(ErrorTypeInternal),
		Message: "An internal error occurred",
	}
	if h.debug {
		resp.Message = err.Error()
	}
	return http.StatusInternalServerError, resp
}

// HandleStatus replies with status for failures that have no error value,
// such as unmatched routes or unreadable bodies
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	response := ErrorResponse{
		Error:     true,
		Type:      statusToErrorType(status),
		Message:   message,
		RequestID: requestIDFrom(r),
		TraceID:   traceIDFrom(r),
	}

	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)

	h.sendJSON(w, status, response)
}

// Middleware recovers panics in later handlers and replies with a 500
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestIDFrom prefers the id assigned by the router over the client header
func requestIDFrom(r *http.Request) string {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func traceIDFrom(r *http.Request) string {
	sc := trace.SpanContextFromContext(r.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return string(ErrorTypeValidation)
	case http.StatusUnauthorized:
		return string(ErrorTypeUnauthorized)
	case http.StatusNotFound:
		return string(ErrorTypeNotFound)
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return string(ErrorTypeInternal)
	}
}
