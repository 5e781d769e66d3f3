package errors

import (
	"context"
	"fmt"
	"net/http"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	traceIDKey   contextKey = "trace_id"
	toolNameKey  contextKey = "tool_name"
)

// MsgInputValidationFailed is the fixed message for argument shape errors
const MsgInputValidationFailed = "Input validation failed."

// Common error creators, one per simulator error kind

// NewValidationError creates an argument shape error. An empty message uses the fixed
// generic wording.
func NewValidationError(field, message string) *AppError {
	if message == "" {
		message = MsgInputValidationFailed
	}
	err := New(ErrCodeValidationFailed, message)
	if field != "" {
		err = err.WithContext("field", field)
	}
	return err
}

// NewInvalidParameterError creates an out-of-range parameter error
func NewInvalidParameterError(param, message string) *AppError {
	return New(ErrCodeInvalidParameter, message).
		WithContext("parameter", param)
}

// NewInvalidDateTimeFormatError names the parameter that failed to parse
func NewInvalidDateTimeFormatError(param, value string) *AppError {
	return New(ErrCodeInvalidDateTimeFormat,
		fmt.Sprintf("Invalid ISO-8601 datetime format for parameter '%s': %s", param, value)).
		WithContext("parameter", param)
}

// NewInvalidSortByError creates an unknown sort key error
func NewInvalidSortByError(sortBy string) *AppError {
	return New(ErrCodeInvalidSortBy, "The specified sort_by parameter is not valid.").
		WithContext("sort_by", sortBy)
}

// NewPaginationError creates an out-of-range page error
func NewPaginationError(page, limit, total int) *AppError {
	return New(ErrCodePagination, "The requested page number is out of range.").
		WithContext("page", page).
		WithContext("limit", limit).
		WithContext("total", total)
}

// NewInvalidJIDError creates a malformed JID error
func NewInvalidJIDError(jid string) *AppError {
	return New(ErrCodeInvalidJID, fmt.Sprintf("Invalid JID format: '%s'.", jid)).
		WithContext("jid", jid)
}

// NewInvalidRecipientError creates an unusable recipient error
func NewInvalidRecipientError(message string) *AppError {
	return New(ErrCodeInvalidRecipient, message)
}

// NewInvalidPhoneNumberError creates a malformed phone number error
func NewInvalidPhoneNumberError(message string) *AppError {
	return New(ErrCodeInvalidPhoneNumber, message)
}

// NewContactNotFoundError creates a missing contact error
func NewContactNotFoundError(identifier string) *AppError {
	return New(ErrCodeContactNotFound, "The specified contact could not be found.").
		WithContext("identifier", identifier)
}

// NewChatNotFoundError creates a missing chat error
func NewChatNotFoundError(chatJID string) *AppError {
	return New(ErrCodeChatNotFound, "The specified chat could not be found.").
		WithContext("chat_jid", chatJID)
}

// NewMessageNotFoundError creates a missing message error
func NewMessageNotFoundError(message string) *AppError {
	if message == "" {
		message = "The specified message could not be found."
	}
	return New(ErrCodeMessageNotFound, message)
}

// NewMessageSendFailedError creates a store write failure error
func NewMessageSendFailedError(message string) *AppError {
	return New(ErrCodeMessageSendFailed, message)
}

// NewUnsupportedMediaTypeError creates an unknown media extension error
func NewUnsupportedMediaTypeError(path string) *AppError {
	return New(ErrCodeUnsupportedMediaType, "The media type of the file is not supported.").
		WithContext("media_path", path)
}

// NewInternalSimulationError wraps a should-never-happen consistency failure
func NewInternalSimulationError(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternalSimulation, message)
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates a database error with operation context
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Database operation failed")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier)
}

// Context helpers

// WithRequestID stores the request ID used when enriching errors
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithToolName stores the executing tool name used when enriching errors
func WithToolName(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, toolNameKey, tool)
}

// FromContext extracts error context from a context.Context if present
func FromContext(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}

	errorCtx := make(map[string]interface{})
	if requestID := ctx.Value(requestIDKey); requestID != nil {
		errorCtx["request_id"] = requestID
	}
	if traceID := ctx.Value(traceIDKey); traceID != nil {
		errorCtx["trace_id"] = traceID
	}
	if tool := ctx.Value(toolNameKey); tool != nil {
		errorCtx["tool"] = tool
	}
	return errorCtx
}

// WithContextFromRequest adds request context to an error
func WithContextFromRequest(err *AppError, ctx context.Context) *AppError {
	if err == nil || ctx == nil {
		return err
	}
	for k, v := range FromContext(ctx) {
		err = err.WithContext(k, v)
	}
	return err
}

// HTTP helpers

// HTTPStatusCode maps error codes to appropriate HTTP status codes
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeValidationFailed, ErrCodeInvalidParameter, ErrCodeInvalidDateTimeFormat,
		ErrCodeInvalidSortBy, ErrCodePagination, ErrCodeInvalidJID, ErrCodeInvalidRecipient,
		ErrCodeInvalidPhoneNumber, ErrCodeUnsupportedMediaType, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeContactNotFound, ErrCodeChatNotFound, ErrCodeMessageNotFound, ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMessageSendFailed:
		return http.StatusConflict
	case ErrCodeDatabaseQuery, ErrCodeDatabaseMigration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the standardized error body of the tool server
type HTTPErrorResponse struct {
	Error struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Context interface{} `json:"context,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an error to a standardized HTTP response
func ToHTTPResponse(err error, requestID string) HTTPErrorResponse {
	response := HTTPErrorResponse{
		RequestID: requestID,
	}

	appErr, ok := As(err)
	if !ok {
		response.Error.Code = ErrCodeInternalSimulation
		response.Error.Message = GetUserMessage(err)
		return response
	}

	response.Error.Code = appErr.Code
	response.Error.Message = GetUserMessage(err)
	if len(appErr.Context) > 0 {
		publicContext := make(map[string]interface{})
		for k, v := range appErr.Context {
			if k != "secret" && k != "token" {
				publicContext[k] = v
			}
		}
		if len(publicContext) > 0 {
			response.Error.Context = publicContext
		}
	}
	return response
}
