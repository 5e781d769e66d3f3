// Package tools exposes the simulator operations as named function-call tools that take
// JSON arguments.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"wasim/internal/errors"
	"wasim/internal/metrics"
	"wasim/internal/service"
	"wasim/internal/tracing"

	"github.com/sirupsen/logrus"
)

// Handler executes a tool against its raw JSON arguments
type Handler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Tool is a named operation with its input schema
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Execute     Handler                `json:"-"`
}

// Registry holds the tools and runs them with tracing, metrics and logging
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	logger  *errors.Logger
	metrics *metrics.Registry
}

// NewRegistry creates an empty registry
func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		logger:  errors.WrapLogger(logger),
		metrics: metrics.GetRegistry(),
	}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" || tool.Execute == nil {
		return fmt.Errorf("tool must have a name and a handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools sorted by name
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Execute runs the named tool. Unknown names yield a NOT_FOUND error.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, errors.NewNotFoundError("tool", name)
	}

	ctx = errors.WithToolName(ctx, name)
	ctx, span := tracing.StartToolSpan(ctx, name)
	defer span.End()

	start := time.Now()
	result, err := tool.Execute(ctx, args)
	duration := time.Since(start)

	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternalSimulation
		}
		r.metrics.RecordToolCall(name, string(code), duration)
		tracing.RecordError(ctx, err, tracing.AttrErrorCode.String(string(code)))
		r.logger.LogRejected(err, "Tool call failed", logrus.Fields{
			service.LogFieldTool:      name,
			service.LogFieldRequestID: tracing.GetRequestID(ctx),
			service.LogFieldDuration:  duration.Milliseconds(),
		})
		return nil, err
	}

	r.metrics.RecordToolCall(name, "ok", duration)
	r.logger.WithFields(logrus.Fields{
		service.LogFieldTool:      name,
		service.LogFieldRequestID: tracing.GetRequestID(ctx),
		service.LogFieldDuration:  duration.Milliseconds(),
	}).Debug("Tool call completed")
	return result, nil
}

// typed adapts an operation taking a request struct. newReq supplies the defaults that
// absent arguments keep.
func typed[Req any, Resp any](required []string, newReq func() Req, call func(context.Context, Req) (Resp, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (interface{}, error) {
		req := newReq()
		if err := decodeArgs(args, &req, required); err != nil {
			return nil, err
		}
		return call(ctx, req)
	}
}

var jsonNull = []byte("null")

// decodeArgs decodes a JSON object into dst. Unknown keys, wrong JSON types and missing
// or null required keys are argument shape errors.
func decodeArgs(raw json.RawMessage, dst interface{}, required []string) error {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || bytes.Equal(body, jsonNull) {
		body = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return errors.NewValidationError("", "")
	}
	for _, key := range required {
		v, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			return errors.NewValidationError(key, "")
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			return errors.NewValidationError(typeErr.Field, "")
		}
		return errors.NewValidationError("", "")
	}
	return nil
}

func noDefaults[T any]() func() T {
	return func() T {
		var zero T
		return zero
	}
}
