// Package server exposes the GraphQL executor over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"deepseek-gql/internal/graphql"
	"deepseek-gql/internal/metrics"
	"deepseek-gql/internal/redact"
)

// CORS headers written on every response.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Max-Age":       "86400",
}

var errMissingQuery = errors.New("must provide query string")

// Executor runs a decoded GraphQL request.
type Executor interface {
	Execute(ctx context.Context, req graphql.Request) *graphql.Response
}

// envelope is the POST body. Query is a pointer so a missing key can be told
// apart from an empty document.
type envelope struct {
	Query         *string        `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type errorBody struct {
	Errors []errorMessage `json:"errors"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// Handler serves GraphQL over HTTP on any path.
type Handler struct {
	exec            Executor
	logger          *slog.Logger
	metrics         *metrics.Collector
	redactor        *redact.Redactor
	maxRequestBytes int64
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Logger          *slog.Logger
	Metrics         *metrics.Collector
	Redactor        *redact.Redactor
	MaxRequestBytes int64
}

func NewHandler(exec Executor, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		exec:            exec,
		logger:          logger,
		metrics:         opts.Metrics,
		redactor:        opts.Redactor,
		maxRequestBytes: opts.MaxRequestBytes,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		d := time.Since(start)
		h.metrics.ObserveRequest(r.Method, rec.status, d)
		h.logger.Debug("request served", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", d)
	}()

	for k, v := range corsHeaders {
		rec.Header().Set(k, v)
	}

	switch r.Method {
	case http.MethodOptions:
		rec.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		h.handlePOST(rec, r)
	default:
		rec.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rec.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = io.WriteString(rec, "Method not allowed")
	}
}

func (h *Handler) handlePOST(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("graphql execution panicked", "panic", fmt.Sprint(p))
			h.writeError(w, fmt.Errorf("internal error: %v", p))
		}
	}()

	var body io.Reader = r.Body
	if h.maxRequestBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.writeError(w, err)
		return
	}
	if env.Query == nil {
		h.writeError(w, errMissingQuery)
		return
	}
	if env.Variables == nil {
		env.Variables = map[string]any{}
	}

	resp := h.exec.Execute(r.Context(), graphql.Request{
		Query:         *env.Query,
		OperationName: env.OperationName,
		Variables:     env.Variables,
	})
	for _, gerr := range resp.Errors {
		gerr.Message = h.redactor.Redact(gerr.Message)
		h.logger.Warn("graphql error", "error", gerr.Message, "path", gerr.Path.String())
	}

	out, err := encodeJSON(resp)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	msg := h.redactor.Redact(err.Error())
	h.logger.Error("request failed", "error", msg)

	out, _ := encodeJSON(errorBody{Errors: []errorMessage{{Message: msg}}})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(out)
}

// encodeJSON is json.Marshal without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// statusRecorder remembers the status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}
