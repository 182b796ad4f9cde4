// Command mock-api is a local stand-in for the DeepSeek chat-completion
// endpoint. Point upstream.baseURL at http://localhost:9999/v1 to use it.
//
// Prompts starting with a control word change the reply:
//
//	empty:  answers with no choices
//	fail:   answers 500 with an OpenAI-style error body
//	slow:   sleeps two seconds before echoing
//
// Anything else is echoed back padded with whitespace.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type Server struct {
	apiKey string
	logger *slog.Logger
}

func main() {
	listen := flag.String("listen", "localhost:9999", "Listen address")
	flag.Parse()

	srv := &Server{
		apiKey: os.Getenv("DEEPSEEK_API_KEY"),
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	srv.logger.Info("mock chat-completion API listening", "addr", *listen)
	if err := http.ListenAndServe(*listen, srv.routes()); err != nil {
		srv.logger.Error("mock server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	return mux
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+s.apiKey {
		writeAPIError(w, http.StatusUnauthorized, "Authentication Fails", "authentication_error")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "invalid_request_error")
		return
	}
	prompt := lastUserMessage(req)
	s.logger.Info("chat completion", "model", req.Model, "prompt_len", len(prompt))

	switch {
	case strings.HasPrefix(prompt, "empty"):
		writeJSON(w, http.StatusOK, completion(req.Model))
	case strings.HasPrefix(prompt, "fail"):
		writeAPIError(w, http.StatusInternalServerError, "mock upstream failure", "server_error")
	case strings.HasPrefix(prompt, "slow"):
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
			return
		}
		writeJSON(w, http.StatusOK, completion(req.Model, "  "+prompt+"  "))
	default:
		writeJSON(w, http.StatusOK, completion(req.Model, "  "+prompt+"  "))
	}
}

func lastUserMessage(req chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}

func completion(model string, contents ...string) map[string]any {
	choices := make([]map[string]any, 0, len(contents))
	for i, c := range contents {
		choices = append(choices, map[string]any{
			"index":         i,
			"message":       map[string]any{"role": "assistant", "content": c},
			"finish_reason": "stop",
		})
	}
	return map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion",
		"created": 0,
		"model":   model,
		"choices": choices,
	}
}

func writeAPIError(w http.ResponseWriter, status int, message, kind string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": message, "type": kind},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
