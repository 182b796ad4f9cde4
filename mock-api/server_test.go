package main

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"deepseek-gql/internal/config"
	"deepseek-gql/internal/deepseek"
)

func newMock(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	srv := &Server{apiKey: apiKey, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(baseURL, apiKey string) *deepseek.Client {
	cfg := config.Default().Upstream
	cfg.BaseURL = baseURL + "/v1"
	cfg.APIKey = apiKey
	return deepseek.NewClient(cfg, nil)
}

func TestMockEchoesTrimmedPrompt(t *testing.T) {
	ts := newMock(t, "sk-mock")
	got, err := newClient(ts.URL, "sk-mock").Ask(context.Background(), "ping")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got != "ping" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestMockEmptyChoices(t *testing.T) {
	ts := newMock(t, "")
	_, err := newClient(ts.URL, "any").Ask(context.Background(), "empty please")
	if err == nil || !strings.Contains(err.Error(), "no valid response") {
		t.Fatalf("expected no valid response error, got %v", err)
	}
}

func TestMockFailure(t *testing.T) {
	ts := newMock(t, "")
	_, err := newClient(ts.URL, "any").Ask(context.Background(), "fail now")
	if err == nil || !strings.Contains(err.Error(), "mock upstream failure") {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestMockRejectsWrongKey(t *testing.T) {
	ts := newMock(t, "sk-mock")
	_, err := newClient(ts.URL, "sk-wrong").Ask(context.Background(), "ping")
	if err == nil || !strings.Contains(err.Error(), "Authentication Fails") {
		t.Fatalf("expected authentication error, got %v", err)
	}
}
