package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSpokeoVerifyFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/email" {
			t.Errorf("path = %s, want /search/email", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sp-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.URL.Query().Get("email"); got != "user@example.com" {
			t.Errorf("email = %q, want user@example.com", got)
		}
		_, _ = w.Write([]byte(`{"found":true,"results":1}`))
	}))
	defer server.Close()

	p := NewSpokeo("sp-key", nil)
	p.baseURL = server.URL

	result := p.Verify(context.Background(), "user@example.com")

	if result.Error != nil {
		t.Fatalf("result.Error = %q, want nil", *result.Error)
	}
	if result.IsValid == nil || !*result.IsValid {
		t.Fatalf("result.IsValid = %v, want true", result.IsValid)
	}
	if result.Score == nil || *result.Score != 1.0 {
		t.Fatalf("result.Score = %v, want 1.0", result.Score)
	}
}

func TestSpokeoVerifyNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"found":false}`))
	}))
	defer server.Close()

	p := NewSpokeo("sp-key", nil)
	p.baseURL = server.URL

	result := p.Verify(context.Background(), "user@example.com")

	if result.IsValid == nil || *result.IsValid {
		t.Fatalf("result.IsValid = %v, want false", result.IsValid)
	}
	if result.Score == nil || *result.Score != 0.0 {
		t.Fatalf("result.Score = %v, want 0.0", result.Score)
	}
}

func TestSpokeoVerifyWithoutKeySkipsNetwork(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	p := NewSpokeo("", nil)
	p.baseURL = server.URL

	result := p.Verify(context.Background(), "user@example.com")
	if calls != 0 {
		t.Fatalf("network calls = %d, want 0 without a key", calls)
	}
	if result.Error == nil || *result.Error != msgNoAPIKey {
		t.Fatalf("result.Error = %v, want %q", result.Error, msgNoAPIKey)
	}
}

func TestSpokeoVerifyMalformedPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	p := NewSpokeo("sp-key", nil)
	p.baseURL = server.URL

	result := p.Verify(context.Background(), "user@example.com")
	if result.Error == nil || !strings.Contains(*result.Error, "failed to decode") {
		t.Fatalf("result.Error = %v, want decode failure", result.Error)
	}
}
