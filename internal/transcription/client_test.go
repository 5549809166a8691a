package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_Transcribe_Success(t *testing.T) {
	var gotAuth, gotModel, gotFilename string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		if files := r.MultipartForm.File["file"]; len(files) == 1 {
			gotFilename = files[0].Filename
		}

		json.NewEncoder(w).Encode(Result{Text: "replace the hot water system for two thousand dollars"})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test", Model: "whisper-1"})

	text, err := c.Transcribe(context.Background(), "clip.webm", strings.NewReader("fake-audio-bytes"))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "replace the hot water system for two thousand dollars" {
		t.Errorf("unexpected transcript: %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("expected model whisper-1, got %q", gotModel)
	}
	if gotFilename != "clip.webm" {
		t.Errorf("expected filename clip.webm, got %q", gotFilename)
	}
}

func TestClient_Transcribe_DefaultFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		files := r.MultipartForm.File["file"]
		if len(files) != 1 || files[0].Filename != "recording.webm" {
			t.Errorf("expected default filename recording.webm")
		}
		json.NewEncoder(w).Encode(Result{Text: "ok"})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})
	if _, err := c.Transcribe(context.Background(), "", strings.NewReader("audio")); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
}

func TestClient_Transcribe_MissingAPIKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:0"})
	if _, err := c.Transcribe(context.Background(), "a.webm", strings.NewReader("audio")); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestClient_Transcribe_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad audio"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})
	_, err := c.Transcribe(context.Background(), "a.webm", strings.NewReader("audio"))
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "status=400") {
		t.Errorf("error should carry upstream status, got %v", err)
	}
}

func TestClient_Transcribe_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(Result{Text: "late"})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Transcribe(ctx, "a.webm", strings.NewReader("audio")); err == nil {
		t.Fatal("expected error when context deadline passes")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://x", APIKey: "k"})
	if c.model != "whisper-1" {
		t.Errorf("expected default model whisper-1, got %s", c.model)
	}
	if c.httpClient.Timeout != 60*time.Second {
		t.Errorf("expected 60s default timeout, got %s", c.httpClient.Timeout)
	}
}
