package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		for _, field := range []string{"img1", "img2"} {
			if _, ok := r.MultipartForm.File[field]; !ok {
				t.Errorf("missing form file %s", field)
			}
		}
		if got := r.FormValue("model"); got != "vgg-face" {
			t.Errorf("unexpected model field %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"distance": 0.42, "verified": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	result, err := client.Verify(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0x01}, []byte{0x89, 0x50, 0x4E, 0x47, 0x01, 0x02, 0x03, 0x04})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Distance != 0.42 || !result.Verified {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestClientVerifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no face detected", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL, "arcface")
	if _, err := client.Verify(context.Background(), []byte("a"), []byte("b")); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestClientVerifyBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Verify(context.Background(), []byte("a"), []byte("b")); err == nil {
		t.Error("expected error on undecodable body")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, "image/gif"},
		{"bmp", []byte{0x42, 0x4D, 0, 0, 0, 0, 0, 0}, "image/bmp"},
		{"unknown", []byte{0, 1, 2, 3, 4, 5, 6, 7}, "application/octet-stream"},
		{"short", []byte{0xFF}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("detectMIMEType = %q, want %q", got, tt.expected)
			}
		})
	}
}
