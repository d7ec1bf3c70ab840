package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "sk-test")
	c.httpClient.Timeout = 2 * time.Second
	return c
}

func TestEmbeddings(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header = %q", got)
		}
		// Out-of-order indices must still land in input order.
		fmt.Fprint(w, `{"data":[
			{"index":1,"embedding":[0.4,0.5]},
			{"index":0,"embedding":[0.1,0.2]}
		]}`)
	})

	vectors, err := c.Embeddings(context.Background(), "text-embedding-3-small", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embeddings: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.4 {
		t.Errorf("vectors not ordered by index: %v", vectors)
	}
}

func TestEmbeddings_EmptyInput(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vectors, err := c.Embeddings(context.Background(), "m", nil)
	if err != nil {
		t.Fatalf("Embeddings: %v", err)
	}
	if vectors != nil {
		t.Errorf("got %v, want nil", vectors)
	}
}

func TestEmbeddings_CountMismatch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0.1]}]}`)
	})

	_, err := c.Embeddings(context.Background(), "m", []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for vector count mismatch")
	}
}

func TestChatCompletion(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":" grounded answer [1] "}}]}`)
	})

	answer, err := c.ChatCompletion(context.Background(), "gpt-4", []Message{{Role: "user", Content: "q"}}, 0.1, 1000)
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if answer != "grounded answer [1]" {
		t.Errorf("answer = %q", answer)
	}
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusBadRequest, KindOther},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"error":{"message":"nope"}}`)
			})
			c.maxAttempts = 1

			_, err := c.ChatCompletion(context.Background(), "m", []Message{{Role: "user", Content: "q"}}, 0, 0)
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err %T is not *APIError", err)
			}
			if apiErr.Kind != tc.kind {
				t.Errorf("kind = %s, want %s", apiErr.Kind, tc.kind)
			}
			if apiErr.Message != "nope" {
				t.Errorf("message = %q, want provider detail", apiErr.Message)
			}
		})
	}
}

func TestRetry_RateLimitThenSuccess(t *testing.T) {
	attempts := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	})

	answer, err := c.ChatCompletion(context.Background(), "m", []Message{{Role: "user", Content: "q"}}, 0, 0)
	if err != nil {
		t.Fatalf("ChatCompletion after retries: %v", err)
	}
	if answer != "ok" {
		t.Errorf("answer = %q", answer)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_AuthIsNotRetried(t *testing.T) {
	attempts := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ChatCompletion(context.Background(), "m", []Message{{Role: "user", Content: "q"}}, 0, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (auth failures must not retry)", attempts)
	}
}

func TestConnectivityKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Refuse connections.

	c := NewClient(srv.URL, "sk-test")
	c.maxAttempts = 1

	_, err := c.ChatCompletion(context.Background(), "m", []Message{{Role: "user", Content: "q"}}, 0, 0)
	if ErrorKindOf(err) != KindConnectivity {
		t.Errorf("kind = %s, want connectivity", ErrorKindOf(err))
	}
}

func TestTranscribe(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("reading file part: %v", err)
		}
		file.Close()
		if header.Filename != "audio.webm" {
			t.Errorf("filename = %q", header.Filename)
		}
		fmt.Fprint(w, `{"text":"hello world"}`)
	})

	transcript, err := c.Transcribe(context.Background(), "whisper-1", "audio.webm", []byte{1, 2, 3}, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript != "hello world" {
		t.Errorf("transcript = %q", transcript)
	}
}
