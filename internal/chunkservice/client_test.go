package chunkservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_ChunkText(t *testing.T) {
	t.Run("Should send the request body and parse chunks", func(t *testing.T) {
		var got Request
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, chunkPath, r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"chunks":["hello","world"],"original_length":11,"cleaned_length":11}`))
		})

		resp, err := NewClient(server.URL).ChunkText(t.Context(), Request{
			Text: "hello world", MaxChars: 5000, CleanTranscript: true, Method: "smart",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"hello", "world"}, resp.Chunks)
		assert.Equal(t, 11, resp.OriginalLength)
		assert.Equal(t, 11, resp.CleanedLength)
		assert.Equal(t, Request{Text: "hello world", MaxChars: 5000, CleanTranscript: true, Method: "smart"}, got)
	})

	t.Run("Should reject malformed chunks", func(t *testing.T) {
		bodies := map[string]string{
			"missing":    `{"original_length":3}`,
			"not a list": `{"chunks":"abc"}`,
			"non-string": `{"chunks":["a",2]}`,
			"not json":   `<html>oops</html>`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(body))
				})

				_, err := NewClient(server.URL).ChunkText(t.Context(), Request{Text: "x"})

				var formatErr *FormatError
				require.ErrorAs(t, err, &formatErr)
			})
		}
	})

	t.Run("Should surface the server message on error status", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Internal server error","message":"boom","type":"ValueError"}`))
		})

		_, err := NewClient(server.URL).ChunkText(t.Context(), Request{Text: "x"})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
		assert.Equal(t, "boom", svcErr.Message)
	})

	t.Run("Should fall back to status text without a server message", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"No text provided"}`))
		})

		_, err := NewClient(server.URL).ChunkText(t.Context(), Request{Text: "x"})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Bad Request", svcErr.Message)
	})

	t.Run("Should use the reason phrase for non-standard status codes", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(599)
			_, _ = w.Write([]byte(`{"error":"upstream gave up"}`))
		})

		_, err := NewClient(server.URL).ChunkText(t.Context(), Request{Text: "x"})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 599, svcErr.StatusCode)
		assert.Equal(t, "status code 599", svcErr.Message)
	})

	t.Run("Should report timeouts", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"chunks":[]}`))
		})
		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		_, err := NewClient(server.URL).ChunkText(ctx, Request{Text: "x"})

		var timeoutErr *TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
	})

	t.Run("Should report transport failures", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewClient(url).ChunkText(t.Context(), Request{Text: "x"})

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
	})
}

func TestClient_Health(t *testing.T) {
	t.Run("Should accept any 2xx", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, healthPath, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		assert.NoError(t, NewClient(server.URL).Health(t.Context()))
	})

	t.Run("Should fail on non-2xx", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		var svcErr *ServiceError
		require.ErrorAs(t, NewClient(server.URL).Health(t.Context()), &svcErr)
		assert.Equal(t, "Service Unavailable", svcErr.Message)
	})
}

func TestReasonPhrase(t *testing.T) {
	t.Run("Should strip the code from the status line", func(t *testing.T) {
		resp := &resty.Response{RawResponse: &http.Response{StatusCode: 502, Status: "502 Upstream Down"}}

		assert.Equal(t, "Upstream Down", reasonPhrase(resp))
	})

	t.Run("Should fall back to the standard text for a bare status line", func(t *testing.T) {
		resp := &resty.Response{RawResponse: &http.Response{StatusCode: http.StatusTeapot, Status: "418"}}

		assert.Equal(t, "I'm a teapot", reasonPhrase(resp))
	})
}
