package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artpar/querybench/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client without timeout", func(t *testing.T) {
		client := NewClient()
		assert.NotNil(t, client)
		assert.Zero(t, client.Config().Timeout)
		assert.True(t, client.Config().FollowRedirect)
	})

	t.Run("creates client with custom timeout", func(t *testing.T) {
		client := NewClient(WithTimeout(5 * time.Second))
		assert.Equal(t, 5*time.Second, client.Config().Timeout)
	})

	t.Run("creates client with custom transport", func(t *testing.T) {
		client := NewClient(WithTransport(&http.Transport{MaxIdleConns: 10}))
		assert.NotNil(t, client)
	})
}

func TestClient_Send_GET(t *testing.T) {
	t.Run("sends GET request without body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Empty(t, body)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Brown eggs"}})
		}))
		defer server.Close()

		client := NewClient()
		req, _ := core.NewRequest(core.MethodGET, server.URL+"/")

		resp, err := client.Send(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status().Code())
		assert.Equal(t, "application/json", resp.Headers().Get("Content-Type"))
		assert.Positive(t, resp.Timing().Total)
	})
}

func TestClient_Send_JSONBody(t *testing.T) {
	for _, method := range []core.Method{core.MethodPOST, core.MethodPUT} {
		t.Run("sends "+method.String()+" with JSON body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, method.String(), r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var data map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
				assert.Equal(t, "jgnault@uqac.ca", data["email"])
				w.WriteHeader(http.StatusCreated)
			}))
			defer server.Close()

			client := NewClient()
			req, _ := core.NewRequest(method, server.URL+"/order")
			body, err := core.NewJSONBody(map[string]any{"email": "jgnault@uqac.ca"})
			require.NoError(t, err)
			req.SetBody(body)
			req.SetHeader("Content-Type", "application/json")

			resp, err := client.Send(context.Background(), req)

			require.NoError(t, err)
			assert.Equal(t, 201, resp.Status().Code())
		})
	}
}

func TestClient_Send_ErrorResponses(t *testing.T) {
	for _, code := range []int{400, 404, 422, 500} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte(`{"errors":{}}`))
		}))

		client := NewClient()
		req, _ := core.NewRequest(core.MethodGET, server.URL)
		resp, err := client.Send(context.Background(), req)

		require.NoError(t, err, "status %d is not a transport error", code)
		assert.Equal(t, code, resp.Status().Code())
		assert.Equal(t, `{"errors":{}}`, resp.Body().String())
		server.Close()
	}
}

func TestClient_Send_NetworkErrors(t *testing.T) {
	t.Run("returns error for malformed URL", func(t *testing.T) {
		client := NewClient()
		req, _ := core.NewRequest(core.MethodGET, "http://[::1]:namedport/order/")
		_, err := client.Send(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("returns error for connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := NewClient()
		req, _ := core.NewRequest(core.MethodGET, url)
		_, err := client.Send(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestClient_Send_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient()
	req, _ := core.NewRequest(core.MethodGET, server.URL)
	_, err := client.Send(ctx, req)
	assert.Error(t, err)
}

func TestClient_Send_Timing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	req, _ := core.NewRequest(core.MethodGET, server.URL)
	resp, err := client.Send(context.Background(), req)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.Timing().Total, 10*time.Millisecond)
	assert.False(t, resp.Timing().EndTime.Before(resp.Timing().StartTime))
}

func TestClient_Send_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient()
	req, _ := core.NewRequest(core.MethodPUT, server.URL)
	resp, err := client.Send(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status().Code())
	assert.True(t, resp.Body().IsEmpty())
}

func TestClient_Send_Redirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/order/1", http.StatusFound)
	})
	mux.HandleFunc("/order/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order":{"id":1}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("follows redirects by default", func(t *testing.T) {
		client := NewClient()
		req, _ := core.NewRequest(core.MethodPOST, server.URL+"/order")
		resp, err := client.Send(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status().Code())
		assert.Equal(t, `{"order":{"id":1}}`, resp.Body().String())
	})

	t.Run("respects no redirect option", func(t *testing.T) {
		client := NewClient(WithNoRedirects())
		req, _ := core.NewRequest(core.MethodPOST, server.URL+"/order")
		resp, err := client.Send(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 302, resp.Status().Code())
	})
}
