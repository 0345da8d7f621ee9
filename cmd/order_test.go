package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"griddle/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCommandBlocking(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/order", r.URL.Path)
		var req struct {
			Order string `json:"order"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bacon cheeseburger", req.Order)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "🛎️ Order up!"})
	}))
	defer ts.Close()

	orderAddress = ts.URL
	orderStream = false
	orderQuiet = true
	defer func() { orderQuiet = false }()

	out := &bytes.Buffer{}
	cmd := orderCmd
	cmd.SetOut(out)
	require.NoError(t, runOrder(cmd, []string{"bacon", "cheeseburger"}))
	assert.Equal(t, "🛎️ Order up!\n", out.String())
}

func TestOrderCommandStreamed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/order/stream", r.URL.Path)
		w.Header().Set("X-Order-Id", "order-7")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("👨‍🍳 Order order-7 received!\n"))
		_, _ = w.Write([]byte("burger done"))
		_, _ = w.Write([]byte("\n" + api.StreamSentinel + "\n"))
	}))
	defer ts.Close()

	orderAddress = ts.URL
	orderStream = true
	orderQuiet = true
	defer func() {
		orderStream = false
		orderQuiet = false
	}()

	out := &bytes.Buffer{}
	cmd := orderCmd
	cmd.SetOut(out)
	require.NoError(t, runOrder(cmd, []string{"burger"}))

	rendered := out.String()
	assert.Contains(t, rendered, "Order order-7 received!")
	assert.Contains(t, rendered, "burger done")
	assert.NotContains(t, rendered, api.StreamSentinel)
}

func TestOrderCommandRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "order text is required"})
	}))
	defer ts.Close()

	orderAddress = ts.URL
	orderStream = false
	orderQuiet = true
	defer func() { orderQuiet = false }()

	cmd := orderCmd
	cmd.SetOut(&bytes.Buffer{})
	err := runOrder(cmd, []string{"   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}
