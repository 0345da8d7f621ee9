package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"griddle/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockKitchen is a canned api.KitchenHandler for handler tests.
type mockKitchen struct {
	submitted []string
	response  string
	progress  map[string][]string
	history   []api.Order
	cancelErr error
	cancelled []string
}

func (m *mockKitchen) Submit(ctx context.Context, text string) (string, error) {
	m.submitted = append(m.submitted, text)
	return m.response, nil
}

func (m *mockKitchen) SubmitStreamed(ctx context.Context, text string) (string, <-chan string) {
	m.submitted = append(m.submitted, text)
	ch := make(chan string, 8)
	go func() {
		defer close(ch)
		ch <- "order stream-1 received"
		for i, word := range strings.Fields(m.response) {
			if i > 0 {
				ch <- " " + word
			} else {
				ch <- word
			}
		}
		ch <- api.StreamSentinel
	}()
	return "stream-1", ch
}

func (m *mockKitchen) GetProgress(orderID string) []string {
	return m.progress[orderID]
}

func (m *mockKitchen) History() []api.Order {
	return m.history
}

func (m *mockKitchen) Get(orderID string) (api.Order, error) {
	return api.Order{}, &api.UnknownOrderError{OrderID: orderID}
}

func (m *mockKitchen) Cancel(orderID string) error {
	m.cancelled = append(m.cancelled, orderID)
	return m.cancelErr
}

// mockBus hands every subscriber the same channel.
type mockBus struct {
	ch chan api.OrderEvent
}

func (m *mockBus) Subscribe(buffer int) (<-chan api.OrderEvent, func()) {
	return m.ch, func() {}
}

func newTestServer(t *testing.T, kitchen *mockKitchen) *httptest.Server {
	t.Helper()
	api.RegisterKitchen(kitchen)
	t.Cleanup(func() { api.RegisterKitchen(nil) })

	ts := httptest.NewServer(NewServer(0, 0).routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestSubmitOrder(t *testing.T) {
	kitchen := &mockKitchen{response: "🛎️ Order up! burger done"}
	ts := newTestServer(t, kitchen)

	body := bytes.NewBufferString(`{"order": "bacon cheeseburger"}`)
	resp, err := http.Post(ts.URL+"/api/order", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, kitchen.response, decoded["response"])
	assert.Equal(t, []string{"bacon cheeseburger"}, kitchen.submitted)
}

func TestSubmitOrderRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, &mockKitchen{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"order": `},
		{"missing order text", `{}`},
		{"blank order text", `{"order": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/order", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSubmitOrderStreamed(t *testing.T) {
	kitchen := &mockKitchen{response: "burger done fries done"}
	ts := newTestServer(t, kitchen)

	resp, err := http.Post(ts.URL+"/api/order/stream", "application/json",
		strings.NewReader(`{"order": "burger and fries"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "stream-1", resp.Header.Get("X-Order-Id"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "order stream-1 received\n")
	assert.Contains(t, body, "burger done fries done")
	assert.True(t, strings.HasSuffix(body, api.StreamSentinel+"\n"))
}

func TestOrderStream(t *testing.T) {
	kitchen := &mockKitchen{
		progress: map[string][]string{
			"order-1": {"🥩 patty done", "🍔 burger assembled"},
		},
	}
	ts := newTestServer(t, kitchen)

	t.Run("known order", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/order-stream/order-1")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var progress []string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&progress))
		assert.Equal(t, kitchen.progress["order-1"], progress)
	})

	t.Run("unknown order yields empty array", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/order-stream/nope")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var progress []string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&progress))
		assert.NotNil(t, progress)
		assert.Empty(t, progress)
	})
}

func TestOrderHistory(t *testing.T) {
	kitchen := &mockKitchen{
		history: []api.Order{
			{ID: "newer", Status: api.OrderStatusInProgress},
			{ID: "older", Status: api.OrderStatusCompleted},
		},
	}
	ts := newTestServer(t, kitchen)

	resp, err := http.Get(ts.URL + "/api/order-history")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []api.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, "newer", history[0].ID)
}

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		name       string
		cancelErr  error
		wantStatus int
	}{
		{"accepted", nil, http.StatusAccepted},
		{"unknown order", &api.UnknownOrderError{OrderID: "x"}, http.StatusNotFound},
		{"already terminal", &api.InvalidStateTransitionError{OrderID: "x", From: api.OrderStatusCompleted, To: api.OrderStatusFailed}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kitchen := &mockKitchen{cancelErr: tt.cancelErr}
			ts := newTestServer(t, kitchen)

			resp, err := http.Post(ts.URL+"/api/order/order-9/cancel", "application/json", nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, []string{"order-9"}, kitchen.cancelled)
		})
	}
}

func TestEventsStream(t *testing.T) {
	bus := &mockBus{ch: make(chan api.OrderEvent, 1)}
	api.RegisterEventBus(bus)
	t.Cleanup(func() { api.RegisterEventBus(nil) })

	ts := newTestServer(t, &mockKitchen{})

	bus.ch <- api.OrderEvent{
		Kind:  api.EventOrderCompleted,
		Order: api.Order{ID: "order-5", Status: api.OrderStatusCompleted},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}
	assert.Equal(t, fmt.Sprintf("event: %s", api.EventOrderCompleted), eventLine)

	var event api.OrderEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &event))
	assert.Equal(t, "order-5", event.Order.ID)
}

func TestHandlersWithoutKitchenRegistered(t *testing.T) {
	api.RegisterKitchen(nil)
	ts := httptest.NewServer(NewServer(0, 0).routes())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/api/order", "application/json", strings.NewReader(`{"order":"burger"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
