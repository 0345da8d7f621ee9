package station

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"griddle/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startStation boots a station server on an OS-assigned port and tears
// it down with the test.
func startStation(t *testing.T, st api.Station) *Server {
	t.Helper()

	srv := NewServer(st, 0, WithoutDelays())
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		_ = srv.Stop(context.Background())
	})
	return srv
}

func TestServerIdentityProbe(t *testing.T) {
	srv := startStation(t, api.StationGrill)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/", srv.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Grill Station")
}

func TestClientCallTool(t *testing.T) {
	srv := startStation(t, api.StationFryer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := NewClient(api.StationFryer, srv.Endpoint())
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"fry_standard", "fry_waffle", "fry_sweet_potato"}, names)

	result, err := c.CallTool(ctx, "fry_waffle", map[string]interface{}{
		"portion":  "large",
		"duration": 4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	assert.NoError(t, c.Ping(ctx))
}

func TestClientCallToolBeforeConnect(t *testing.T) {
	c := NewClient(api.StationGrill, "http://localhost:1/mcp")

	_, err := c.CallTool(context.Background(), "cook_patty", nil)
	stationErr := api.AsStationError(err)
	require.NotNil(t, stationErr)
	assert.Equal(t, api.StationErrorUnavailable, stationErr.Kind)
	assert.Equal(t, api.StationGrill, stationErr.Station)
}

func TestClientSetRoutesByStation(t *testing.T) {
	grill := startStation(t, api.StationGrill)
	plating := startStation(t, api.StationPlating)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cs := NewClientSet(map[api.Station]string{
		api.StationGrill:   grill.Endpoint(),
		api.StationPlating: plating.Endpoint(),
	})
	require.NoError(t, cs.Connect(ctx))
	defer cs.Close()

	result, err := cs.CallTool(ctx, api.StationGrill, "cook_patty", map[string]interface{}{
		"patty_type": "beef",
		"doneness":   "medium",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	for st, pingErr := range cs.Ping(ctx) {
		assert.NoError(t, pingErr, "station %s", st)
	}
}

func TestClientSetUnknownStation(t *testing.T) {
	cs := NewClientSet(map[api.Station]string{})

	_, err := cs.CallTool(context.Background(), api.StationDessert, "make_shake", nil)
	stationErr := api.AsStationError(err)
	require.NotNil(t, stationErr)
	assert.Equal(t, api.StationErrorUnavailable, stationErr.Kind)
	assert.Equal(t, api.StationDessert, stationErr.Station)
}

func TestServerDoubleStartRejected(t *testing.T) {
	srv := startStation(t, api.StationDessert)
	assert.Error(t, srv.Start(context.Background()))
}
