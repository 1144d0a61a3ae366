package valhalla_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/adapters/valhalla"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

func testClock() *shared.MockClock {
	return shared.NewMockClock(time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC))
}

func fastConfig(baseURL string) valhalla.Config {
	return valhalla.Config{
		BaseURL:     baseURL,
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
	}
}

func TestClient_Route_ParsesEngineResponse(t *testing.T) {
	// Arrange
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/route", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"trip": {
				"legs": [
					{"summary": {"length": 42.5, "time": 3600}, "shape": "gfo}EtohhU"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := valhalla.NewClient(fastConfig(server.URL), testClock())
	from := shared.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	to := shared.GeoPoint{Lat: 45.7640, Lng: 4.8357}
	departAt := time.Date(2025, 3, 14, 6, 30, 0, 0, time.UTC)

	// Act
	result, err := client.Route(context.Background(), from, to, &departAt)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42.5, result.DistanceKm)
	assert.Equal(t, 60.0, result.DurationMin)
	assert.Equal(t, "gfo}EtohhU", result.Polyline)
	assert.True(t, result.OK)
	assert.False(t, result.FallbackUsed)

	assert.Equal(t, "truck", gotBody["costing"])
	opts := gotBody["directions_options"].(map[string]interface{})
	assert.Equal(t, "kilometers", opts["units"])
	dateTime := gotBody["date_time"].(map[string]interface{})
	assert.Equal(t, "departure", dateTime["type"])
	assert.Equal(t, "2025-03-14T06:30:00Z", dateTime["value"])
}

func TestClient_Route_FallsBackToHaversineWhenEngineFails(t *testing.T) {
	// Arrange
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := valhalla.NewClient(fastConfig(server.URL), testClock())
	from := shared.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	to := shared.GeoPoint{Lat: 45.7640, Lng: 4.8357}

	// Act
	result, err := client.Route(context.Background(), from, to, nil)

	// Assert
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.True(t, result.FallbackUsed)
	assert.Empty(t, result.Polyline)

	wantKm := from.HaversineKm(to)
	assert.InDelta(t, wantKm, result.DistanceKm, 1e-9)
	assert.InDelta(t, wantKm/40.0*60.0, result.DurationMin, 1e-9)

	// Initial attempt plus three retries
	assert.Equal(t, int32(4), hits.Load())
}

func TestClient_Matrix_ConvertsKilometersToMeters(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sources_to_targets", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "truck", body["costing"])
		assert.Len(t, body["sources"], 2)
		assert.Len(t, body["targets"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sources_to_targets": [
				[{"time": 0, "distance": 0}, {"time": 600, "distance": 1.2}],
				[{"time": 90}, {"time": 0, "distance": 0}]
			]
		}`))
	}))
	defer server.Close()

	client := valhalla.NewClient(fastConfig(server.URL), testClock())
	points := []shared.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8606, Lng: 2.3376},
	}

	// Act
	result, err := client.Matrix(context.Background(), points)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, 600.0, result.DurationsS[0][1])
	assert.Equal(t, 1200.0, result.DistancesM[0][1])

	// Distance omitted by the engine: derived from 90 s at 40 km/h
	assert.InDelta(t, 1000.0, result.DistancesM[1][0], 1e-9)
	assert.Equal(t, 90.0, result.DurationsS[1][0])
}

func TestClient_Matrix_FallbackIsSymmetricAndDeterministic(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := valhalla.NewClient(fastConfig(server.URL), testClock())
	points := []shared.GeoPoint{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 45.7640, Lng: 4.8357},
	}

	// Act
	first, err := client.Matrix(context.Background(), points)
	require.NoError(t, err)
	second, err := client.Matrix(context.Background(), points)

	// Assert
	require.NoError(t, err)
	assert.False(t, first.OK)
	assert.True(t, first.FallbackUsed)

	wantKm := points[0].HaversineKm(points[1])
	assert.InDelta(t, wantKm*1000.0, first.DistancesM[0][1], 1e-6)
	assert.Equal(t, first.DistancesM[0][1], first.DistancesM[1][0])
	assert.InDelta(t, wantKm/40.0*3600.0, first.DurationsS[0][1], 1e-6)
	assert.Zero(t, first.DistancesM[0][0])
	assert.Zero(t, first.DurationsS[1][1])

	assert.Equal(t, first.DistancesM, second.DistancesM)
	assert.Equal(t, first.DurationsS, second.DurationsS)
}

func TestClient_Route_HonorsRetryAfterHeader(t *testing.T) {
	// Arrange
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"trip": {"legs": [{"summary": {"length": 10, "time": 900}, "shape": ""}]}}`))
	}))
	defer server.Close()

	clock := testClock()
	before := clock.Now()
	client := valhalla.NewClient(fastConfig(server.URL), clock)

	// Act
	result, err := client.Route(context.Background(), shared.GeoPoint{Lat: 1}, shared.GeoPoint{Lat: 2}, nil)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 10.0, result.DistanceKm)
	assert.Equal(t, int32(2), hits.Load())

	// The server-provided Retry-After is used verbatim, no jitter
	assert.Equal(t, 7*time.Second, clock.Now().Sub(before))
}

func TestClient_CircuitBreakerSkipsEngineWhileOpen(t *testing.T) {
	// Arrange
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := valhalla.NewClient(fastConfig(server.URL), testClock())
	from := shared.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	to := shared.GeoPoint{Lat: 45.7640, Lng: 4.8357}

	// Act - five failing calls trip the breaker
	for i := 0; i < 5; i++ {
		_, err := client.Route(context.Background(), from, to, nil)
		require.NoError(t, err)
	}
	tripped := hits.Load()

	result, err := client.Route(context.Background(), from, to, nil)

	// Assert - the sixth call never reached the engine
	require.NoError(t, err)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, tripped, hits.Load())
}
