package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diekoffieblik/brewcast/internal/models"
)

func TestFetch_OpenMeteoFormat(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("Expected path /forecast, got %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("current_weather") != "true" {
			t.Errorf("Expected current_weather=true, got %s", query.Get("current_weather"))
		}
		if query.Get("latitude") != "-25.75" || query.Get("longitude") != "28.23" {
			t.Errorf("Unexpected coordinates: %s, %s", query.Get("latitude"), query.Get("longitude"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": -25.75,
			"longitude": 28.25,
			"current_weather": {
				"temperature": 27.4,
				"windspeed": 11.2,
				"winddirection": 40,
				"weathercode": 1,
				"time": "2025-09-18T08:30"
			}
		}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{MaxRetries: 1})
	obs, err := client.Fetch(context.Background(), -25.75, 28.23)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if obs.Temperature == nil || *obs.Temperature != 27.4 {
		t.Errorf("Unexpected temperature: %v", obs.Temperature)
	}
	if obs.WindSpeed == nil || *obs.WindSpeed != 11.2 {
		t.Errorf("Unexpected windspeed: %v", obs.WindSpeed)
	}
	if obs.ConditionCode == nil || *obs.ConditionCode != 1 {
		t.Errorf("Unexpected weathercode: %v", obs.ConditionCode)
	}
	expectedTime := time.Date(2025, 9, 18, 8, 30, 0, 0, time.UTC)
	if obs.ObservedAt == nil || !obs.ObservedAt.Equal(expectedTime) {
		t.Errorf("Unexpected time: %v", obs.ObservedAt)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"current_weather": {"temperature": 8.0, "weathercode": 61}}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{MaxRetries: 2, RetryDelayBase: time.Millisecond})
	obs, err := client.Fetch(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
	if obs.Temperature == nil || *obs.Temperature != 8.0 {
		t.Errorf("Unexpected temperature: %v", obs.Temperature)
	}
}

func TestFetch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"client error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}},
		{"persistent server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current_weather": `))
		}},
		{"missing current weather", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"latitude": 1.0}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(tt.handler)
			defer mockServer.Close()

			client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{MaxRetries: 2, RetryDelayBase: time.Millisecond})
			obs, err := client.Fetch(context.Background(), 0, 0)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, models.ErrWeatherUnavailable) {
				t.Errorf("expected ErrWeatherUnavailable, got %v", err)
			}
			if !obs.IsEmpty() {
				t.Errorf("expected empty observation, got %+v", obs)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 50*time.Millisecond, ClientConfig{MaxRetries: 1})
	start := time.Now()
	obs := client.Observe(context.Background(), 0, 0)
	if !obs.IsEmpty() {
		t.Errorf("expected empty observation on timeout, got %+v", obs)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Observe did not honor timeout, took %v", time.Since(start))
	}
}
