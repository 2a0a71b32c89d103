package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diekoffieblik/brewcast/internal/models"
	"github.com/diekoffieblik/brewcast/internal/recommender"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeWeather struct {
	temp float64
}

func (f fakeWeather) Observe(ctx context.Context, lat, lon float64) models.WeatherObservation {
	t := f.temp
	return models.WeatherObservation{Temperature: &t}
}

type fakeOrders struct {
	byUser map[string][]models.OrderLine
	err    error
	users  []string
}

func (f *fakeOrders) LoadOrders(ctx context.Context, userID string) ([]models.OrderLine, error) {
	f.users = append(f.users, userID)
	if f.err != nil {
		return nil, f.err
	}
	lines, ok := f.byUser[userID]
	if !ok {
		return []models.OrderLine{}, nil
	}
	return lines, nil
}

type envelope struct {
	Success         bool   `json:"success"`
	RequestID       string `json:"request_id"`
	Error           string `json:"error"`
	Recommendations struct {
		Suggestions []string           `json:"suggestions"`
		Scores      map[string]float64 `json:"scores"`
		Confidence  string             `json:"confidence"`
		Reasoning   string             `json:"reasoning"`
		Strategy    string             `json:"strategy"`
		TimePeriod  string             `json:"time_period"`
		Weekday     string             `json:"weekday"`
	} `json:"recommendations"`
}

const afternoonPayload = `{"data": [
  {"id": 1, "user_id": "user-123", "created_at": "2024-01-15T14:00:00",
   "order_products": [{"product_id": "latte", "quantity": 2}]},
  {"id": 2, "user_id": "user-123", "created_at": "2024-01-16T09:00:00",
   "order_products": [{"product_id": "espresso"}]}
]}`

func newTestRouter(orders *fakeOrders) *gin.Engine {
	engine := recommender.NewEngine(recommender.EngineConfig{}, fakeWeather{temp: 30}, orders)
	return NewRouter(NewHandler(engine))
}

func do(t *testing.T, router http.Handler, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeOrders{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestPostRecommendationsInlineHistory(t *testing.T) {
	orders := &fakeOrders{}
	router := newTestRouter(orders)

	code, env := do(t, router, http.MethodPost,
		"/api/recommendations?lat=-25.75&lon=28.23&user_id=user-123&at=2024-01-22T15:00:00", afternoonPayload)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", code, env.Error)
	}
	if !env.Success || env.RequestID == "" {
		t.Errorf("expected success envelope with request id, got %+v", env)
	}
	if len(orders.users) != 0 {
		t.Errorf("inline history must not hit the store, loaded %v", orders.users)
	}

	rec := env.Recommendations
	if len(rec.Suggestions) == 0 || rec.Suggestions[0] != "latte" {
		t.Errorf("expected latte first, got %v", rec.Suggestions)
	}
	if rec.TimePeriod != "afternoon" || rec.Weekday != "Monday" {
		t.Errorf("unexpected target metadata %q/%q", rec.Weekday, rec.TimePeriod)
	}
	if rec.Strategy != "weighted" {
		t.Errorf("expected weighted strategy, got %q", rec.Strategy)
	}
	for p, s := range rec.Scores {
		if s < 0 || s > 1 {
			t.Errorf("score for %s out of range: %v", p, s)
		}
	}
}

func TestPostRecommendationsNoHistory(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	code, env := do(t, router, http.MethodPost, "/api/recommendations?lat=1&lon=2", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", code, env.Error)
	}
	want := []string{"iced_latte", "frappuccino", "iced_tea"}
	if !reflect.DeepEqual(env.Recommendations.Suggestions, want) {
		t.Errorf("expected %v, got %v", want, env.Recommendations.Suggestions)
	}
	if env.Recommendations.Confidence != string(models.ConfidenceLow) {
		t.Errorf("expected low confidence, got %q", env.Recommendations.Confidence)
	}
}

func TestGetUserRecommendationsUsesStore(t *testing.T) {
	at := mustTime(t, "2024-01-22T15:00:00")
	orders := &fakeOrders{byUser: map[string][]models.OrderLine{
		"user-9": {
			{ProductID: "mocha", Quantity: 3, OccurredAt: at, UserID: "user-9"},
		},
	}}
	router := newTestRouter(orders)

	code, env := do(t, router, http.MethodGet, "/api/recommendations/user-9?max=1&strategy=cascade&at=2024-01-22T16:00:00", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", code, env.Error)
	}
	if !reflect.DeepEqual(orders.users, []string{"user-9"}) {
		t.Errorf("expected one store lookup for user-9, got %v", orders.users)
	}
	if !reflect.DeepEqual(env.Recommendations.Suggestions, []string{"mocha"}) {
		t.Errorf("expected [mocha], got %v", env.Recommendations.Suggestions)
	}
	if env.Recommendations.Strategy != "cascade" {
		t.Errorf("expected cascade strategy, got %q", env.Recommendations.Strategy)
	}
}

func TestBadRequests(t *testing.T) {
	router := newTestRouter(&fakeOrders{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"lat without lon", http.MethodPost, "/api/recommendations?lat=1", ""},
		{"non-numeric lat", http.MethodPost, "/api/recommendations?lat=abc&lon=2", ""},
		{"lat out of range", http.MethodPost, "/api/recommendations?lat=91&lon=2", ""},
		{"zero max", http.MethodPost, "/api/recommendations?max=0", ""},
		{"bad at", http.MethodPost, "/api/recommendations?at=yesterday", ""},
		{"unknown strategy", http.MethodGet, "/api/recommendations/u1?strategy=random", ""},
		{"invalid JSON", http.MethodPost, "/api/recommendations", "{not json"},
		{"missing product", http.MethodPost, "/api/recommendations",
			`{"data":[{"user_id":"u","created_at":"2024-01-15T14:00:00","order_products":[{"quantity":1}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, router, tt.method, tt.target, tt.body)
			if code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
			if env.Error == "" {
				t.Error("expected error message")
			}
			if env.Success {
				t.Error("expected no success flag")
			}
		})
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	router := newTestRouter(&fakeOrders{err: errors.New("database is locked")})

	code, env := do(t, router, http.MethodGet, "/api/recommendations/u1", "")
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if strings.Contains(env.Error, "locked") {
		t.Errorf("internal error details leaked: %q", env.Error)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(&fakeOrders{})
	code, env := do(t, router, http.MethodGet, "/api/nope", "")
	if code != http.StatusNotFound || env.Error == "" {
		t.Errorf("expected 404 with error, got %d %+v", code, env)
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := models.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", s, err)
	}
	return at
}
