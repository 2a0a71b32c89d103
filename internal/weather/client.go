package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/diekoffieblik/brewcast/internal/logger"
	"github.com/diekoffieblik/brewcast/internal/models"
)

// Client provides access to the Open-Meteo forecast API
type Client struct {
	apiBaseURL     string
	httpClient     *http.Client
	timeout        time.Duration
	maxRetries     int
	retryDelayBase time.Duration
}

// ClientConfig holds retry settings for the weather client
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// currentWeatherResponse is the subset of the forecast response we read
type currentWeatherResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *int     `json:"weathercode"`
		Time        string   `json:"time"`
	} `json:"current_weather"`
}

// NewClient creates a new weather client. timeout bounds a whole Fetch,
// retries included.
func NewClient(apiBaseURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = 500 * time.Millisecond
	}
	return &Client{
		apiBaseURL:     apiBaseURL,
		httpClient:     &http.Client{Timeout: timeout},
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// Fetch retrieves current conditions at the given coordinates. Every failure
// is wrapped in models.ErrWeatherUnavailable.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (models.WeatherObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	reqURL := fmt.Sprintf("%s/forecast?%s", c.apiBaseURL, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return models.WeatherObservation{}, fmt.Errorf("%w: %v", models.ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	var body currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.WeatherObservation{}, fmt.Errorf("%w: failed to decode response: %v", models.ErrWeatherUnavailable, err)
	}
	if body.CurrentWeather == nil {
		return models.WeatherObservation{}, fmt.Errorf("%w: response has no current_weather", models.ErrWeatherUnavailable)
	}

	cw := body.CurrentWeather
	obs := models.WeatherObservation{
		Temperature:   cw.Temperature,
		WindSpeed:     cw.WindSpeed,
		ConditionCode: cw.WeatherCode,
	}
	if cw.Time != "" {
		if t, err := parseObservedAt(cw.Time); err == nil {
			obs.ObservedAt = &t
		} else {
			logger.Debug("Ignoring unparseable weather time %q: %v", cw.Time, err)
		}
	}
	return obs, nil
}

// Observe is Fetch for callers that treat weather as optional: failures are
// logged and reported as an empty observation.
func (c *Client) Observe(ctx context.Context, lat, lon float64) models.WeatherObservation {
	obs, err := c.Fetch(ctx, lat, lon)
	if err != nil {
		logger.Warn("Weather lookup failed for (%.4f, %.4f): %v", lat, lon, err)
		return models.WeatherObservation{}
	}
	return obs
}

// parseObservedAt accepts Open-Meteo's minute-precision ISO time (GMT by default)
// as well as full RFC3339.
func parseObservedAt(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// doRequest performs HTTP request with retry logic
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("giving up after %d attempts: %w", i, errors.Join(lastErr, ctx.Err()))
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
