// Package weather fetches current conditions and air quality from
// OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/thesiakim/Ollana/pkg/score"
)

// Client calls the provider's current-weather and air-pollution
// endpoints. Calls are blocking and single-attempt; the only guard is the
// HTTP client timeout and an outbound rate limiter.
type Client struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	lat, lon float64
	limiter  *rate.Limiter
}

// New creates a provider client for a fixed coordinate pair.
func New(baseURL, apiKey string, lat, lon, rps float64, burst int) *Client {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type currentWeather struct {
	Main struct {
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
}

type airPollution struct {
	List []struct {
		Components struct {
			PM10 float64 `json:"pm10"`
			PM25 float64 `json:"pm2_5"`
		} `json:"components"`
	} `json:"list"`
}

// Current fetches both endpoints and maps them to a WeatherReading.
func (c *Client) Current(ctx context.Context) (score.WeatherReading, error) {
	var reading score.WeatherReading

	var weather currentWeather
	if err := c.get(ctx, "/data/2.5/weather", url.Values{"units": {"metric"}}, &weather); err != nil {
		return reading, fmt.Errorf("fetch current weather: %w", err)
	}

	var dust airPollution
	if err := c.get(ctx, "/data/2.5/air_pollution", nil, &dust); err != nil {
		return reading, fmt.Errorf("fetch air pollution: %w", err)
	}
	if len(dust.List) == 0 {
		return reading, fmt.Errorf("air pollution response has no entries")
	}

	reading = score.WeatherReading{
		FeelsLike:  weather.Main.FeelsLike,
		WindSpeed:  weather.Wind.Speed,
		Humidity:   weather.Main.Humidity,
		CloudCover: weather.Clouds.All,
		PM10:       dust.List[0].Components.PM10,
		PM25:       dust.List[0].Components.PM25,
	}
	return reading, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("lat", fmt.Sprintf("%g", c.lat))
	q.Set("lon", fmt.Sprintf("%g", c.lon))
	q.Set("appid", c.apiKey)

	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request %s: %w", path, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
