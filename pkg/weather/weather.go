// Package weather fetches current cloud cover from Open-Meteo so the
// simulated power source can track real sky conditions.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/common"
	"github.com/sunwarden/sunwarden/pkg/log"
)

const defaultBaseURL = "https://api.open-meteo.com"

// cacheTTL bounds how often we hit the API; cloud cover doesn't move faster
// than this anyway.
const cacheTTL = 15 * time.Minute

// Service provides the current cloud cover for a fixed location.
// A Service with no coordinates configured is disabled and always reports
// no data.
type Service struct {
	client    *http.Client
	baseURL   string
	latitude  float64
	longitude float64

	mu         sync.Mutex
	cloudCover float64
	fetchedAt  time.Time
}

// Configured sets up the weather service from flags. Leaving the coordinates
// unset disables weather lookups entirely.
func Configured() *Service {
	latitude := lflag.String("weather-latitude", "", "Latitude for weather lookups (empty disables weather)")
	longitude := lflag.String("weather-longitude", "", "Longitude for weather lookups")

	s := &Service{
		client:  common.HTTPClient(10 * time.Second),
		baseURL: defaultBaseURL,
	}

	lflag.Do(func() {
		if *latitude == "" {
			return
		}
		lat, err := strconv.ParseFloat(*latitude, 64)
		if err != nil {
			panic(fmt.Sprintf("invalid weather-latitude: %v", err))
		}
		lon, err := strconv.ParseFloat(*longitude, 64)
		if err != nil {
			panic(fmt.Sprintf("invalid weather-longitude: %v", err))
		}
		s.latitude = lat
		s.longitude = lon
	})

	return s
}

// NewService returns a service for the given coordinates. This is primarily
// used for testing.
func NewService(baseURL string, latitude, longitude float64) *Service {
	return &Service{
		client:    common.HTTPClient(10 * time.Second),
		baseURL:   baseURL,
		latitude:  latitude,
		longitude: longitude,
	}
}

func (s *Service) enabled() bool {
	return s.latitude != 0 || s.longitude != 0
}

type forecastReply struct {
	Current struct {
		CloudCover float64 `json:"cloud_cover"`
	} `json:"current"`
}

// CloudCover returns the current cloud cover percentage (0-100) and whether a
// value is available. Failures are logged and reported as unavailable so the
// caller can fall back to clear-sky behavior.
func (s *Service) CloudCover(ctx context.Context) (float64, bool) {
	if !s.enabled() {
		return 0, false
	}

	s.mu.Lock()
	if !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < cacheTTL {
		cc := s.cloudCover
		s.mu.Unlock()
		return cc, true
	}
	s.mu.Unlock()

	cc, err := s.fetch(ctx)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to fetch cloud cover", slog.Any("error", err))
		// serve a stale value over nothing
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.fetchedAt.IsZero() {
			return s.cloudCover, true
		}
		return 0, false
	}

	s.mu.Lock()
	s.cloudCover = cc
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return cc, true
}

func (s *Service) fetch(ctx context.Context) (float64, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(s.latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(s.longitude, 'f', 4, 64))
	q.Set("current", "cloud_cover")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("forecast request returned status %d", resp.StatusCode)
	}

	var reply forecastReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return 0, fmt.Errorf("failed to decode forecast reply: %w", err)
	}
	return reply.Current.CloudCover, nil
}
