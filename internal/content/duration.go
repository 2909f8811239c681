// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/epfl-cede/pyedx/internal/logging"
	"github.com/epfl-cede/pyedx/internal/metrics"
)

// ErrVideoNotFound marks a YouTube id the remote API no longer serves.
var ErrVideoNotFound = errors.New("video not found on remote server")

// ErrLookupBlocked means the remote side is rate limiting and retries
// were either disabled or exhausted.
var ErrLookupBlocked = errors.New("duration lookup blocked by remote quota")

const defaultEndpoint = "https://gdata.youtube.com/feeds/api/videos/%s?v=2"

// notFoundMarker is cached in place of a duration so a dead id is only
// queried once per run.
const notFoundMarker = "\x00notfound"

// YouTubeClient resolves video durations over HTTP. Results are memoized
// for the client's lifetime; durations of published videos do not change.
type YouTubeClient struct {
	http     *http.Client
	endpoint string
	cache    *gocache.Cache

	// KeepAlive retries quota rejections with exponential backoff up to
	// a hard ceiling instead of failing the run.
	KeepAlive bool
}

// NewYouTubeClient builds a client against the default metadata API.
// An empty endpoint keeps the default; tests point it at a local server.
func NewYouTubeClient(endpoint string) *YouTubeClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &YouTubeClient{
		http:     &http.Client{Timeout: 30 * time.Second},
		endpoint: endpoint,
		cache:    gocache.New(gocache.NoExpiration, 0),
	}
}

// Duration implements DurationFunc.
func (c *YouTubeClient) Duration(ctx context.Context, youtubeID string) (string, error) {
	if cached, ok := c.cache.Get(youtubeID); ok {
		metrics.DurationLookups.WithLabelValues("cached").Inc()
		if cached == notFoundMarker {
			return "", ErrVideoNotFound
		}
		return cached.(string), nil
	}

	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(2*time.Second),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(256*time.Second),
		backoff.WithMaxElapsedTime(10*time.Minute),
	)

	var result string
	err := backoff.Retry(func() error {
		s, err := c.fetch(ctx, youtubeID)
		switch {
		case err == nil:
			result = s
			return nil
		case errors.Is(err, ErrVideoNotFound):
			return backoff.Permanent(err)
		case errors.Is(err, ErrLookupBlocked) && c.KeepAlive:
			logging.Warn().Str("youtube_id", youtubeID).Msg("Remote quota hit; backing off before retry")
			return err
		default:
			return backoff.Permanent(err)
		}
	}, backoff.WithContext(policy, ctx))

	if errors.Is(err, ErrVideoNotFound) {
		metrics.DurationLookups.WithLabelValues("miss").Inc()
		c.cache.Set(youtubeID, notFoundMarker, gocache.NoExpiration)
		return "", ErrVideoNotFound
	}
	if err != nil {
		return "", err
	}
	metrics.DurationLookups.WithLabelValues("hit").Inc()
	c.cache.Set(youtubeID, result, gocache.NoExpiration)
	return result, nil
}

// fetch performs one HTTP round trip and classifies the outcome.
func (c *YouTubeClient) fetch(ctx context.Context, youtubeID string) (string, error) {
	url := fmt.Sprintf(c.endpoint, youtubeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		switch {
		case strings.Contains(string(body), "ResourceNotFoundException") || resp.StatusCode == http.StatusNotFound:
			return "", ErrVideoNotFound
		case strings.Contains(string(body), "quota") || resp.StatusCode == http.StatusTooManyRequests:
			return "", ErrLookupBlocked
		default:
			return "", fmt.Errorf("duration lookup returned status %d", resp.StatusCode)
		}
	}

	seconds, err := parseDurationSeconds(string(body))
	if err != nil {
		return "", err
	}
	return formatDuration(seconds), nil
}

// parseDurationSeconds extracts the seconds attribute of the response's
// duration element.
func parseDurationSeconds(body string) (int, error) {
	root, err := parseFragment(body)
	if err != nil {
		return 0, fmt.Errorf("parse duration response: %w", err)
	}
	for _, node := range root.findAll("duration") {
		if s, ok := node.stringAttr("seconds"); ok {
			seconds, err := strconv.Atoi(s)
			if err != nil {
				return 0, fmt.Errorf("bad duration seconds %q", s)
			}
			return seconds, nil
		}
	}
	return 0, errors.New("no duration element in response")
}

// formatDuration renders seconds as "H:MM:SS" with unpadded hours.
func formatDuration(seconds int) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
