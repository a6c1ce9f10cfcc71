package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oddsline/settlement-api/internal/metrics"
	"github.com/oddsline/settlement-api/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the sports-data provider's v1 JSON API root.
	DefaultBaseURL = "https://www.thesportsdb.com/api/v1/json"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultCooldown is slept after a rate-limit response and before
	// continuing once the proactive throttle threshold is reached.
	DefaultCooldown = 60 * time.Second

	// DefaultMaxRetries bounds retries for one lookup.
	DefaultMaxRetries = 5

	// DefaultThrottleAfter is the request count within a run at which the
	// client preemptively cools down, independent of any 429.
	DefaultThrottleAfter = 100
)

// Config holds the configuration for the provider client.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	Cooldown      time.Duration
	MaxRetries    int
	ThrottleAfter int
}

// Client talks to the external sports-data provider. It is safe for use
// by concurrent settlement workers: the rolling request counter behind
// the proactive throttle is shared so the global rate ceiling holds.
type Client struct {
	baseURL       string
	apiKey        string
	cooldown      time.Duration
	maxRetries    int
	throttleAfter int
	httpClient    *http.Client

	mu           sync.Mutex
	requestCount int
}

// NewClient creates a provider client with default configuration.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a provider client, filling zero fields with
// defaults.
func NewClientWithConfig(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Cooldown == 0 {
		config.Cooldown = DefaultCooldown
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.ThrottleAfter == 0 {
		config.ThrottleAfter = DefaultThrottleAfter
	}

	return &Client{
		baseURL:       strings.TrimRight(config.BaseURL, "/"),
		apiKey:        config.APIKey,
		cooldown:      config.Cooldown,
		maxRetries:    config.MaxRetries,
		throttleAfter: config.ThrottleAfter,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ResetCounter clears the rolling request count. Called at the top of
// each settlement run.
func (c *Client) ResetCounter() {
	c.mu.Lock()
	c.requestCount = 0
	c.mu.Unlock()
}

// throttle counts one outgoing request and preemptively sleeps the
// cooldown once the threshold is reached. Holding the lock across the
// sleep is deliberate: it stalls every worker, which is exactly the
// global ceiling the provider enforces.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCount++
	if c.requestCount >= c.throttleAfter {
		log.Warn().
			Int("request_count", c.requestCount).
			Dur("cooldown", c.cooldown).
			Msg("provider request threshold reached, cooling down")
		if err := sleep(ctx, c.cooldown); err != nil {
			return err
		}
		c.requestCount = 0
	}
	return nil
}

// resetCounter is called after a retry cooldown: the provider's window
// has rolled over, so the local count starts fresh too.
func (c *Client) resetCounter() {
	c.mu.Lock()
	c.requestCount = 0
	c.mu.Unlock()
}

// get performs one GET against a v1 endpoint with bounded retries. Rate
// limit responses and transient failures both sleep the cooldown before
// retrying; the retry bound covers them jointly.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiKey, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.ProviderRetries.Inc()
			if err := sleep(ctx, c.cooldown); err != nil {
				return nil, err
			}
			c.resetCounter()
		}
		if err := c.throttle(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.doRequest(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Msg("provider request failed, will retry after cooldown")
	}

	return nil, fmt.Errorf("provider request failed after %d retries: %w", c.maxRetries, lastErr)
}

// doRequest executes a single HTTP round trip. The second return value
// reports whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, u string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	metrics.ProviderRequests.Inc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("provider rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("provider request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, false, nil
}

// lookupEvent fetches the detail record for one provider event.
func (c *Client) lookupEvent(ctx context.Context, providerEventID string) (*eventPayload, error) {
	body, err := c.get(ctx, "lookupevent.php", url.Values{"id": {providerEventID}})
	if err != nil {
		return nil, err
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	if len(envelope.Events) == 0 || envelope.Events[0] == nil {
		return nil, fmt.Errorf("no event found for provider id %s", providerEventID)
	}
	return envelope.Events[0], nil
}

// FetchFinal fetches and classifies the final state of one event. It
// never returns an error to its caller: every failure degrades to
// FetchUnavailable with the reason logged and recorded.
func (c *Client) FetchFinal(ctx context.Context, providerEventID string) types.FetchResult {
	logger := log.With().
		Str("component", "score_provider").
		Str("provider_event_id", providerEventID).
		Logger()

	event, err := c.lookupEvent(ctx, providerEventID)
	if err != nil {
		logger.Error().Err(err).Msg("event lookup failed")
		return types.FetchResult{
			Status: types.FetchUnavailable,
			Reason: fmt.Sprintf("event lookup failed: %v", err),
		}
	}

	result := classifyEvent(event)
	if result.Status != types.FetchFinal {
		logger.Info().Str("status", string(result.Status)).Str("reason", result.Reason).Msg("event not final")
	}
	return result
}

// FetchMatchData fetches the detail, statistics and timeline payloads for
// one event and maps them into the resolver's input shape. The three
// lookups are independent; any missing piece fails the whole fetch.
func (c *Client) FetchMatchData(ctx context.Context, providerEventID string) (*types.MatchData, error) {
	event, err := c.lookupEvent(ctx, providerEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event details: %w", err)
	}

	result := classifyEvent(event)
	if result.Status != types.FetchFinal {
		return nil, fmt.Errorf("event %s has no final score (%s)", providerEventID, result.Status)
	}

	stats, err := c.lookupEventStats(ctx, providerEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event statistics: %w", err)
	}

	timeline, err := c.lookupEventTimeline(ctx, providerEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event timeline: %w", err)
	}

	return &types.MatchData{
		Score:    *result.Score,
		Stats:    stats,
		Timeline: mapTimeline(timeline, deref(event.HomeTeam), deref(event.AwayTeam)),
	}, nil
}

// lookupEventStats fetches and maps per-team statistics. Older payload
// shapes carry the list under "statistics" instead of "eventstats"; both
// are accepted.
func (c *Client) lookupEventStats(ctx context.Context, providerEventID string) ([]types.StatLine, error) {
	body, err := c.get(ctx, "lookupeventstats.php", url.Values{"id": {providerEventID}})
	if err != nil {
		return nil, err
	}

	var envelope statsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode statistics payload: %w", err)
	}

	list := envelope.EventStats
	if len(list) == 0 {
		list = envelope.Statistics
	}
	if list == nil {
		return nil, fmt.Errorf("no statistics found for provider id %s", providerEventID)
	}

	stats := make([]types.StatLine, 0, len(list))
	for _, s := range list {
		stats = append(stats, types.StatLine{
			Name: deref(s.Stat),
			Home: deref(s.Home),
			Away: deref(s.Away),
		})
	}
	return stats, nil
}

// lookupEventTimeline fetches the raw play-by-play timeline.
func (c *Client) lookupEventTimeline(ctx context.Context, providerEventID string) ([]*timelinePayload, error) {
	body, err := c.get(ctx, "lookupeventtimeline.php", url.Values{"id": {providerEventID}})
	if err != nil {
		return nil, err
	}

	var envelope timelineEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode timeline payload: %w", err)
	}
	if envelope.Timeline == nil {
		return nil, fmt.Errorf("no timeline found for provider id %s", providerEventID)
	}
	return envelope.Timeline, nil
}

// classifyEvent buckets a provider event payload into final, postponed or
// unavailable. Postponed wins even when scores are present.
func classifyEvent(event *eventPayload) types.FetchResult {
	if deref(event.Postponed) == "yes" || deref(event.Cancelled) == "yes" || deref(event.Status) == "POST" {
		return types.FetchResult{
			Status: types.FetchPostponed,
			Reason: "provider marked event postponed or cancelled",
		}
	}

	if event.HomeScore == nil || event.AwayScore == nil {
		return types.FetchResult{
			Status: types.FetchUnavailable,
			Reason: fmt.Sprintf("missing scores for event %s", deref(event.Name)),
		}
	}

	home, errHome := strconv.Atoi(strings.TrimSpace(*event.HomeScore))
	away, errAway := strconv.Atoi(strings.TrimSpace(*event.AwayScore))
	if errHome != nil || errAway != nil {
		return types.FetchResult{
			Status: types.FetchUnavailable,
			Reason: fmt.Sprintf("invalid score format %q-%q for event %s", *event.HomeScore, *event.AwayScore, deref(event.Name)),
		}
	}

	return types.FetchResult{
		Status: types.FetchFinal,
		Score:  &types.Score{Home: home, Away: away},
	}
}

// mapTimeline attributes raw timeline entries to a team side and
// normalizes card types from the detail text. Entries belonging to
// neither listed team, or with no type, are dropped.
func mapTimeline(raw []*timelinePayload, homeTeam, awayTeam string) []types.TimelineEntry {
	entries := make([]types.TimelineEntry, 0, len(raw))
	for _, e := range raw {
		if e == nil {
			continue
		}
		entryType := strings.ToLower(strings.TrimSpace(deref(e.Timeline)))
		if entryType == "" {
			continue
		}
		detail := strings.ToLower(deref(e.Detail))

		team := ""
		switch deref(e.Team) {
		case homeTeam:
			team = "home"
		case awayTeam:
			team = "away"
		default:
			continue
		}

		if entryType == "card" {
			switch {
			case strings.Contains(detail, "yellow"):
				entryType = types.TimelineYellowCard
			case strings.Contains(detail, "red"):
				entryType = types.TimelineRedCard
			default:
				entryType = types.TimelineCard
			}
		}

		minute, err := strconv.Atoi(strings.TrimSpace(deref(e.Time)))
		if err != nil {
			minute = 0
		}

		entries = append(entries, types.TimelineEntry{
			Type:   entryType,
			Detail: detail,
			Team:   team,
			Minute: minute,
			Player: deref(e.Player),
			Assist: deref(e.Assist),
		})
	}
	return entries
}

// sleep blocks for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Provider payload shapes. Numeric fields arrive as strings and may be
// null, hence the pointers.

type eventEnvelope struct {
	Events []*eventPayload `json:"events"`
}

type eventPayload struct {
	ID        *string `json:"idEvent"`
	Name      *string `json:"strEvent"`
	HomeTeam  *string `json:"strHomeTeam"`
	AwayTeam  *string `json:"strAwayTeam"`
	HomeScore *string `json:"intHomeScore"`
	AwayScore *string `json:"intAwayScore"`
	Postponed *string `json:"strPostponed"`
	Cancelled *string `json:"strCancelled"`
	Status    *string `json:"strStatus"`
}

type statsEnvelope struct {
	EventStats []*statPayload `json:"eventstats"`
	Statistics []*statPayload `json:"statistics"`
}

type statPayload struct {
	Stat *string `json:"strStat"`
	Home *string `json:"intHome"`
	Away *string `json:"intAway"`
}

type timelineEnvelope struct {
	Timeline []*timelinePayload `json:"timeline"`
}

type timelinePayload struct {
	Timeline *string `json:"strTimeline"`
	Detail   *string `json:"strTimelineDetail"`
	Team     *string `json:"strTeam"`
	Time     *string `json:"intTime"`
	Player   *string `json:"strPlayer"`
	Assist   *string `json:"strAssist"`
}
