package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oddsline/settlement-api/internal/types"
)

func testClient(serverURL string) *Client {
	return NewClientWithConfig(Config{
		BaseURL:    serverURL,
		APIKey:     "testkey",
		Cooldown:   time.Millisecond,
		MaxRetries: 3,
	})
}

func TestFetchFinalParsesScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "lookupevent.php") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","strEvent":"Arsenal vs Chelsea","strHomeTeam":"Arsenal","strAwayTeam":"Chelsea","intHomeScore":"2","intAwayScore":"1","strPostponed":"no","strStatus":"FT"}]}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchFinal {
		t.Fatalf("expected final status, got %s (%s)", result.Status, result.Reason)
	}
	if result.Score == nil || result.Score.Home != 2 || result.Score.Away != 1 {
		t.Errorf("expected score 2-1, got %+v", result.Score)
	}
}

func TestFetchFinalPostponedOverridesScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","intHomeScore":"2","intAwayScore":"1","strPostponed":"yes"}]}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchPostponed {
		t.Errorf("expected postponed status despite scores, got %s", result.Status)
	}
}

func TestFetchFinalPostStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","strStatus":"POST"}]}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchPostponed {
		t.Errorf("expected postponed for strStatus POST, got %s", result.Status)
	}
}

func TestFetchFinalMissingScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","strEvent":"Arsenal vs Chelsea","intHomeScore":null,"intAwayScore":null}]}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchUnavailable {
		t.Fatalf("expected unavailable for null scores, got %s", result.Status)
	}
	if !strings.Contains(result.Reason, "missing scores") {
		t.Errorf("unexpected reason: %s", result.Reason)
	}
}

func TestFetchFinalNonNumericScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","intHomeScore":"abandoned","intAwayScore":"1"}]}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchUnavailable {
		t.Errorf("expected unavailable for non-numeric scores, got %s", result.Status)
	}
}

func TestFetchFinalUnknownEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":null}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "9999")
	if result.Status != types.FetchUnavailable {
		t.Errorf("expected unavailable for unknown event, got %s", result.Status)
	}
}

func TestGetRetriesAfterRateLimit(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","intHomeScore":"0","intAwayScore":"0"}]}`)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchFinal {
		t.Fatalf("expected success after rate-limit retries, got %s (%s)", result.Status, result.Reason)
	}
	if requests != 3 {
		t.Errorf("expected 3 requests (2 rate-limited), got %d", requests)
	}
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result := testClient(server.URL).FetchFinal(context.Background(), "1001")
	if result.Status != types.FetchUnavailable {
		t.Fatalf("expected unavailable after retry exhaustion, got %s", result.Status)
	}
	// Initial attempt plus MaxRetries.
	if requests != 4 {
		t.Errorf("expected 4 requests, got %d", requests)
	}
}

func TestThrottleSleepsAtThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","intHomeScore":"1","intAwayScore":"0"}]}`)
	}))
	defer server.Close()

	client := NewClientWithConfig(Config{
		BaseURL:       server.URL,
		APIKey:        "testkey",
		Cooldown:      50 * time.Millisecond,
		ThrottleAfter: 3,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if result := client.FetchFinal(context.Background(), "1001"); result.Status != types.FetchFinal {
			t.Fatalf("request %d failed: %s", i, result.Reason)
		}
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected the third request to sleep the cooldown, elapsed %v", elapsed)
	}

	// The counter resets after the cooldown, so the next request is quick.
	start = time.Now()
	client.FetchFinal(context.Background(), "1001")
	if elapsed := time.Since(start); elapsed >= 50*time.Millisecond {
		t.Errorf("expected no throttle after counter reset, elapsed %v", elapsed)
	}
}

func TestFetchMatchData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "lookupevent.php"):
			fmt.Fprint(w, `{"events":[{"idEvent":"1001","strHomeTeam":"Arsenal","strAwayTeam":"Chelsea","intHomeScore":"2","intAwayScore":"1"}]}`)
		case strings.Contains(r.URL.Path, "lookupeventstats.php"):
			fmt.Fprint(w, `{"eventstats":[{"strStat":"Corner Kicks","intHome":"6","intAway":"4"}]}`)
		case strings.Contains(r.URL.Path, "lookupeventtimeline.php"):
			fmt.Fprint(w, `{"timeline":[
				{"strTimeline":"goal","strTeam":"Arsenal","intTime":"12","strPlayer":"Saka"},
				{"strTimeline":"card","strTimelineDetail":"Yellow Card","strTeam":"Chelsea","intTime":"30"},
				{"strTimeline":"goal","strTeam":"Someone Else FC","intTime":"50"}
			]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	data, err := testClient(server.URL).FetchMatchData(context.Background(), "1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Score.Home != 2 || data.Score.Away != 1 {
		t.Errorf("expected score 2-1, got %+v", data.Score)
	}
	if len(data.Stats) != 1 || data.Stats[0].Name != "Corner Kicks" {
		t.Errorf("unexpected stats: %+v", data.Stats)
	}
	// The unattributable third entry is dropped.
	if len(data.Timeline) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(data.Timeline))
	}
	if data.Timeline[0].Type != types.TimelineGoal || data.Timeline[0].Team != "home" || data.Timeline[0].Minute != 12 {
		t.Errorf("unexpected first entry: %+v", data.Timeline[0])
	}
	if data.Timeline[1].Type != types.TimelineYellowCard || data.Timeline[1].Team != "away" {
		t.Errorf("expected away yellow card from detail text, got %+v", data.Timeline[1])
	}
}

func TestFetchMatchDataStatisticsKeyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "lookupevent.php"):
			fmt.Fprint(w, `{"events":[{"idEvent":"1001","strHomeTeam":"Arsenal","strAwayTeam":"Chelsea","intHomeScore":"0","intAwayScore":"0"}]}`)
		case strings.Contains(r.URL.Path, "lookupeventstats.php"):
			fmt.Fprint(w, `{"statistics":[{"strStat":"Fouls","intHome":"10","intAway":"8"}]}`)
		case strings.Contains(r.URL.Path, "lookupeventtimeline.php"):
			fmt.Fprint(w, `{"timeline":[]}`)
		}
	}))
	defer server.Close()

	data, err := testClient(server.URL).FetchMatchData(context.Background(), "1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Stats) != 1 || data.Stats[0].Home != "10" {
		t.Errorf("expected stats from the statistics key, got %+v", data.Stats)
	}
}

func TestFetchMatchDataNonFinalEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[{"idEvent":"1001","strPostponed":"yes"}]}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchMatchData(context.Background(), "1001")
	if err == nil {
		t.Fatal("expected error for a non-final event")
	}
	if !strings.Contains(err.Error(), "no final score") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClientWithConfig(Config{
		BaseURL:    server.URL,
		APIKey:     "testkey",
		Cooldown:   time.Hour,
		MaxRetries: 3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		client.FetchFinal(ctx, "1001")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled context did not abort the retry sleep")
	}
}
