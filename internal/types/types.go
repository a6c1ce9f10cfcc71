package types

import (
	"time"
)

// EventStatus tracks the lifecycle of a sporting event.
type EventStatus string

const (
	EventFuture    EventStatus = "future"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// MarketType identifies the wagering proposition a market represents.
// Moneyline and over/under are settled directly from the final score;
// any other value is treated as a soccer proposition market key.
type MarketType string

const (
	MarketMoneyline MarketType = "moneyline"
	MarketOverUnder MarketType = "over_under"
)

type MarketStatus string

const (
	MarketOpen   MarketStatus = "open"
	MarketClosed MarketStatus = "closed"
)

// MarketOutcome is the ternary resolution of a market. DRAW doubles as a
// push for markets without a natural draw (over/under total on the line).
type MarketOutcome string

const (
	OutcomeHome MarketOutcome = "home"
	OutcomeAway MarketOutcome = "away"
	OutcomeDraw MarketOutcome = "draw"
)

type OrderStatus string

const (
	OrderOpen            OrderStatus = "open"
	OrderFilled          OrderStatus = "filled"
	OrderPartiallyFilled OrderStatus = "partially_filled"
	OrderCancelled       OrderStatus = "cancelled"
	OrderExpired         OrderStatus = "expired"
	OrderWon             OrderStatus = "won"
	OrderLost            OrderStatus = "lost"
	OrderPush            OrderStatus = "push"
)

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Event is a single sporting event as created by the event-creation
// pipeline. ProviderID is the external sports-data provider's identifier,
// distinct from the internal ID the batch is keyed by.
type Event struct {
	ID         string      `json:"event_id"`
	ProviderID string      `json:"provider_id"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Start      time.Time   `json:"start"`
	Status     EventStatus `json:"status"`
	Result     *string     `json:"result,omitempty"` // "home-away" once completed
}

// Market is a single wagering proposition attached to an event.
// Line is required for over/under markets; a missing line there is a
// per-market fatal configuration error.
type Market struct {
	ID      string       `json:"market_id"`
	EventID string       `json:"event_id"`
	Type    MarketType   `json:"type"`
	Line    *float64     `json:"line,omitempty"`
	Status  MarketStatus `json:"status"`
}

// Order is a wager placed against a market. FulfilledOdds, when present,
// overrides the quoted Odds for payout arithmetic.
type Order struct {
	ID            string      `json:"order_id"`
	MarketID      string      `json:"market_id"`
	UserID        string      `json:"user_id"`
	Side          OrderSide   `json:"side"`
	Amount        float64     `json:"amount"`
	FilledAmount  float64     `json:"filled_amount"`
	Odds          float64     `json:"odds"`
	FulfilledOdds *float64    `json:"fulfilled_odds,omitempty"`
	Status        OrderStatus `json:"status"`
}

// Score is a final score pair. Absence of a Score value (nil pointer at
// the use sites) distinguishes "not yet final" from a 0-0 final.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Timeline entry types as normalized from provider payloads. Entries the
// provider cannot classify keep their original type string.
const (
	TimelineGoal       = "goal"
	TimelineYellowCard = "yellow card"
	TimelineRedCard    = "red card"
	TimelineCard       = "card"
)

// TimelineEntry is one play-by-play record attributed to a team side.
// Minute is unbounded above to accommodate injury time. Input order is
// not significant; consumers must sort by minute before any first/last
// or interval reasoning.
type TimelineEntry struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
	Team   string `json:"team"` // "home" or "away"
	Minute int    `json:"minute"`
	Player string `json:"player"`
	Assist string `json:"assist"`
}

// StatLine is one raw per-team statistic as supplied by the provider.
// Values stay strings here; lenient parsing happens at resolution time.
type StatLine struct {
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// MatchData bundles everything the proposition resolver needs for one
// event: final score plus raw statistics and the attributed timeline.
type MatchData struct {
	Score    Score           `json:"score"`
	Stats    []StatLine      `json:"stats"`
	Timeline []TimelineEntry `json:"timeline"`
}
