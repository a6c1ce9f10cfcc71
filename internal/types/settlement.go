package types

// FetchStatus classifies one provider lookup for an event.
type FetchStatus string

const (
	// FetchFinal means both scores parsed as integers.
	FetchFinal FetchStatus = "final"
	// FetchPostponed means the provider flagged the event postponed or
	// cancelled. Takes precedence even when scores are present.
	FetchPostponed FetchStatus = "postponed"
	// FetchUnavailable covers everything else: missing payload, missing
	// identifying fields, absent or non-numeric scores, exhausted retries.
	FetchUnavailable FetchStatus = "unavailable"
)

// FetchResult is the classified result of a score lookup. The provider
// never surfaces errors directly; failures degrade to FetchUnavailable
// with Reason carrying the logged cause.
type FetchResult struct {
	Status FetchStatus
	Score  *Score
	Reason string
}

// EventUpdate is the per-event mutation emitted once settlement of that
// event concludes.
type EventUpdate struct {
	EventID   string      `json:"event_id"`
	IsSettled bool        `json:"is_settled"`
	Result    *string     `json:"result"` // "home-away", nil when cancelled
	Status    EventStatus `json:"status"`
}

// MarketUpdate closes one market. Outcome is nil for postponed events and
// for proposition markets, whose result is carried in PropResult instead.
type MarketUpdate struct {
	MarketID   string         `json:"market_id"`
	Status     MarketStatus   `json:"status"`
	Outcome    *MarketOutcome `json:"outcome"`
	PropResult any            `json:"prop_result,omitempty"`
}

// PayoutRecord is the settlement of a single order.
type PayoutRecord struct {
	OrderID        string      `json:"order_id"`
	UserID         string      `json:"user_id"`
	RewardAmount   float64     `json:"reward_amount"`
	WithheldAmount float64     `json:"withheld_amount"`
	MarketID       string      `json:"market_id"`
	Status         OrderStatus `json:"status"`
}

// UserPayout groups one user's payout records for a run. Orders preserves
// the order the records were produced in.
type UserPayout struct {
	UserID              string         `json:"user_id"`
	TotalRewardAmount   float64        `json:"total_reward_amount"`
	TotalWithheldAmount float64        `json:"total_withheld_amount"`
	Orders              []PayoutRecord `json:"orders"`
}

// SettlementRecord is the per-event unit returned to the caller: either a
// success record (event update plus market updates and payouts) or an
// opaque fatal-error message. Never both.
type SettlementRecord struct {
	EventUpdate   *EventUpdate   `json:"event_update,omitempty"`
	MarketUpdates []MarketUpdate `json:"market_updates,omitempty"`
	Payouts       []PayoutRecord `json:"payout_data,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Failed reports whether the record is the fatal-error arm of the union.
func (r *SettlementRecord) Failed() bool {
	return r.Error != ""
}

// BatchEntry is one event with its attached markets and matched orders as
// handed over by the caller.
type BatchEntry struct {
	Event   Event    `json:"event"`
	Markets []Market `json:"markets"`
	Orders  []Order  `json:"orders"`
}

// Batch is the working event dictionary for one settlement run, keyed by
// internal event ID. The orchestrator owns it for the duration of the run
// and mutates event state in place as events settle.
type Batch map[string]*BatchEntry

// Result is the full output of one settlement run. Records holds exactly
// one entry per input event.
type Result struct {
	Records     map[string]*SettlementRecord `json:"events"`
	UserPayouts []UserPayout                 `json:"user_payouts,omitempty"`
}

// Counts tallies record dispositions for logging and run history.
func (r *Result) Counts() (settled, postponed, failed int) {
	for _, rec := range r.Records {
		switch {
		case rec.Failed():
			failed++
		case rec.EventUpdate != nil && rec.EventUpdate.Status == EventCancelled:
			postponed++
		default:
			settled++
		}
	}
	return
}
