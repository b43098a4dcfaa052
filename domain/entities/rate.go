package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateEntry represents one row of a client's payout table: the
// percentage of stake paid when a bet with this key wins. Keyed by
// (game type, condition) for single, (digit count, condition) for the
// digits game.
type RateEntry struct {
	ID         int64           `db:"id"`
	ClientID   int64           `db:"client_id"`
	GameType   GameType        `db:"game_type"`
	Condition  Condition       `db:"condition"`
	DigitCount int             `db:"digit_count"` // 0 for single
	Rate       decimal.Decimal `db:"rate"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Validate rejects malformed rate entries before they are stored
func (e *RateEntry) Validate() error {
	switch e.GameType {
	case GameTypeSingle:
		if e.DigitCount != 0 {
			return fmt.Errorf("single rate cannot carry digit count %d", e.DigitCount)
		}
	case GameTypeDigits:
		if e.DigitCount < 1 || e.DigitCount > MaxDigits {
			return fmt.Errorf("digit count %d outside 1-%d", e.DigitCount, MaxDigits)
		}
	default:
		return fmt.Errorf("unknown game type %q", e.GameType)
	}
	if e.Condition.Position() < 0 {
		return fmt.Errorf("unknown condition %q", e.Condition)
	}
	if e.Rate.IsNegative() {
		return fmt.Errorf("rate %s cannot be negative", e.Rate)
	}
	return nil
}

type rateKey struct {
	gameType   GameType
	condition  Condition
	digitCount int
}

// RateTable is a client's payout configuration assembled for lookup
type RateTable struct {
	clientID int64
	rates    map[rateKey]decimal.Decimal
}

// NewRateTable builds a lookup table from stored entries. Entries are
// trusted to have been validated on write; a malformed one surfaces as
// ErrInvalidRate at lookup time rather than poisoning the whole table.
func NewRateTable(clientID int64, entries []*RateEntry) *RateTable {
	t := &RateTable{clientID: clientID, rates: make(map[rateKey]decimal.Decimal, len(entries))}
	for _, e := range entries {
		t.rates[rateKey{e.GameType, e.Condition, e.DigitCount}] = e.Rate
	}
	return t
}

// RateFor resolves the payout percentage for a bet. A missing entry or
// a zero rate means the bet wins nothing, which is not an error; a
// negative stored rate is reported as ErrInvalidRate.
func (t *RateTable) RateFor(b *Bet) (decimal.Decimal, error) {
	key := rateKey{b.GameType, b.Condition, b.DigitCount()}
	rate, ok := t.rates[key]
	if !ok {
		return decimal.Zero, nil
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rate %s for %s/%s/%d", ErrInvalidRate, rate, b.GameType, b.Condition, b.DigitCount())
	}
	return rate, nil
}

// PrizeFor computes the prize a winning bet earns: stake x rate / 100,
// rounded to currency precision
func (t *RateTable) PrizeFor(b *Bet) (decimal.Decimal, error) {
	rate, err := t.RateFor(b)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Stake.Mul(rate).Div(decimal.NewFromInt(100)).Round(2), nil
}
