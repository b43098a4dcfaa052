package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GameType represents how a bet's chosen number is matched against the
// declared winning numbers
type GameType string

const (
	// GameTypeSingle wins on an exact match of the designated number.
	GameTypeSingle GameType = "single"
	// GameTypeDigits wins when the bet's 1-6 digit number equals the
	// trailing digits of the designated number.
	GameTypeDigits GameType = "digits"
)

// Condition represents which declared winning number a bet plays against
type Condition string

const (
	ConditionFirst  Condition = "first"
	ConditionSecond Condition = "second"
)

// Position returns the index into the declared winning numbers that the
// condition designates, or -1 for an unknown condition
func (c Condition) Position() int {
	switch c {
	case ConditionFirst:
		return 0
	case ConditionSecond:
		return 1
	default:
		return -1
	}
}

// MaxDigits is the largest chosen-number length the digits game accepts.
const MaxDigits = 6

// Bet represents a single wager on a draw. Immutable after creation;
// outcomes are recorded as DrawWinner rows, never written back here.
type Bet struct {
	ID        int64           `db:"id"`
	ClientID  int64           `db:"client_id"`
	DrawID    int64           `db:"draw_id"`
	GameType  GameType        `db:"game_type"`
	Condition Condition       `db:"condition"`
	Number    string          `db:"number"`
	Stake     decimal.Decimal `db:"stake"`
	CreatedAt time.Time       `db:"created_at"`
}

// DigitCount returns the semantic length of the chosen number. Only the
// digits game cares about it; for single it is zero.
func (b *Bet) DigitCount() int {
	if b.GameType != GameTypeDigits {
		return 0
	}
	return len(b.Number)
}

// Matches evaluates the win predicate against a declared draw
func (b *Bet) Matches(d *Draw) bool {
	declared, ok := d.DeclaredNumber(b.Condition)
	if !ok {
		return false
	}
	switch b.GameType {
	case GameTypeSingle:
		return b.Number == declared
	case GameTypeDigits:
		n := len(b.Number)
		if n == 0 || n > len(declared) {
			return false
		}
		return b.Number == declared[len(declared)-n:]
	default:
		return false
	}
}

// BetSpec is the caller-supplied description of a bet to place
type BetSpec struct {
	GameType  GameType
	Condition Condition
	Number    string
	Stake     decimal.Decimal
}

// Validate rejects malformed specs before any mutation happens
func (s *BetSpec) Validate() error {
	if s.GameType != GameTypeSingle && s.GameType != GameTypeDigits {
		return fmt.Errorf("unknown game type %q", s.GameType)
	}
	if s.Condition.Position() < 0 {
		return fmt.Errorf("unknown condition %q", s.Condition)
	}
	if s.Number == "" {
		return errors.New("chosen number cannot be empty")
	}
	for _, r := range s.Number {
		if r < '0' || r > '9' {
			return fmt.Errorf("chosen number %q must be digits only", s.Number)
		}
	}
	if s.GameType == GameTypeDigits && len(s.Number) > MaxDigits {
		return fmt.Errorf("chosen number %q exceeds %d digits", s.Number, MaxDigits)
	}
	if !s.Stake.IsPositive() {
		return errors.New("stake must be positive")
	}
	return nil
}

// PlaceBetsResult is returned from a successful batch placement
type PlaceBetsResult struct {
	Bets         []*Bet
	Transactions []*Transaction
	NewBalance   decimal.Decimal
}
