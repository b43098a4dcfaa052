package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrawStatus represents where a draw sits in its lifecycle
type DrawStatus string

const (
	// DrawStatusOpen accepts bets and may be declared.
	DrawStatusOpen DrawStatus = "open"
	// DrawStatusSettling is claimed by a settlement run; winning numbers
	// are recorded but not every bet has an outcome yet.
	DrawStatusSettling DrawStatus = "settling"
	// DrawStatusFinished has every bet settled and the payout recorded.
	DrawStatusFinished DrawStatus = "finished"
)

// Draw represents a single lottery draw. Scheduling and market windows
// are owned by the external scheduler; the engine only cares about the
// status and, once declared, the winning numbers.
type Draw struct {
	ID             int64           `db:"id"`
	Label          string          `db:"label"`
	Status         DrawStatus      `db:"status"`
	WinningNumbers []string        `db:"winning_numbers"` // empty until declared
	DeclaredAt     *time.Time      `db:"declared_at"`
	TotalPayout    decimal.Decimal `db:"total_payout"`
	CreatedAt      time.Time       `db:"created_at"`
}

// AcceptsBets returns true if bets may still be placed on the draw
func (d *Draw) AcceptsBets() bool {
	return d.Status == DrawStatusOpen
}

// IsFinished returns true once settlement has fully completed
func (d *Draw) IsFinished() bool {
	return d.Status == DrawStatusFinished
}

// IsSettling returns true while a settlement run owns the draw
func (d *Draw) IsSettling() bool {
	return d.Status == DrawStatusSettling
}

// Claim records the declared winning numbers and moves the draw into
// settling. The claim is what guarantees a single settlement run owns
// the draw; it must be persisted before any bet is paid.
func (d *Draw) Claim(winningNumbers []string) {
	d.WinningNumbers = winningNumbers
	d.Status = DrawStatusSettling
	now := time.Now()
	d.DeclaredAt = &now
}

// Finish marks the draw fully settled with the total amount paid out
func (d *Draw) Finish(totalPayout decimal.Decimal) {
	d.Status = DrawStatusFinished
	d.TotalPayout = totalPayout
}

// Reopen returns a claimed draw to open after a run that paid nothing,
// clearing the declaration so a retry starts clean
func (d *Draw) Reopen() {
	d.Status = DrawStatusOpen
	d.WinningNumbers = nil
	d.DeclaredAt = nil
}

// DeclaredNumber returns the winning number a condition designates,
// or false if the draw declared fewer numbers than that position
func (d *Draw) DeclaredNumber(c Condition) (string, bool) {
	pos := c.Position()
	if pos < 0 || pos >= len(d.WinningNumbers) {
		return "", false
	}
	return d.WinningNumbers[pos], true
}

// SameNumbers reports whether a declaration matches the numbers already
// recorded on the draw, which is what makes a resume legitimate
func (d *Draw) SameNumbers(numbers []string) bool {
	if len(d.WinningNumbers) != len(numbers) {
		return false
	}
	for i, n := range numbers {
		if d.WinningNumbers[i] != n {
			return false
		}
	}
	return true
}
