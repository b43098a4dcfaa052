package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Role represents a client's role in the platform
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Client represents an account holder with a wallet balance.
// The balance is the tracked current value; the transaction ledger
// explains how it got there.
type Client struct {
	ID        int64           `db:"id"`
	Name      string          `db:"name"`
	Role      Role            `db:"role"`
	Balance   decimal.Decimal `db:"balance"`
	Active    bool            `db:"active"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// IsAdmin returns true if this is the operator account
func (c *Client) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanBet returns true if the client may place bets
func (c *Client) CanBet() bool {
	return c.Active && c.Role == RoleClient
}

// HasSufficientBalance checks if the wallet covers an amount
func (c *Client) HasSufficientBalance(amount decimal.Decimal) bool {
	return !c.Balance.LessThan(amount)
}

// ValidateName checks that the client name is usable
func (c *Client) ValidateName() error {
	if c.Name == "" {
		return errors.New("client name cannot be empty")
	}
	return nil
}
