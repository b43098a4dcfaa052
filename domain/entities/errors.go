package entities

import "errors"

// Domain errors returned by the engine. Callers match these with errors.Is
// after unwrapping whatever context the service layer added.
var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAlreadyReversed      = errors.New("transaction already reversed")
	ErrAlreadyDeclared      = errors.New("draw already declared")
	ErrSettlementInProgress = errors.New("settlement already in progress")
	ErrInvalidRate          = errors.New("invalid rate entry")
	ErrClientInactive       = errors.New("client is inactive")
	ErrDrawClosed           = errors.New("draw is not open for betting")
)
