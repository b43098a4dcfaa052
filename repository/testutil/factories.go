package testutil

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lottohouse/domain/entities"
)

// CreateTestClient creates a test client with default values
func CreateTestClient(name string) *entities.Client {
	return &entities.Client{
		Name:    name,
		Role:    entities.RoleClient,
		Balance: decimal.Zero,
		Active:  true,
	}
}

// CreateTestClientWithBalance creates a test client with a specific balance
func CreateTestClientWithBalance(name string, balance decimal.Decimal) *entities.Client {
	client := CreateTestClient(name)
	client.Balance = balance
	return client
}

// CreateTestDraw creates an open test draw
func CreateTestDraw(label string) *entities.Draw {
	return &entities.Draw{
		Label:          label,
		Status:         entities.DrawStatusOpen,
		WinningNumbers: []string{},
		TotalPayout:    decimal.Zero,
	}
}

// CreateTestBet creates a single-game test bet on the given number
func CreateTestBet(clientID, drawID int64, number string) *entities.Bet {
	return &entities.Bet{
		ClientID:  clientID,
		DrawID:    drawID,
		GameType:  entities.GameTypeSingle,
		Condition: entities.ConditionFirst,
		Number:    number,
		Stake:     decimal.NewFromInt(50),
	}
}

// CreateTestDigitsBet creates a digits-game test bet on the given suffix
func CreateTestDigitsBet(clientID, drawID int64, number string) *entities.Bet {
	bet := CreateTestBet(clientID, drawID, number)
	bet.GameType = entities.GameTypeDigits
	return bet
}

// CreateTestRateEntry creates a rate entry for the single game
func CreateTestRateEntry(clientID int64, rate int64) *entities.RateEntry {
	return &entities.RateEntry{
		ClientID:  clientID,
		GameType:  entities.GameTypeSingle,
		Condition: entities.ConditionFirst,
		Rate:      decimal.NewFromInt(rate),
	}
}

// CreateTestDigitsRateEntry creates a rate entry for the digits game
func CreateTestDigitsRateEntry(clientID int64, digitCount int, rate int64) *entities.RateEntry {
	entry := CreateTestRateEntry(clientID, rate)
	entry.GameType = entities.GameTypeDigits
	entry.DigitCount = digitCount
	return entry
}

// CreateTestTransaction creates a test ledger entry
func CreateTestTransaction(clientID int64, typ entities.TransactionType, amount, balanceAfter decimal.Decimal) *entities.Transaction {
	return &entities.Transaction{
		Reference:    uuid.New(),
		ClientID:     clientID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  "test transaction",
	}
}
