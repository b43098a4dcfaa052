package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"lottohouse/application"
	"lottohouse/cmd"
	"lottohouse/config"
	"lottohouse/database"
	"lottohouse/domain/entities"
	"lottohouse/infrastructure"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	// Check for client creation subcommand
	if len(os.Args) > 1 && os.Args[1] == "create-client" {
		if err := handleCreateClient(); err != nil {
			log.Fatal("Create client error:", err)
		}
		return
	}

	// Check for wallet adjustment subcommand
	if len(os.Args) > 1 && os.Args[1] == "adjust-wallet" {
		if err := handleWalletAdjustment(); err != nil {
			log.Fatal("Wallet adjustment error:", err)
		}
		return
	}

	// Normal service operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: lottohouse migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleCreateClient() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: lottohouse create-client name")
	}
	name := os.Args[2]

	engine, cleanup, err := adminEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := engine.CreateClient(context.Background(), name)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	log.Printf("Created client %d (%s)", client.ID, client.Name)
	return nil
}

func handleWalletAdjustment() error {
	if len(os.Args) < 5 {
		return fmt.Errorf("usage: lottohouse adjust-wallet client-id credit|debit amount [description]")
	}

	clientID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}

	var typ entities.TransactionType
	switch os.Args[3] {
	case "credit":
		typ = entities.TransactionTypeCredit
	case "debit":
		typ = entities.TransactionTypeDebit
	default:
		return fmt.Errorf("unknown adjustment type: %s", os.Args[3])
	}

	amount, err := decimal.NewFromString(os.Args[4])
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	description := "Manual adjustment"
	if len(os.Args) > 5 {
		description = strings.Join(os.Args[5:], " ")
	}

	engine, cleanup, err := adminEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	txn, err := engine.AdjustWallet(context.Background(), clientID, typ, amount, description)
	if err != nil {
		return fmt.Errorf("failed to adjust wallet: %w", err)
	}

	log.Printf("Adjusted wallet of client %d: %s %s, balance now %s",
		clientID, txn.Type, txn.Amount, txn.BalanceAfter)
	return nil
}

// adminEngine builds an engine for one-shot admin commands. Events are not
// delivered anywhere, so a no-op publisher stands in for NATS.
func adminEngine() (*application.Engine, func(), error) {
	cfg := config.Get()

	db, err := database.NewConnection(context.Background(), cfg.GetDatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	eventPublisher := infrastructure.NewNoopEventPublisher()
	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, eventPublisher)
	engine := application.NewEngine(uowFactory, cfg.SettlementWorkers)

	return engine, db.Close, nil
}
