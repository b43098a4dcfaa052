package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"lottohouse/application"
	"lottohouse/config"
	"lottohouse/database"
	"lottohouse/domain/interfaces"
	"lottohouse/infrastructure"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting lottohouse...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event publisher
	eventPublisher, natsClient, err := newEventPublisher(ctx, cfg.NATSServers)
	if err != nil {
		db.Close()
		return err
	}
	log.Println("Event publisher initialized successfully")

	// Initialize unit of work factory and engine
	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, eventPublisher)
	engine := application.NewEngine(uowFactory, cfg.SettlementWorkers)
	log.Printf("Engine initialized with %d settlement workers", cfg.SettlementWorkers)

	// Start the settlement resume worker
	resumeInterval := time.Duration(cfg.ResumeIntervalSeconds) * time.Second
	stopResumeWorker := application.StartSettlementResumeWorker(ctx, engine, resumeInterval)

	// Wait for context cancellation
	log.Printf("Service is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopResumeWorker()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

// newEventPublisher picks the event publisher for the configured broker.
// An empty NATS_SERVERS runs the service without a broker; events are
// dropped instead of published. The returned client is nil in that case.
func newEventPublisher(ctx context.Context, servers string) (interfaces.EventPublisher, *infrastructure.NATSClient, error) {
	if servers == "" {
		log.Println("NATS_SERVERS is empty, running without event delivery")
		return infrastructure.NewNoopEventPublisher(), nil, nil
	}

	log.Printf("Connecting to NATS at %s...", servers)
	natsClient := infrastructure.NewNATSClient(servers)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	subjectMapper := infrastructure.NewEventSubjectMapper()
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, subjectMapper)
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		_ = natsClient.Close()
		return nil, nil, fmt.Errorf("failed to ensure domain event stream: %w", err)
	}

	return eventPublisher, natsClient, nil
}
