package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartSettlementResumeWorker starts a background worker that re-runs
// settlement for draws stuck in settling, for example after a crash between
// claiming a draw and finishing its payouts. Draws claimed less than one
// interval ago are left alone since their run may still be in flight.
// Returns a cleanup function to stop the worker gracefully.
func StartSettlementResumeWorker(ctx context.Context, engine *Engine, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	resume := func() {
		count, err := engine.ResumeStuckSettlements(context.Background(), interval)
		if err != nil {
			log.Errorf("Error scanning for stuck settlements: %v", err)
			return
		}
		if count > 0 {
			log.WithField("draws", count).Info("Resumed stuck settlements")
		}
	}

	// Start the worker goroutine
	go func() {
		log.Info("Settlement resume worker started")

		// Run immediately on startup to pick up anything left over from a
		// previous process
		resume()

		for {
			select {
			case <-ctx.Done():
				log.Info("Settlement resume worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Settlement resume worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				resume()
			}
		}
	}()

	// Return cleanup function
	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
