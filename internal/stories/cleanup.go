package stories

import (
	"context"
	"log"
	"time"
)

// CleanupService periodically prunes expired stories. Reads already
// filter on expiry, so this only reclaims storage.
type CleanupService struct {
	service  Service
	interval time.Duration
}

func NewCleanupService(service Service, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{service: service, interval: interval}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (c *CleanupService) Start(ctx context.Context) {
	log.Printf("Starting story cleanup service with interval: %v", c.interval)

	c.run(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.run(ctx)
		case <-ctx.Done():
			log.Println("Stopping story cleanup service")
			return
		}
	}
}

func (c *CleanupService) run(ctx context.Context) {
	if err := c.service.CleanupExpiredStories(ctx); err != nil {
		log.Printf("Failed to cleanup expired stories: %v", err)
	}
}
