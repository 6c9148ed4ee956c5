package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"FACEGATE/gallery"
)

// Kiosk scopes that stopped streaming keep their cached gallery views alive
// until a sweep runs.
const sweepInterval = 1 * time.Hour
const maxIdle = 6 * time.Hour

// StartScheduler runs the background jobs and returns the scheduler so the
// caller can stop it on shutdown.
func StartScheduler(cache *gallery.Cache) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	s.Every(sweepInterval).Do(func() {
		if removed := cache.Sweep(maxIdle); removed > 0 {
			log.Printf("jobs: swept %d idle gallery views", removed)
		}
	})

	s.StartAsync()
	return s
}
