package services

import (
	"log"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/services/finance"
)

// StartScheduler starts the background task scheduler
func StartScheduler(svc *finance.Service) {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			// Trigger at 8:05 PM (20:05)
			if now.Hour() == 20 && now.Minute() == 5 {
				log.Println("Triggering scheduled tasks [20:05]...")

				// Refresh finance caches so the day's payments are picked up
				svc.ClearCaches()
				if _, err := svc.LoadSchoolTotals(now.Year()); err != nil {
					log.Printf("Error prewarming finance caches: %v", err)
				}
			}
		}
	}()
}
