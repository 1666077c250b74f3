package utils

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lingo/models"
)

// Subscription rows lapsed this long past their grace window are dead: the
// webhook recreates them if the learner resubscribes.
const subscriptionRetention = 30 * 24 * time.Hour

// InitSubscriptionScheduler starts the daily retention sweep.
func InitSubscriptionScheduler(db *gorm.DB, logger *log.Logger) *cron.Cron {
	c := cron.New()

	c.AddFunc("0 4 * * *", func() {
		PurgeLapsedSubscriptions(db, logger)
	})

	c.Start()
	return c
}

// PurgeLapsedSubscriptions deletes subscription rows that expired beyond the
// retention window.
func PurgeLapsedSubscriptions(db *gorm.DB, logger *log.Logger) {
	cutoff := time.Now().Add(-subscriptionRetention).Add(-models.SubscriptionGrace)

	result := db.Unscoped().
		Where("stripe_current_period_end < ?", cutoff).
		Delete(&models.UserSubscription{})
	if result.Error != nil {
		logger.Printf("subscription sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		logger.Printf("subscription sweep removed %d lapsed rows", result.RowsAffected)
	}
}
