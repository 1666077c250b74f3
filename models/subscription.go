package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionGrace is the window after the paid period during which the
// subscription still counts as active, so a slow renewal invoice does not
// drop the learner mid-lesson.
const SubscriptionGrace = 24 * time.Hour

// UserSubscription mirrors the payment processor's state. Only the webhook
// bridge writes these rows.
type UserSubscription struct {
	gorm.Model
	UserID                 uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	StripeSubscriptionID   string    `gorm:"uniqueIndex;not null" json:"stripe_subscription_id"`
	StripeCustomerID       string    `gorm:"not null" json:"stripe_customer_id"`
	StripePriceID          string    `json:"stripe_price_id"`
	StripeCurrentPeriodEnd time.Time `json:"stripe_current_period_end"`
}

// IsActive derives the subscription state: a price must be attached and the
// period end plus the grace window must still be in the future.
func (s *UserSubscription) IsActive(now time.Time) bool {
	return s.StripePriceID != "" && s.StripeCurrentPeriodEnd.Add(SubscriptionGrace).After(now)
}
