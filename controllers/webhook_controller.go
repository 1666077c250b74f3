package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/models"
)

// WebhookController reconciles the payment processor's subscription state
// into local storage. It is the sole writer of UserSubscription rows.
type WebhookController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewWebhookController(db *gorm.DB, cfg *config.Config) *WebhookController {
	return &WebhookController{DB: db, Cfg: cfg}
}

type subscriptionObject struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	PriceID          string `json:"price_id"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Metadata     map[string]string  `json:"metadata"`
			Subscription subscriptionObject `json:"subscription"`
		} `json:"object"`
	} `json:"data"`
}

// HandleStripeWebhook verifies the signature and applies the two events we
// care about. Everything else is acknowledged and ignored so the processor
// stops retrying.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if err := verifySignature(body, c.Get("Stripe-Signature"), wc.Cfg.StripeWebhookSecret); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Webhook error: " + err.Error())
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Webhook error: invalid payload")
	}

	switch event.Type {
	case "checkout.session.completed":
		return wc.handleCheckoutCompleted(c, &event)
	case "invoice.payment_succeeded":
		return wc.handleInvoicePaid(c, &event)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (wc *WebhookController) handleCheckoutCompleted(c *fiber.Ctx, event *webhookEvent) error {
	rawUserID, ok := event.Data.Object.Metadata["user_id"]
	if !ok || rawUserID == "" {
		return c.Status(fiber.StatusBadRequest).SendString("User ID is required")
	}
	userID, err := strconv.ParseUint(rawUserID, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("User ID is required")
	}

	sub := event.Data.Object.Subscription
	row := models.UserSubscription{
		UserID:                 uint(userID),
		StripeSubscriptionID:   sub.ID,
		StripeCustomerID:       sub.Customer,
		StripePriceID:          sub.PriceID,
		StripeCurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if err := wc.DB.Create(&row).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Could not store subscription")
	}

	return c.SendStatus(fiber.StatusOK)
}

func (wc *WebhookController) handleInvoicePaid(c *fiber.Ctx, event *webhookEvent) error {
	sub := event.Data.Object.Subscription
	if sub.ID == "" {
		// Reported, not fatal: the processor retries with backoff and
		// a human can look at the logs meanwhile.
		return c.Status(fiber.StatusBadRequest).SendString("No subscription ID found")
	}

	err := wc.DB.Model(&models.UserSubscription{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Updates(map[string]interface{}{
			"stripe_price_id":           sub.PriceID,
			"stripe_current_period_end": time.Unix(sub.CurrentPeriodEnd, 0),
		}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update subscription")
	}

	return c.SendStatus(fiber.StatusOK)
}

// verifySignature checks a Stripe-style signature header
// ("t=<unix>,v1=<hex>") where v1 is HMAC-SHA256 over "<t>.<body>".
func verifySignature(body []byte, header, secret string) error {
	if secret == "" {
		return errors.New("webhook secret not configured")
	}
	if header == "" {
		return errors.New("missing signature header")
	}

	var timestamp string
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err == nil {
				signatures = append(signatures, sig)
			}
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return errors.New("signature verification failed")
}
