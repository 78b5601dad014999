package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/payments"
)

type subscriptionUserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub models.Subscription) error
}

// SubscriptionService drives the plan lifecycle: checkout against the
// payment provider, activation on verified payment, unconditional
// cancellation. Lapsing is not handled here at all; it is derived lazily
// wherever expiresAt is compared against now.
type SubscriptionService struct {
	users    subscriptionUserStore
	provider payments.Provider // nil when the provider is not configured
	frontend string

	nowFn func() time.Time
}

func NewSubscriptionService(users subscriptionUserStore, provider payments.Provider, frontendURL string) *SubscriptionService {
	return &SubscriptionService{
		users:    users,
		provider: provider,
		frontend: frontendURL,
		nowFn:    time.Now,
	}
}

func (s *SubscriptionService) Plans() []models.Plan {
	return models.Plans()
}

type Checkout struct {
	PaymentLink string `json:"payment_link"`
	TxRef       string `json:"tx_ref"`
}

// CreateCheckout opens a provider charge for the plan and hands back the
// hosted payment link. Subscription state does not change here; the user
// stays on their current tier until the payment verifies.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID primitive.ObjectID, planID string) (*Checkout, error) {
	if s.provider == nil {
		return nil, ErrPaymentNotConfigured
	}
	plan, ok := models.PlanByID(planID)
	if !ok {
		return nil, ErrInvalidPlan
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}

	txRef := fmt.Sprintf("sub_%s_%s", userID.Hex(), uuid.NewString())

	req := payments.ChargeRequest{
		TxRef:       txRef,
		Amount:      plan.Price,
		Currency:    "UGX",
		RedirectURL: s.frontend + "/subscription/callback",
	}
	req.Customer.Email = u.Email
	req.Customer.Name = u.Name
	req.Customizations.Title = fmt.Sprintf("CineFlix %s Plan", planTitle(planID))
	req.Customizations.Description = fmt.Sprintf("Subscription to CineFlix %s plan", planID)

	charge, err := s.provider.CreateCharge(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Checkout{PaymentLink: charge.Link, TxRef: txRef}, nil
}

// VerifyPayment activates the plan only on a provider-confirmed
// successful transaction. Weekly plans run seven days; monthly plans use
// calendar-month arithmetic (time.AddDate, so Jan 31 normalizes into
// early March). Any other provider status leaves the subscription
// untouched.
func (s *SubscriptionService) VerifyPayment(ctx context.Context, userID primitive.ObjectID, txRef, planID string) (*models.Subscription, error) {
	if s.provider == nil {
		return nil, ErrPaymentNotConfigured
	}
	plan, ok := models.PlanByID(planID)
	if !ok {
		return nil, ErrInvalidPlan
	}

	v, err := s.provider.VerifyTransaction(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if v.Status != payments.StatusSuccessful {
		return nil, ErrVerificationFailed
	}

	now := s.nowFn().UTC()
	var expiresAt time.Time
	if plan.Duration == models.CadenceWeek {
		expiresAt = now.Add(7 * 24 * time.Hour)
	} else {
		expiresAt = now.AddDate(0, 1, 0)
	}

	sub := models.Subscription{
		Type:       plan.Tier,
		ExpiresAt:  &expiresAt,
		PaymentRef: txRef,
	}
	if err := s.users.UpdateSubscription(ctx, userID, sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel resets to free immediately; remaining paid time is forfeited.
func (s *SubscriptionService) Cancel(ctx context.Context, userID primitive.ObjectID) error {
	return s.users.UpdateSubscription(ctx, userID, models.Subscription{Type: models.TierFree})
}

// planTitle turns "basic-monthly" into "Basic Monthly".
func planTitle(planID string) string {
	parts := strings.Split(planID, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
