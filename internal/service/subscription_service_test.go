package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/payments"
)

type fakeSubUserStore struct {
	user  *models.User
	saved *models.Subscription
}

func (f *fakeSubUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.user, nil
}

func (f *fakeSubUserStore) UpdateSubscription(ctx context.Context, id primitive.ObjectID, sub models.Subscription) error {
	f.saved = &sub
	return nil
}

type fakeProvider struct {
	charge     payments.Charge
	chargeErr  error
	verifyResp payments.Verification
	verifyErr  error

	lastCharge payments.ChargeRequest
	lastTxRef  string
}

func (f *fakeProvider) CreateCharge(ctx context.Context, req payments.ChargeRequest) (*payments.Charge, error) {
	f.lastCharge = req
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	return &f.charge, nil
}

func (f *fakeProvider) VerifyTransaction(ctx context.Context, txRef string) (*payments.Verification, error) {
	f.lastTxRef = txRef
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &f.verifyResp, nil
}

func newSubService(store *fakeSubUserStore, p payments.Provider, now time.Time) *SubscriptionService {
	svc := NewSubscriptionService(store, p, "http://localhost:3000")
	svc.nowFn = func() time.Time { return now }
	return svc
}

func TestCreateCheckout(t *testing.T) {
	store := &fakeSubUserStore{user: &models.User{
		ID:    primitive.NewObjectID(),
		Email: "viewer@example.com",
		Name:  "Viewer",
	}}
	provider := &fakeProvider{charge: payments.Charge{Link: "https://checkout.flutterwave.com/pay/abc"}}
	svc := newSubService(store, provider, time.Now())

	out, err := svc.CreateCheckout(context.Background(), store.user.ID, "basic-monthly")
	if err != nil {
		t.Fatal(err)
	}
	if out.PaymentLink != provider.charge.Link {
		t.Fatalf("PaymentLink = %q", out.PaymentLink)
	}
	if !strings.HasPrefix(out.TxRef, "sub_"+store.user.ID.Hex()+"_") {
		t.Fatalf("TxRef = %q, want sub_<user>_<uuid>", out.TxRef)
	}

	req := provider.lastCharge
	if req.Currency != "UGX" {
		t.Fatalf("currency = %q", req.Currency)
	}
	if req.Amount != 15000 {
		t.Fatalf("amount = %d, want basic-monthly price", req.Amount)
	}
	if req.Customer.Email != store.user.Email {
		t.Fatalf("customer email = %q", req.Customer.Email)
	}
	if req.Customizations.Title != "CineFlix Basic Monthly Plan" {
		t.Fatalf("title = %q", req.Customizations.Title)
	}

	// subscription state must not move at checkout time
	if store.saved != nil {
		t.Fatal("checkout must not touch the subscription")
	}
}

func TestCreateCheckoutErrors(t *testing.T) {
	store := &fakeSubUserStore{user: &models.User{ID: primitive.NewObjectID()}}

	t.Run("not configured", func(t *testing.T) {
		svc := newSubService(store, nil, time.Now())
		if _, err := svc.CreateCheckout(context.Background(), store.user.ID, "basic-weekly"); !errors.Is(err, ErrPaymentNotConfigured) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unknown plan", func(t *testing.T) {
		svc := newSubService(store, &fakeProvider{}, time.Now())
		if _, err := svc.CreateCheckout(context.Background(), store.user.ID, "gold-yearly"); !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("free plan not purchasable", func(t *testing.T) {
		svc := newSubService(store, &fakeProvider{}, time.Now())
		if _, err := svc.CreateCheckout(context.Background(), store.user.ID, "free"); !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newSubService(&fakeSubUserStore{}, &fakeProvider{}, time.Now())
		if _, err := svc.CreateCheckout(context.Background(), primitive.NewObjectID(), "basic-weekly"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestVerifyPaymentActivates(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		planID  string
		tier    string
		expires time.Time
	}{
		{"weekly runs seven days", "premium-weekly", models.TierPremium, now.Add(7 * 24 * time.Hour)},
		{"monthly uses calendar months", "basic-monthly", models.TierBasic, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeSubUserStore{user: &models.User{ID: primitive.NewObjectID()}}
			provider := &fakeProvider{verifyResp: payments.Verification{Status: payments.StatusSuccessful}}
			svc := newSubService(store, provider, now)

			sub, err := svc.VerifyPayment(context.Background(), store.user.ID, "tx-1", tc.planID)
			if err != nil {
				t.Fatal(err)
			}
			if sub.Type != tc.tier {
				t.Fatalf("tier = %q, want %q", sub.Type, tc.tier)
			}
			if sub.ExpiresAt == nil || !sub.ExpiresAt.Equal(tc.expires) {
				t.Fatalf("expiresAt = %v, want %v", sub.ExpiresAt, tc.expires)
			}
			if sub.PaymentRef != "tx-1" {
				t.Fatalf("paymentRef = %q", sub.PaymentRef)
			}
			if store.saved == nil || store.saved.Type != tc.tier {
				t.Fatal("subscription not persisted")
			}
			if provider.lastTxRef != "tx-1" {
				t.Fatalf("verified txRef = %q", provider.lastTxRef)
			}
		})
	}
}

func TestVerifyPaymentMonthEndOverflow(t *testing.T) {
	// Jan 31 + one calendar month normalizes into early March
	now := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	store := &fakeSubUserStore{user: &models.User{ID: primitive.NewObjectID()}}
	provider := &fakeProvider{verifyResp: payments.Verification{Status: payments.StatusSuccessful}}
	svc := newSubService(store, provider, now)

	sub, err := svc.VerifyPayment(context.Background(), store.user.ID, "tx-2", "premium-monthly")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	if !sub.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", sub.ExpiresAt, want)
	}
}

func TestVerifyPaymentFailedStatus(t *testing.T) {
	store := &fakeSubUserStore{user: &models.User{ID: primitive.NewObjectID()}}
	provider := &fakeProvider{verifyResp: payments.Verification{Status: "failed"}}
	svc := newSubService(store, provider, time.Now())

	if _, err := svc.VerifyPayment(context.Background(), store.user.ID, "tx-3", "basic-weekly"); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("err = %v", err)
	}
	if store.saved != nil {
		t.Fatal("failed verification must leave the subscription untouched")
	}
}

func TestCancelResetsToFree(t *testing.T) {
	store := &fakeSubUserStore{user: &models.User{ID: primitive.NewObjectID()}}
	svc := newSubService(store, &fakeProvider{}, time.Now())

	if err := svc.Cancel(context.Background(), store.user.ID); err != nil {
		t.Fatal(err)
	}
	if store.saved == nil || store.saved.Type != models.TierFree {
		t.Fatalf("saved = %+v, want free", store.saved)
	}
	if store.saved.ExpiresAt != nil || store.saved.PaymentRef != "" {
		t.Fatal("cancel should clear expiry and payment ref")
	}
}
