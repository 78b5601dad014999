package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription tiers, totally ordered free < basic < premium.
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPremium = "premium"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TierRank maps a tier onto the total order used by access checks.
// Unknown tiers rank as free.
func TierRank(tier string) int {
	switch tier {
	case TierBasic:
		return 1
	case TierPremium:
		return 2
	default:
		return 0
	}
}

type Subscription struct {
	Type       string     `json:"type" bson:"type"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	PaymentRef string     `json:"paymentRef,omitempty" bson:"paymentRef,omitempty"`
}

// Expired reports whether a paid subscription has lapsed at t. A free
// subscription never expires; a paid one with no expiry date is treated
// as open-ended.
func (s Subscription) Expired(t time.Time) bool {
	if s.Type == TierFree || s.ExpiresAt == nil {
		return false
	}
	return !t.Before(*s.ExpiresAt)
}

// DailyStreams tracks free-tier usage within the calendar day named by
// Date. Date is always stored normalized to UTC midnight.
type DailyStreams struct {
	Date  time.Time `json:"date" bson:"date"`
	Count int       `json:"count" bson:"count"`
}

type User struct {
	ID                primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Email             string               `json:"email" bson:"email"`
	Mobile            string               `json:"mobile,omitempty" bson:"mobile,omitempty"`
	PasswordHash      string               `json:"-" bson:"passwordHash"`
	Name              string               `json:"name" bson:"name"`
	Role              string               `json:"role" bson:"role"`
	PreferredLanguage string               `json:"preferredLanguage" bson:"preferredLanguage"`
	Subscription      Subscription         `json:"subscription" bson:"subscription"`
	Watchlist         []primitive.ObjectID `json:"watchlist" bson:"watchlist"`
	Favorites         []primitive.ObjectID `json:"favorites" bson:"favorites"`
	DownloadedMovies  []primitive.ObjectID `json:"downloadedMovies" bson:"downloadedMovies"`
	DailyStreams      DailyStreams         `json:"dailyStreams" bson:"dailyStreams"`
	IsActive          bool                 `json:"isActive" bson:"isActive"`
	CreatedAt         time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt" bson:"updatedAt"`
}
