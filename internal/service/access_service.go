package service

import (
	"fmt"
	"time"

	"github.com/jonathanaloya/cineflix/internal/models"
)

// Denial reasons, carried to the client so it can render the right
// upsell instead of a generic 403.
const (
	ReasonDailyLimit      = "daily_limit_reached"
	ReasonUpgradeRequired = "subscription_upgrade_required"
	ReasonExpired         = "subscription_expired"
	ReasonSubRequired     = "subscription_required"
)

// Denial explains why an action was refused. A nil *Denial means the
// action is allowed.
type Denial struct {
	Reason       string
	Message      string
	RequiredTier string // set for ReasonUpgradeRequired
	Feature      string // set for ReasonSubRequired
}

// AccessService decides whether a user may stream or download a title.
// It is a pure predicate: counter increments happen at the caller once
// the action actually proceeds.
type AccessService struct {
	// FreeDailyLimit is the number of streams a free user gets per
	// calendar day.
	FreeDailyLimit int
}

func NewAccessService() *AccessService {
	return &AccessService{FreeDailyLimit: 1}
}

// CanStream applies, in order: admin bypass, tier comparison on the
// total order free < basic < premium (a lapsed paid subscription counts
// as free), then the expiry check for nominally sufficient tiers.
func (s *AccessService) CanStream(u *models.User, m *models.Movie, now time.Time) *Denial {
	if u.Role == models.RoleAdmin {
		return nil
	}

	required := models.TierRank(m.SubscriptionRequired)
	if required == 0 {
		// free content is open to everyone, lapsed subscribers included
		return nil
	}

	nominal := models.TierRank(u.Subscription.Type)
	expired := u.Subscription.Expired(now)

	if nominal >= required {
		if expired {
			return &Denial{
				Reason:  ReasonExpired,
				Message: "Subscription expired",
			}
		}
		return nil
	}
	return &Denial{
		Reason:       ReasonUpgradeRequired,
		Message:      "Subscription upgrade required",
		RequiredTier: m.SubscriptionRequired,
	}
}

// CanDownload: free tier never downloads, regardless of the movie; any
// unexpired paid tier does.
func (s *AccessService) CanDownload(u *models.User, now time.Time) *Denial {
	if u.Role == models.RoleAdmin {
		return nil
	}
	if u.Subscription.Type == models.TierFree {
		return &Denial{
			Reason:  ReasonSubRequired,
			Message: "Downloads require a subscription. Please upgrade to Basic or Premium plan.",
			Feature: "download",
		}
	}
	if u.Subscription.Expired(now) {
		return &Denial{
			Reason:  ReasonExpired,
			Message: "Subscription expired. Please renew to continue downloading.",
		}
	}
	return nil
}

// CheckDailyQuota evaluates the free-tier daily stream quota at now.
// Admins and nominally paid users (even lapsed ones; expiry is the
// entitlement check's job) are exempt. needsReset reports that the
// stored counter belongs to an earlier day and must be zeroed before
// any reservation.
//
// Day boundaries are UTC midnight.
func (s *AccessService) CheckDailyQuota(u *models.User, now time.Time) (needsReset bool, d *Denial) {
	if u.Role == models.RoleAdmin || u.Subscription.Type != models.TierFree {
		return false, nil
	}

	today := DayStart(now)
	if DayStart(u.DailyStreams.Date).Before(today) {
		// new day: counter resets to zero, quota available
		return true, nil
	}

	if u.DailyStreams.Count >= s.FreeDailyLimit {
		return false, &Denial{
			Reason:  ReasonDailyLimit,
			Message: "Daily streaming limit reached. Please subscribe to continue watching.",
		}
	}
	return false, nil
}

// TrackedForQuota reports whether granted streams consume the user's
// daily quota.
func (s *AccessService) TrackedForQuota(u *models.User) bool {
	return u.Role != models.RoleAdmin && u.Subscription.Type == models.TierFree
}

// DayStart normalizes t to UTC midnight of its calendar day.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d *Denial) String() string {
	if d == nil {
		return "allow"
	}
	return fmt.Sprintf("deny(%s)", d.Reason)
}
