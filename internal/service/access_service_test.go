package service

import (
	"testing"
	"time"

	"github.com/jonathanaloya/cineflix/internal/models"
)

func userWithTier(tier string, expiresAt *time.Time) *models.User {
	return &models.User{
		Role: models.RoleUser,
		Subscription: models.Subscription{
			Type:      tier,
			ExpiresAt: expiresAt,
		},
	}
}

func movieRequiring(tier string) *models.Movie {
	return &models.Movie{Title: "t", SubscriptionRequired: tier}
}

func TestCanStreamTierOrder(t *testing.T) {
	svc := NewAccessService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		userTier   string
		movieTier  string
		wantReason string // "" means allowed
	}{
		{"free watches free", models.TierFree, models.TierFree, ""},
		{"free blocked from basic", models.TierFree, models.TierBasic, ReasonUpgradeRequired},
		{"free blocked from premium", models.TierFree, models.TierPremium, ReasonUpgradeRequired},
		{"basic watches free", models.TierBasic, models.TierFree, ""},
		{"basic watches basic", models.TierBasic, models.TierBasic, ""},
		{"basic blocked from premium", models.TierBasic, models.TierPremium, ReasonUpgradeRequired},
		{"premium watches everything", models.TierPremium, models.TierPremium, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := userWithTier(tc.userTier, &future)
			d := svc.CanStream(u, movieRequiring(tc.movieTier), now)
			if tc.wantReason == "" {
				if d != nil {
					t.Fatalf("expected allow, got %s", d)
				}
				return
			}
			if d == nil || d.Reason != tc.wantReason {
				t.Fatalf("expected %s, got %s", tc.wantReason, d)
			}
			if tc.wantReason == ReasonUpgradeRequired && d.RequiredTier != tc.movieTier {
				t.Fatalf("RequiredTier = %q, want %q", d.RequiredTier, tc.movieTier)
			}
		})
	}
}

func TestCanStreamExpiry(t *testing.T) {
	svc := NewAccessService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	// lapsed basic, basic movie: tier is nominally sufficient, so the
	// denial names expiry rather than an upgrade
	u := userWithTier(models.TierBasic, &past)
	d := svc.CanStream(u, movieRequiring(models.TierBasic), now)
	if d == nil || d.Reason != ReasonExpired {
		t.Fatalf("expected %s, got %s", ReasonExpired, d)
	}

	// lapsed basic, premium movie: tier was never sufficient
	d = svc.CanStream(u, movieRequiring(models.TierPremium), now)
	if d == nil || d.Reason != ReasonUpgradeRequired {
		t.Fatalf("expected %s, got %s", ReasonUpgradeRequired, d)
	}

	// lapsed basic still watches free content
	if d := svc.CanStream(u, movieRequiring(models.TierFree), now); d != nil {
		t.Fatalf("free content should stay open, got %s", d)
	}

	// expiry boundary is inclusive: at exactly expiresAt the sub is lapsed
	edge := userWithTier(models.TierBasic, &now)
	if d := svc.CanStream(edge, movieRequiring(models.TierBasic), now); d == nil || d.Reason != ReasonExpired {
		t.Fatalf("expected expiry at the exact boundary, got %s", d)
	}

	// paid sub with no expiry date is open-ended
	open := userWithTier(models.TierPremium, nil)
	if d := svc.CanStream(open, movieRequiring(models.TierPremium), now); d != nil {
		t.Fatalf("expected allow for open-ended sub, got %s", d)
	}
}

func TestCanStreamAdminBypass(t *testing.T) {
	svc := NewAccessService()
	now := time.Now()
	past := now.Add(-time.Hour)

	admin := userWithTier(models.TierFree, &past)
	admin.Role = models.RoleAdmin

	if d := svc.CanStream(admin, movieRequiring(models.TierPremium), now); d != nil {
		t.Fatalf("admin should bypass entitlement, got %s", d)
	}
	if d := svc.CanDownload(admin, now); d != nil {
		t.Fatalf("admin should bypass download gate, got %s", d)
	}
	if reset, d := svc.CheckDailyQuota(admin, now); reset || d != nil {
		t.Fatalf("admin should be exempt from quota, got reset=%v d=%s", reset, d)
	}
}

func TestCanDownload(t *testing.T) {
	svc := NewAccessService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	free := userWithTier(models.TierFree, nil)
	d := svc.CanDownload(free, now)
	if d == nil || d.Reason != ReasonSubRequired || d.Feature != "download" {
		t.Fatalf("free tier download should deny with feature, got %s", d)
	}

	lapsed := userWithTier(models.TierPremium, &past)
	if d := svc.CanDownload(lapsed, now); d == nil || d.Reason != ReasonExpired {
		t.Fatalf("lapsed sub download should deny expired, got %s", d)
	}

	active := userWithTier(models.TierBasic, &future)
	if d := svc.CanDownload(active, now); d != nil {
		t.Fatalf("active basic should download, got %s", d)
	}
}

func TestCheckDailyQuota(t *testing.T) {
	svc := NewAccessService()
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	t.Run("paid users exempt even when lapsed", func(t *testing.T) {
		past := now.Add(-time.Hour)
		u := userWithTier(models.TierBasic, &past)
		u.DailyStreams = models.DailyStreams{Date: DayStart(now), Count: 99}
		if reset, d := svc.CheckDailyQuota(u, now); reset || d != nil {
			t.Fatalf("got reset=%v d=%s", reset, d)
		}
	})

	t.Run("stale counter needs reset", func(t *testing.T) {
		u := userWithTier(models.TierFree, nil)
		u.DailyStreams = models.DailyStreams{Date: DayStart(now.AddDate(0, 0, -1)), Count: 1}
		reset, d := svc.CheckDailyQuota(u, now)
		if !reset {
			t.Fatal("expected needsReset for yesterday's counter")
		}
		if d != nil {
			t.Fatalf("stale counter must not deny, got %s", d)
		}
	})

	t.Run("exhausted quota denies", func(t *testing.T) {
		u := userWithTier(models.TierFree, nil)
		u.DailyStreams = models.DailyStreams{Date: DayStart(now), Count: 1}
		reset, d := svc.CheckDailyQuota(u, now)
		if reset {
			t.Fatal("same-day counter should not reset")
		}
		if d == nil || d.Reason != ReasonDailyLimit {
			t.Fatalf("expected %s, got %s", ReasonDailyLimit, d)
		}
	})

	t.Run("unused quota allows", func(t *testing.T) {
		u := userWithTier(models.TierFree, nil)
		u.DailyStreams = models.DailyStreams{Date: DayStart(now), Count: 0}
		if reset, d := svc.CheckDailyQuota(u, now); reset || d != nil {
			t.Fatalf("got reset=%v d=%s", reset, d)
		}
	})
}

func TestDayStart(t *testing.T) {
	kampala := time.FixedZone("EAT", 3*60*60)

	// 01:30 EAT on June 2 is still June 1 in UTC
	local := time.Date(2025, 6, 2, 1, 30, 0, 0, kampala)
	got := DayStart(local)
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DayStart(%v) = %v, want %v", local, got, want)
	}

	// idempotent
	if again := DayStart(got); !again.Equal(got) {
		t.Fatalf("DayStart not idempotent: %v -> %v", got, again)
	}
}
