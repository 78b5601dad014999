package models

// Plan cadences.
const (
	CadenceWeek    = "week"
	CadenceMonth   = "month"
	CadenceForever = "forever"
)

// Plan is one entry of the static subscription catalog. Price is in
// minor currency units (UGX has no subunit, so the amount itself).
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	Duration string   `json:"duration"`
	Tier     string   `json:"-"`
	Features []string `json:"features"`
}

var plans = []Plan{
	{
		ID:       "free",
		Name:     "Free",
		Price:    0,
		Duration: CadenceForever,
		Tier:     TierFree,
		Features: []string{"Limited movies", "Standard quality", "1 language"},
	},
	{
		ID:       "basic-weekly",
		Name:     "Basic Weekly",
		Price:    5000,
		Duration: CadenceWeek,
		Tier:     TierBasic,
		Features: []string{"More movies", "HD quality", "All languages", "Download up to 5 movies"},
	},
	{
		ID:       "basic-monthly",
		Name:     "Basic Monthly",
		Price:    15000,
		Duration: CadenceMonth,
		Tier:     TierBasic,
		Features: []string{"More movies", "HD quality", "All languages", "Download up to 5 movies"},
	},
	{
		ID:       "premium-weekly",
		Name:     "Premium Weekly",
		Price:    8000,
		Duration: CadenceWeek,
		Tier:     TierPremium,
		Features: []string{"All movies", "4K quality", "All languages", "Unlimited downloads", "Early access"},
	},
	{
		ID:       "premium-monthly",
		Name:     "Premium Monthly",
		Price:    25000,
		Duration: CadenceMonth,
		Tier:     TierPremium,
		Features: []string{"All movies", "4K quality", "All languages", "Unlimited downloads", "Early access"},
	},
}

// Plans returns the static plan catalog.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID resolves a purchasable plan. The free plan is not purchasable.
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id && p.Tier != TierFree {
			return p, true
		}
	}
	return Plan{}, false
}
