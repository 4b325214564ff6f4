// Package plans holds the static credit-pack catalog. Prices are whole INR.
package plans

// Plan defines one purchasable credit pack.
type Plan struct {
	ID          string
	DisplayName string
	Credits     int
	Price       int
	Currency    string
}

// Plans holds all purchasable packs keyed by plan ID.
var Plans = map[string]*Plan{
	"basic": {
		ID:          "basic",
		DisplayName: "Basic Pack",
		Credits:     5,
		Price:       99,
		Currency:    "INR",
	},
	"pro": {
		ID:          "pro",
		DisplayName: "Pro Pack",
		Credits:     12,
		Price:       199,
		Currency:    "INR",
	},
	"premium": {
		ID:          "premium",
		DisplayName: "Premium Pack",
		Credits:     30,
		Price:       399,
		Currency:    "INR",
	},
}

// PlanOrder defines the display ordering of packs.
var PlanOrder = []string{"basic", "pro", "premium"}

// Get returns a plan by its ID, or nil.
func Get(id string) *Plan {
	return Plans[id]
}
