package accounting

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/roach88/tally/internal/gamedb"
)

// Balance is the net production of a node: power in MW and items in
// units per minute. Positive values are production, negative values
// consumption. Balances are immutable; arithmetic returns new values.
// The zero value is an empty balance.
type Balance struct {
	power float64
	items map[gamedb.ItemID]float64
}

// NewBalance builds a balance from a power rate and item rates. The
// items map is copied.
func NewBalance(power float64, items map[gamedb.ItemID]float64) Balance {
	b := Balance{power: power}
	if len(items) > 0 {
		b.items = make(map[gamedb.ItemID]float64, len(items))
		for id, rate := range items {
			b.items[id] = rate
		}
	}
	return b
}

// PowerOnly builds a balance with only a power rate.
func PowerOnly(power float64) Balance {
	return Balance{power: power}
}

// Power returns the net power in MW.
func (b Balance) Power() float64 {
	return b.power
}

// Item returns the net rate for one item, zero when absent.
func (b Balance) Item(id gamedb.ItemID) float64 {
	return b.items[id]
}

// HasItem reports whether the balance carries an entry for the item.
// An entry may exist with rate zero when production and consumption
// cancel out.
func (b Balance) HasItem(id gamedb.ItemID) bool {
	_, ok := b.items[id]
	return ok
}

// ItemRate is one item entry of a balance.
type ItemRate struct {
	Item gamedb.ItemID `json:"item"`
	Rate float64       `json:"rate"`
}

// Items returns all item entries sorted by id. Entries whose
// production and consumption cancel to zero are included.
func (b Balance) Items() []ItemRate {
	out := make([]ItemRate, 0, len(b.items))
	for id, rate := range b.items {
		out = append(out, ItemRate{Item: id, Rate: rate})
	}
	slices.SortFunc(out, func(x, y ItemRate) int {
		return strings.Compare(string(x.Item), string(y.Item))
	})
	return out
}

// IsZero reports whether the balance has no power and no item
// entries.
func (b Balance) IsZero() bool {
	return b.power == 0 && len(b.items) == 0
}

// Add returns the entry-wise sum of two balances.
func (b Balance) Add(other Balance) Balance {
	sum := Balance{
		power: b.power + other.power,
		items: make(map[gamedb.ItemID]float64, len(b.items)+len(other.items)),
	}
	for id, rate := range b.items {
		sum.items[id] = rate
	}
	for id, rate := range other.items {
		sum.items[id] += rate
	}
	if len(sum.items) == 0 {
		sum.items = nil
	}
	return sum
}

// Sub returns the entry-wise difference of two balances.
func (b Balance) Sub(other Balance) Balance {
	return b.Add(other.Neg())
}

// Neg returns the balance with every entry negated.
func (b Balance) Neg() Balance {
	return b.Scale(-1)
}

// Scale returns the balance with every entry multiplied by f.
func (b Balance) Scale(f float64) Balance {
	scaled := Balance{power: b.power * f}
	if len(b.items) > 0 {
		scaled.items = make(map[gamedb.ItemID]float64, len(b.items))
		for id, rate := range b.items {
			scaled.items[id] = rate * f
		}
	}
	return scaled
}

// SumBalances adds any number of balances.
func SumBalances(balances ...Balance) Balance {
	var sum Balance
	for _, b := range balances {
		sum = sum.Add(b)
	}
	return sum
}

// balanceJSON is the wire form of Balance.
type balanceJSON struct {
	Power float64                   `json:"power"`
	Items map[gamedb.ItemID]float64 `json:"items"`
}

// MarshalJSON implements json.Marshaler.
func (b Balance) MarshalJSON() ([]byte, error) {
	items := b.items
	if items == nil {
		items = map[gamedb.ItemID]float64{}
	}
	return json.Marshal(balanceJSON{Power: b.power, Items: items})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var raw balanceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items := raw.Items
	if len(items) == 0 {
		items = nil
	}
	*b = Balance{power: raw.Power, items: items}
	return nil
}
