// Package report summarizes factory trees into production reports
// rendered as text tables or JSON.
package report

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/world"
)

// Report is the production summary of a factory tree: the power and
// per-item flows with production and consumption split out, plus a
// warning for every building that no longer builds against the
// database.
type Report struct {
	// Name of the factory.
	Name string `json:"name,omitempty"`
	// Database labels the database the tree was built against: a
	// standard version id, or "custom".
	Database string `json:"database,omitempty"`
	// Groups and Buildings count the nodes of the tree. Copy counts
	// do not multiply them.
	Groups    int `json:"groups"`
	Buildings int `json:"buildings"`
	// Power is the power flow in MW.
	Power Flow `json:"power"`
	// Items lists the item flows, sorted by display name.
	Items []ItemFlow `json:"items,omitempty"`
	// Warnings lists degraded buildings in tree order.
	Warnings []Warning `json:"warnings,omitempty"`
}

// Flow splits a rate into production and consumption. Consumed is
// positive, and Net is produced minus consumed.
type Flow struct {
	Produced float64 `json:"produced"`
	Consumed float64 `json:"consumed"`
	Net      float64 `json:"net"`
}

func (f *Flow) add(rate float64) {
	switch {
	case rate > 0:
		f.Produced += rate
	case rate < 0:
		f.Consumed -= rate
	}
	f.Net += rate
}

// ItemFlow is the flow of one item, in items per minute.
type ItemFlow struct {
	ID   gamedb.ItemID `json:"id"`
	Name string        `json:"name"`
	Flow
}

// Warning reports a building that could not compute a balance.
type Warning struct {
	// Path locates the node, in the form nodes[1].children[0].
	Path string `json:"path"`
	// Code is the build error category.
	Code accounting.BuildErrorCode `json:"code"`
	// Message describes the failure.
	Message string `json:"message"`
}

// New summarizes a node tree. Item names come from the database; ids
// missing from it render as the raw id.
func New(root *accounting.Node, db *gamedb.Database) *Report {
	r := &Report{}
	flows := map[gamedb.ItemID]*Flow{}
	r.collect(root, 1, "", flows)

	r.Items = make([]ItemFlow, 0, len(flows))
	for id, flow := range flows {
		name := string(id)
		if item, ok := db.Item(id); ok {
			name = item.Name
		}
		r.Items = append(r.Items, ItemFlow{ID: id, Name: name, Flow: *flow})
	}
	slices.SortFunc(r.Items, func(a, b ItemFlow) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return r
}

// ForWorld summarizes a world against its loaded database.
func ForWorld(w *world.World, db *gamedb.Database) *Report {
	r := New(w.Root, db)
	r.Name = w.Name()
	if version, ok := w.Database.StandardVersion(); ok {
		r.Database = string(version)
	} else {
		r.Database = "custom"
	}
	return r
}

// collect walks the tree accumulating counts, flows, and warnings.
// mult is the product of the copy counts of the enclosing groups.
func (r *Report) collect(node *accounting.Node, mult float64, path string, flows map[gamedb.ItemID]*Flow) {
	if warning := node.Warning(); warning != nil {
		r.Warnings = append(r.Warnings, Warning{
			Path:    path,
			Code:    warning.Code,
			Message: warning.Message,
		})
	}

	if g, ok := node.Group(); ok {
		r.Groups++
		mult *= g.Copies
		for i, child := range g.Children {
			r.collect(child, mult, childPath(path, i), flows)
		}
		return
	}

	r.Buildings++
	balance := node.Balance()
	r.Power.add(balance.Power() * mult)
	for _, entry := range balance.Items() {
		rate := entry.Rate * mult
		if rate == 0 {
			continue
		}
		flow := flows[entry.Item]
		if flow == nil {
			flow = &Flow{}
			flows[entry.Item] = flow
		}
		flow.add(rate)
	}
}

func childPath(parent string, index int) string {
	if parent == "" {
		return fmt.Sprintf("nodes[%d]", index)
	}
	return fmt.Sprintf("%s.children[%d]", parent, index)
}
