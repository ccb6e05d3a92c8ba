package reconcile

import (
	"fmt"

	"equipment-manager/core/store"
)

// Batch is a deduplicated import batch keyed by code. It remembers the
// position where each code first appeared.
type Batch struct {
	order  []string
	byCode map[string]store.Record
}

// Dedupe collapses records sharing a code. The last occurrence wins.
func Dedupe(records []store.Record) *Batch {
	b := &Batch{byCode: make(map[string]store.Record, len(records))}
	for _, r := range records {
		code := r.Code()
		if code == "" {
			continue
		}
		if _, seen := b.byCode[code]; !seen {
			b.order = append(b.order, code)
		}
		b.byCode[code] = r
	}
	return b
}

// Len returns the number of distinct codes.
func (b *Batch) Len() int {
	return len(b.order)
}

// Get returns the record for a code.
func (b *Batch) Get(code string) (store.Record, bool) {
	r, ok := b.byCode[code]
	return r, ok
}

// Records returns the winning records in first-appearance order.
func (b *Batch) Records() []store.Record {
	out := make([]store.Record, 0, len(b.order))
	for _, code := range b.order {
		out = append(out, b.byCode[code])
	}
	return out
}

// Reconcile applies a batch to a snapshot and returns the resulting
// snapshot. The input snapshot is not modified.
//
// In replace mode the collection becomes exactly the batch. In merge mode a
// record whose code already exists overwrites the existing fields one by one,
// keeping the existing id, and keeping the existing image path when the
// incoming one is empty; other records are appended. Merge never deletes.
func Reconcile(s *store.Snapshot, b *Batch, mode Mode) (*store.Snapshot, Plan) {
	out := *s
	plan := Plan{Mode: mode}
	plan.Summary.Imported = b.Len()

	switch mode {
	case ModeReplace:
		out.Assets, plan = replace(s, b, plan)
	default:
		plan.Mode = ModeMerge
		out.Assets, plan = merge(s, b, plan)
	}
	return &out, plan
}

func replace(s *store.Snapshot, b *Batch, plan Plan) ([]store.Record, Plan) {
	assets := make([]store.Record, 0, b.Len())
	ids := newIDSet(nil)
	for _, inc := range b.Records() {
		r := inc.Clone()
		ids.claim(&r)
		assets = append(assets, r)
		plan.Summary.Created++
		plan.Actions = append(plan.Actions, Action{Type: ActionCreate, Code: r.Code()})
	}

	for i := range s.Assets {
		code := s.Assets[i].Code()
		if _, kept := b.Get(code); kept {
			continue
		}
		plan.Summary.Removed++
		plan.Actions = append(plan.Actions, Action{Type: ActionRemove, Code: code, Reason: "absent from batch"})
	}
	return assets, plan
}

func merge(s *store.Snapshot, b *Batch, plan Plan) ([]store.Record, Plan) {
	assets := make([]store.Record, len(s.Assets), len(s.Assets)+b.Len())
	byCode := make(map[string]int, len(s.Assets))
	for i := range s.Assets {
		assets[i] = s.Assets[i].Clone()
		if _, dup := byCode[assets[i].Code()]; !dup {
			byCode[assets[i].Code()] = i
		}
	}
	ids := newIDSet(assets)

	for _, inc := range b.Records() {
		code := inc.Code()
		if pos, ok := byCode[code]; ok {
			cur := assets[pos]
			merged := cur.Clone()
			merged.Overlay(inc)
			merged.SetText(store.FieldID, cur.ID())
			if v, _ := inc.Get(store.FieldImagePath); v.IsBlank() {
				merged.SetText(store.FieldImagePath, cur.Text(store.FieldImagePath))
			}
			assets[pos] = merged
			plan.Summary.Updated++
			plan.Actions = append(plan.Actions, Action{Type: ActionUpdate, Code: code})
			continue
		}

		r := inc.Clone()
		ids.claim(&r)
		byCode[code] = len(assets)
		assets = append(assets, r)
		plan.Summary.Created++
		plan.Actions = append(plan.Actions, Action{Type: ActionCreate, Code: code})
	}
	return assets, plan
}

// Import normalizes, deduplicates and reconciles a batch of raw rows.
// Blank rows and rows without a code are counted as skipped.
func Import(s *store.Snapshot, rows []Row, mode Mode) (*store.Snapshot, Plan) {
	records := make([]store.Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if IsBlank(row) {
			skipped++
			continue
		}
		rec, ok := Normalize(row, s)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	next, plan := Reconcile(s, Dedupe(records), mode)
	plan.Summary.TotalParsed = len(rows)
	plan.Summary.Skipped = skipped
	return next, plan
}

// String renders the summary for logs and CLI output.
func (s Summary) String() string {
	return fmt.Sprintf("parsed=%d imported=%d created=%d updated=%d skipped=%d removed=%d",
		s.TotalParsed, s.Imported, s.Created, s.Updated, s.Skipped, s.Removed)
}

// idSet tracks ids already present in a collection being built.
type idSet map[string]struct{}

func newIDSet(assets []store.Record) idSet {
	ids := make(idSet, len(assets))
	for i := range assets {
		ids[assets[i].ID()] = struct{}{}
	}
	return ids
}

// claim keeps r's id when it is unused and replaces it otherwise.
func (ids idSet) claim(r *store.Record) {
	id := r.ID()
	if _, taken := ids[id]; id == "" || taken {
		for {
			id = store.NewID()
			if _, taken := ids[id]; !taken {
				break
			}
		}
		r.SetText(store.FieldID, id)
	}
	ids[id] = struct{}{}
}
