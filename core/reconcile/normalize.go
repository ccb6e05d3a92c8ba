package reconcile

import (
	"strings"

	"equipment-manager/core/store"
	"equipment-manager/core/utils"
)

// IsBlank reports whether every cell of the row is empty.
func IsBlank(row Row) bool {
	for _, k := range row.Keys() {
		v, _ := row.Get(k)
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

// Normalize turns a raw row into an asset record. It returns false when no
// code can be resolved; such rows are skipped, not treated as errors.
//
// Known fields are resolved through the alias table and written under their
// canonical names; the alias columns are dropped and all other columns are
// kept. Defaults: maintenance status is the snapshot's first allowed choice,
// image path is empty, and a row without an id gets a fresh one.
func Normalize(row Row, s *store.Snapshot) (store.Record, bool) {
	code := Resolve(row, CodeAliases)
	if code == "" {
		return store.Record{}, false
	}

	out := row.Clone()
	dropAliases(&out, CodeAliases)
	out.SetText(store.FieldCode, code)

	for _, fa := range OptionalAliases {
		v, ok := resolveValue(row, fa)
		dropAliases(&out, fa)
		if !ok {
			continue
		}
		if fa.Field == store.FieldUnitCost {
			out.Set(fa.Field, coerceNumber(v))
			continue
		}
		out.SetText(fa.Field, strings.TrimSpace(v.Text()))
	}

	if out.Text(store.FieldMaintenanceStatus) == "" {
		out.SetText(store.FieldMaintenanceStatus, s.DefaultMaintenanceStatus())
	}
	if v, ok := out.Get(store.FieldImagePath); !ok || v.IsAbsent() {
		out.SetText(store.FieldImagePath, "")
	}
	if strings.TrimSpace(out.ID()) == "" {
		out.SetText(store.FieldID, s.UniqueID())
	}
	return out, true
}

// coerceNumber turns a numeric-looking string into a number and leaves
// everything else alone.
func coerceNumber(v store.Value) store.Value {
	if v.Kind() != store.KindString {
		return v
	}
	if f, ok := utils.ParseNumber(v.Text()); ok {
		return store.Number(f)
	}
	return v
}
