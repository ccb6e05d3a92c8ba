package reconcile

import (
	"strings"

	"equipment-manager/core/store"
)

// FieldAliases maps a canonical field to the column headers accepted for it,
// in priority order. The canonical name itself is always tried first.
type FieldAliases struct {
	Field   string
	Aliases []string
}

// CodeAliases resolves the business key. A row without one is skipped.
var CodeAliases = FieldAliases{
	Field: store.FieldCode,
	Aliases: []string{
		"Code", "CODE", "Asset Code", "asset_code",
		"รหัสเครื่องมือห้องปฏิบัติการ", "รหัสครุภัณฑ์", "รหัสเครื่องมือ", "รหัส",
	},
}

// OptionalAliases resolves the remaining known fields. A field is only
// written when one of its columns holds a non-empty value.
var OptionalAliases = []FieldAliases{
	{Field: store.FieldName, Aliases: []string{"Name", "NAME", "ชื่อ", "ชื่อครุภัณฑ์"}},
	{Field: store.FieldModel, Aliases: []string{"Model", "MODEL", "รุ่น"}},
	{Field: store.FieldSerial, Aliases: []string{"Serial", "SN", "S/N", "serial_number", "หมายเลขเครื่อง", "หมายเลขเครื่อง/Serial"}},
	{Field: store.FieldStatus, Aliases: []string{"Status", "STATUS", "สถานะ"}},
	{Field: store.FieldLocation, Aliases: []string{"Location", "LOCATION", "สถานที่ใช้งาน (ปัจจุบัน)", "สถานที่ใช้งาน"}},
	{Field: store.FieldMaintenanceStatus, Aliases: []string{"Maintenance Status", "maintenance_status", "สถานะแจ้งซ่อม"}},
	{Field: store.FieldMaintenanceNote, Aliases: []string{"Maintenance Note", "maintenance_note", "หมายเหตุการซ่อม"}},
	{Field: store.FieldImagePath, Aliases: []string{"Image", "image", "รูปภาพครุภัณฑ์"}},
	{Field: store.FieldUnitCost, Aliases: []string{"Unit Cost", "unit_cost", "cost", "Cost", "ต้นทุนต่อหน่วย"}},
}

// columns returns the canonical field followed by its aliases.
func (fa FieldAliases) columns() []string {
	return append([]string{fa.Field}, fa.Aliases...)
}

// resolveValue returns the first column holding a non-blank value.
func resolveValue(row Row, fa FieldAliases) (store.Value, bool) {
	for _, col := range fa.columns() {
		v, ok := row.Get(col)
		if !ok || v.IsBlank() {
			continue
		}
		return v, true
	}
	return store.Value{}, false
}

// Resolve returns the first non-empty value among the field's columns,
// trimmed, or "" when every column is empty or missing.
func Resolve(row Row, fa FieldAliases) string {
	v, ok := resolveValue(row, fa)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

// dropAliases removes every non-canonical column of fa from r.
func dropAliases(r *store.Record, fa FieldAliases) {
	for _, col := range fa.Aliases {
		if col != fa.Field {
			r.Delete(col)
		}
	}
}
