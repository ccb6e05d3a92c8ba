package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Canonical field names understood by the core. Every other field is opaque.
const (
	FieldID                = "id"
	FieldCode              = "code"
	FieldName              = "name"
	FieldModel             = "model"
	FieldSerial            = "serial"
	FieldStatus            = "status"
	FieldMaintenanceStatus = "maintenanceStatus"
	FieldMaintenanceNote   = "maintenanceNote"
	FieldLastReportedAt    = "lastReportedAt"
	FieldLocation          = "location"
	FieldImagePath         = "imagePath"
	FieldUnitCost          = "unitCost"
)

// Record is an asset: an ordered mapping of field name to Value.
// Field order is preserved across decode and encode.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{vals: make(map[string]Value)}
}

// RecordFromMap builds a record from a plain map. Keys are sorted so the
// result is deterministic.
func RecordFromMap(m map[string]any) (Record, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := NewRecord()
	for _, k := range keys {
		v, err := ValueOf(m[k])
		if err != nil {
			return Record{}, fmt.Errorf("field %q: %w", k, err)
		}
		r.Set(k, v)
	}
	return r, nil
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Keys returns field names in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value of a field.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Text returns the text of a field, or "" when missing.
func (r Record) Text(key string) string {
	return r.vals[key].Text()
}

// ID returns the system id.
func (r Record) ID() string {
	return r.Text(FieldID)
}

// Code returns the trimmed business key.
func (r Record) Code() string {
	return strings.TrimSpace(r.Text(FieldCode))
}

// Set assigns a field, appending it when new.
func (r *Record) Set(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// SetText assigns a string field.
func (r *Record) SetText(key, s string) {
	r.Set(key, String(s))
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	if _, ok := r.vals[key]; !ok {
		return
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Overlay copies every field of src over r, in src order.
func (r *Record) Overlay(src Record) {
	for _, k := range src.keys {
		r.Set(k, src.vals[k])
	}
}

// Clone returns a copy that shares nothing with r.
func (r Record) Clone() Record {
	out := Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// MarshalJSON encodes the record as an object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order. A repeated key keeps
// its first position and its last value.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	out := NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record key must be a string")
		}
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		v, err := valueFromToken(tok)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
