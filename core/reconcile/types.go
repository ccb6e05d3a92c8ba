package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"equipment-manager/core/store"
)

// ErrUnknownMode is returned for a reconciliation mode other than merge or replace.
var ErrUnknownMode = errors.New("unknown reconcile mode")

// Row is one parsed spreadsheet row: raw column name to raw value, in column order.
type Row = store.Record

// Mode controls how an import batch is applied to the collection.
type Mode string

const (
	// ModeMerge upserts by code and never deletes.
	ModeMerge Mode = "merge"
	// ModeReplace makes the collection exactly the batch.
	ModeReplace Mode = "replace"
)

// ParseMode resolves a mode name. An empty name means merge.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ActionType represents the effect of an import on one code.
type ActionType string

const (
	// ActionCreate inserts a new record.
	ActionCreate ActionType = "create"
	// ActionUpdate merges incoming fields into an existing record.
	ActionUpdate ActionType = "update"
	// ActionRemove drops an existing record (replace mode only).
	ActionRemove ActionType = "remove"
)

// Action represents the planned effect on a single code.
type Action struct {
	// Type specifies the effect.
	Type ActionType `json:"type"`

	// Code is the business key.
	Code string `json:"code"`

	// Reason explains why this action is needed.
	Reason string `json:"reason,omitempty"`
}

// Summary provides aggregate counts for an import.
type Summary struct {
	// TotalParsed is the number of rows handed to the import.
	TotalParsed int `json:"total_parsed"`

	// Imported is the number of distinct codes in the batch.
	Imported int `json:"imported"`

	// Created counts inserted records.
	Created int `json:"created"`

	// Updated counts records merged into existing ones.
	Updated int `json:"updated"`

	// Skipped counts blank rows and rows without a code.
	Skipped int `json:"skipped"`

	// Removed counts existing records dropped by a replace.
	Removed int `json:"removed"`
}

// Plan contains the outcome of reconciling one batch.
type Plan struct {
	// Mode is the mode the batch was applied with.
	Mode Mode `json:"mode"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`

	// Actions lists the effect per code, in application order.
	Actions []Action `json:"actions"`
}
