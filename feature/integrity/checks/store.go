package checks

import (
	"errors"
	"strconv"
	"strings"

	"equipment-manager/core/store"
)

// Problem is one finding of the document check.
type Problem struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Detail  string `json:"detail,omitempty"`
}

// Problem kinds.
const (
	ProblemMissing           = "missing_document"
	ProblemCorrupt           = "corrupt_document"
	ProblemBlankID           = "blank_id"
	ProblemDuplicateID       = "duplicate_id"
	ProblemBlankCode         = "blank_code"
	ProblemDuplicateCode     = "duplicate_code"
	ProblemMaintenanceStatus = "unknown_maintenance_status"
	ProblemBlankUsername     = "blank_username"
	ProblemDuplicateUser     = "duplicate_username"
)

// StoreReport is the result of the document check.
type StoreReport struct {
	Assets   int       `json:"assets"`
	Users    int       `json:"users"`
	Problems []Problem `json:"problems"`
	Status   string    `json:"status"` // "ok", "error"
}

// CheckStore loads the document and reports every record that breaks the
// collection rules. Unlike Snapshot.Validate it does not stop at the first
// finding. Only read failures are returned as errors.
func CheckStore(s store.Store) (*StoreReport, error) {
	report := &StoreReport{Problems: []Problem{}, Status: "ok"}

	snap, err := s.Load()
	switch {
	case errors.Is(err, store.ErrNotFound):
		report.add(ProblemMissing, "document", err.Error())
		return report, nil
	case errors.Is(err, store.ErrCorruptStore):
		report.add(ProblemCorrupt, "document", err.Error())
		return report, nil
	case err != nil:
		return nil, err
	}

	report.Assets = len(snap.Assets)
	report.Users = len(snap.Users)

	allowed := make(map[string]bool, len(snap.MaintenanceStatusChoices))
	for _, c := range snap.MaintenanceStatusChoices {
		allowed[c] = true
	}

	ids := make(map[string]bool, len(snap.Assets))
	codes := make(map[string]bool, len(snap.Assets))
	for _, a := range snap.Assets {
		id, code := a.ID(), a.Code()
		subject := code
		if subject == "" {
			subject = id
		}

		switch {
		case strings.TrimSpace(id) == "":
			report.add(ProblemBlankID, subject, "")
		case ids[id]:
			report.add(ProblemDuplicateID, id, "")
		}
		ids[id] = true

		switch {
		case code == "":
			report.add(ProblemBlankCode, id, "")
		case codes[code]:
			report.add(ProblemDuplicateCode, code, "")
		}
		codes[code] = true

		if ms := a.Text(store.FieldMaintenanceStatus); ms != "" && len(allowed) > 0 && !allowed[ms] {
			report.add(ProblemMaintenanceStatus, subject, ms)
		}
	}

	users := make(map[string]bool, len(snap.Users))
	for i, u := range snap.Users {
		name := strings.TrimSpace(u.Username)
		switch {
		case name == "":
			report.add(ProblemBlankUsername, "user", "position "+strconv.Itoa(i))
		case users[name]:
			report.add(ProblemDuplicateUser, name, "")
		}
		users[name] = true
	}

	return report, nil
}

func (r *StoreReport) add(kind, subject, detail string) {
	r.Problems = append(r.Problems, Problem{Kind: kind, Subject: subject, Detail: detail})
	r.Status = "error"
}
