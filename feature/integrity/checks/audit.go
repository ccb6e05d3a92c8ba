package checks

import (
	"fmt"
	"reflect"
	"strings"

	"equipment-manager/core/audit"
	"equipment-manager/core/database"

	"gorm.io/gorm"
)

// AuditReport is the result of the audit schema check.
type AuditReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error", "disabled"
	Errors         []string `json:"errors,omitempty"`
}

// CheckAuditSchema verifies the audit table against the audit.Entry model.
// A nil db means the trail is disabled, which is reported, not an error.
func CheckAuditSchema(db *gorm.DB) (*AuditReport, error) {
	model := reflect.TypeOf(audit.Entry{})
	report := &AuditReport{
		Table:          audit.Entry{}.TableName(),
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
		Matched:        true,
	}

	if db == nil {
		report.Status = "disabled"
		return report, nil
	}

	actualCols, err := database.GetTableColumns(db, report.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", report.Table, err)
	}
	if len(actualCols) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("table %s does not exist", report.Table))
		report.Status = "error"
		report.Matched = false
		return report, nil
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < model.NumField(); i++ {
		tag := model.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(tag)
		if colName == "" {
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			report.MissingColumns = append(report.MissingColumns, colName)
			report.Status = "error"
			report.Matched = false
			continue
		}

		// Only columns with an explicit type are type checked.
		if expType := strings.ToLower(parseGormType(tag)); expType != "" && !strings.Contains(actCol.Type, expType) {
			report.TypeMismatches = append(report.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
			report.Status = "error"
			report.Matched = false
		}
	}

	return report, nil
}

func parseGormColumn(tag string) string {
	return gormTagValue(tag, "column:")
}

func parseGormType(tag string) string {
	return gormTagValue(tag, "type:")
}

func gormTagValue(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
