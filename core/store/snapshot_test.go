package store

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(t *testing.T, m map[string]any) Record {
	t.Helper()
	r, err := RecordFromMap(m)
	require.NoError(t, err)
	return r
}

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name   string
		assets []Record
		want   error
	}{
		{"Empty", nil, nil},
		{"Valid", []Record{
			rec(t, map[string]any{"id": "A-1", "code": "X1"}),
			rec(t, map[string]any{"id": "A-2", "code": "X2"}),
		}, nil},
		{"DuplicateCode", []Record{
			rec(t, map[string]any{"id": "A-1", "code": "X1"}),
			rec(t, map[string]any{"id": "A-2", "code": " X1 "}),
		}, ErrDuplicateCode},
		{"DuplicateID", []Record{
			rec(t, map[string]any{"id": "A-1", "code": "X1"}),
			rec(t, map[string]any{"id": "A-1", "code": "X2"}),
		}, ErrInvalidRecord},
		{"BlankID", []Record{
			rec(t, map[string]any{"code": "X1"}),
		}, ErrInvalidRecord},
		{"BlankCode", []Record{
			rec(t, map[string]any{"id": "A-1", "code": "  "}),
		}, ErrInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Snapshot{Assets: tt.assets}
			err := s.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := &Snapshot{
		Meta:                     json.RawMessage(`{"name":"Lab"}`),
		MaintenanceStatusChoices: []string{"Never reported"},
		Assets:                   []Record{rec(t, map[string]any{"id": "A-1", "code": "X1"})},
	}

	c := s.Clone()
	c.Assets[0].SetText(FieldCode, "X2")
	c.Assets[0].SetText("extra", "y")
	c.MaintenanceStatusChoices[0] = "Other"

	assert.Equal(t, "X1", s.Assets[0].Code())
	assert.Equal(t, 2, s.Assets[0].Len())
	assert.Equal(t, "Never reported", s.MaintenanceStatusChoices[0])
}

func TestSnapshot_Lookup(t *testing.T) {
	s := &Snapshot{Assets: []Record{
		rec(t, map[string]any{"id": "A-1", "code": "X1"}),
		rec(t, map[string]any{"id": "A-2", "code": "X2"}),
	}}

	assert.Equal(t, 1, s.IndexByID("A-2"))
	assert.Equal(t, -1, s.IndexByID("A-9"))
	assert.Equal(t, 0, s.IndexByCode(" X1"))
	assert.Equal(t, -1, s.IndexByCode("x1"))
}

func TestSnapshot_DefaultMaintenanceStatus(t *testing.T) {
	assert.Equal(t, "Reported", (&Snapshot{MaintenanceStatusChoices: []string{"Reported"}}).DefaultMaintenanceStatus())
	assert.Equal(t, FallbackMaintenanceStatus, (&Snapshot{}).DefaultMaintenanceStatus())
}

func TestNewID(t *testing.T) {
	pattern := regexp.MustCompile(`^A-[0-9A-F]{6}$`)
	s := &Snapshot{}
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, s.UniqueID())
	}
}
