package codes_test

import (
	"testing"

	"equipment-manager/core/codes"
	"equipment-manager/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(t *testing.T, codeList ...string) *store.Snapshot {
	s := &store.Snapshot{}
	for i, c := range codeList {
		r, err := store.RecordFromMap(map[string]any{"id": store.NewID() + string(rune('a'+i)), "code": c})
		require.NoError(t, err)
		s.Assets = append(s.Assets, r)
	}
	return s
}

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		kind  codes.Kind
		want  string
	}{
		{"Empty", nil, codes.KindEquipment, "LAB-AS-EQ-A001"},
		{"Gap", []string{"LAB-AS-EQ-A001", "LAB-AS-EQ-A007"}, codes.KindEquipment, "LAB-AS-EQ-A008"},
		{"OtherSeriesIgnored", []string{"LAB-AS-GN-A050", "LAB-AS-EQ-A002"}, codes.KindEquipment, "LAB-AS-EQ-A003"},
		{"General", []string{"LAB-AS-GN-A050", "LAB-AS-EQ-A002"}, codes.KindGeneral, "LAB-AS-GN-A051"},
		{"CaseInsensitivePrefix", []string{"lab-as-eq-a010"}, codes.KindEquipment, "LAB-AS-EQ-A011"},
		{"MalformedIgnored", []string{"LAB-AS-EQ-A01x", "LAB-AS-EQ-A", "XLAB-AS-EQ-A900", "LAB-AS-EQ-A004"}, codes.KindEquipment, "LAB-AS-EQ-A005"},
		{"SurroundingSpaceTrimmed", []string{"  LAB-AS-EQ-A020 "}, codes.KindEquipment, "LAB-AS-EQ-A021"},
		{"PastThreeDigits", []string{"LAB-AS-EQ-A999"}, codes.KindEquipment, "LAB-AS-EQ-A1000"},
		{"OverflowIgnored", []string{"LAB-AS-EQ-A99999999999999999999999", "LAB-AS-EQ-A003"}, codes.KindEquipment, "LAB-AS-EQ-A004"},
		{"MaxSuffixIgnored", []string{"LAB-AS-EQ-A18446744073709551615", "LAB-AS-EQ-A003"}, codes.KindEquipment, "LAB-AS-EQ-A004"},
		{"LargestIncrementable", []string{"LAB-AS-EQ-A18446744073709551614"}, codes.KindEquipment, "LAB-AS-EQ-A18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes.Next(snapshotOf(t, tt.codes...), tt.kind))
		})
	}
}

func TestNext_IsPure(t *testing.T) {
	s := snapshotOf(t, "LAB-AS-EQ-A001")
	assert.Equal(t, codes.Next(s, codes.KindEquipment), codes.Next(s, codes.KindEquipment))
	assert.Len(t, s.Assets, 1)
}

func TestParseKind(t *testing.T) {
	k, err := codes.ParseKind("gn")
	require.NoError(t, err)
	assert.Equal(t, codes.KindGeneral, k)

	k, err = codes.ParseKind(" EQ ")
	require.NoError(t, err)
	assert.Equal(t, codes.KindEquipment, k)

	_, err = codes.ParseKind("XX")
	assert.ErrorIs(t, err, codes.ErrUnknownKind)
}
