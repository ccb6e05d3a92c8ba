package codes

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"equipment-manager/core/store"
)

// ErrUnknownKind is returned for a kind outside the closed set.
var ErrUnknownKind = errors.New("unknown equipment kind")

// Kind selects a code series.
type Kind string

const (
	// KindEquipment is laboratory equipment (LAB-AS-EQ-A001, ...).
	KindEquipment Kind = "EQ"
	// KindGeneral is general assets (LAB-AS-GN-A001, ...).
	KindGeneral Kind = "GN"
)

var series = map[Kind]*regexp.Regexp{
	KindEquipment: compile(KindEquipment.Prefix()),
	KindGeneral:   compile(KindGeneral.Prefix()),
}

func compile(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^(?i:` + regexp.QuoteMeta(prefix) + `)(\d+)$`)
}

// Kinds lists the supported kinds.
func Kinds() []Kind {
	return []Kind{KindEquipment, KindGeneral}
}

// ParseKind resolves a kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := series[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Prefix returns the fixed text every code of the kind starts with.
func (k Kind) Prefix() string {
	return "LAB-AS-" + string(k) + "-A"
}

// Next returns the code following the highest existing code of kind:
// prefix + max(suffix)+1, zero padded to three digits. Codes that do not
// match the series, or whose suffix cannot be incremented, are ignored.
// Next is pure; to actually allocate, call it
// inside a transaction.
func Next(s *store.Snapshot, kind Kind) string {
	re, ok := series[kind]
	if !ok {
		re = compile(kind.Prefix())
	}

	var highest uint64
	for i := range s.Assets {
		m := re.FindStringSubmatch(s.Assets[i].Code())
		if m == nil {
			continue
		}
		// Suffixes with no successor are ignored like unparsable ones.
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil || n == math.MaxUint64 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", kind.Prefix(), highest+1)
}
