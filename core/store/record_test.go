package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JSON(t *testing.T) {
	t.Run("KeepsOrderAndLiterals", func(t *testing.T) {
		in := `{"z":"1","a":2.50,"m":null,"b":true}`
		var r Record
		require.NoError(t, json.Unmarshal([]byte(in), &r))

		assert.Equal(t, []string{"z", "a", "m", "b"}, r.Keys())
		assert.Equal(t, "true", r.Text("b"))

		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Equal(t, `{"z":"1","a":2.50,"m":null,"b":"true"}`, string(out))
	})

	t.Run("RepeatedKeyLastValueFirstPosition", func(t *testing.T) {
		var r Record
		require.NoError(t, json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &r))
		assert.Equal(t, []string{"a", "b"}, r.Keys())
		assert.Equal(t, "3", r.Text("a"))
	})

	t.Run("RejectsNested", func(t *testing.T) {
		var r Record
		err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &r)
		assert.ErrorIs(t, err, ErrUnsupportedValue)
	})

	t.Run("RejectsNonObject", func(t *testing.T) {
		var r Record
		assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
	})
}

func TestRecord_Mutation(t *testing.T) {
	r := NewRecord()
	r.SetText("a", "1")
	r.SetText("b", "2")
	r.SetText("c", "3")

	r.Delete("b")
	assert.Equal(t, []string{"a", "c"}, r.Keys())

	r.SetText("a", "updated")
	assert.Equal(t, []string{"a", "c"}, r.Keys())

	other := NewRecord()
	other.SetText("c", "x")
	other.Set("d", Number(4))
	r.Overlay(other)

	assert.Equal(t, []string{"a", "c", "d"}, r.Keys())
	assert.Equal(t, "x", r.Text("c"))
	assert.Equal(t, "4", r.Text("d"))
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
		text string
	}{
		{"Nil", nil, KindAbsent, ""},
		{"String", "abc", KindString, "abc"},
		{"Float", 12.5, KindNumber, "12.5"},
		{"WholeFloat", float64(3), KindNumber, "3"},
		{"Int", 7, KindNumber, "7"},
		{"Bool", false, KindString, "false"},
		{"Number", json.Number("1.50"), KindNumber, "1.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.Text())
		})
	}

	_, err := ValueOf([]string{"x"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestValue_IsBlank(t *testing.T) {
	assert.True(t, Absent().IsBlank())
	assert.True(t, String("  ").IsBlank())
	assert.False(t, String("x").IsBlank())
	assert.False(t, Number(0).IsBlank())
}
