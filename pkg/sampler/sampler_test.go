package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/rangetable"
)

type trait struct {
	name   string
	lo, hi int
	reroll bool
}

func (t trait) Key() string  { return t.name }
func (t trait) Reroll() bool { return t.reroll }
func (t trait) Values(axis int) []int {
	if axis != 0 {
		return nil
	}
	out := []int{}
	for v := t.lo; v <= t.hi; v++ {
		out = append(out, v)
	}
	return out
}

func buildTable(t *testing.T, entries ...trait) *rangetable.Table[trait] {
	t.Helper()
	table, err := rangetable.Build("traits", entries, 1, 100)
	require.NoError(t, err)
	return table
}

func TestSampleAxis_ResolvesRoll(t *testing.T) {
	table := buildTable(t,
		trait{name: "low", lo: 1, hi: 50},
		trait{name: "high", lo: 51, hi: 100},
	)

	tests := []struct {
		roll int
		want string
	}{
		{1, "low"},
		{50, "low"},
		{51, "high"},
		{100, "high"},
	}
	for _, tt := range tests {
		got, err := SampleAxis(table, 0, dice.NewSequence(tt.roll))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.name, "roll %d", tt.roll)
	}
}

func TestSampleUntilNonReroll_NeverReturnsReroll(t *testing.T) {
	table := buildTable(t,
		trait{name: "again", lo: 1, hi: 95, reroll: true},
		trait{name: "settled", lo: 96, hi: 100},
	)
	src, _, err := dice.NewSource(1)
	require.NoError(t, err)

	for i := 0; i < 10_000; i++ {
		got, err := SampleUntilNonReroll(table, src)
		require.NoError(t, err)
		if got.Reroll() {
			t.Fatalf("draw %d returned reroll entry %q", i, got.name)
		}
	}
}

func TestSampleUntilNonReroll_SkipsRerollRolls(t *testing.T) {
	table := buildTable(t,
		trait{name: "again", lo: 1, hi: 10, reroll: true},
		trait{name: "brave", lo: 11, hi: 100},
	)
	src := dice.NewSequence(3, 7, 42)

	got, err := SampleUntilNonReroll(table, src)
	require.NoError(t, err)
	assert.Equal(t, "brave", got.name)
	assert.Equal(t, 3, src.Calls())
}

func TestSampleUntilNonReroll_CapsAllRerollTables(t *testing.T) {
	table := buildTable(t, trait{name: "again", lo: 1, hi: 100, reroll: true})

	_, err := SampleUntilNonReroll(table, dice.NewSequence(5))
	assert.True(t, generr.IsCode(err, generr.CodeSamplerExhausted), "got %v", err)
	assert.True(t, generr.IsCode(CheckSettled(table), generr.CodeNoSettledEntry))
}

func TestSampleIdentityOrDescriptorPair(t *testing.T) {
	table := buildTable(t,
		trait{name: "twice", lo: 1, hi: 10, reroll: true},
		trait{name: "scholar", lo: 11, hi: 50},
		trait{name: "soldier", lo: 51, hi: 100},
	)

	t.Run("settled first draw returns one", func(t *testing.T) {
		got, err := SampleIdentityOrDescriptorPair(table, dice.NewSequence(20))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "scholar", got[0].name)
	})

	t.Run("reroll first draw collects two", func(t *testing.T) {
		got, err := SampleIdentityOrDescriptorPair(table, dice.NewSequence(5, 60, 30))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "soldier", got[0].name)
		assert.Equal(t, "scholar", got[1].name)
	})

	t.Run("further rerolls are discarded", func(t *testing.T) {
		src := dice.NewSequence(1, 2, 60, 9, 60)
		got, err := SampleIdentityOrDescriptorPair(table, src)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "soldier", got[0].name)
		assert.Equal(t, "soldier", got[1].name)
		assert.Equal(t, 5, src.Calls())
	})

	t.Run("never returns reroll entries", func(t *testing.T) {
		src, _, _ := dice.NewSource(3)
		for i := 0; i < 2000; i++ {
			got, err := SampleIdentityOrDescriptorPair(table, src)
			require.NoError(t, err)
			require.True(t, len(got) == 1 || len(got) == 2)
			for _, e := range got {
				require.False(t, e.Reroll())
			}
		}
	})
}

func TestSampleWhere(t *testing.T) {
	table := buildTable(t,
		trait{name: "a", lo: 1, hi: 50},
		trait{name: "b", lo: 51, hi: 100},
	)
	src := dice.NewSequence(10, 20, 70)

	got, err := SampleWhere(table, 0, src, func(e trait) bool { return e.name == "b" })
	require.NoError(t, err)
	assert.Equal(t, "b", got.name)
	assert.Equal(t, 3, src.Calls())
	assert.NoError(t, CheckSettled(table))
}
