package planning

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linechange/internal/model"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	styles := []*model.StyleEntry{
		{StyleName: "POLO-1", PhysicalLine: "S-02", Supervisor: "SOHRAB"},
		{StyleName: "TEE-2", PhysicalLine: "S-10", Supervisor: "RAJKUMAR", CurrentRunningStyle: "POLO-0"},
		{StyleName: "JACKET", PhysicalLine: "S-23", Supervisor: "RUMA"},
	}

	assert.Len(t, Filter(styles, ""), 3)
	assert.Len(t, Filter(styles, "  polo "), 2)
	assert.Len(t, Filter(styles, "s-1"), 1)
	assert.Len(t, Filter(styles, "ruma"), 1)
	assert.Empty(t, Filter(styles, "zzz"))
}

func TestNaturalLess(t *testing.T) {
	t.Parallel()

	keys := []string{"S-10", "s-2", "S-01A", "S-01", "Unassigned", "S-007"}
	sort.Slice(keys, func(i, j int) bool { return NaturalLess(keys[i], keys[j]) })
	assert.Equal(t, []string{"S-01", "S-01A", "s-2", "S-007", "S-10", "Unassigned"}, keys)

	assert.False(t, NaturalLess("abc", "abc"))
	assert.True(t, NaturalLess("ab", "abc"))
}

func TestGroupBy(t *testing.T) {
	t.Parallel()

	styles := []*model.StyleEntry{
		{StyleName: "A", PhysicalLine: "S-10", Supervisor: "RAJKUMAR", TotalTarget: 100},
		{StyleName: "B", PhysicalLine: "S-2", Supervisor: "SOHRAB", TotalTarget: 50},
		{StyleName: "C", PhysicalLine: "S-10", Supervisor: "RAJKUMAR", TotalTarget: 25},
		{StyleName: "D", Supervisor: ""},
	}

	groups := GroupBy(styles, GroupByLine)
	require.Len(t, groups, 3)
	assert.Equal(t, "S-2", groups[0].Key)
	assert.Equal(t, "S-10", groups[1].Key)
	assert.Equal(t, 125, groups[1].TotalTarget)
	assert.Equal(t, "RAJKUMAR", groups[1].Supervisor)
	assert.Len(t, groups[1].Styles, 2)
	assert.Equal(t, model.UnassignedSupervisor, groups[2].Key)

	bySup := GroupBy(styles, GroupBySupervisor)
	require.Len(t, bySup, 3)
	assert.Equal(t, "RAJKUMAR", bySup[0].Key)
}

func TestParseGroupKey(t *testing.T) {
	t.Parallel()

	k, err := ParseGroupKey("")
	require.NoError(t, err)
	assert.Equal(t, GroupByLine, k)

	k, err = ParseGroupKey("Supervisor")
	require.NoError(t, err)
	assert.Equal(t, GroupBySupervisor, k)

	_, err = ParseGroupKey("unit")
	assert.Error(t, err)
}
