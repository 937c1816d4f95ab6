package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linechange/internal/model"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := &model.StyleEntry{StyleName: "POLO", PhysicalLine: "S-02", Supervisor: "SOHRAB", Remarks: []string{"2024-03-01: need to add 2 operators"}}
	a.AddDailyPlan(model.DailyPlan{Date: d1, Target: 100, Manpower: 20})
	a.AddDailyPlan(model.DailyPlan{Date: d2, Target: 80, Manpower: 21})

	b := &model.StyleEntry{StyleName: "POLO", PhysicalLine: "S-03", Supervisor: "SOHEL"}
	b.AddDailyPlan(model.DailyPlan{Date: d1, Target: 60, Manpower: 30})
	b.Anomalies = append(b.Anomalies, model.Anomaly{Kind: model.AnomalyHolidayProduction, Severity: model.SeverityMedium, Message: "Production planned on holiday (Fri)"})

	c := &model.StyleEntry{StyleName: "TEE", PhysicalLine: "S-04", Supervisor: "AHMAD"}

	sum := Summarize([]*model.StyleEntry{a, b, c})

	assert.Equal(t, 3, sum.StyleCount)
	assert.Equal(t, 2, sum.UniqueStyles)
	assert.Equal(t, 3, sum.Supervisors)
	assert.Equal(t, 240, sum.TotalTarget)
	assert.Equal(t, 71, sum.TotalManpower)
	// (20.5 + 30 + 0) / 3 = 16.83
	assert.Equal(t, 17, sum.AvgManpowerPerRun)

	require.Len(t, sum.Anomalies, 1)
	assert.Equal(t, "S-03", sum.Anomalies[0].Line)
	require.Len(t, sum.Remarks, 1)
	assert.Equal(t, "POLO", sum.Remarks[0].StyleName)

	require.Len(t, sum.DailyGoals, 2)
	assert.True(t, sum.DailyGoals[0].Date.Equal(d2))
	assert.Equal(t, 80, sum.DailyGoals[0].Target)
	assert.Equal(t, 160, sum.DailyGoals[1].Target)
	assert.Equal(t, 50, sum.DailyGoals[1].Manpower)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	sum := Summarize(nil)
	assert.Equal(t, 0, sum.StyleCount)
	assert.Equal(t, 0, sum.AvgManpowerPerRun)
	assert.NotNil(t, sum.DailyGoals)
}
