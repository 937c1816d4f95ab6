package changeover

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"linechange/internal/model"
)

func TestCompareMachines(t *testing.T) {
	t.Parallel()

	got := CompareMachines(
		map[string]int{"SNLS": 10, "OL": 5},
		map[string]int{"SNLS": 12, "OL": 5, "BARTACK": 2},
	)

	want := model.MachineSummary{
		Comparisons: []model.MachineComparison{
			{MachineType: "BARTACK", CurrentQty: 0, UpcomingQty: 2, Diff: 2, Status: model.MachineNeed},
			{MachineType: "OL", CurrentQty: 5, UpcomingQty: 5, Diff: 0, Status: model.MachineOK},
			{MachineType: "SNLS", CurrentQty: 10, UpcomingQty: 12, Diff: 2, Status: model.MachineNeed},
		},
		TotalNeeded:  4,
		TotalSurplus: 0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareMachines_Surplus(t *testing.T) {
	t.Parallel()

	got := CompareMachines(map[string]int{"FOA": 3, "KANSAI": 1}, map[string]int{"KANSAI": 4})
	if got.TotalNeeded != 3 || got.TotalSurplus != 3 {
		t.Fatalf("unexpected totals: needed=%d surplus=%d", got.TotalNeeded, got.TotalSurplus)
	}
	if got.Comparisons[0].MachineType != "FOA" || got.Comparisons[0].Status != model.MachineSurplus || got.Comparisons[0].Diff != -3 {
		t.Fatalf("unexpected FOA row: %+v", got.Comparisons[0])
	}

	empty := CompareMachines(nil, nil)
	if len(empty.Comparisons) != 0 || empty.TotalNeeded != 0 || empty.TotalSurplus != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}
}

func TestSortByPriority(t *testing.T) {
	t.Parallel()

	rows := []model.MachineComparison{
		{MachineType: "A", Status: model.MachineOK},
		{MachineType: "B", Status: model.MachineSurplus},
		{MachineType: "C", Status: model.MachineNeed},
		{MachineType: "D", Status: model.MachineNeed},
	}
	got := SortByPriority(rows)

	order := make([]string, len(got))
	for i, r := range got {
		order[i] = r.MachineType
	}
	if diff := cmp.Diff([]string{"C", "D", "B", "A"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if rows[0].MachineType != "A" {
		t.Fatalf("input must not be reordered")
	}
}
