package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linechange/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "data", "linechange.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleQCO(line string, ts time.Time) *model.QCOData {
	return &model.QCOData{
		QCONumber:     line + "-POLO-TEE-042",
		LineNumber:    line,
		CurrentStyle:  &model.ParsedOBData{StyleNumber: "POLO-2231", MachineCounts: map[string]int{"SNLS": 10}},
		UpcomingStyle: &model.ParsedOBData{StyleNumber: "TEE-9", MachineCounts: map[string]int{"SNLS": 12}},
		MachineSummary: []model.MachineComparison{
			{MachineType: "SNLS", CurrentQty: 10, UpcomingQty: 12, Diff: 2, Status: model.MachineNeed},
		},
		TotalNeeded: 2,
		Timestamp:   ts,
	}
}

func TestStore_SaveAndGetChangeover(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.Save(ctx, "", sampleQCO("S-10", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "Changeover saved successfully", res.Message)

	got, err := s.GetChangeover(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-10-POLO-TEE-042", got.QCONumber)
	assert.Equal(t, "TEE-9", got.UpcomingStyle.StyleNumber)
	require.Len(t, got.MachineSummary, 1)
	assert.Equal(t, model.MachineNeed, got.MachineSummary[0].Status)

	_, err = s.GetChangeover(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_SaveOverwritesSameID(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "fixed", sampleQCO("S-10", time.Now()))
	require.NoError(t, err)
	update := sampleQCO("S-11", time.Now())
	_, err = s.Save(ctx, "fixed", update)
	require.NoError(t, err)

	list, err := s.ListChangeovers(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "S-11", list[0].LineNumber)
}

func TestStore_SaveNil(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	res, err := s.Save(context.Background(), "", nil)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func TestStore_ListChangeovers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, line := range []string{"S-10", "S-02", "S-10"} {
		_, err := s.Save(ctx, "", sampleQCO(line, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	all, err := s.ListChangeovers(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt), "newest first")
	assert.Equal(t, "POLO-2231", all[0].CurrentStyle)

	s10, err := s.ListChangeovers(ctx, "S-10", 10)
	require.NoError(t, err)
	assert.Len(t, s10, 2)

	one, err := s.ListChangeovers(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestStore_ImportLog(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateImportLog(ctx, "imp-1", "plan.xlsx", "/tmp/plan.xlsx", 1024, "abc"))

	l, err := s.GetImportLog(ctx, "imp-1")
	require.NoError(t, err)
	assert.Equal(t, ImportProcessing, l.Status)
	assert.Nil(t, l.CompletedAt)

	require.NoError(t, s.CompleteImportLog(ctx, &model.ImportReport{
		ImportID:      "imp-1",
		TotalSheets:   3,
		ScannedSheets: 2,
		SkippedSheets: 1,
		StyleCount:    17,
	}))
	l, err = s.GetImportLog(ctx, "imp-1")
	require.NoError(t, err)
	assert.Equal(t, ImportCompleted, l.Status)
	assert.Equal(t, 17, l.StyleCount)
	assert.NotNil(t, l.CompletedAt)

	last, err := s.GetSetting(ctx, SettingLastImportID)
	require.NoError(t, err)
	assert.Equal(t, "imp-1", last)

	err = s.CompleteImportLog(ctx, &model.ImportReport{ImportID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))
	last, err = s.GetSetting(ctx, SettingLastImportID)
	require.NoError(t, err)
	assert.Equal(t, "imp-1", last, "failed completion must not move last import")

	require.NoError(t, s.CreateImportLog(ctx, "imp-2", "bad.xlsx", "", 0, ""))
	require.NoError(t, s.FailImportLog(ctx, "imp-2", "no sheets"))
	l, err = s.GetImportLog(ctx, "imp-2")
	require.NoError(t, err)
	assert.Equal(t, ImportFailed, l.Status)
	assert.Equal(t, "no sheets", l.ErrorMessage)

	_, err = s.GetImportLog(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Settings(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSetting(ctx, SettingLastImportID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetSetting(ctx, SettingLastImportID, "a"))
	require.NoError(t, s.SetSetting(ctx, SettingLastImportID, "b"))
	v, err := s.GetSetting(ctx, SettingLastImportID)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, ":memory:", dsn(":memory:"))
	assert.Equal(t, "file:/tmp/x.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", dsn("/tmp/x.db"))
}
