package changeover

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"linechange/internal/model"
	"linechange/internal/parser"
	"linechange/internal/sequence"
)

// buildOBFile 构建包含 OB 表与 bi-hourly 顺序表的工作簿
func buildOBFile(t *testing.T, style string, ops [][]interface{}, seq [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", "OB"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	set := func(sheet, cell string, row []interface{}) {
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %s!%s: %v", sheet, cell, err)
		}
	}
	set("OB", "A1", []interface{}{"STYLE", style})
	set("OB", "A3", []interface{}{"SL", "OPERATION", "SMV", "", "", "", "MACHINE", "", "", "QTY"})
	for i, row := range ops {
		cell, _ := excelize.CoordinatesToCellName(1, 4+i)
		set("OB", cell, row)
	}

	if seq != nil {
		if _, err := f.NewSheet("BI HOURLY"); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		set("BI HOURLY", "A1", []interface{}{"SL", "Operation", "", "", "Ref"})
		for i, row := range seq {
			cell, _ := excelize.CoordinatesToCellName(1, 2+i)
			set("BI HOURLY", cell, row)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func opRow(section, name string, smv float64, machine string, qty float64) []interface{} {
	return []interface{}{section, name, smv, "", "", "", machine, "", "", qty}
}

func TestOBParser_Parse(t *testing.T) {
	t.Parallel()

	data := buildOBFile(t, "POLO-2231",
		[][]interface{}{
			{"FRONT"},
			opRow("1", "Attach pocket", 0.85, "SNLS", 1),
			opRow("2", "Top stitch pocket", 0.6, "SNLS", 1.5),
			{"BACK"},
			opRow("3", "Join yoke", 0.72, "OL", 2),
			opRow("4", "Trim", 0.3, "", 1),
		},
		[][]interface{}{
			{1, "Join yoke", "", "", "M-01"},
			{2, "Attach pocket", "", "", "M-02"},
		},
	)

	p := NewOBParser(parser.DefaultOBLayout(), sequence.DefaultThreshold)
	got, err := p.Parse(bytes.NewReader(data), "current.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "current.xlsx", got.FileName)
	assert.Equal(t, "POLO-2231", got.StyleNumber)
	assert.Equal(t, 2.47, got.TotalSMV)
	assert.Equal(t, 6, got.Manpower)
	assert.Equal(t, map[string]int{"SNLS": 3, "OL": 2}, got.MachineCounts)
	require.Len(t, got.Operations, 4)

	require.Len(t, got.Sections, 3)
	assert.Equal(t, "BACK", got.Sections[0].SectionName)
	assert.Equal(t, "Join yoke", got.Sections[0].Operations[0].Name)
	assert.Equal(t, "M-01", got.Sections[0].Operations[0].BiMachineRef)
	assert.Equal(t, "FRONT", got.Sections[1].SectionName)
	assert.Len(t, got.Sections[1].Operations, 2)
	assert.Equal(t, model.SourceOB, got.Sections[1].Operations[1].Source)
	assert.Equal(t, "BACK", got.Sections[2].SectionName)
}

func TestOBParser_InvalidBytes(t *testing.T) {
	t.Parallel()

	p := NewOBParser(parser.DefaultOBLayout(), 0)
	_, err := p.Parse(strings.NewReader("garbage"), "bad.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.xlsx")
}

func TestQCONumber(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewPCG(1, 2))
	got := QCONumber("S-10", "POLO-2231", "TEE", rnd)
	assert.Regexp(t, regexp.MustCompile(`^S-10-POLO-TEE-\d{3}$`), got)

	assert.Regexp(t, `^S-02-款式编号-AB-\d{3}$`, QCONumber("S-02", "款式编号一二", "AB", nil))
}

func TestBuilder_Build(t *testing.T) {
	defer goleak.VerifyNone(t)

	current := buildOBFile(t, "POLO-2231", [][]interface{}{
		opRow("FRONT", "Attach pocket", 0.85, "SNLS", 10),
		opRow("", "Overlock side", 0.5, "OL", 5),
	}, nil)
	upcoming := buildOBFile(t, "TEE-9", [][]interface{}{
		opRow("FRONT", "Attach pocket", 0.85, "SNLS", 12),
		opRow("", "Overlock side", 0.5, "OL", 5),
		opRow("", "Bartack", 0.2, "BARTACK", 2),
	}, nil)

	b := NewBuilder(NewOBParser(parser.DefaultOBLayout(), 0), rand.New(rand.NewPCG(7, 7)))
	qco, err := b.Build(context.Background(), "S-10",
		Source{Name: "current.xlsx", Reader: bytes.NewReader(current)},
		Source{Name: "upcoming.xlsx", Reader: bytes.NewReader(upcoming)},
	)
	require.NoError(t, err)

	assert.Equal(t, "S-10", qco.LineNumber)
	assert.True(t, strings.HasPrefix(qco.QCONumber, "S-10-POLO-TEE--"), qco.QCONumber)
	assert.Equal(t, 4, qco.TotalNeeded)
	assert.Equal(t, 0, qco.TotalSurplus)
	require.Len(t, qco.MachineSummary, 3)
	assert.Equal(t, "BARTACK", qco.MachineSummary[0].MachineType)
	assert.False(t, qco.Timestamp.IsZero())
}

func TestBuilder_MissingFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBuilder(NewOBParser(parser.DefaultOBLayout(), 0), nil)
	_, err := b.Build(context.Background(), "S-10",
		Source{Name: "current.xlsx"},
		Source{Name: "upcoming.xlsx", Reader: strings.NewReader("x")},
	)
	require.Error(t, err)
}

func TestBuilder_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(NewOBParser(parser.DefaultOBLayout(), 0), nil)
	_, err := b.Build(ctx, "S-10",
		Source{Name: "a", Reader: strings.NewReader("")},
		Source{Name: "b", Reader: strings.NewReader("")},
	)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
