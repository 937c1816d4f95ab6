package planning

import (
	"math"
	"sort"
	"time"

	"linechange/internal/model"
)

// DailyGoal 全厂单日目标与人力合计
type DailyGoal struct {
	Date     time.Time `json:"date"`
	Target   int       `json:"target"`
	Manpower int       `json:"manpower"`
}

// Issue 附带款式与产线信息的异常或备注
type Issue struct {
	StyleName string            `json:"styleName"`
	Line      string            `json:"line"`
	Kind      model.AnomalyKind `json:"type,omitempty"`
	Severity  model.Severity    `json:"severity,omitempty"`
	Message   string            `json:"message"`
}

// Summary 看板汇总
type Summary struct {
	StyleCount        int         `json:"styleCount"`
	UniqueStyles      int         `json:"uniqueStyles"`
	Supervisors       int         `json:"supervisors"`
	TotalTarget       int         `json:"totalTarget"`
	TotalManpower     int         `json:"totalManpower"`
	AvgManpowerPerRun int         `json:"avgManpowerPerRun"`
	Anomalies         []Issue     `json:"anomalies"`
	Remarks           []Issue     `json:"remarks"`
	DailyGoals        []DailyGoal `json:"dailyGoals"`
}

const dayKeyLayout = "2006-01-02"

// Summarize 汇总款式排产：合计、异常/备注清单、按日期排序的全厂每日目标
func Summarize(styles []*model.StyleEntry) Summary {
	sum := Summary{
		StyleCount: len(styles),
		Anomalies:  []Issue{},
		Remarks:    []Issue{},
		DailyGoals: []DailyGoal{},
	}

	names := map[string]struct{}{}
	supervisors := map[string]struct{}{}
	daily := map[string]*DailyGoal{}
	var avgSum float64

	for _, s := range styles {
		names[s.StyleName] = struct{}{}
		supervisors[s.Supervisor] = struct{}{}
		sum.TotalTarget += s.TotalTarget
		sum.TotalManpower += s.TotalManpower
		avgSum += s.AverageManpower()

		for _, a := range s.Anomalies {
			sum.Anomalies = append(sum.Anomalies, Issue{
				StyleName: s.StyleName,
				Line:      s.PhysicalLine,
				Kind:      a.Kind,
				Severity:  a.Severity,
				Message:   a.Message,
			})
		}
		for _, r := range s.Remarks {
			sum.Remarks = append(sum.Remarks, Issue{StyleName: s.StyleName, Line: s.PhysicalLine, Message: r})
		}
		for _, p := range s.DailyPlans {
			key := p.Date.Format(dayKeyLayout)
			g, ok := daily[key]
			if !ok {
				g = &DailyGoal{Date: p.Date}
				daily[key] = g
			}
			g.Target += p.Target
			g.Manpower += p.Manpower
		}
	}

	sum.UniqueStyles = len(names)
	sum.Supervisors = len(supervisors)
	if len(styles) > 0 {
		sum.AvgManpowerPerRun = int(math.Floor(avgSum/float64(len(styles)) + 0.5))
	}

	for _, g := range daily {
		sum.DailyGoals = append(sum.DailyGoals, *g)
	}
	sort.Slice(sum.DailyGoals, func(i, j int) bool {
		return sum.DailyGoals[i].Date.Before(sum.DailyGoals[j].Date)
	})
	return sum
}
