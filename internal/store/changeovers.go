package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"linechange/internal/model"
)

// ChangeoverSummary 换款记录列表项
type ChangeoverSummary struct {
	ID            string    `json:"id"`
	QCONumber     string    `json:"qcoNumber"`
	LineNumber    string    `json:"lineNumber"`
	CurrentStyle  string    `json:"currentStyle"`
	UpcomingStyle string    `json:"upcomingStyle"`
	TotalNeeded   int       `json:"totalNeeded"`
	TotalSurplus  int       `json:"totalSurplus"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Save 保存换款记录；id 为空时生成新 id，同 id 重复保存覆盖旧记录
func (s *Store) Save(ctx context.Context, id string, data *model.QCOData) (model.SaveResult, error) {
	if data == nil {
		err := errors.New("changeover data is nil")
		return model.SaveResult{Success: false, Message: err.Error()}, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	payload, err := json.Marshal(data)
	if err != nil {
		err = fmt.Errorf("failed to encode changeover: %w", err)
		return model.SaveResult{Success: false, Message: err.Error()}, err
	}

	created := data.Timestamp
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO changeovers (
			id, qco_number, line_number, current_style, upcoming_style,
			total_needed, total_surplus, payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			qco_number = excluded.qco_number,
			line_number = excluded.line_number,
			current_style = excluded.current_style,
			upcoming_style = excluded.upcoming_style,
			total_needed = excluded.total_needed,
			total_surplus = excluded.total_surplus,
			payload = excluded.payload,
			created_at = excluded.created_at
	`, id, data.QCONumber, data.LineNumber, styleNumber(data.CurrentStyle), styleNumber(data.UpcomingStyle),
		data.TotalNeeded, data.TotalSurplus, string(payload), created.UTC())
	if err != nil {
		err = fmt.Errorf("failed to save changeover: %w", err)
		return model.SaveResult{Success: false, Message: err.Error()}, err
	}

	return model.SaveResult{Success: true, Message: "Changeover saved successfully", ID: id}, nil
}

// GetChangeover 读取完整换款记录
func (s *Store) GetChangeover(ctx context.Context, id string) (*model.QCOData, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM changeovers WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query changeover: %w", err)
	}

	var data model.QCOData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("failed to decode changeover %s: %w", id, err)
	}
	return &data, nil
}

// ListChangeovers 按时间倒序列出换款记录；line 为空时不过滤
func (s *Store) ListChangeovers(ctx context.Context, line string, limit int) ([]ChangeoverSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, qco_number, line_number, current_style, upcoming_style,
			total_needed, total_surplus, created_at
		FROM changeovers`
	args := []any{}
	if line != "" {
		query += " WHERE line_number = ?"
		args = append(args, line)
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list changeovers: %w", err)
	}
	defer rows.Close()

	out := []ChangeoverSummary{}
	for rows.Next() {
		var c ChangeoverSummary
		if err := rows.Scan(&c.ID, &c.QCONumber, &c.LineNumber, &c.CurrentStyle, &c.UpcomingStyle,
			&c.TotalNeeded, &c.TotalSurplus, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func styleNumber(d *model.ParsedOBData) string {
	if d == nil {
		return ""
	}
	return d.StyleNumber
}
