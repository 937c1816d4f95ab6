package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"linechange/internal/model"
)

// ImportLog 导入日志
type ImportLog struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	FilePath      string     `json:"filePath"`
	FileSize      int64      `json:"fileSize"`
	FileHash      string     `json:"fileHash"`
	TotalSheets   int        `json:"totalSheets"`
	ScannedSheets int        `json:"scannedSheets"`
	SkippedSheets int        `json:"skippedSheets"`
	StyleCount    int        `json:"styleCount"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// 导入状态
const (
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
)

// CreateImportLog 创建导入日志
func (s *Store) CreateImportLog(ctx context.Context, id, filename, filePath string, fileSize int64, fileHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (id, filename, file_path, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, filename, filePath, fileSize, fileHash, ImportProcessing)
	if err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// CompleteImportLog 用导入报告完成日志，并记为最近一次导入
func (s *Store) CompleteImportLog(ctx context.Context, report *model.ImportReport) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE import_logs SET
				total_sheets = ?,
				scanned_sheets = ?,
				skipped_sheets = ?,
				style_count = ?,
				status = ?,
				completed_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, report.TotalSheets, report.ScannedSheets, report.SkippedSheets, report.StyleCount, ImportCompleted, report.ImportID)
		if err != nil {
			return fmt.Errorf("failed to update import log: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("import log %s: %w", report.ImportID, ErrNotFound)
		}
		return setSetting(ctx, tx, SettingLastImportID, report.ImportID)
	})
}

// FailImportLog 标记导入失败
func (s *Store) FailImportLog(ctx context.Context, id, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, ImportFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// GetImportLog 查询导入日志
func (s *Store) GetImportLog(ctx context.Context, id string) (*ImportLog, error) {
	var (
		l         ImportLog
		completed sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, file_path, file_size, file_hash,
			total_sheets, scanned_sheets, skipped_sheets, style_count,
			status, error_message, created_at, completed_at
		FROM import_logs WHERE id = ?
	`, id).Scan(
		&l.ID, &l.Filename, &l.FilePath, &l.FileSize, &l.FileHash,
		&l.TotalSheets, &l.ScannedSheets, &l.SkippedSheets, &l.StyleCount,
		&l.Status, &l.ErrorMessage, &l.CreatedAt, &completed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import log: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		l.CompletedAt = &t
	}
	return &l, nil
}
