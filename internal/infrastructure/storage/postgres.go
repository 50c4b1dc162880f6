package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

// SolarRun is the persisted row for one sealed run. The full report is kept
// as a JSON document; the headline numbers are lifted into columns so the
// history listing can be queried without decoding.
type SolarRun struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	Address        string    `gorm:"type:text;not null"`
	State          string    `gorm:"type:varchar(32);not null;index"`
	AnnualYieldKWh float64   `gorm:"column:annual_yield_kwh"`
	AnnualSavings  float64   `gorm:"column:annual_savings"`
	ReportJSON     string    `gorm:"column:report_json;type:jsonb;not null"`
	StartedAt      time.Time `gorm:"index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (SolarRun) TableName() string { return "solar_runs" }

var _ output.ReportStore = (*PostgresStore)(nil)

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, report entity.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	row := SolarRun{
		ID:         report.ID,
		Address:    report.Location.Query(),
		State:      string(report.State),
		ReportJSON: string(data),
		StartedAt:  report.StartedAt,
	}
	if report.Metrics.Valid {
		row.AnnualYieldKWh = report.Metrics.AnnualYieldKWh
	}
	if report.Profitability != nil {
		row.AnnualSavings = report.Profitability.AnnualSavings
	}

	// Upsert: the run is stored during publishing and again once sealed,
	// so the row must converge on the terminal state.
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&row).Error
}

func (s *PostgresStore) List(ctx context.Context) ([]entity.RunReport, error) {
	var rows []SolarRun
	if err := s.db.WithContext(ctx).Order("started_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	reports := make([]entity.RunReport, 0, len(rows))
	for _, row := range rows {
		var r entity.RunReport
		if err := json.Unmarshal([]byte(row.ReportJSON), &r); err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*entity.RunReport, error) {
	var row SolarRun
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report %s not found", id)
		}
		return nil, err
	}

	var r entity.RunReport
	if err := json.Unmarshal([]byte(row.ReportJSON), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &r, nil
}
