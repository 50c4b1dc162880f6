// Package storage persists sealed run reports: JSON files on disk by
// default, PostgreSQL when a DSN is configured.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

const filePrefix = "solar_calc_"

var _ output.ReportStore = (*FileStore)(nil)

// FileStore writes one JSON file per run under the reports directory,
// named solar_calc_<timestamp>_<run id>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "solar_reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(_ context.Context, report entity.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	name := fmt.Sprintf("%s%s_%s.json",
		filePrefix,
		report.StartedAt.Format("20060102_150405"),
		report.ID)

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]entity.RunReport, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob reports: %w", err)
	}

	reports := make([]entity.RunReport, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var r entity.RunReport
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		reports = append(reports, r)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	return reports, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*entity.RunReport, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*_"+id+".json"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("report %s: %w", id, os.ErrNotExist)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}
	var r entity.RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	if r.ID != id {
		return nil, os.ErrNotExist
	}
	return &r, nil
}
