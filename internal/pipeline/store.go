package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/report"
	"go.uber.org/zap"
)

const reportFilePrefix = "ai_daily_report_"

// Store persists reports as markdown and JSON files named by report date
type Store struct {
	dir      string
	compiler *report.Compiler
}

// NewStore creates a store rooted at dir
func NewStore(dir string, compiler *report.Compiler) *Store {
	return &Store{dir: dir, compiler: compiler}
}

func (s *Store) path(r model.Report, ext string) string {
	return filepath.Join(s.dir, reportFilePrefix+r.GeneratedAt.Format("20060102")+"."+ext)
}

// Save writes both serializations and returns the paths that were written
func (s *Store) Save(r model.Report) ([]string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var (
		written []string
		errs    []error
	)

	mdPath := s.path(r, "markdown")
	if err := writeFile(mdPath, []byte(s.compiler.RenderMarkdown(r))); err != nil {
		errs = append(errs, err)
	} else {
		written = append(written, mdPath)
	}

	jsonPath := s.path(r, "json")
	data, err := report.RenderJSON(r)
	if err == nil {
		err = writeFile(jsonPath, data)
	}
	if err != nil {
		errs = append(errs, err)
	} else {
		written = append(written, jsonPath)
	}

	for _, p := range written {
		zap.L().Info("report saved", zap.String("path", p))
	}
	return written, errors.Join(errs...)
}

// LoadLatest reads the newest JSON report in the output directory
func (s *Store) LoadLatest() (*model.Report, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, reportFilePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if len(matches) == 0 {
		return nil, os.ErrNotExist
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
