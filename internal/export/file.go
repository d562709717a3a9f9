package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

const stampLayout = "20060102_150405"

// FileSink writes screening and backtest results under one directory
// ⭐ SSOT: 결과 파일(JSON/CSV) 형식은 여기서만
type FileSink struct {
	dir    string
	now    func() time.Time
	logger *logger.Logger
}

// Files are the paths written for one screening run
type Files struct {
	JSON string `json:"json"`
	CSV  string `json:"csv"`
}

// NewFileSink creates a sink rooted at dir
func NewFileSink(dir string, log *logger.Logger) *FileSink {
	return &FileSink{
		dir:    dir,
		now:    time.Now,
		logger: log,
	}
}

// SaveScreening implements contracts.ResultSink
func (s *FileSink) SaveScreening(ctx context.Context, run *contracts.ScreeningRun) error {
	_, err := s.WriteScreening(run)
	return err
}

// SaveBacktests implements contracts.ResultSink
func (s *FileSink) SaveBacktests(ctx context.Context, runID string, merged []contracts.MergedRecord) error {
	_, err := s.WriteBacktests(runID, merged)
	return err
}

// WriteScreening writes screening_<stamp>.json and .csv
func (s *FileSink) WriteScreening(run *contracts.ScreeningRun) (Files, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create output dir: %w", err)
	}

	stamp := run.StartedAt
	if stamp.IsZero() {
		stamp = s.now()
	}
	base := filepath.Join(s.dir, "screening_"+stamp.Format(stampLayout))
	files := Files{JSON: base + ".json", CSV: base + ".csv"}

	out := *run
	out.Records = RoundRecords(run.Records)

	if err := writeJSON(files.JSON, &out); err != nil {
		return Files{}, err
	}
	if err := writeFile(files.CSV, func(w io.Writer) error {
		return WriteScreeningCSV(w, out.Records)
	}); err != nil {
		return Files{}, err
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":  run.ID,
		"records": len(run.Records),
		"json":    files.JSON,
		"csv":     files.CSV,
	}).Info("Screening exported")
	return files, nil
}

// WriteBacktests writes backtest_<stamp>_<runID>.json
func (s *FileSink) WriteBacktests(runID string, merged []contracts.MergedRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := "backtest_" + s.now().Format(stampLayout)
	if id := filepath.Base(strings.TrimSpace(runID)); id != "" && id != "." && id != string(filepath.Separator) {
		name += "_" + id
	}
	path := filepath.Join(s.dir, name+".json")

	out := make([]contracts.MergedRecord, len(merged))
	for i, m := range merged {
		out[i] = contracts.MergedRecord{Screening: roundRecord(m.Screening), Backtest: m.Backtest}
	}

	if err := writeJSON(path, out); err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"records": len(merged),
		"path":    path,
	}).Info("Backtest exported")
	return path, nil
}

// ReadScreeningJSON reads a run written by WriteScreening
func ReadScreeningJSON(path string) (*contracts.ScreeningRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var run contracts.ScreeningRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &run, nil
}

// ReadScreeningFile dispatches on extension (.json or .csv)
func ReadScreeningFile(path string) ([]contracts.ScreeningRecord, error) {
	switch filepath.Ext(path) {
	case ".json":
		run, err := ReadScreeningJSON(path)
		if err != nil {
			return nil, err
		}
		return run.Records, nil
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadScreeningCSV(f)
	default:
		return nil, fmt.Errorf("unsupported screening file %s (want .json or .csv)", path)
	}
}

// ReadMergedJSON reads a file written by WriteBacktests
func ReadMergedJSON(path string) ([]contracts.MergedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var merged []contracts.MergedRecord
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return merged, nil
}

// RoundRecords returns copies with every number rounded to 2 dp
func RoundRecords(records []contracts.ScreeningRecord) []contracts.ScreeningRecord {
	out := make([]contracts.ScreeningRecord, len(records))
	for i, r := range records {
		out[i] = roundRecord(r)
	}
	return out
}

func roundRecord(r contracts.ScreeningRecord) contracts.ScreeningRecord {
	r.Price = contracts.Round2(r.Price)
	r.IntrinsicValue = contracts.Round2(r.IntrinsicValue)
	r.DiscountPct = contracts.Round2(r.DiscountPct)
	r.InvestmentScore = contracts.Round2(r.InvestmentScore)
	r.ValueScore = contracts.Round2(r.ValueScore)
	r.PERatio = roundPtr(r.PERatio)
	r.ROE = roundPtr(r.ROE)
	r.DebtToEquity = roundPtr(r.DebtToEquity)
	return r
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := contracts.Round2(*v)
	return &rounded
}

func writeJSON(path string, v interface{}) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeFile writes to a temp file then renames it into place
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
