package s1_universe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

// Universe sources
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceArgs    = "args"
)

// Builder constructs the ordered screening universe
type Builder struct {
	config strategyconfig.Universe
	logger *logger.Logger
	now    func() time.Time
}

// NewBuilder creates a new Universe Builder
func NewBuilder(config strategyconfig.Universe, log *logger.Logger) *Builder {
	return &Builder{
		config: config,
		logger: log,
		now:    time.Now,
	}
}

// Build picks the ticker source: explicit args, then the configured file,
// then the built-in default list
// ⭐ SSOT: S1 → S2 유니버스 생성
func (b *Builder) Build(args []string) (*contracts.Universe, error) {
	switch {
	case len(args) > 0:
		return b.FromTickers(SourceArgs, args), nil
	case b.config.File != "":
		return b.FromFile(b.config.File)
	default:
		return b.FromTickers(SourceDefault, DefaultTickers()), nil
	}
}

// FromFile reads one ticker per line; blank lines and # comments are ignored
func (b *Builder) FromFile(path string) (*contracts.Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	tickers, err := ReadTickers(f)
	if err != nil {
		return nil, fmt.Errorf("read universe file %s: %w", path, err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe file %s has no tickers", path)
	}

	return b.FromTickers(SourceFile, tickers), nil
}

// FromTickers normalizes, applies exclusions, then the limit
func (b *Builder) FromTickers(source string, tickers []string) *contracts.Universe {
	universe := &contracts.Universe{
		Date:     b.now(),
		Source:   source,
		Tickers:  make([]string, 0, len(tickers)),
		Excluded: make(map[string]string),
	}

	excluded := make(map[string]bool, len(b.config.ExcludeTickers))
	for _, t := range selection.NormalizeTickers(b.config.ExcludeTickers) {
		excluded[t] = true
	}

	for _, t := range selection.NormalizeTickers(tickers) {
		if excluded[t] {
			universe.Excluded[t] = "excluded by config"
			continue
		}
		if b.config.Limit > 0 && len(universe.Tickers) >= b.config.Limit {
			universe.Excluded[t] = "over limit"
			continue
		}
		universe.Tickers = append(universe.Tickers, t)
	}

	b.logger.WithFields(map[string]interface{}{
		"source":   source,
		"count":    universe.Count(),
		"excluded": len(universe.Excluded),
	}).Info("Universe built")

	return universe
}

// ReadTickers parses a ticker list; a line may hold several
// comma or space separated tickers
func ReadTickers(r io.Reader) ([]string, error) {
	var tickers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			tickers = append(tickers, field)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tickers, nil
}
