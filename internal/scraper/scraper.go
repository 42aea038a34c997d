// internal/scraper/scraper.go
package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/icesdict/dictscraper/internal/reporting"
	"github.com/icesdict/dictscraper/internal/schema"
)

// Navigator is the portal surface the scrape operation drives. The concrete
// implementation lives in internal/portal; tests substitute a fixture.
type Navigator interface {
	// Connect navigates to the dataset page and leaves the portal ready for
	// listing and detail traversal.
	Connect(ctx context.Context) error
	// ListVariables returns the dataset's variables in display order.
	ListVariables(ctx context.Context) ([]schema.VariableSummary, error)
	// VariableDetails opens one variable's detail view and extracts it.
	VariableDetails(ctx context.Context, name string) (schema.VariableDetails, error)
}

// ProgressFunc is invoked after each variable is scraped. done counts
// completed variables out of total.
type ProgressFunc func(done, total int, name string)

// Scraper executes the schema scrape operation: enumerate the dataset's
// variables, visit each detail view strictly sequentially, and hand the
// assembled output table to the reporter in one final write. Any failure
// along the way is fatal; no partial output is produced.
type Scraper struct {
	nav      Navigator
	reporter reporting.Reporter
	logger   *zap.Logger
	progress ProgressFunc
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithProgress registers a progress callback for the per-variable loop.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scraper) {
		s.progress = fn
	}
}

// New creates a Scraper over the given navigator and reporter.
func New(nav Navigator, reporter reporting.Reporter, logger *zap.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		nav:      nav,
		reporter: reporter,
		logger:   logger.Named("scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs the scrape and returns the number of variables written.
func (s *Scraper) Run(ctx context.Context) (int, error) {
	if err := s.nav.Connect(ctx); err != nil {
		return 0, fmt.Errorf("failed to reach dataset page: %w", err)
	}

	variables, err := s.nav.ListVariables(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list variables: %w", err)
	}
	s.logger.Info("Starting variable traversal.", zap.Int("total", len(variables)))

	records := make([]schema.VariableRecord, 0, len(variables))
	for i, v := range variables {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		s.logger.Info("Scraping variable.",
			zap.Int("index", i+1),
			zap.Int("total", len(variables)),
			zap.String("variable", v.Name),
		)
		details, err := s.nav.VariableDetails(ctx, v.Name)
		if err != nil {
			return 0, fmt.Errorf("failed to scrape variable %q (%d/%d): %w",
				v.Name, i+1, len(variables), err)
		}

		records = append(records, schema.VariableRecord{
			Name:        v.Name,
			Description: v.Description,
			Type:        v.Type,
			Details:     details,
		})
		if s.progress != nil {
			s.progress(i+1, len(variables), v.Name)
		}
	}

	if err := s.reporter.Write(records); err != nil {
		return 0, fmt.Errorf("failed to write output: %w", err)
	}

	s.logger.Info("Scrape completed.", zap.Int("variables", len(records)))
	return len(records), nil
}
