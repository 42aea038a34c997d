// internal/portal/portal.go
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/icesdict/dictscraper/internal/browser"
	"github.com/icesdict/dictscraper/internal/config"
	"github.com/icesdict/dictscraper/internal/schema"
)

// Navigation failures the caller can distinguish with errors.Is. All of them
// are fatal to the scrape; there is no retry beyond chromedp's own waits.
var (
	ErrLibraryNotFound  = errors.New("library link not found on portal home page")
	ErrDatasetNotFound  = errors.New("dataset link not found in library listing")
	ErrVariableNotFound = errors.New("variable link not found in dataset listing")
	ErrLayoutMismatch   = errors.New("expected portal layout element not found")
)

// Client drives the ICES Data Dictionary portal for one (library, dataset)
// pair through a browser session. The portal's dataset pages are stateful
// ASP.NET postback views, so each variable detail visit re-enters through
// the remembered library page URL rather than using browser history.
type Client struct {
	sess    *browser.Session
	cfg     config.PortalConfig
	logger  *zap.Logger
	library string
	dataset string

	// libraryURL is captured after the library page is confirmed loaded.
	libraryURL string
}

// NewClient creates a portal client bound to one library and dataset.
func NewClient(sess *browser.Session, cfg config.PortalConfig, library, dataset string, logger *zap.Logger) *Client {
	return &Client{
		sess:    sess,
		cfg:     cfg,
		logger:  logger.Named("portal"),
		library: library,
		dataset: dataset,
	}
}

// Connect navigates from the portal home page to the dataset page:
// home → library link → dataset link. It remembers the library page URL for
// the per-variable round trips that follow.
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Navigating to portal home page.", zap.String("url", c.cfg.HomeURL))
	if err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.Navigate(c.cfg.HomeURL),
		chromedp.WaitReady("body"),
	); err != nil {
		return fmt.Errorf("failed to open portal home page: %w", err)
	}

	c.logger.Info("Opening library.", zap.String("library", c.library))
	if err := c.clickLink(ctx, c.library, ErrLibraryNotFound); err != nil {
		return err
	}
	if err := c.settle(ctx, c.cfg.RenderWait); err != nil {
		return err
	}

	// Waiting for the dataset link doubles as confirmation that we are
	// actually on the library page before its URL is remembered.
	if err := c.waitLink(ctx, c.dataset, ErrDatasetNotFound); err != nil {
		return err
	}
	loc, err := c.sess.Location(ctx)
	if err != nil {
		return err
	}
	c.libraryURL = loc
	c.logger.Debug("Library page URL remembered.", zap.String("url", c.libraryURL))

	return c.openDataset(ctx)
}

// openDataset clicks through to the dataset page from the current library
// listing.
func (c *Client) openDataset(ctx context.Context) error {
	c.logger.Debug("Opening dataset.", zap.String("dataset", c.dataset))
	if err := c.clickLink(ctx, c.dataset, ErrDatasetNotFound); err != nil {
		return err
	}
	return c.settle(ctx, c.cfg.RenderWait)
}

// ListVariables collects every variable shown in the dataset's listing
// table, in the portal's display order.
func (c *Client) ListVariables(ctx context.Context) ([]schema.VariableSummary, error) {
	var raw string
	if err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.Evaluate(collectVariablesJS, &raw),
	); err != nil {
		return nil, fmt.Errorf("failed to evaluate variable listing: %w", err)
	}

	var rows []listingRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode variable listing: %w", err)
	}
	if rows == nil {
		return nil, fmt.Errorf("%w: variables table", ErrLayoutMismatch)
	}

	variables := make([]schema.VariableSummary, 0, len(rows))
	for _, row := range rows {
		variables = append(variables, summarize(row))
	}

	fields := []zap.Field{zap.Int("count", len(variables))}
	if len(variables) > 0 {
		fields = append(fields,
			zap.String("first", variables[0].Name),
			zap.String("last", variables[len(variables)-1].Name),
		)
	}
	c.logger.Info("Collected variable listing.", fields...)
	return variables, nil
}

// VariableDetails opens the named variable's detail view and extracts its
// fields. The route re-enters from the library page because the detail view
// replaces the dataset listing in place. Truncated fields are expanded via
// their "more" controls and re-extracted.
func (c *Client) VariableDetails(ctx context.Context, name string) (schema.VariableDetails, error) {
	var none schema.VariableDetails

	if c.libraryURL == "" {
		return none, fmt.Errorf("portal client is not connected")
	}

	if err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.Navigate(c.libraryURL),
		chromedp.WaitReady("body"),
	); err != nil {
		return none, fmt.Errorf("failed to return to library page: %w", err)
	}
	if err := c.settle(ctx, c.cfg.RenderWait); err != nil {
		return none, err
	}
	if err := c.openDataset(ctx); err != nil {
		return none, err
	}

	c.logger.Debug("Opening variable detail view.", zap.String("variable", name))
	if err := c.clickLink(ctx, name, ErrVariableNotFound); err != nil {
		return none, err
	}
	if err := c.settle(ctx, c.cfg.DetailWait); err != nil {
		return none, err
	}

	details, err := c.extractDetails(ctx)
	if err != nil {
		return none, err
	}

	expanded, err := c.expandTruncated(ctx)
	if err != nil {
		return none, err
	}
	if expanded > 0 {
		c.logger.Debug("Expanded truncated fields.", zap.Int("clicked", expanded))
		return c.extractDetails(ctx)
	}
	return details, nil
}

// extractDetails reads the label/value rows of the current detail view.
func (c *Client) extractDetails(ctx context.Context) (schema.VariableDetails, error) {
	var raw string
	if err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.Evaluate(detailRowsJS, &raw),
	); err != nil {
		return schema.VariableDetails{}, fmt.Errorf("failed to evaluate detail view: %w", err)
	}
	var rows []labelValue
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return schema.VariableDetails{}, fmt.Errorf("failed to decode detail view: %w", err)
	}
	return mapDetailRows(rows), nil
}

// expandTruncated clicks every visible "more" control and waits for the
// expanded content to render. Returns the number of controls clicked.
func (c *Client) expandTruncated(ctx context.Context) (int, error) {
	var clicked int
	if err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.Evaluate(expandMoreJS, &clicked),
	); err != nil {
		return 0, fmt.Errorf("failed to expand truncated fields: %w", err)
	}
	if clicked > 0 {
		if err := c.settle(ctx, c.cfg.ExpandWait); err != nil {
			return 0, err
		}
	}
	return clicked, nil
}

// clickLink waits for and clicks an anchor with exactly the given text. A
// timeout while waiting means the link does not exist on this page, which
// maps to the supplied not-found error.
func (c *Client) clickLink(ctx context.Context, text string, notFound error) error {
	sel := exactLinkXPath(text)
	err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.WaitVisible(sel, chromedp.BySearch),
		chromedp.Click(sel, chromedp.BySearch),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %q", notFound, text)
		}
		return fmt.Errorf("failed to click link %q: %w", text, err)
	}
	return nil
}

// waitLink waits for an anchor with exactly the given text to be visible.
func (c *Client) waitLink(ctx context.Context, text string, notFound error) error {
	sel := exactLinkXPath(text)
	err := c.sess.Run(ctx, c.cfg.StepTimeout,
		chromedp.WaitVisible(sel, chromedp.BySearch),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %q", notFound, text)
		}
		return fmt.Errorf("failed waiting for link %q: %w", text, err)
	}
	return nil
}

// settle gives the portal's post-load rendering time to finish. The pages
// fire their load events long before the listing tables are populated.
func (c *Client) settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return c.sess.Run(ctx, 0, chromedp.Sleep(d))
}
