// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/icesdict/dictscraper/internal/config"
)

// Session owns a single Chromium process and the one tab the scrape drives.
// It is a scoped resource: acquired by NewSession, released by Close. All
// page interaction goes through Run, which serializes actions onto the tab.
type Session struct {
	id     string
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	// slowMo is applied before each Run in headed mode so a human can follow
	// the automation.
	slowMo time.Duration
}

const launchTimeout = 60 * time.Second

// NewSession launches the browser process and opens the scrape tab. The
// returned session is ready for navigation; the caller must Close it.
func NewSession(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	s := &Session{
		id:     uuid.New().String(),
		logger: logger.Named("browser"),
	}
	if !cfg.Headless {
		s.slowMo = cfg.SlowMo
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:0:0], chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.DisableGPU,
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	s.tabCtx, s.tabCancel = chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	s.closePopupTargets()

	// The first Run launches the browser process; failure here is an
	// environment error (no Chromium available), fatal at startup.
	launchCtx, cancel := context.WithTimeout(s.tabCtx, launchTimeout)
	defer cancel()
	if err := chromedp.Run(launchCtx,
		chromedp.EmulateViewport(int64(cfg.WindowWidth), int64(cfg.WindowHeight)),
	); err != nil {
		s.tabCancel()
		s.allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.logger.Info("Browser session established.",
		zap.String("session_id", s.id),
		zap.Bool("headless", cfg.Headless),
	)
	return s, nil
}

// closePopupTargets installs a browser-level listener that closes any page
// the portal opens in a new tab. The scrape drives exactly one tab; stray
// popups would otherwise pile up for the lifetime of the run.
func (s *Session) closePopupTargets() {
	chromedp.ListenBrowser(s.tabCtx, func(ev interface{}) {
		created, ok := ev.(*target.EventTargetCreated)
		if !ok {
			return
		}
		info := created.TargetInfo
		if info.Type != "page" || info.OpenerID == "" {
			return
		}
		s.logger.Debug("Closing popup tab.", zap.String("url", info.URL))
		go func() {
			c := chromedp.FromContext(s.tabCtx)
			if c == nil || c.Browser == nil {
				return
			}
			exec := cdp.WithExecutor(s.tabCtx, c.Browser)
			if err := target.CloseTarget(info.TargetID).Do(exec); err != nil {
				s.logger.Warn("Failed to close popup tab.", zap.Error(err))
			}
		}()
	})
}

// ID returns the session identifier used in log correlation.
func (s *Session) ID() string {
	return s.id
}

// Run executes the given actions on the scrape tab. The caller's context
// only gates cancellation between steps; timeout bounds the actions
// themselves. A zero timeout means no bound beyond the session lifetime.
func (s *Session) Run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.slowMo > 0 {
		time.Sleep(s.slowMo)
	}

	runCtx := s.tabCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(s.tabCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Location returns the tab's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.Run(ctx, 0, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read current location: %w", err)
	}
	return loc, nil
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	s.logger.Info("Closing browser session.", zap.String("session_id", s.id))
	s.tabCancel()
	s.allocCancel()
}
