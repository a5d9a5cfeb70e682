package browser

import (
	"context"
	"errors"
	"io"
	"strings"

	pkgbrowser "github.com/pkg/browser"

	"github.com/goliatone/go-setto/core"
)

// Func adapts a plain function to core.BrowserPresenter.
type Func func(ctx context.Context, rawURL string) error

func (f Func) Open(ctx context.Context, rawURL string) error {
	if f == nil {
		return errors.New("browser: presenter func is nil")
	}
	return f(ctx, rawURL)
}

// SystemPresenter opens URLs in the operating system default browser.
type SystemPresenter struct {
	opener func(rawURL string) error
}

type SystemOption func(*SystemPresenter)

// WithOpener replaces the platform launcher, mainly for tests.
func WithOpener(opener func(rawURL string) error) SystemOption {
	return func(p *SystemPresenter) {
		if opener != nil {
			p.opener = opener
		}
	}
}

// WithOutput redirects the launcher's stdout and stderr. pkg/browser writes
// to process-wide writers, so this affects every SystemPresenter.
func WithOutput(stdout io.Writer, stderr io.Writer) SystemOption {
	return func(*SystemPresenter) {
		if stdout != nil {
			pkgbrowser.Stdout = stdout
		}
		if stderr != nil {
			pkgbrowser.Stderr = stderr
		}
	}
}

func NewSystemPresenter(opts ...SystemOption) *SystemPresenter {
	presenter := &SystemPresenter{opener: pkgbrowser.OpenURL}
	for _, opt := range opts {
		if opt != nil {
			opt(presenter)
		}
	}
	return presenter
}

func (p *SystemPresenter) Open(ctx context.Context, rawURL string) error {
	if p == nil || p.opener == nil {
		return errors.New("browser: system presenter is not configured")
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.New("browser: url is required")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return p.opener(rawURL)
}

// FallbackPresenter tries Primary first, usually an in-app browser, and
// falls back to Fallback when it fails.
type FallbackPresenter struct {
	Primary  core.BrowserPresenter
	Fallback core.BrowserPresenter
	Logger   core.Logger
}

func NewFallbackPresenter(primary core.BrowserPresenter, fallback core.BrowserPresenter, logger core.Logger) *FallbackPresenter {
	return &FallbackPresenter{Primary: primary, Fallback: fallback, Logger: logger}
}

func (p *FallbackPresenter) Open(ctx context.Context, rawURL string) error {
	if p == nil || (p.Primary == nil && p.Fallback == nil) {
		return errors.New("browser: no presenter configured")
	}
	var primaryErr error
	if p.Primary != nil {
		if primaryErr = p.Primary.Open(ctx, rawURL); primaryErr == nil {
			return nil
		}
		if p.Fallback == nil {
			return primaryErr
		}
		if p.Logger != nil {
			p.Logger.Warn("primary browser presenter failed; falling back",
				"url", core.RedactURL(rawURL),
				"error", primaryErr.Error(),
			)
		}
	}
	if err := p.Fallback.Open(ctx, rawURL); err != nil {
		return errors.Join(primaryErr, err)
	}
	return nil
}

var (
	_ core.BrowserPresenter = Func(nil)
	_ core.BrowserPresenter = (*SystemPresenter)(nil)
	_ core.BrowserPresenter = (*FallbackPresenter)(nil)
)
