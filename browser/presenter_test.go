package browser

import (
	"context"
	"errors"
	"strings"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

type recordingPresenter struct {
	urls []string
	err  error
}

func (p *recordingPresenter) Open(_ context.Context, rawURL string) error {
	p.urls = append(p.urls, rawURL)
	return p.err
}

func TestSystemPresenter_UsesOpener(t *testing.T) {
	var opened []string
	presenter := NewSystemPresenter(WithOpener(func(rawURL string) error {
		opened = append(opened, rawURL)
		return nil
	}))

	if err := presenter.Open(context.Background(), " https://app.settopay.com/pay/wallet#pt=x "); err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(opened) != 1 || opened[0] != "https://app.settopay.com/pay/wallet#pt=x" {
		t.Fatalf("unexpected opened urls %v", opened)
	}
}

func TestSystemPresenter_RejectsEmptyURLAndCancelledContext(t *testing.T) {
	calls := 0
	presenter := NewSystemPresenter(WithOpener(func(string) error {
		calls++
		return nil
	}))

	if err := presenter.Open(context.Background(), ""); err == nil {
		t.Fatalf("expected empty url error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := presenter.Open(ctx, "https://x.test"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled context error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected opener to be skipped, got %d calls", calls)
	}
	var nilPresenter *SystemPresenter
	if err := nilPresenter.Open(context.Background(), "https://x.test"); err == nil {
		t.Fatalf("expected nil presenter error")
	}
}

func TestFallbackPresenter_PrefersPrimary(t *testing.T) {
	primary := &recordingPresenter{}
	fallback := &recordingPresenter{}
	presenter := NewFallbackPresenter(primary, fallback, glog.Nop())

	if err := presenter.Open(context.Background(), "https://x.test"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(primary.urls) != 1 || len(fallback.urls) != 0 {
		t.Fatalf("expected primary only, got primary=%v fallback=%v", primary.urls, fallback.urls)
	}
}

func TestFallbackPresenter_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := &recordingPresenter{err: errors.New("custom tabs unavailable")}
	fallback := &recordingPresenter{}
	presenter := NewFallbackPresenter(primary, fallback, glog.Nop())

	if err := presenter.Open(context.Background(), "https://x.test"); err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(fallback.urls) != 1 {
		t.Fatalf("expected fallback open, got %v", fallback.urls)
	}
}

func TestFallbackPresenter_ReportsBothFailures(t *testing.T) {
	presenter := NewFallbackPresenter(
		&recordingPresenter{err: errors.New("in-app failed")},
		&recordingPresenter{err: errors.New("system failed")},
		nil,
	)

	err := presenter.Open(context.Background(), "https://x.test")
	if err == nil {
		t.Fatalf("expected failure when every presenter fails")
	}
	if !strings.Contains(err.Error(), "in-app failed") || !strings.Contains(err.Error(), "system failed") {
		t.Fatalf("expected both causes, got %v", err)
	}
	if err := (&FallbackPresenter{}).Open(context.Background(), "https://x.test"); err == nil {
		t.Fatalf("expected error without presenters")
	}
}

func TestFunc(t *testing.T) {
	var got string
	presenter := Func(func(_ context.Context, rawURL string) error {
		got = rawURL
		return nil
	})
	if err := presenter.Open(context.Background(), "https://x.test"); err != nil || got != "https://x.test" {
		t.Fatalf("unexpected func presenter result %q %v", got, err)
	}
	if err := Func(nil).Open(context.Background(), "https://x.test"); err == nil {
		t.Fatalf("expected nil func error")
	}
}
