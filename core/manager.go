package core

import (
	"context"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Manager owns the SDK configuration and the single pending payment session.
// Hosts construct one Manager and keep it for the lifetime of the process;
// Configure and Reset are the only operations that change its configuration.
type Manager struct {
	mu          sync.RWMutex
	initialized bool
	config      Config

	slot sessionSlot

	observersMu  sync.RWMutex
	observers    map[uint64]Observer
	nextObserver uint64

	inflight sync.WaitGroup

	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	presenter       BrowserPresenter
	exchanger       TokenExchanger
	recorder        AttemptRecorder
	asyncRunner     AsyncRunner
	now             func() time.Time
	newSessionID    func() string
}

func NewManager(opts ...Option) *Manager {
	builder := defaultManagerBuilder()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(loggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil && builder.logger == nil {
		if named := provider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}
	if builder.newSessionID == nil {
		builder.newSessionID = defaultManagerBuilder().newSessionID
	}

	m := &Manager{
		observers:       map[uint64]Observer{},
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		presenter:       builder.presenter,
		exchanger:       builder.exchanger,
		recorder:        builder.recorder,
		asyncRunner:     builder.asyncRunner,
		now:             builder.now,
		newSessionID:    builder.newSessionID,
	}
	for _, observer := range builder.observers {
		m.Subscribe(observer)
	}
	return m
}

// Configure resolves cfg over the loaded configuration and defaults and stores
// the result. It is one-shot: once configured, later calls are logged and
// ignored until Reset runs. Only an invalid configuration returns an error.
func (m *Manager) Configure(ctx context.Context, cfg Config) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{"environment": string(cfg.Environment)}
	defer func() {
		m.observeOperation(ctx, startedAt, "configure", err, fields)
	}()

	if m.IsInitialized() {
		m.logWarn(ctx, "setto already configured; call Reset before configuring again", fields)
		return nil
	}

	defaults := DefaultConfig()
	loaded, err := m.configProvider.Load(ctx, defaults)
	if err != nil {
		return NewInvalidConfigError(err)
	}
	resolved, err := m.optionsResolver.Resolve(defaults, loaded, cfg)
	if err != nil {
		return NewInvalidConfigError(err)
	}
	fields["environment"] = string(resolved.Environment)
	fields["token_mode"] = string(resolved.tokenMode())

	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		m.logWarn(ctx, "setto already configured; call Reset before configuring again", fields)
		return nil
	}
	m.config = resolved
	m.initialized = true
	m.mu.Unlock()
	return nil
}

func (m *Manager) IsInitialized() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Config returns the active configuration and whether the manager is configured.
func (m *Manager) Config() (Config, bool) {
	if m == nil {
		return Config{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config, m.initialized
}

// PendingSession returns a copy of the in-flight session, if any.
func (m *Manager) PendingSession() (SessionSnapshot, bool) {
	if m == nil {
		return SessionSnapshot{State: SessionStateIdle}, false
	}
	return m.slot.peek()
}

// StartPayment begins a payment and returns immediately. The outcome is only
// ever reported through onComplete: synchronously for a missing configuration
// or an invalid request, later for everything else. A session that is still
// pending is replaced; its callback is not invoked unless the configured
// abandon policy is cancel.
func (m *Manager) StartPayment(ctx context.Context, req PaymentRequest, onComplete CompletionFunc) StartResult {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()

	cfg, ok := m.Config()
	if !ok {
		return m.reject(ctx, startedAt, req, onComplete, NewNotInitializedError())
	}
	resolved := resolveRequest(cfg, req)
	if err := validateRequest(resolved.MerchantID, resolved.Amount); err != nil {
		return m.reject(ctx, startedAt, resolved, onComplete, err)
	}
	mode := selectMode(cfg, resolved)
	if mode == ModeFull && m.exchanger == nil {
		return m.reject(ctx, startedAt, resolved, onComplete, NewInternalError("core: token exchanger is not configured"))
	}
	if m.presenter == nil {
		return m.reject(ctx, startedAt, resolved, onComplete, NewInternalError("core: browser presenter is not configured"))
	}

	session := &pendingSession{
		id:         m.newSessionID(),
		mode:       mode,
		state:      SessionStateAwaitingCallback,
		config:     cfg,
		request:    resolved,
		onComplete: onComplete,
		startedAt:  m.now(),
	}
	var exchangeCtx context.Context
	if mode == ModeFull {
		session.state = SessionStateAwaitingTokenExchange
		exchangeCtx, session.cancel = context.WithCancel(context.WithoutCancel(ctx))
	}

	previous := m.slot.replace(session)
	m.abandon(ctx, previous, AttemptEventSuperseded)
	m.record(ctx, session.event(AttemptEventStarted))

	fields := sessionFields(session)
	m.logDebug(ctx, "payment session started", fields)

	var err error
	switch mode {
	case ModeFull:
		m.runAsync(func() {
			m.exchangeToken(exchangeCtx, session)
		})
	default:
		redirect := BuildSimpleURL(cfg.Endpoints().WebBaseURL, SimpleURLParams{
			MerchantID: resolved.MerchantID,
			Amount:     resolved.Amount,
			OrderID:    resolved.OrderID,
			Currency:   resolved.Currency,
		})
		err = m.openRedirect(ctx, session, redirect)
	}
	m.observeOperation(ctx, startedAt, "start_payment", err, fields)

	return StartResult{SessionID: session.id, Mode: mode, Accepted: true}
}

// Reset clears the configuration and the pending session and cancels any
// in-flight token exchange. It is safe to call repeatedly.
func (m *Manager) Reset(ctx context.Context) {
	if m == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.mu.Lock()
	wasInitialized := m.initialized
	m.initialized = false
	m.config = Config{}
	m.mu.Unlock()

	previous := m.slot.consume()
	m.abandon(ctx, previous, AttemptEventReset)
	if wasInitialized || previous != nil {
		m.logInfo(ctx, "setto reset", map[string]any{"had_pending_session": previous != nil})
	}
}

// Deinitialize resets the manager and waits, bounded by ctx, for background
// token exchanges to wind down.
func (m *Manager) Deinitialize(ctx context.Context) error {
	if m == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.Reset(ctx)

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers an observer for every dispatched outcome. The returned
// function removes it and may be called more than once.
func (m *Manager) Subscribe(observer Observer) (unsubscribe func()) {
	if m == nil || observer == nil {
		return func() {}
	}
	m.observersMu.Lock()
	m.nextObserver++
	id := m.nextObserver
	m.observers[id] = observer
	m.observersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.observersMu.Lock()
			delete(m.observers, id)
			m.observersMu.Unlock()
		})
	}
}

func (m *Manager) exchangeToken(ctx context.Context, session *pendingSession) {
	startedAt := time.Now().UTC()
	fields := sessionFields(session)

	token, err := m.exchanger.ExchangePaymentToken(ctx, TokenExchangeRequest{
		APIBaseURL: session.config.Endpoints().APIBaseURL,
		MerchantID: session.request.MerchantID,
		Amount:     session.request.Amount,
		OrderID:    session.request.OrderID,
		IdpToken:   session.request.IdpToken,
	})
	if err != nil {
		m.observeOperation(ctx, startedAt, "token_exchange", err, fields)
		consumed := m.slot.consumeIf(session.id)
		if consumed == nil {
			m.logDebug(ctx, "token exchange failed for an inactive session", fields)
			return
		}
		m.deliver(ctx, consumed, OutcomeFromError(err))
		return
	}
	if !m.slot.advance(session.id, SessionStateAwaitingCallback) {
		m.logDebug(ctx, "discarding payment token for an inactive session", fields)
		m.observeOperation(ctx, startedAt, "token_exchange", nil, fields)
		return
	}
	m.observeOperation(ctx, startedAt, "token_exchange", nil, fields)
	m.record(ctx, session.event(AttemptEventTokenIssued))

	_ = m.openRedirect(ctx, session, BuildFullURL(session.config.Endpoints().WebBaseURL, token))
}

// openRedirect hands the URL to the presenter. A presenter failure ends the
// session with a Failed outcome.
func (m *Manager) openRedirect(ctx context.Context, session *pendingSession, redirect string) error {
	fields := sessionFields(session)
	fields["url"] = redirect
	if err := m.presenter.Open(ctx, redirect); err != nil {
		failure := NewBrowserOpenError(err)
		if consumed := m.slot.consumeIf(session.id); consumed != nil {
			m.deliver(ctx, consumed, OutcomeFromError(failure))
		}
		return failure
	}
	m.record(ctx, session.event(AttemptEventOpened))
	m.logDebug(ctx, "payment page opened", fields)
	return nil
}

func (m *Manager) reject(
	ctx context.Context,
	startedAt time.Time,
	req PaymentRequest,
	onComplete CompletionFunc,
	err error,
) StartResult {
	outcome := OutcomeFromError(err)
	m.record(ctx, AttemptEvent{
		Type:       AttemptEventRejected,
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		OrderID:    req.OrderID,
		Outcome:    outcome.Kind,
		Message:    outcome.ErrorMessage,
		Metadata:   map[string]any{"error_code": ErrorTextCode(err)},
	})
	m.invokeCompletion(ctx, onComplete, outcome, map[string]any{"merchant_id": req.MerchantID})
	m.observeOperation(ctx, startedAt, "start_payment", err, map[string]any{
		"merchant_id": req.MerchantID,
		"order_id":    req.OrderID,
	})
	return StartResult{Accepted: false}
}

// abandon retires a session that left the slot without a callback.
func (m *Manager) abandon(ctx context.Context, previous *pendingSession, reason AttemptEventType) {
	if previous == nil {
		return
	}
	previous.stopExchange()
	m.record(ctx, previous.event(reason))
	if previous.config.abandonPolicy() == AbandonPolicyCancel {
		m.deliver(ctx, previous, Cancelled())
		return
	}
	m.logDebug(ctx, "pending payment session abandoned without notification", sessionFields(previous))
}

func (m *Manager) runAsync(task func()) {
	m.inflight.Add(1)
	wrapped := func() {
		defer m.inflight.Done()
		task()
	}
	if m.asyncRunner != nil {
		m.asyncRunner(wrapped)
		return
	}
	go wrapped()
}

func (m *Manager) record(ctx context.Context, event AttemptEvent) {
	if m.recorder == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = m.now()
	}
	if err := m.recorder.Record(ctx, event); err != nil {
		m.logWarn(ctx, "payment attempt record failed", map[string]any{
			"session_id": event.SessionID,
			"event":      string(event.Type),
			"error":      err.Error(),
		})
	}
}

func (m *Manager) debugEnabled() bool {
	cfg, ok := m.Config()
	return ok && cfg.Debug
}

func resolveRequest(cfg Config, req PaymentRequest) PaymentRequest {
	resolved := req
	if resolved.MerchantID == "" {
		resolved.MerchantID = cfg.MerchantID
	}
	if resolved.IdpToken == "" {
		resolved.IdpToken = cfg.IdpToken
	}
	return resolved
}

func selectMode(cfg Config, req PaymentRequest) Mode {
	if cfg.tokenMode() == TokenModeAlways || req.IdpToken != "" {
		return ModeFull
	}
	return ModeSimple
}

func (s *pendingSession) event(eventType AttemptEventType) AttemptEvent {
	return AttemptEvent{
		SessionID:   s.id,
		Type:        eventType,
		Mode:        s.mode,
		Environment: s.config.Environment,
		MerchantID:  s.request.MerchantID,
		Amount:      s.request.Amount,
		OrderID:     s.request.OrderID,
	}
}

func sessionFields(session *pendingSession) map[string]any {
	if session == nil {
		return map[string]any{}
	}
	return map[string]any{
		"session_id":  session.id,
		"mode":        string(session.mode),
		"environment": string(session.config.Environment),
		"merchant_id": session.request.MerchantID,
		"order_id":    session.request.OrderID,
	}
}
