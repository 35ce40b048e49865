package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/botwall/pkg/fingerprint"
	"github.com/dmitrymomot/botwall/pkg/logger"
)

// Dispatcher orchestrates fingerprint analysis, the challenge decision,
// and challenge session creation for inbound requests.
type Dispatcher struct {
	engine *Engine
	store  Store
	config Config
	log    *slog.Logger
	now    func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithEngine sets a custom decision engine (e.g. with seeded randomness).
func WithEngine(engine *Engine) DispatcherOption {
	return func(d *Dispatcher) {
		if engine != nil {
			d.engine = engine
		}
	}
}

// WithConfig sets custom challenge settings.
func WithConfig(cfg Config) DispatcherOption {
	return func(d *Dispatcher) {
		d.config = cfg
	}
}

// WithLogger sets the logger for verdict observability.
func WithLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithClock injects the time source, used by tests to drive expiry.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(store Store, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	d := &Dispatcher{
		store:  store,
		config: DefaultConfig(),
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.engine == nil {
		d.engine = NewEngine(WithThresholds(d.config.thresholds()))
	}

	return d, nil
}

// Dispatch analyzes the request, decides on a challenge, and records a
// challenge session either way so later beacons and verification calls
// have a uniform correlation point. The payload is present only when a
// challenge is required.
func (d *Dispatcher) Dispatch(ctx context.Context, clientSignature string, headers map[string]string) (*Result, error) {
	fp := fingerprint.Analyze(clientSignature, headers)
	decision := d.engine.Decide(fp)

	now := d.now()
	sess := &Session{
		ID:           uuid.New(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(d.config.TTL),
		RiskScore:    fp.RiskScore,
		IsChallenged: decision.ShouldChallenge,
		LoadedJS:     make(map[string]struct{}),
		LoadedCSS:    make(map[string]struct{}),
	}

	result := &Result{
		SessionID:       sess.ID,
		ShouldChallenge: decision.ShouldChallenge,
		Severity:        decision.Severity,
		Reason:          decision.Reason,
	}

	if decision.ShouldChallenge {
		sess.RequiredJS = d.resourcePath(ResourceJS)
		sess.RequiredCSS = d.resourcePath(ResourceCSS)
		result.Payload = &Payload{
			SessionID: sess.ID,
			JSPath:    sess.RequiredJS,
			CSSPath:   sess.RequiredCSS,
		}
	}

	if err := d.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	d.log.DebugContext(ctx, "challenge verdict",
		logger.Component("challenge"),
		logger.ChallengeID(sess.ID.String()),
		logger.RiskScore(fp.RiskScore),
		slog.Bool("challenged", decision.ShouldChallenge),
		slog.String("severity", string(decision.Severity)),
		slog.String("reason", decision.Reason),
	)

	return result, nil
}

// resourcePath generates a unique single-use path for one resource kind.
// Unpredictable per challenge: a client cannot pre-fetch or guess it.
func (d *Dispatcher) resourcePath(kind ResourceKind) string {
	return fmt.Sprintf("%s/%s.%s", d.config.ResourcePrefix, uuid.NewString(), kind)
}
