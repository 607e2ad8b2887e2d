package protocol

import "time"

// RetryContext is the view of a request's retry history the policy needs to
// make a decision (spec §4.3). *Request implements this interface; tests can
// substitute a lightweight fake instead of building a full request.
type RetryContext interface {
	LastException() error
	PriorException() error
	RetryCount() int
	RemainingTimeout() time.Duration
}

// RetryPolicy decides whether a failed request should be retried, and how
// long to wait before the next attempt.
type RetryPolicy interface {
	ShouldRetry(ctx RetryContext) bool
	ComputeDelay(ctx RetryContext) time.Duration
}

// RetryPolicyConfig holds the tunables of DefaultRetryPolicy (spec §4.3).
//
// MaxRetryAttempts is the one field spec §4.3 allows to be non-negative
// rather than strictly positive: 0 is a legal, meaningful value ("never
// retry by count"), distinct from leaving the field unset. UnsetMaxRetryAttempts
// marks "unset, use the spec default" so a caller's explicit 0 survives
// NewDefaultRetryPolicy instead of being mistaken for the Go zero value.
type RetryPolicyConfig struct {
	MaxRetryAttempts                 int
	BaseDelay                        time.Duration
	ControlBaseDelay                 time.Duration
	SecurityInfoBaseDelay            time.Duration
	SecurityInfoConstantDelayRetries int
}

// UnsetMaxRetryAttempts marks RetryPolicyConfig.MaxRetryAttempts as not
// explicitly configured, so NewDefaultRetryPolicy substitutes the spec
// default instead of treating it as an explicit "never retry by count".
const UnsetMaxRetryAttempts = -1

// DefaultRetryPolicyConfig returns the spec's default tunables.
func DefaultRetryPolicyConfig() RetryPolicyConfig {
	return RetryPolicyConfig{
		MaxRetryAttempts:                 UnsetMaxRetryAttempts,
		BaseDelay:                        time.Second,
		ControlBaseDelay:                 60 * time.Second,
		SecurityInfoBaseDelay:            time.Second,
		SecurityInfoConstantDelayRetries: 10,
	}
}

// defaultMaxRetryAttempts is the spec default applied when MaxRetryAttempts
// is UnsetMaxRetryAttempts.
const defaultMaxRetryAttempts = 10

// DefaultRetryPolicy implements the decision table and delay computation of
// spec §4.3.
type DefaultRetryPolicy struct {
	cfg RetryPolicyConfig
}

// NewDefaultRetryPolicy builds a DefaultRetryPolicy. A zero-value cfg field
// falls back to the spec default for that field, except MaxRetryAttempts:
// 0 there is a legal explicit "never retry by count" and is kept as-is; only
// UnsetMaxRetryAttempts (-1) resolves to the spec default of 10.
func NewDefaultRetryPolicy(cfg RetryPolicyConfig) *DefaultRetryPolicy {
	defaults := DefaultRetryPolicyConfig()
	if cfg.MaxRetryAttempts == UnsetMaxRetryAttempts {
		cfg.MaxRetryAttempts = defaultMaxRetryAttempts
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.ControlBaseDelay == 0 {
		cfg.ControlBaseDelay = defaults.ControlBaseDelay
	}
	if cfg.SecurityInfoBaseDelay == 0 {
		cfg.SecurityInfoBaseDelay = defaults.SecurityInfoBaseDelay
	}
	if cfg.SecurityInfoConstantDelayRetries == 0 {
		cfg.SecurityInfoConstantDelayRetries = defaults.SecurityInfoConstantDelayRetries
	}
	return &DefaultRetryPolicy{cfg: cfg}
}

// ShouldRetry implements RetryPolicy per the spec §4.3 decision table.
func (p *DefaultRetryPolicy) ShouldRetry(ctx RetryContext) bool {
	last := ctx.LastException()
	if last == nil {
		return false
	}

	switch {
	case !IsKind(last, KindRetryableNoSQL) && !IsKind(last, KindRetryableNetwork):
		return false
	case SubKindOf(last) == SubKindControlOpThrottle:
		return ctx.RemainingTimeout() > p.cfg.ControlBaseDelay
	case SubKindOf(last) == SubKindSecurityInfoNotReady:
		return true
	case IsKind(last, KindRetryableNetwork):
		return true
	case SubKindOf(last) == SubKindInvalidAuthorization:
		return SubKindOf(ctx.PriorException()) != SubKindInvalidAuthorization
	default:
		return ctx.RetryCount() < p.cfg.MaxRetryAttempts
	}
}

// ComputeDelay implements RetryPolicy per the spec §4.3 delay formulas.
func (p *DefaultRetryPolicy) ComputeDelay(ctx RetryContext) time.Duration {
	last := ctx.LastException()
	retryCount := ctx.RetryCount()

	switch SubKindOf(last) {
	case SubKindControlOpThrottle:
		return ExponentialBackoff(retryCount, p.cfg.ControlBaseDelay) + Jitter(p.cfg.ControlBaseDelay)
	case SubKindSecurityInfoNotReady:
		if retryCount <= p.cfg.SecurityInfoConstantDelayRetries {
			return p.cfg.SecurityInfoBaseDelay
		}
		return ExponentialBackoff(retryCount-p.cfg.SecurityInfoConstantDelayRetries, p.cfg.SecurityInfoBaseDelay)
	default:
		return ExponentialBackoff(retryCount, p.cfg.BaseDelay)
	}
}

// noRetryPolicy always refuses to retry. A singleton, per spec §4.3.
type noRetryPolicy struct{}

func (noRetryPolicy) ShouldRetry(RetryContext) bool           { return false }
func (noRetryPolicy) ComputeDelay(RetryContext) time.Duration { return 0 }

// NoRetryPolicy is the singleton "never retry" policy.
var NoRetryPolicy RetryPolicy = noRetryPolicy{}
