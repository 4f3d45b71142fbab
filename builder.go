package goCred

import (
	"errors"
	"time"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/policy"
)

// Builder defines a public type used by goCred APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	store  AccountStore
	mail   MailSender

	auditSink AuditSink

	built bool
}

// New starts a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a private copy.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAccountStore sets the persistence strategy. Required.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithMailSender sets the reset-mail strategy. Optional; the default
// NoOpMailSender accepts and discards every hand-off.
func (b *Builder) WithMailSender(sender MailSender) *Builder {
	b.mail = sender
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, constructs the hasher and policy
// validator, and wires the Engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("account store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewDeriver(password.Config{
		Iterations: cfg.Hasher.Iterations,
		SaltLength: cfg.Hasher.SaltLength,
		KeyLength:  cfg.Hasher.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	validator, err := policy.New(policy.Config{
		MinLength:           cfg.Policy.MinLength,
		Pattern:             cfg.Policy.Pattern,
		Require:             cfg.Policy.Require,
		DictionaryPath:      cfg.Policy.DictionaryPath,
		LoginAttemptCeiling: cfg.Policy.LoginAttemptCeiling,
		HistoryDepth:        cfg.Policy.HistoryDepth,
	})
	if err != nil {
		return nil, err
	}

	mail := b.mail
	if mail == nil {
		mail = NoOpMailSender{}
	}

	b.built = true

	return &Engine{
		config:  cfg,
		store:   b.store,
		mail:    mail,
		hasher:  hasher,
		policy:  validator,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: newMetrics(cfg.Metrics),
		now:     time.Now,
	}, nil
}
