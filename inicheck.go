package inicheck

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
)

const (
	defaultLockKey = "inicheck:pass"
	defaultLockTTL = 30 * time.Second
)

// Session validates one raw configuration against a master schema.
type Session struct {
	master    *schema.Master
	store     ports.ConfigStore
	locker    ports.Locker
	lockKey   string
	lockTTL   time.Duration
	hooks     checkers.Hooks
	logger    *slog.Logger
	writeBack bool
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks called after every item check.
func WithHooks(hooks checkers.Hooks) Option {
	return func(s *Session) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLocker serializes passes sharing key across every session using locker.
func WithLocker(locker ports.Locker, key string) Option {
	return func(s *Session) {
		s.locker = locker
		if key != "" {
			s.lockKey = key
		}
	}
}

// WithLockTTL bounds how long a crashed pass can hold the lock (default: 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Session) {
		s.lockTTL = ttl
	}
}

// WithWriteBack makes Check apply every normalized value to the store.
func WithWriteBack(enabled bool) Option {
	return func(s *Session) {
		s.writeBack = enabled
	}
}

// New creates a session over store, validated against master.
func New(master *schema.Master, store ports.ConfigStore, opts ...Option) (*Session, error) {
	if master == nil {
		return nil, fmt.Errorf("master schema is required")
	}
	if store == nil {
		return nil, fmt.Errorf("configuration store is required")
	}

	s := &Session{
		master:  master,
		store:   store,
		lockKey: defaultLockKey,
		lockTTL: defaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// Master returns the schema the session validates against.
func (s *Session) Master() *schema.Master { return s.master }

// Store returns the raw configuration.
func (s *Session) Store() ports.ConfigStore { return s.store }

// Checker builds the checker for a single item, carrying the session's
// logger and hooks.
func (s *Session) Checker(section, item string, opts ...checkers.Option) (checkers.Checker, error) {
	base := []checkers.Option{
		checkers.WithLogger(s.logger),
		checkers.WithHooks(s.hooks),
	}
	return checkers.New(s.store, s.master, section, item, append(base, opts...)...)
}
