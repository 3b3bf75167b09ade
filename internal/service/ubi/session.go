package ubi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/metrics"
	"github.com/nkiryanov/r6tracker/internal/models"
	"github.com/nkiryanov/r6tracker/internal/repository"
)

const (
	DefaultAuthPrefix        = "ubi_v1 t="
	defaultRefreshAhead      = time.Minute
	defaultTransitionTimeout = 30 * time.Second
)

type State int

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateValid
	StateRefreshing
	StateExpired
	StateLoggingIn
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapping:
		return "bootstrapping"
	case StateValid:
		return "valid"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	case StateLoggingIn:
		return "logging_in"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Upstream account the service logs in with
type Account struct {
	Email    string
	Password string
}

// LogValue keeps the password out of logs
func (a Account) LogValue() slog.Value {
	return slog.StringValue(a.Email)
}

type sessionClient interface {
	Login(ctx context.Context, email string, password string) (models.Session, error)
	Ping(ctx context.Context, authorization string) (models.Session, error)
}

type SessionConfig struct {
	Account Account

	// Prepended to upstream ticket to build Authorization header value
	// DefaultAuthPrefix is used if not set
	AuthPrefix string

	// Authorization refreshes in memory credential when it expires within this window
	// Default is used if not set
	RefreshAhead time.Duration

	// Upper bound of one shared transition, it does not depend on callers contexts
	// Default is used if not set
	TransitionTimeout time.Duration

	// Optional
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// SessionManager owns the upstream credential.
// It is the only writer of both the stored and the in memory credential.
type SessionManager struct {
	account           Account
	authPrefix        string
	refreshAhead      time.Duration
	transitionTimeout time.Duration
	now               func() time.Time

	repo   repository.CredentialRepo
	client sessionClient

	logger  logger.Logger
	metrics *metrics.Metrics

	// One transition per account at a time, concurrent callers share the result
	group singleflight.Group

	mu         sync.RWMutex
	credential *models.Credential
	state      State
}

func NewSessionManager(cfg SessionConfig, repo repository.CredentialRepo, client sessionClient) (*SessionManager, error) {
	if repo == nil || client == nil {
		return nil, errors.New("repo and client must not be nil")
	}
	if cfg.Account.Email == "" {
		return nil, errors.New("account email must not be empty")
	}

	if cfg.AuthPrefix == "" {
		cfg.AuthPrefix = DefaultAuthPrefix
	}
	if cfg.RefreshAhead == 0 {
		cfg.RefreshAhead = defaultRefreshAhead
	}
	if cfg.TransitionTimeout == 0 {
		cfg.TransitionTimeout = defaultTransitionTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &SessionManager{
		account:           cfg.Account,
		authPrefix:        cfg.AuthPrefix,
		refreshAhead:      cfg.RefreshAhead,
		transitionTimeout: cfg.TransitionTimeout,
		now:               cfg.Now,
		repo:              repo,
		client:            client,
		logger:            cfg.Logger.With("account", cfg.Account),
		metrics:           cfg.Metrics,
		state:             StateUninitialized,
	}, nil
}

// EnsureSession makes sure the account has a valid upstream credential.
//
// Stored credential not expired yet is refreshed with ping, ping failure is returned as is.
// Expired one is deleted and replaced with fresh login. No stored credential means fresh login.
// Concurrent calls share one in flight transition and its result.
// The transition is not cancelled with the caller context, caller only stops waiting for it.
func (m *SessionManager) EnsureSession(ctx context.Context) (models.Credential, error) {
	ch := m.group.DoChan(m.account.Email, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.transitionTimeout)
		defer cancel()
		return m.ensure(ctx)
	})

	select {
	case <-ctx.Done():
		return models.Credential{}, fmt.Errorf("ensure session: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return models.Credential{}, res.Err
		}
		if res.Shared {
			m.logger.Debug("Session transition shared with concurrent caller")
		}
		return res.Val.(models.Credential), nil
	}
}

// Authorization returns Authorization header value for upstream calls.
// Credential expiring within refresh ahead window is renewed first.
func (m *SessionManager) Authorization(ctx context.Context) (string, error) {
	current, ok := m.Current()
	if !ok {
		return "", apperrors.ErrInvalidCredentials
	}

	if current.ExpiresAt.Sub(m.now()) > m.refreshAhead {
		return current.Token, nil
	}

	m.logger.Info("Credential is about to expire, renewing", "expires_at", current.ExpiresAt)
	renewed, err := m.EnsureSession(ctx)
	if err != nil {
		return "", err
	}
	return renewed.Token, nil
}

// Current in memory credential, false if no session was established yet
func (m *SessionManager) Current() (models.Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credential == nil {
		return models.Credential{}, false
	}
	return *m.credential, true
}

func (m *SessionManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Only one ensure runs at a time, it is called inside singleflight group
func (m *SessionManager) ensure(ctx context.Context) (models.Credential, error) {
	prev := m.State()
	if prev == StateUninitialized {
		m.setState(StateBootstrapping)
	}

	c, err := m.transition(ctx)
	if err != nil {
		m.setState(prev)
		return c, err
	}

	m.mu.Lock()
	m.credential = &c
	m.mu.Unlock()
	m.setState(StateValid)

	m.logger.Info("Upstream session is valid", "expires_at", c.ExpiresAt, "token_len", len(c.Token))
	return c, nil
}

func (m *SessionManager) transition(ctx context.Context) (models.Credential, error) {
	stored, err := m.repo.GetByEmail(ctx, m.account.Email)
	switch {
	case errors.Is(err, apperrors.ErrCredentialNotFound):
		m.logger.Info("No stored credential")
		return m.login(ctx)
	case err != nil:
		m.logger.Error("Failed to load stored credential", "error", err)
		return models.Credential{}, fmt.Errorf("load credential: %w", apperrors.Classify(err))
	}

	if stored.Expired(m.now()) {
		m.setState(StateExpired)
		m.logger.Info("Stored credential expired", "expires_at", stored.ExpiresAt)

		if err := m.repo.Delete(ctx, m.account.Email); err != nil {
			m.logger.Error("Failed to delete expired credential", "error", err)
			return models.Credential{}, fmt.Errorf("delete expired credential: %w", apperrors.Classify(err))
		}
		return m.login(ctx)
	}

	return m.refresh(ctx, stored)
}

func (m *SessionManager) refresh(ctx context.Context, stored models.Credential) (models.Credential, error) {
	m.setState(StateRefreshing)

	session, err := m.client.Ping(ctx, stored.Token)
	if err != nil {
		return models.Credential{}, fmt.Errorf("refresh session: %w", err)
	}

	updated, err := m.repo.Update(ctx, m.account.Email, m.authPrefix+session.Ticket, session.Expiration)
	if err != nil {
		m.logger.Error("Failed to store refreshed credential", "error", err)
		return models.Credential{}, fmt.Errorf("store refreshed credential: %w", apperrors.Classify(err))
	}
	return updated, nil
}

func (m *SessionManager) login(ctx context.Context) (models.Credential, error) {
	m.setState(StateLoggingIn)

	session, err := m.client.Login(ctx, m.account.Email, m.account.Password)
	if err != nil {
		return models.Credential{}, fmt.Errorf("login: %w", err)
	}

	created, err := m.repo.Create(ctx, models.Credential{
		Email:     m.account.Email,
		Token:     m.authPrefix + session.Ticket,
		ExpiresAt: session.Expiration,
	})
	if err != nil {
		err = apperrors.Classify(err)
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			m.logger.Warn("Credential was stored concurrently", "error", err)
		} else {
			m.logger.Error("Failed to store credential", "error", err)
		}
		return models.Credential{}, fmt.Errorf("store credential: %w", err)
	}
	return created, nil
}

// setState switches state and returns the previous one
func (m *SessionManager) setState(s State) State {
	m.mu.Lock()
	prev := m.state
	m.state = s
	m.mu.Unlock()

	if prev != s {
		m.logger.Debug("Session state changed", "from", prev.String(), "to", s.String())
		m.metrics.SessionTransition(s.String())
	}
	return prev
}
