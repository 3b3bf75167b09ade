package ubi

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/models"
)

// Shared call log, lets tests check order of store and upstream calls
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// In memory credential repo, behaves like postgres one
type fakeCredentialRepo struct {
	log *callLog

	mu      sync.Mutex
	records map[string]models.Credential

	// Errors injected into the next calls
	getErr    error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeCredentialRepo(log *callLog) *fakeCredentialRepo {
	return &fakeCredentialRepo{log: log, records: map[string]models.Credential{}}
}

func (r *fakeCredentialRepo) put(c models.Credential) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.records[c.Email] = c
}

func (r *fakeCredentialRepo) get(email string) (models.Credential, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[email]
	return c, ok
}

func (r *fakeCredentialRepo) GetByEmail(_ context.Context, email string) (models.Credential, error) {
	r.log.add("repo.get")
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return models.Credential{}, r.getErr
	}
	c, ok := r.records[email]
	if !ok {
		return models.Credential{}, apperrors.NewStoreNotFound(apperrors.ErrCredentialNotFound)
	}
	return c, nil
}

func (r *fakeCredentialRepo) Create(_ context.Context, c models.Credential) (models.Credential, error) {
	r.log.add("repo.create")
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return models.Credential{}, r.createErr
	}
	if _, ok := r.records[c.Email]; ok {
		return models.Credential{}, apperrors.NewUniqueViolation("email", apperrors.ErrAlreadyExists)
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.records[c.Email] = c
	return c, nil
}

func (r *fakeCredentialRepo) Update(_ context.Context, email string, token string, expiresAt time.Time) (models.Credential, error) {
	r.log.add("repo.update")
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return models.Credential{}, r.updateErr
	}
	c, ok := r.records[email]
	if !ok {
		return models.Credential{}, apperrors.NewStoreNotFound(apperrors.ErrCredentialNotFound)
	}
	c.Token = token
	c.ExpiresAt = expiresAt
	c.UpdatedAt = time.Now()
	r.records[email] = c
	return c, nil
}

func (r *fakeCredentialRepo) Delete(_ context.Context, email string) error {
	r.log.add("repo.delete")
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.records, email)
	return nil
}

// Upstream session client without network
type fakeSessionClient struct {
	log *callLog

	loginSession models.Session
	loginErr     error
	loginDelay   time.Duration
	pingSession  models.Session
	pingErr      error

	logins atomic.Int32
	pings  atomic.Int32

	mu         sync.Mutex
	pingTokens []string
}

func (c *fakeSessionClient) Login(ctx context.Context, email string, password string) (models.Session, error) {
	c.log.add("client.login")
	c.logins.Add(1)

	if c.loginDelay > 0 {
		select {
		case <-time.After(c.loginDelay):
		case <-ctx.Done():
			return models.Session{}, ctx.Err()
		}
	}
	return c.loginSession, c.loginErr
}

func (c *fakeSessionClient) Ping(_ context.Context, authorization string) (models.Session, error) {
	c.log.add("client.ping")
	c.pings.Add(1)

	c.mu.Lock()
	c.pingTokens = append(c.pingTokens, authorization)
	c.mu.Unlock()

	return c.pingSession, c.pingErr
}

type fakeAuthorizer struct {
	token string
	err   error
}

func (a fakeAuthorizer) Authorization(context.Context) (string, error) {
	return a.token, a.err
}

// Clock tests may move
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func mustParseTime(value string) time.Time {
	dt, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return dt
}
