// Package session owns the process-wide authentication state. The
// Manager is the single writer of the Session; all other components read
// snapshots or subscribe to published updates.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/internal/credstore"
	"github.com/facturapro/sessiond/repository"
)

// Manager orchestrates the identity sources in precedence order
// (credential store, then remote resolver), persists the winning
// identity and publishes every committed Session to subscribers.
//
// Mutating operations are guarded by a single in-flight slot: a second
// call issued before the first settles fails with ALREADY_IN_PROGRESS
// instead of racing on the persisted slot and the published state.
type Manager struct {
	creds    *credstore.Store
	resolver repository.IdentityResolver
	store    repository.SessionStore
	logger   *zap.Logger

	mu           sync.Mutex
	busy         bool
	bootstrapped bool
	current      domain.Session
	subs         map[int]chan domain.Session
	nextSub      int
}

// New creates a Manager in the initializing state.
func New(creds *credstore.Store, resolver repository.IdentityResolver, store repository.SessionStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		creds:    creds,
		resolver: resolver,
		store:    store,
		logger:   logger,
		current:  domain.Session{Status: domain.StatusInitializing},
		subs:     make(map[int]chan domain.Session),
	}
}

// Session returns a snapshot of the current state.
func (m *Manager) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a session listener. The returned channel carries
// the current snapshot immediately and then every committed update,
// coalescing to the latest state when the receiver lags. The second
// return value unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan domain.Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan domain.Session, 1)
	ch <- m.snapshotLocked()
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
}

// Bootstrap resolves an existing session at startup, once. Precedence:
// the locally persisted slot wins outright (a demo identity is unknown
// to the remote provider and must not be dropped on restart); only an
// empty slot falls through to the provider's current session. Every
// failure degrades to unauthenticated with no error surfaced, so an
// unreachable provider still leaves the application at the login screen.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	if m.bootstrapped {
		m.mu.Unlock()
		return nil
	}
	m.bootstrapped = true
	m.mu.Unlock()

	if cached, err := m.store.Load(ctx); err != nil {
		m.logger.Warn("session slot load failed", zap.Error(err))
	} else if cached != nil {
		m.logger.Info("session restored from local slot",
			zap.String("user_id", cached.ID),
			zap.Bool("demo", cached.Demo))
		m.setSession(cached, domain.StatusAuthenticated, "")
		return nil
	}

	remote, err := m.resolver.CurrentSession(ctx)
	if err != nil {
		m.logger.Warn("remote session lookup failed", zap.Error(err))
		m.setSession(nil, domain.StatusUnauthenticated, "")
		return nil
	}
	if remote != nil {
		m.persist(ctx, remote)
		m.setSession(remote, domain.StatusAuthenticated, "")
		return nil
	}

	m.setSession(nil, domain.StatusUnauthenticated, "")
	return nil
}

// Login resolves credentials against the credential store first, then
// the remote resolver. Failures set the session to unauthenticated with
// LastError and come back as a typed error, never a panic.
func (m *Manager) Login(ctx context.Context, handle, secret string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	if handle == "" || secret == "" {
		err := domain.NewError(domain.ErrCodeInvalidCredentials, "login handle and secret are required")
		m.setSession(nil, domain.StatusUnauthenticated, err.Error())
		return err
	}

	if identity, ok := m.creds.Lookup(handle, secret); ok {
		m.logger.Info("login resolved by credential store", zap.String("user_id", identity.ID))
		m.persist(ctx, identity)
		m.setSession(identity, domain.StatusAuthenticated, "")
		return nil
	}

	identity, err := m.resolver.Authenticate(ctx, handle, secret)
	if err != nil {
		m.logger.Warn("remote authentication failed", zap.Error(err))
		m.setSession(nil, domain.StatusUnauthenticated, err.Error())
		return err
	}

	m.logger.Info("login resolved by identity provider",
		zap.String("user_id", identity.ID),
		zap.String("role", string(identity.Role)))
	m.persist(ctx, identity)
	m.setSession(identity, domain.StatusAuthenticated, "")
	return nil
}

// LoginAsDemo adopts the locally constructed demo identity. No network
// is involved, so this entry point works with the provider unreachable.
func (m *Manager) LoginAsDemo(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	identity := domain.NewDemoIdentity()
	m.persist(ctx, identity)
	m.setSession(identity, domain.StatusAuthenticated, "")
	m.logger.Info("demo session started", zap.String("user_id", identity.ID))
	return nil
}

// Logout clears the session. The remote termination leg is skipped for
// demo identities and is best-effort for everyone else; local state is
// cleared either way.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	identity := m.current.Identity
	m.mu.Unlock()

	if identity != nil && !identity.Demo {
		if err := m.resolver.SignOut(ctx); err != nil {
			m.logger.Warn("remote sign-out failed, clearing local state anyway", zap.Error(err))
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("session slot clear failed", zap.Error(err))
	}
	m.setSession(nil, domain.StatusUnauthenticated, "")
	return nil
}

func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return domain.ErrAlreadyInProgress
	}
	m.busy = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Manager) persist(ctx context.Context, identity *domain.Identity) {
	if err := m.store.Save(ctx, identity); err != nil {
		m.logger.Warn("session slot save failed", zap.Error(err))
	}
}

func (m *Manager) setSession(identity *domain.Identity, status domain.Status, lastError string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = domain.Session{
		Identity:  identity,
		Status:    status,
		LastError: lastError,
	}

	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// snapshotLocked copies the current session, including the identity, so
// readers can never mutate manager-owned state. Callers must hold mu.
func (m *Manager) snapshotLocked() domain.Session {
	snap := m.current
	if m.current.Identity != nil {
		identity := *m.current.Identity
		snap.Identity = &identity
	}
	return snap
}
