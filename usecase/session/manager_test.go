package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/internal/credstore"
)

type fakeResolver struct {
	mu sync.Mutex

	authIdentity    *domain.Identity
	authErr         error
	currentIdentity *domain.Identity
	currentErr      error
	signOutErr      error

	authCalls    int
	currentCalls int
	signOutCalls int

	started chan struct{}
	release chan struct{}
}

func (f *fakeResolver) Authenticate(ctx context.Context, handle, secret string) (*domain.Identity, error) {
	f.mu.Lock()
	f.authCalls++
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authIdentity, nil
}

func (f *fakeResolver) CurrentSession(ctx context.Context) (*domain.Identity, error) {
	f.mu.Lock()
	f.currentCalls++
	f.mu.Unlock()
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.currentIdentity, nil
}

func (f *fakeResolver) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()
	return f.signOutErr
}

func (f *fakeResolver) calls() (auth, current, signOut int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls, f.currentCalls, f.signOutCalls
}

type memStore struct {
	mu       sync.Mutex
	identity *domain.Identity
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (m *memStore) Save(ctx context.Context, identity *domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	clone := *identity
	m.identity = &clone
	return nil
}

func (m *memStore) Load(ctx context.Context) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil, nil
	}
	clone := *m.identity
	return &clone, nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.identity = nil
	return nil
}

func (m *memStore) stored() *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

func newManager(resolver *fakeResolver, store *memStore) *Manager {
	return New(credstore.Fixed(), resolver, store, nil)
}

func remoteIdentity() *domain.Identity {
	return &domain.Identity{
		ID:    "remote-001",
		Name:  "Remote User",
		Email: "remote@empresa.com",
		Role:  domain.RoleOwner,
		Tenant: &domain.Tenant{
			ID:   "org-9",
			Name: "Remote Org",
		},
		Active: true,
	}
}

func TestInitialState(t *testing.T) {
	m := newManager(&fakeResolver{}, &memStore{})
	assert.Equal(t, domain.StatusInitializing, m.Session().Status)
}

func TestBootstrapPrefersLocalSlot(t *testing.T) {
	resolver := &fakeResolver{currentErr: domain.ErrNetworkUnavailable}
	store := &memStore{identity: domain.NewDemoIdentity()}
	m := newManager(resolver, store)

	require.NoError(t, m.Bootstrap(context.Background()))

	session := m.Session()
	assert.Equal(t, domain.StatusAuthenticated, session.Status)
	require.NotNil(t, session.Identity)
	assert.True(t, session.Identity.Demo)
	assert.Empty(t, session.LastError)

	// the cached identity short-circuits: no network at all
	_, current, _ := resolver.calls()
	assert.Zero(t, current)
}

func TestBootstrapFallsBackToRemoteSession(t *testing.T) {
	resolver := &fakeResolver{currentIdentity: remoteIdentity()}
	store := &memStore{}
	m := newManager(resolver, store)

	require.NoError(t, m.Bootstrap(context.Background()))

	session := m.Session()
	assert.Equal(t, domain.StatusAuthenticated, session.Status)
	assert.Equal(t, "remote-001", session.Identity.ID)
	// the adopted remote session is persisted for the next start
	require.NotNil(t, store.stored())
	assert.Equal(t, "remote-001", store.stored().ID)
}

func TestBootstrapUnreachableRemoteDegrades(t *testing.T) {
	resolver := &fakeResolver{currentErr: domain.ErrNetworkUnavailable}
	m := newManager(resolver, &memStore{})

	require.NoError(t, m.Bootstrap(context.Background()))

	session := m.Session()
	assert.Equal(t, domain.StatusUnauthenticated, session.Status)
	// not a fault: the login screen shows no error banner
	assert.Empty(t, session.LastError)
}

func TestBootstrapRunsOnce(t *testing.T) {
	resolver := &fakeResolver{}
	m := newManager(resolver, &memStore{})

	require.NoError(t, m.Bootstrap(context.Background()))
	require.NoError(t, m.Bootstrap(context.Background()))

	_, current, _ := resolver.calls()
	assert.Equal(t, 1, current)
}

func TestLoginCredentialStoreWins(t *testing.T) {
	resolver := &fakeResolver{authErr: domain.ErrNetworkUnavailable}
	store := &memStore{}
	m := newManager(resolver, store)

	require.NoError(t, m.Login(context.Background(), "adminpro", "admin123"))

	session := m.Session()
	assert.Equal(t, domain.StatusAuthenticated, session.Status)
	assert.Equal(t, domain.RoleAdmin, session.Identity.Role)
	require.NotNil(t, store.stored())

	auth, _, _ := resolver.calls()
	assert.Zero(t, auth, "credential store hit must not reach the resolver")
}

func TestLoginFallsThroughToResolver(t *testing.T) {
	resolver := &fakeResolver{authIdentity: remoteIdentity()}
	store := &memStore{}
	m := newManager(resolver, store)

	require.NoError(t, m.Login(context.Background(), "remote@empresa.com", "secret"))

	session := m.Session()
	assert.Equal(t, domain.StatusAuthenticated, session.Status)
	assert.Equal(t, "remote-001", session.Identity.ID)
	assert.Equal(t, "remote-001", store.stored().ID)
}

func TestLoginWrongSecret(t *testing.T) {
	resolver := &fakeResolver{authErr: domain.NewError(domain.ErrCodeInvalidCredentials, "invalid login credentials")}
	m := newManager(resolver, &memStore{})

	err := m.Login(context.Background(), "adminpro", "not-the-secret")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidCredentials))

	session := m.Session()
	assert.Equal(t, domain.StatusUnauthenticated, session.Status)
	assert.NotEmpty(t, session.LastError)
}

func TestLoginEmptyInput(t *testing.T) {
	resolver := &fakeResolver{}
	m := newManager(resolver, &memStore{})

	err := m.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidCredentials))

	auth, _, _ := resolver.calls()
	assert.Zero(t, auth)
}

func TestLoginAsDemoWorksOffline(t *testing.T) {
	resolver := &fakeResolver{
		authErr:    domain.ErrNetworkUnavailable,
		currentErr: domain.ErrNetworkUnavailable,
		signOutErr: domain.ErrNetworkUnavailable,
	}
	store := &memStore{}
	m := newManager(resolver, store)

	require.NoError(t, m.LoginAsDemo(context.Background()))

	session := m.Session()
	assert.Equal(t, domain.StatusAuthenticated, session.Status)
	assert.True(t, session.Identity.Demo)
	require.NotNil(t, store.stored())
	assert.True(t, store.stored().Demo)
}

func TestLoginAsDemoSurvivesSaveFailure(t *testing.T) {
	store := &memStore{saveErr: domain.ErrInvalidIdentity}
	m := newManager(&fakeResolver{}, store)

	require.NoError(t, m.LoginAsDemo(context.Background()))
	assert.Equal(t, domain.StatusAuthenticated, m.Session().Status)
}

func TestLogoutDemoIsPurelyLocal(t *testing.T) {
	resolver := &fakeResolver{}
	store := &memStore{}
	m := newManager(resolver, store)

	require.NoError(t, m.LoginAsDemo(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	session := m.Session()
	assert.Equal(t, domain.StatusUnauthenticated, session.Status)
	assert.Nil(t, session.Identity)
	assert.Nil(t, store.stored())

	_, _, signOut := resolver.calls()
	assert.Zero(t, signOut, "demo logout must never call the provider")
}

func TestLogoutClearsLocallyWhenRemoteFails(t *testing.T) {
	resolver := &fakeResolver{signOutErr: domain.ErrNetworkUnavailable}
	store := &memStore{}
	m := newManager(resolver, store)

	require.NoError(t, m.Login(context.Background(), "adminpro", "admin123"))
	require.NoError(t, m.Logout(context.Background()))

	session := m.Session()
	assert.Equal(t, domain.StatusUnauthenticated, session.Status)
	assert.Nil(t, store.stored())

	_, _, signOut := resolver.calls()
	assert.Equal(t, 1, signOut)
}

func TestSecondLoginRejectedWhileInFlight(t *testing.T) {
	resolver := &fakeResolver{
		authIdentity: remoteIdentity(),
		started:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	store := &memStore{}
	m := newManager(resolver, store)

	done := make(chan error, 1)
	go func() {
		done <- m.Login(context.Background(), "remote@empresa.com", "secret")
	}()

	<-resolver.started

	err := m.Login(context.Background(), "adminpro", "admin123")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeAlreadyInProgress))

	close(resolver.release)
	require.NoError(t, <-done)

	// only the first login mutated the session
	session := m.Session()
	assert.Equal(t, "remote-001", session.Identity.ID)
	store.mu.Lock()
	saves := store.saves
	store.mu.Unlock()
	assert.Equal(t, 1, saves)
}

func TestSubscribePublishesTransitions(t *testing.T) {
	m := newManager(&fakeResolver{}, &memStore{})

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	first := <-updates
	assert.Equal(t, domain.StatusInitializing, first.Status)

	require.NoError(t, m.LoginAsDemo(context.Background()))

	select {
	case snap := <-updates:
		assert.Equal(t, domain.StatusAuthenticated, snap.Status)
		assert.True(t, snap.Identity.Demo)
	case <-time.After(time.Second):
		t.Fatal("no session update published")
	}
}

func TestSubscribeCoalescesToLatest(t *testing.T) {
	m := newManager(&fakeResolver{signOutErr: nil}, &memStore{})

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	require.NoError(t, m.LoginAsDemo(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	// slow reader sees only the most recent state
	snap := <-updates
	assert.Equal(t, domain.StatusUnauthenticated, snap.Status)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	m := newManager(&fakeResolver{}, &memStore{})

	updates, unsubscribe := m.Subscribe()
	unsubscribe()

	// drain the initial snapshot, then expect close
	for range updates {
	}
}

func TestSessionSnapshotsAreCopies(t *testing.T) {
	m := newManager(&fakeResolver{}, &memStore{})
	require.NoError(t, m.LoginAsDemo(context.Background()))

	snap := m.Session()
	snap.Identity.Name = "mutated"

	assert.Equal(t, domain.DemoName, m.Session().Identity.Name)
}
