package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"evodash/internal/api"
	"evodash/internal/token"
)

// SessionSnapshot is a read-only view of the session state. The invariant
// holds at every snapshot: IsAuthenticated implies User != nil and
// Token != ""; Token == "" implies !IsAuthenticated.
type SessionSnapshot struct {
	User            *api.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// SessionStore owns the current user identity and authentication status.
// Mutation happens only inside the settlement path of its own requests
// (plus the synchronous Logout / ClearError operations).
type SessionStore struct {
	mu     sync.Mutex
	client *api.Client
	slot   *token.Slot
	log    *zap.Logger

	user          *api.User
	token         string
	authenticated bool
	loading       bool
	errMsg        string
}

// NewSessionStore wires the store to the network collaborator and the
// credential slot it alone is allowed to write.
func NewSessionStore(client *api.Client, slot *token.Slot, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{client: client, slot: slot, log: log}
}

// Snapshot returns a copy of the current session state.
func (s *SessionStore) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{
		Token:           s.token,
		IsAuthenticated: s.authenticated,
		Loading:         s.loading,
		Error:           s.errMsg,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Login exchanges credentials for a session. On success the store becomes
// authenticated and the token is persisted to the slot; on failure the
// store stays anonymous with a readable error and any previously stored
// token is left untouched.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.begin()
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.fail(api.Message(err, "Login failed"))
		return err
	}
	s.establish(resp)
	return nil
}

// Register creates an account; the contract matches Login.
func (s *SessionStore) Register(ctx context.Context, email, password, name string) error {
	s.begin()
	resp, err := s.client.Register(ctx, email, password, name)
	if err != nil {
		s.fail(api.Message(err, "Registration failed"))
		return err
	}
	s.establish(resp)
	return nil
}

// Verify re-checks a previously stored credential at startup. Success
// confirms the authenticated state; failure forces anonymous and discards
// the token. No error message is recorded: at startup there is nothing
// for the user to do about it beyond logging in again.
func (s *SessionStore) Verify(ctx context.Context) error {
	s.begin()
	resp, err := s.client.Verify(ctx)
	if err != nil {
		s.log.Info("token verification failed", zap.Error(err))
		s.mu.Lock()
		s.loading = false
		s.user = nil
		s.token = ""
		s.authenticated = false
		s.mu.Unlock()
		_ = s.slot.Clear()
		return err
	}
	if resp.Token == "" {
		resp.Token = s.slot.Get()
	}
	s.establish(resp)
	return nil
}

// Logout tears the session down unconditionally and synchronously.
// Server-side revocation is fire-and-forget.
func (s *SessionStore) Logout() {
	s.teardown()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.client.Logout(ctx); err != nil {
			s.log.Debug("logout revocation failed", zap.Error(err))
		}
	}()
}

// ForceLogout is the 401 escalation path: same teardown as Logout but no
// revocation call, since the server already rejected the credential. Safe
// to invoke from request goroutines.
func (s *SessionStore) ForceLogout() {
	s.log.Info("forced logout")
	s.teardown()
}

// ClearError resets the error field only.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

func (s *SessionStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

func (s *SessionStore) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = msg
}

func (s *SessionStore) establish(resp api.AuthResponse) {
	s.mu.Lock()
	u := resp.User
	s.user = &u
	s.token = resp.Token
	s.authenticated = true
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()

	if err := s.slot.Set(resp.Token); err != nil {
		s.log.Warn("token persist failed", zap.Error(err))
	}
}

func (s *SessionStore) teardown() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.loading = false
	s.mu.Unlock()
	_ = s.slot.Clear()
}
