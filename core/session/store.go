package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type (
	// Storage persists the two session keys. Implementations return empty values
	// (not an error) for missing keys; Clear removes both.
	Storage interface {
		Token() (string, error)
		User() ([]byte, error)
		Write(token string, user []byte) error
		Clear() error
	}

	// AuthAPI maps credential operations to the remote service.
	AuthAPI interface {
		Login(ctx context.Context, email, password string) (Session, error)
		Register(ctx context.Context, in RegisterInput) (Session, error)
		Logout(ctx context.Context) error
		Me(ctx context.Context) (User, error)
	}

	// Store is the single source of truth for "who is logged in". It is the only
	// writer of both the in-memory session state and the persisted keys; consumers
	// get immutable snapshots.
	Store struct {
		storage Storage
		api     AuthAPI
		notif   core.Notifier
		logger  core.Logger

		mu      sync.Mutex
		usr     User
		phase   Phase
		loading bool
		gen     uint64 // bumped on every session write so stale async results are no-ops
	}
)

// userMessager is implemented by API errors carrying a message fit for display.
type userMessager interface {
	UserMessage() string
}

func NewStore(storage Storage, api AuthAPI, notif core.Notifier, logger core.Logger) *Store {
	return &Store{
		storage: storage,
		api:     api,
		notif:   notif,
		logger:  logger,
		phase:   PhaseUnknown,
		loading: true,
	}
}

// Init derives the session from persisted storage. The synchronous part reads the
// two keys, optimistically exposes the persisted identity and clears the loading
// flag; if a token was present a "who am I" verification is then issued in the
// background. A failed verification clears both keys and resets the identity even
// though it may already have been rendered (bounded staleness, one round trip).
// The returned channel closes once the verification has settled.
func (s *Store) Init(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	token, tokErr := s.storage.Token()
	raw, usrErr := s.storage.User()
	hadToken := tokErr == nil && token != ""

	var usr User
	valid := hadToken && usrErr == nil && len(raw) > 0
	if valid {
		if err := json.Unmarshal(raw, &usr); err != nil || usr.IsZero() {
			valid = false
		}
	}
	if valid {
		s.usr = usr
		s.phase = PhaseOptimistic
	} else {
		// one key missing or unparsable: treat as no session, clear both
		if hadToken || (usrErr == nil && len(raw) > 0) {
			s.clearStorage()
		}
		s.phase = PhaseUnauthenticated
	}
	s.loading = false
	gen := s.gen
	s.mu.Unlock()

	if !hadToken {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if _, err := s.api.Me(ctx); err != nil {
			s.invalidate(gen)
		} else {
			s.confirm(gen)
		}
	}()
	return done
}

// Login exchanges credentials for a session. On failure the user is notified and
// the error is returned so the initiating form stays put. Concurrent calls are
// not deduplicated; the last write wins.
func (s *Store) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	sess, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		s.notif.Error(userMessage(err, "Login failed"))
		return Session{}, errors.Wrap(err, "logging in")
	}
	s.setSession(sess)
	s.notif.Success("Login successful!")
	return sess, nil
}

// Register creates an account; same contract as Login.
func (s *Store) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	sess, err := s.api.Register(ctx, in)
	if err != nil {
		s.notif.Error(userMessage(err, "Registration failed"))
		return Session{}, errors.Wrap(err, "registering")
	}
	s.setSession(sess)
	s.notif.Success("Registration successful!")
	return sess, nil
}

// Logout invalidates the server-side token (best-effort) then unconditionally
// clears the persisted keys and the in-memory identity.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed", err)
	}

	s.mu.Lock()
	s.gen++
	s.clearStorage()
	s.usr = User{}
	s.phase = PhaseUnauthenticated
	s.loading = false
	s.mu.Unlock()

	s.notif.Success("Logged out successfully")
}

// User returns an immutable snapshot of the current identity; the bool reports
// whether one is present.
func (s *Store) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usr, !s.usr.IsZero()
}

// Loading reports whether the startup storage read has completed yet.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Store) setSession(sess Session) {
	raw, err := json.Marshal(sess.User)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err != nil {
		s.logger.Error("serializing session user", err)
	} else if err := s.storage.Write(sess.Token, raw); err != nil {
		s.logger.Error("persisting session", err)
	}
	s.usr = sess.User
	s.phase = PhaseVerified
	s.loading = false
}

// invalidate applies a failed startup verification, unless a later session write
// superseded the check.
func (s *Store) invalidate(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.clearStorage()
	s.usr = User{}
	s.phase = PhaseUnauthenticated
}

func (s *Store) confirm(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.phase != PhaseOptimistic {
		return
	}
	s.phase = PhaseVerified
}

// clearStorage must be called with the lock held.
func (s *Store) clearStorage() {
	if err := s.storage.Clear(); err != nil {
		s.logger.Error("clearing session storage", err)
	}
}

func userMessage(err error, fallback string) string {
	if um, ok := errors.Cause(err).(userMessager); ok {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
