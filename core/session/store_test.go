package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
)

// memStorage is an in-memory Storage double.
type memStorage struct {
	mu     sync.Mutex
	token  string
	user   []byte
	clears int
}

func (m *memStorage) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memStorage) User() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, nil
}

func (m *memStorage) Write(token string, user []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, user
	return nil
}

func (m *memStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", nil
	m.clears++
	return nil
}

func (m *memStorage) snapshot() (string, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.user
}

type fakeAuthAPI struct {
	loginFunc func(email, password string) (Session, error)
	logoutErr error
	meFunc    func() (User, error)
}

func (f *fakeAuthAPI) Login(_ context.Context, email, password string) (Session, error) {
	return f.loginFunc(email, password)
}

func (f *fakeAuthAPI) Register(_ context.Context, in RegisterInput) (Session, error) {
	return Session{Token: "reg-token", User: User{ID: 99, Email: in.Email, Username: in.Username, Role: in.Role}}, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error { return f.logoutErr }

func (f *fakeAuthAPI) Me(context.Context) (User, error) {
	if f.meFunc != nil {
		return f.meFunc()
	}
	return User{}, nil
}

type recordNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// notifyError is an API error carrying a display message.
type notifyError struct{ msg string }

func (e *notifyError) Error() string       { return e.msg }
func (e *notifyError) UserMessage() string { return e.msg }

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return data
}

func TestStore_Init(t *testing.T) {
	teacher := User{ID: 7, Email: "mwalimu@test.cd", Role: RoleTeacher, IsTeacher: true}

	tests := []struct {
		name      string
		token     string
		user      []byte
		meErr     error
		wantUser  bool
		wantPhase Phase
		wantClear bool
	}{
		{name: "empty storage", wantPhase: PhaseUnauthenticated},
		{name: "token without user", token: "t1", wantPhase: PhaseUnauthenticated, wantClear: true},
		{name: "user without token", user: []byte(`{"id":7}`), wantPhase: PhaseUnauthenticated, wantClear: true},
		{name: "malformed persisted user", token: "t1", user: []byte(`{"id":`), wantPhase: PhaseUnauthenticated, wantClear: true},
		{name: "zero persisted user", token: "t1", user: []byte(`{}`), wantPhase: PhaseUnauthenticated, wantClear: true},
		{name: "valid pair, verification passes", token: "t1", user: mustMarshal(t, teacher), wantUser: true, wantPhase: PhaseVerified},
		{name: "valid pair, verification fails", token: "t1", user: mustMarshal(t, teacher), meErr: &notifyError{"invalid or expired token"}, wantPhase: PhaseUnauthenticated, wantClear: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &memStorage{token: tt.token, user: tt.user}
			api := &fakeAuthAPI{meFunc: func() (User, error) {
				if tt.meErr != nil {
					return User{}, tt.meErr
				}
				return teacher, nil
			}}
			store := NewStore(storage, api, &recordNotifier{}, nopLogger{})

			if !store.Loading() {
				t.Error("Loading() = false before Init()")
			}
			<-store.Init(context.Background())

			if store.Loading() {
				t.Error("Loading() = true after Init() settled")
			}
			usr, ok := store.User()
			if ok != tt.wantUser {
				t.Errorf("User() ok = %v, want %v", ok, tt.wantUser)
			}
			if tt.wantUser && usr.Email != teacher.Email {
				t.Errorf("User() = %v, want %v", usr.Email, teacher.Email)
			}
			if phase := store.Phase(); phase != tt.wantPhase {
				t.Errorf("Phase() = %v, want %v", phase, tt.wantPhase)
			}
			if tok, raw := storage.snapshot(); tt.wantClear && (tok != "" || raw != nil) {
				t.Errorf("storage not cleared: token=%q user=%q", tok, raw)
			}
		})
	}
}

// A session established while the startup verification is still in flight must
// not be wiped by that verification's failure.
func TestStore_Init_staleVerificationIgnored(t *testing.T) {
	oldUser := User{ID: 7, Email: "old@test.cd", Role: RoleTeacher}
	newUser := User{ID: 8, Email: "new@test.cd", Role: RoleAdmin, IsAdmin: true}

	release := make(chan struct{})
	storage := &memStorage{token: "stale", user: mustMarshal(t, oldUser)}
	api := &fakeAuthAPI{
		meFunc: func() (User, error) {
			<-release
			return User{}, &notifyError{"invalid or expired token"}
		},
		loginFunc: func(email, password string) (Session, error) {
			return Session{Token: "fresh", User: newUser}, nil
		},
	}
	store := NewStore(storage, api, &recordNotifier{}, nopLogger{})
	done := store.Init(context.Background())

	if _, err := store.Login(context.Background(), LoginInput{Email: "new@test.cd", Password: "pwd"}); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	close(release)
	<-done

	usr, ok := store.User()
	if !ok || usr.Email != newUser.Email {
		t.Fatalf("User() = %v, %v; want %v", usr.Email, ok, newUser.Email)
	}
	if phase := store.Phase(); phase != PhaseVerified {
		t.Errorf("Phase() = %v, want %v", phase, PhaseVerified)
	}
	if tok, _ := storage.snapshot(); tok != "fresh" {
		t.Errorf("persisted token = %q, want %q", tok, "fresh")
	}
}

func TestStore_Login(t *testing.T) {
	teacher := User{ID: 7, Email: "mwalimu@test.cd", Role: RoleTeacher, IsTeacher: true}

	t.Run("success persists the session", func(t *testing.T) {
		storage := &memStorage{}
		notif := &recordNotifier{}
		api := &fakeAuthAPI{loginFunc: func(email, password string) (Session, error) {
			return Session{Token: "t1", User: teacher}, nil
		}}
		store := NewStore(storage, api, notif, nopLogger{})
		<-store.Init(context.Background())

		sess, err := store.Login(context.Background(), LoginInput{Email: "Mwalimu@test.cd ", Password: "pwd"})
		if err != nil {
			t.Fatalf("Login() failed: %v", err)
		}
		if sess.Token != "t1" {
			t.Errorf("token = %q, want %q", sess.Token, "t1")
		}
		if phase := store.Phase(); phase != PhaseVerified {
			t.Errorf("Phase() = %v, want %v", phase, PhaseVerified)
		}
		tok, raw := storage.snapshot()
		if tok != "t1" {
			t.Errorf("persisted token = %q, want %q", tok, "t1")
		}
		var persisted User
		if err := json.Unmarshal(raw, &persisted); err != nil || persisted.Email != teacher.Email {
			t.Errorf("persisted user = %s (err %v), want %s", raw, err, teacher.Email)
		}
		if len(notif.successes) != 1 || notif.successes[0] != "Login successful!" {
			t.Errorf("success notifications = %v", notif.successes)
		}
	})

	t.Run("rejected credentials surface the server message", func(t *testing.T) {
		storage := &memStorage{}
		notif := &recordNotifier{}
		api := &fakeAuthAPI{loginFunc: func(email, password string) (Session, error) {
			return Session{}, &notifyError{"Invalid email or password."}
		}}
		store := NewStore(storage, api, notif, nopLogger{})
		<-store.Init(context.Background())

		if _, err := store.Login(context.Background(), LoginInput{Email: "awe@test.cd", Password: "nope"}); err == nil {
			t.Fatal("Login() expected error")
		}
		if len(notif.failures) != 1 || notif.failures[0] != "Invalid email or password." {
			t.Errorf("error notifications = %v", notif.failures)
		}
		if _, ok := store.User(); ok {
			t.Error("User() present after failed login")
		}
		if tok, _ := storage.snapshot(); tok != "" {
			t.Errorf("persisted token = %q after failed login", tok)
		}
	})

	t.Run("invalid input never reaches the API", func(t *testing.T) {
		called := false
		api := &fakeAuthAPI{loginFunc: func(email, password string) (Session, error) {
			called = true
			return Session{}, nil
		}}
		store := NewStore(&memStorage{}, api, &recordNotifier{}, nopLogger{})
		<-store.Init(context.Background())

		if _, err := store.Login(context.Background(), LoginInput{Email: "not-an-email"}); err == nil {
			t.Fatal("Login() expected validation error")
		}
		if called {
			t.Error("API called with invalid input")
		}
	})
}

func TestStore_Register(t *testing.T) {
	store := NewStore(&memStorage{}, &fakeAuthAPI{}, &recordNotifier{}, nopLogger{})
	<-store.Init(context.Background())

	tests := []struct {
		name    string
		in      RegisterInput
		wantErr bool
	}{
		{
			name: "ok",
			in:   RegisterInput{Email: "awe@test.cd", Username: "awe123", Password: "pwd", PasswordConfirm: "pwd", Role: RoleStudent},
		},
		{
			name:    "password mismatch",
			in:      RegisterInput{Email: "awe@test.cd", Username: "awe123", Password: "pwd", PasswordConfirm: "other", Role: RoleStudent},
			wantErr: true,
		},
		{
			name:    "unknown role",
			in:      RegisterInput{Email: "awe@test.cd", Username: "awe123", Password: "pwd", PasswordConfirm: "pwd", Role: Role("boss")},
			wantErr: true,
		},
		{
			name:    "short username",
			in:      RegisterInput{Email: "awe@test.cd", Username: "awe", Password: "pwd", PasswordConfirm: "pwd", Role: RoleStudent},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Register(context.Background(), tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_Logout(t *testing.T) {
	teacher := User{ID: 7, Email: "mwalimu@test.cd", Role: RoleTeacher}

	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "remote logout succeeds"},
		{name: "remote logout fails, local state still cleared", logoutErr: &notifyError{"token store unavailable"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &memStorage{token: "t1", user: mustMarshal(t, teacher)}
			api := &fakeAuthAPI{
				logoutErr: tt.logoutErr,
				meFunc:    func() (User, error) { return teacher, nil },
			}
			store := NewStore(storage, api, &recordNotifier{}, nopLogger{})
			<-store.Init(context.Background())

			store.Logout(context.Background())

			if _, ok := store.User(); ok {
				t.Error("User() present after logout")
			}
			if phase := store.Phase(); phase != PhaseUnauthenticated {
				t.Errorf("Phase() = %v, want %v", phase, PhaseUnauthenticated)
			}
			if tok, raw := storage.snapshot(); tok != "" || raw != nil {
				t.Errorf("storage not cleared: token=%q user=%q", tok, raw)
			}
		})
	}
}
