package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/shule/api"
	"github.com/trezcool/shule/api/apitest"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/services/notify"
	"github.com/trezcool/shule/storage/sessionfile"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (*apitest.Server, *commandLine, *bytes.Buffer) {
	srv := apitest.NewServer()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	conf := &core.Config{}
	conf.API.BaseURL = ts.URL + "/api"
	conf.API.Timeout = 5 * time.Second

	storage, err := sessionfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	out := &bytes.Buffer{}
	client := api.NewClient(conf, storage, nopLogger{})
	store := session.NewStore(storage, client, notifysvc.NewConsoleNotifier(out), nopLogger{})
	<-store.Init(context.Background())

	return srv, &commandLine{
		store:  store,
		client: client,
		logger: nopLogger{},
		out:    out,
	}, out
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut string
}

func Test_commandLine_run(t *testing.T) {
	_, cli, out := setup(t)
	mockPassword("")

	tests := []cliTest{
		{name: "no command, no session", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "guarded screen without session lands on login", args: []string{"assignments"}, wantErr: errHelp},
		{name: "dashboard without session lands on login", args: []string{"dashboard"}, wantErr: errHelp},
		{name: "login without email", args: []string{"login"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"shule"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("cli.run() output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_loginFlow(t *testing.T) {
	srv, cli, out := setup(t)
	srv.AddUser("awe@test.cd", "awe123", "mdr", session.RoleStudent)

	mockPassword("nope")
	if err := cli.run([]string{"shule", "login", "-email", "awe@test.cd"}); err == nil {
		t.Fatal("cli.run() with a bad password expected to fail")
	}
	if usr, ok := cli.store.User(); ok {
		t.Fatalf("session present after failed login: %v", usr.Email)
	}

	out.Reset()
	mockPassword("mdr")
	if err := cli.run([]string{"shule", "login", "-email", "awe@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Student dashboard") {
		t.Errorf("output = %q, want the student dashboard", out.String())
	}
	if usr, ok := cli.store.User(); !ok || usr.Role != session.RoleStudent {
		t.Fatalf("session user = %+v, %v", usr, ok)
	}

	// an authenticated user is redirected away from the login screen
	out.Reset()
	if err := cli.run([]string{"shule", "login", "-email", "awe@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Already logged in as awe@test.cd") {
		t.Errorf("output = %q, want the redirect notice", out.String())
	}

	out.Reset()
	if err := cli.run([]string{"shule", "whoami"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "awe@test.cd (student)") {
		t.Errorf("whoami output = %q", out.String())
	}

	if err := cli.run([]string{"shule", "logout"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if _, ok := cli.store.User(); ok {
		t.Error("session present after logout")
	}
}

// An existing admin session routes the root and the login screen to the admin
// dashboard, never to the login form.
func Test_commandLine_adminRedirects(t *testing.T) {
	srv, cli, out := setup(t)
	srv.AddUser("admin@test.cd", "admin1", "mdr", session.RoleAdmin)

	mockPassword("mdr")
	if err := cli.run([]string{"shule", "login", "-email", "admin@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	out.Reset()
	if err := cli.run([]string{"shule"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Admin dashboard") {
		t.Errorf("root output = %q, want the admin dashboard", out.String())
	}

	out.Reset()
	if err := cli.run([]string{"shule", "login", "-email", "admin@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Already logged in as admin@test.cd") ||
		!strings.Contains(out.String(), "Admin dashboard") {
		t.Errorf("login output = %q, want the redirect to the admin dashboard", out.String())
	}
}

func Test_commandLine_register(t *testing.T) {
	_, cli, out := setup(t)

	mockPassword("mdr")
	err := cli.run([]string{
		"shule", "register",
		"-email", "mwalimu@test.cd",
		"-username", "mwalimu1",
		"-role", "teacher",
		"-first-name", "Jane",
		"-last-name", "Mwalimu",
	})
	if err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Teacher dashboard") {
		t.Errorf("output = %q, want the teacher dashboard", out.String())
	}
	if usr, ok := cli.store.User(); !ok || usr.Role != session.RoleTeacher {
		t.Fatalf("session user = %+v, %v", usr, ok)
	}
}

func Test_commandLine_teacherCreatesAssignment(t *testing.T) {
	srv, cli, out := setup(t)
	srv.AddUser("mwalimu@test.cd", "mwalimu1", "mdr", session.RoleTeacher)

	mockPassword("mdr")
	if err := cli.run([]string{"shule", "login", "-email", "mwalimu@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	out.Reset()
	deadline := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	err := cli.run([]string{
		"shule", "assignments",
		"-create",
		"-title", "Quiz 1",
		"-description", "Chapters 1-3.",
		"-course", "1",
		"-deadline", deadline,
	})
	if err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Quiz 1") {
		t.Errorf("output = %q, want the created assignment listed", out.String())
	}
}

// A student asking for another role's dashboard is rerouted to their own.
func Test_commandLine_roleReroute(t *testing.T) {
	srv, cli, out := setup(t)
	srv.AddUser("awe@test.cd", "awe123", "mdr", session.RoleStudent)

	mockPassword("mdr")
	if err := cli.run([]string{"shule", "login", "-email", "awe@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	out.Reset()
	if err := cli.run([]string{"shule", "dashboard", "teacher"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Student dashboard") || strings.Contains(got, "Teacher dashboard") {
		t.Errorf("output = %q, want the student dashboard only", got)
	}
}

func Test_commandLine_leaveLifecycle(t *testing.T) {
	srv, cli, out := setup(t)
	srv.AddUser("awe@test.cd", "awe123", "mdr", session.RoleStudent)
	srv.AddUser("admin@test.cd", "admin1", "mdr", session.RoleAdmin)

	mockPassword("mdr")
	if err := cli.run([]string{"shule", "login", "-email", "awe@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	out.Reset()
	err := cli.run([]string{
		"shule", "leave",
		"-apply",
		"-type", "sick",
		"-from", "2026-09-07",
		"-to", "2026-09-09",
		"-reason", "Malaria treatment",
	})
	if err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "pending") {
		t.Errorf("output = %q, want the pending request listed", out.String())
	}

	cli.store.Logout(context.Background())
	if err = cli.run([]string{"shule", "login", "-email", "admin@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	leaves, err := cli.client.LeaveRequests(context.Background())
	if err != nil || len(leaves) != 1 {
		t.Fatalf("LeaveRequests() = %+v, %v", leaves, err)
	}

	out.Reset()
	if err = cli.run([]string{"shule", "leave", "-approve", strconv.Itoa(leaves[0].ID)}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "approved") {
		t.Errorf("output = %q, want the approved request listed", out.String())
	}
}
