package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/trezcool/shule/api"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	store  *session.Store
	client *api.Client
	logger core.Logger
	out    io.Writer
}

// route maps a screen name to the roles allowed to view it; a nil role set
// means "any authenticated role". Auth screens are public and instead redirect
// away when a session already exists.
type route struct {
	allowed []session.Role
	run     func(args []string) error
}

func (cli *commandLine) routes() map[string]route {
	return map[string]route{
		"dashboard":     {run: cli.dashboardScreen}, // role enforced per requested variant
		"assignments":   {run: cli.assignmentsScreen},
		"announcements": {run: cli.announcementsScreen},
		"leave":         {run: cli.leaveScreen},
		"exams":         {run: cli.examsScreen},
		"timetable":     {run: cli.timetableScreen},
		"whoami":        {run: cli.whoamiScreen},
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                     - log in (password prompted)")
	fmt.Fprintln(cli.out, "  register -email EMAIL -username NAME   - create an account")
	fmt.Fprintln(cli.out, "  logout                                 - log out")
	fmt.Fprintln(cli.out, "  forgot-password -email EMAIL           - request a reset link")
	fmt.Fprintln(cli.out, "  reset-password -uid UID -token TOKEN   - set a new password")
	fmt.Fprintln(cli.out, "  dashboard [student|teacher|admin]      - role dashboard")
	fmt.Fprintln(cli.out, "  assignments | announcements | leave | exams | timetable")
	fmt.Fprintln(cli.out, "  whoami                                 - current identity")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		return cli.home()
	}

	switch name := args[1]; name {
	// public auth screens; login/register redirect away when a session exists
	case "login":
		if cli.redirectAwayIfAuthenticated() {
			return nil
		}
		return cli.loginScreen(args[2:])
	case "register":
		if cli.redirectAwayIfAuthenticated() {
			return nil
		}
		return cli.registerScreen(args[2:])
	case "logout":
		cli.store.Logout(context.Background())
		return nil
	case "forgot-password":
		return cli.forgotPasswordScreen(args[2:])
	case "reset-password":
		return cli.resetPasswordScreen(args[2:])
	default:
		rt, ok := cli.routes()[name]
		if !ok {
			cli.printUsage()
			return errHelp
		}
		return cli.guarded(rt, args[2:])
	}
}

// home is the root path: the caller's role dashboard when authenticated, the
// login screen otherwise.
func (cli *commandLine) home() error {
	if usr, ok := cli.store.User(); ok {
		return cli.renderDashboard(usr.Role)
	}
	return cli.loginScreen(nil)
}

// guarded renders a screen behind the role guard; a rejected role is rerouted
// to its own dashboard, never shown a permission error.
func (cli *commandLine) guarded(rt route, args []string) error {
	usr, _ := cli.store.User()
	verdict := session.Evaluate(cli.store.Loading(), usr, rt.allowed...)
	switch verdict.Decision {
	case session.ShowLoading:
		fmt.Fprintln(cli.out, "Loading...")
		return nil
	case session.RedirectLogin:
		return cli.loginScreen(nil)
	case session.RedirectDashboard:
		return cli.renderDashboard(usr.Role)
	}
	return rt.run(args)
}

func (cli *commandLine) redirectAwayIfAuthenticated() bool {
	usr, ok := cli.store.User()
	if !ok {
		return false
	}
	fmt.Fprintf(cli.out, "Already logged in as %s\n", usr.Email)
	if err := cli.renderDashboard(usr.Role); err != nil {
		cli.logger.Error("rendering dashboard", err)
	}
	return true
}
