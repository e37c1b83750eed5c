package main

import (
	"context"
	"flag"
	"fmt"
	"syscall"

	"github.com/trezcool/shule/core/session"
)

func (cli *commandLine) promptPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) loginScreen(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "The account email. The password will be prompted next.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	sess, err := cli.store.Login(context.Background(), session.LoginInput{Email: *email, Password: pwd})
	if err != nil {
		// the notification already surfaced; stay on the form
		return err
	}
	return cli.renderDashboard(sess.User.Role)
}

func (cli *commandLine) registerScreen(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "The account email.")
	uname := fs.String("username", "", "The account username.")
	role := fs.String("role", "student", "One of: student, teacher, admin.")
	firstName := fs.String("first-name", "", "First name.")
	lastName := fs.String("last-name", "", "Last name.")
	phone := fs.String("phone", "", "Phone number.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *uname == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	pwd2, err := cli.promptPassword("Confirm password:")
	if err != nil {
		return err
	}

	sess, err := cli.store.Register(context.Background(), session.RegisterInput{
		Email:           *email,
		Username:        *uname,
		Password:        pwd,
		PasswordConfirm: pwd2,
		Role:            session.Role(*role),
		FirstName:       *firstName,
		LastName:        *lastName,
		Phone:           *phone,
	})
	if err != nil {
		return err
	}
	return cli.renderDashboard(sess.User.Role)
}

func (cli *commandLine) forgotPasswordScreen(args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "The account email.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	if err := cli.client.ForgotPassword(context.Background(), *email); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "If the email exists, a reset link has been sent.")
	return nil
}

func (cli *commandLine) resetPasswordScreen(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	uid := fs.String("uid", "", "The uid from the reset link.")
	token := fs.String("token", "", "The token from the reset link.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uid == "" || *token == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter new password:")
	if err != nil {
		return err
	}
	pwd2, err := cli.promptPassword("Confirm new password:")
	if err != nil {
		return err
	}

	if err := cli.client.ResetPassword(context.Background(), *uid, *token, pwd, pwd2); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Password reset successfully. You may now log in.")
	return nil
}

func (cli *commandLine) whoamiScreen(args []string) error {
	usr, _ := cli.store.User()
	fmt.Fprintf(cli.out, "%s (%s) - session %s\n", usr.Email, usr.Role, cli.store.Phase())
	return nil
}
