package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	usrRepo  user.Repository
	profRepo profile.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addteacher -name NAME [-username USERNAME] [-email EMAIL] - create a teacher account with its profile")
	fmt.Println("  addadmin -name NAME [-username USERNAME] [-email EMAIL] - create an admin account")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  migrate COMMAND [ARGS...] - run database migrations (up, down, status, ...)")
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "addteacher":
		return cli.runAddUser("addteacher", args[2:], user.RoleTeacher)
	case "addadmin":
		return cli.runAddUser("addadmin", args[2:], user.RoleAdmin)
	case "resetpassword":
		resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
		resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) runAddUser(cmdName string, args []string, role string) error {
	cmd := flag.NewFlagSet(cmdName, flag.ExitOnError)
	name := cmd.String("name", "", "The user's full name.")
	uname := cmd.String("username", "", "The user's username.")
	email := cmd.String("email", "", "The user's email. The password will be prompted next.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *name == "" || (*uname == "" && *email == "") {
		cmd.Usage()
		return errHelp
	}
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.addUser(*name, *uname, *email, pwd, role)
}
