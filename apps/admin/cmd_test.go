package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
	inmemdb "github.com/trezcool/walimu/storage/database/inmem"
	testutil "github.com/trezcool/walimu/tests"
)

var (
	usrRepo  user.Repository
	profRepo profile.Repository
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	profRepo = inmemdb.NewProfileRepository(db)

	return &commandLine{
		usrRepo:  usrRepo,
		profRepo: profRepo,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "attachment", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "aweawe", "awe@test.cd", "mdr", user.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("LePassw0rd"), nil }

	t.Run("missing flags", func(t *testing.T) {
		if err := cli.run([]string{"admin", "addteacher"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})

	t.Run("addteacher creates the linked profile", func(t *testing.T) {
		if err := cli.run([]string{"admin", "addteacher", "-name", "Jane Awe", "-username", "janeawe", "-email", "jane@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "janeawe"})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if !usr.IsTeacher() {
			t.Errorf("Role = %q; want %q", usr.Role, user.RoleTeacher)
		}
		if !usr.ProfileID.Valid {
			t.Fatal("expected a linked profile")
		}
		prof, err := profRepo.GetProfile(context.Background(), profile.GetFilter{ID: usr.ProfileID.String})
		if err != nil {
			t.Fatalf("GetProfile() failed: %v", err)
		}
		if prof.UserID != usr.ID || prof.DisplayName != "Jane Awe" {
			t.Errorf("profile = %+v; want it linked to %q", prof, usr.ID)
		}
	})

	t.Run("addadmin", func(t *testing.T) {
		if err := cli.run([]string{"admin", "addadmin", "-name", "Boss", "-username", "boss01", "-email", "boss@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "boss01"})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if !usr.IsAdmin() {
			t.Errorf("Role = %q; want %q", usr.Role, user.RoleAdmin)
		}
		if usr.ProfileID.Valid {
			t.Error("admin accounts must not get a profile")
		}
	})

	t.Run("re-running updates in place", func(t *testing.T) {
		if err := cli.run([]string{"admin", "addteacher", "-name", "Jane A. Awe", "-username", "janeawe", "-email", "jane@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}

		users, err := usrRepo.QueryUsers(context.Background(), &user.QueryFilter{Search: "janeawe"}, nil)
		if err != nil {
			t.Fatalf("QueryUsers() failed: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("len(users) = %d; want 1", len(users))
		}
		if users[0].Name != "Jane A. Awe" {
			t.Errorf("Name = %q; want the updated name", users[0].Name)
		}
	})
}
