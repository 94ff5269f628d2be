package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/trezcool/juku/core/user"
	inmemrepos "github.com/trezcool/juku/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	usrRepo = inmemrepos.NewUserRepository(inmemrepos.NewStore())
	return &commandLine{
		usrRepo: usrRepo,
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

	origGooseRunFunc := gooseRunFunc
	defer func() { gooseRunFunc = origGooseRunFunc }()
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
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
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
		{name: "create", args: []string{"migrate", "create", "students", "sql"}},
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

type pwdExtra struct {
	pwd string
}

func mockReadPassword(t *testing.T, tt *cliTest) {
	t.Helper()

	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	readPasswordFunc = func(fd int) ([]byte, error) {
		if extra, ok := tt.extra.(pwdExtra); ok {
			return []byte(extra.pwd), nil
		}
		return nil, nil
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	existing := user.User{Name: "Aki Sensei", Email: "aki@juku.jp", Role: user.RoleTeacher, IsActive: false}
	existing, err := usrRepo.CreateUser(ctx, existing)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"addadmin", "-name", "Boss"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-name", "Boss", "-email", "boss@juku.jp"}, wantErr: errHelp},
		{name: "create new admin", args: []string{"addadmin", "-name", "Boss", "-email", "boss@juku.jp"}, extra: pwdExtra{pwd: "s3cret"}},
		{name: "promote existing user", args: []string{"addadmin", "-name", "Aki Sensei", "-email", existing.Email}, extra: pwdExtra{pwd: "s3cret"}},
	}
	for i := range tests {
		tt := &tests[i]
		args := append([]string{"admin"}, tt.args...)

		mockReadPassword(t, tt)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				extra := tt.extra.(pwdExtra)
				email := tt.args[len(tt.args)-1]
				usr, err := usrRepo.GetUserByEmail(ctx, email)
				if err != nil {
					t.Fatalf("GetUserByEmail() failed, %v", err)
				}
				if !usr.IsAdmin() {
					t.Errorf("user role = %s, want %s", usr.Role, user.RoleAdmin)
				}
				if !usr.IsActive {
					t.Error("user is not active")
				}
				if err := usr.CheckPassword(extra.pwd); err != nil {
					t.Errorf("CheckPassword() failed, %v", err)
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr := user.User{Name: "Awe", Email: "awe@juku.jp", Role: user.RoleTeacher, IsActive: true}
	if err := usr.SetPassword("mdr"); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@juku.jp"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@juku.jp"}, extra: pwdExtra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: pwdExtra{pwd: "lmao"}},
	}
	for i := range tests {
		tt := &tests[i]
		args := append([]string{"admin"}, tt.args...)

		mockReadPassword(t, tt)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(ctx, usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
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
