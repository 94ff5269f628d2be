package main

import (
	"context"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/user"
)

// addAdmin updates or creates an active admin user.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:  name,
			Email: email,
		}
	} else if name != "" {
		usr.Name = name
	}
	usr.Role = user.RoleAdmin
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
