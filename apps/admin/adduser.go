package main

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
)

// addUser updates or creates a user.User; teachers also get a linked profile.
func (cli *commandLine) addUser(name, uname, email, pwd, role string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Email:    email,
		}
	}
	usr.Name = name
	usr.Role = role
	usr.SetActive(true)
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	if usr, err = cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}

	if usr.IsTeacher() && !usr.ProfileID.Valid {
		profSvc := profile.NewService(cli.profRepo)
		prof, err := profSvc.Create(ctx, usr.ID, profile.NewProfile{DisplayName: usr.Name})
		if err != nil {
			return err
		}
		usr.ProfileID = null.StringFrom(prof.ID)
		if _, err = cli.usrRepo.UpdateUser(ctx, usr); err != nil {
			return err
		}
	}
	return nil
}
