package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTeacher creates an active teacher account with its linked profile.
func CreateTeacher(
	t *testing.T,
	usrRepo user.Repository,
	profRepo profile.Repository,
	name, uname, email, pwd string,
	createdAt ...time.Time,
) (user.User, profile.Profile) {
	t.Helper()

	usr := CreateUser(t, usrRepo, name, uname, email, pwd, user.RoleTeacher, true, createdAt...)
	prof := CreateProfile(t, profRepo, usr.ID, name)

	usr.ProfileID = null.StringFrom(prof.ID)
	usr, err := usrRepo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return usr, prof
}

func CreateProfile(t *testing.T, repo profile.Repository, userID, displayName string) profile.Profile {
	t.Helper()

	prof, err := profile.NewService(repo).Create(context.Background(), userID, profile.NewProfile{DisplayName: displayName})
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return prof
}
