package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/user"
)

const userCols = `id, name, username, email, role, profile_id, is_active, password_hash, created_at, updated_at, last_login`

type dbUser struct {
	ID           string      `db:"id"`
	Name         null.String `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	Role         null.String `db:"role"`
	ProfileID    null.String `db:"profile_id"`
	IsActive     null.Bool   `db:"is_active"`
	PasswordHash null.Bytes  `db:"password_hash"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) pack(usr user.User) dbUser {
	return dbUser{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		Role:         null.NewString(usr.Role, usr.Role != ""),
		ProfileID:    usr.ProfileID,
		IsActive:     null.BoolFromPtr(usr.IsActive),
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unpack(u dbUser) user.User {
	return user.User{
		ID:           u.ID,
		Name:         u.Name.String,
		Username:     u.Username.String,
		Email:        u.Email.String,
		Role:         u.Role.String,
		ProfileID:    u.ProfileID,
		IsActive:     u.IsActive.Ptr(),
		PasswordHash: u.PasswordHash.Bytes,
		CreatedAt:    u.CreatedAt.Time,
		UpdatedAt:    u.UpdatedAt.Time,
		LastLogin:    u.LastLogin.Time,
	}
}

func (repo userRepository) unpackSlice(slice []dbUser) []user.User {
	users := make([]user.User, 0, len(slice))
	for _, u := range slice {
		users = append(users, repo.unpack(u))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	args := []interface{}{username, email}
	query := `SELECT id FROM "user" WHERE (username = $1 OR email = $2)`
	if len(excludedUsers) > 0 {
		placeholders := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			args = append(args, u.ID)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ","))
	}

	var clash dbUser
	err := repo.exec.QueryRowContext(ctx, query+" LIMIT 1", args...).Scan(&clash.ID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	// find out which field clashed
	exists, err := queryExists(ctx, getExec(repo.exec, exec), `SELECT 1 FROM "user" WHERE username = $1 AND id = $2`, username, clash.ID)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists && username != "" {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	u := repo.pack(usr)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO "user" (`+userCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Name, u.Username, u.Email, u.Role, u.ProfileID, u.IsActive, u.PasswordHash, u.CreatedAt, u.UpdatedAt, u.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unpack(u), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var where string
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		where, args = "id = $1", []interface{}{filter.ID}
	case filter.Username != "":
		where, args = "username = $1", []interface{}{filter.Username}
	case filter.Email != "":
		where, args = "email = $1", []interface{}{filter.Email}
	case filter.UsernameOrEmail != nil:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		where, args = "username = $1 OR email = $2", []interface{}{uname, email}
	default:
		return user.User{}, user.ErrNotFound
	}

	var users []dbUser
	err := queryAll(ctx, getExec(repo.exec, exec), &users, `SELECT `+userCols+` FROM "user" WHERE `+where+` LIMIT 1`, args...)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unpack(users[0]), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var where []string
	var args []interface{}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			where = append(where, fmt.Sprintf("(name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)", n, n, n))
		}
		if filter.Role != "" {
			args = append(args, filter.Role)
			where = append(where, fmt.Sprintf("role = $%d", len(args)))
		}
		if filter.IsActive != nil {
			args = append(args, *filter.IsActive)
			where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
		}
		if !filter.CreatedFrom.IsZero() {
			args = append(args, filter.CreatedFrom.UTC())
			where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
		}
		if !filter.CreatedTo.IsZero() {
			args = append(args, filter.CreatedTo.UTC())
			where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
		}
	}

	query := `SELECT ` + userCols + ` FROM "user"`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	} else {
		query += " ORDER BY created_at DESC, id DESC"
	}

	var users []dbUser
	if err := queryAll(ctx, getExec(repo.exec, exec), &users, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unpackSlice(users), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	u := repo.pack(usr)

	set := []string{"name = $2", "username = $3", "email = $4", "role = $5", "updated_at = $6"}
	args := []interface{}{u.ID, u.Name, u.Username, u.Email, u.Role, u.UpdatedAt}
	if usr.ProfileID.Valid {
		args = append(args, u.ProfileID)
		set = append(set, fmt.Sprintf("profile_id = $%d", len(args)))
	}
	if usr.IsActive != nil {
		args = append(args, u.IsActive)
		set = append(set, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(usr.PasswordHash) > 0 {
		args = append(args, u.PasswordHash)
		set = append(set, fmt.Sprintf("password_hash = $%d", len(args)))
	}

	res, err := getExec(repo.exec, exec).ExecContext(ctx, `UPDATE "user" SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		if usr.CreatedAt.IsZero() {
			usr.CreatedAt = time.Now().UTC()
			usr.UpdatedAt = usr.CreatedAt
		}
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, t time.Time, exec ...core.DBExecutor) error {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `UPDATE "user" SET last_login = $2 WHERE id = $1`, id, t.UTC())
	return errors.Wrap(err, "setting last login")
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM "user" WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
