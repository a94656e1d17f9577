package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/profile"
)

const profileCols = `id, user_id, slug, display_name, title, bio, avatar_url, hero_url, website, view_count, created_at, updated_at`

type dbProfile struct {
	ID          string      `db:"id"`
	UserID      null.String `db:"user_id"`
	Slug        string      `db:"slug"`
	DisplayName null.String `db:"display_name"`
	Title       null.String `db:"title"`
	Bio         null.String `db:"bio"`
	AvatarURL   null.String `db:"avatar_url"`
	HeroURL     null.String `db:"hero_url"`
	Website     null.String `db:"website"`
	ViewCount   int         `db:"view_count"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

type profileRepository struct {
	exec core.DBExecutor
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(exec core.DBExecutor) *profileRepository {
	return &profileRepository{exec: exec}
}

func (repo profileRepository) pack(prof profile.Profile) dbProfile {
	return dbProfile{
		ID:          prof.ID,
		UserID:      null.NewString(prof.UserID, prof.UserID != ""),
		Slug:        prof.Slug,
		DisplayName: null.NewString(prof.DisplayName, prof.DisplayName != ""),
		Title:       null.NewString(prof.Title, prof.Title != ""),
		Bio:         null.NewString(prof.Bio, prof.Bio != ""),
		AvatarURL:   null.NewString(prof.AvatarURL, prof.AvatarURL != ""),
		HeroURL:     null.NewString(prof.HeroURL, prof.HeroURL != ""),
		Website:     null.NewString(prof.Website, prof.Website != ""),
		ViewCount:   prof.ViewCount,
		CreatedAt:   null.NewTime(prof.CreatedAt.UTC(), !prof.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(prof.UpdatedAt.UTC(), !prof.UpdatedAt.IsZero()),
	}
}

func (repo profileRepository) unpack(p dbProfile) profile.Profile {
	return profile.Profile{
		ID:          p.ID,
		UserID:      p.UserID.String,
		Slug:        p.Slug,
		DisplayName: p.DisplayName.String,
		Title:       p.Title.String,
		Bio:         p.Bio.String,
		AvatarURL:   p.AvatarURL.String,
		HeroURL:     p.HeroURL.String,
		Website:     p.Website.String,
		ViewCount:   p.ViewCount,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (repo profileRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedProfiles []profile.Profile, exec ...core.DBExecutor) error {
	args := []interface{}{slug}
	query := `SELECT 1 FROM profile WHERE slug = $1`
	if len(excludedProfiles) > 0 {
		placeholders := make([]string, 0, len(excludedProfiles))
		for _, p := range excludedProfiles {
			args = append(args, p.ID)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ","))
	}

	exists, err := queryExists(ctx, getExec(repo.exec, exec), query, args...)
	if err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if exists {
		return profile.ErrSlugExists
	}
	return nil
}

func (repo profileRepository) CreateProfile(ctx context.Context, prof profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	prof.ID = uuid.New().String()
	p := repo.pack(prof)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO profile (`+profileCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.UserID, p.Slug, p.DisplayName, p.Title, p.Bio, p.AvatarURL, p.HeroURL, p.Website, p.ViewCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return repo.unpack(p), nil
}

func (repo profileRepository) GetProfile(ctx context.Context, filter profile.GetFilter, exec ...core.DBExecutor) (profile.Profile, error) {
	var where string
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return profile.Profile{}, profile.ErrNotFound
		}
		where, args = "id = $1", []interface{}{filter.ID}
	case filter.Slug != "":
		where, args = "slug = $1", []interface{}{filter.Slug}
	case filter.UserID != "":
		where, args = "user_id = $1", []interface{}{filter.UserID}
	default:
		return profile.Profile{}, profile.ErrNotFound
	}

	var profiles []dbProfile
	err := queryAll(ctx, getExec(repo.exec, exec), &profiles, `SELECT `+profileCols+` FROM profile WHERE `+where+` LIMIT 1`, args...)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "finding profile")
	}
	if len(profiles) == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return repo.unpack(profiles[0]), nil
}

func (repo profileRepository) QueryProfiles(ctx context.Context, filter *profile.QueryFilter, exec ...core.DBExecutor) ([]profile.Profile, int, error) {
	var where []string
	var args []interface{}

	if filter != nil && filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(display_name ILIKE $%d OR title ILIKE $%d OR slug ILIKE $%d)", n, n, n))
	}

	var whereSQL string
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	exe := getExec(repo.exec, exec)
	total, err := queryCount(ctx, exe, "SELECT COUNT(*) FROM profile"+whereSQL, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting profiles")
	}

	query := `SELECT ` + profileCols + ` FROM profile` + whereSQL + ` ORDER BY created_at DESC, id DESC`
	if filter != nil {
		if filter.Offset() >= total {
			return nil, total, nil
		}
		args = append(args, filter.Limit, filter.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var profiles []dbProfile
	if err = queryAll(ctx, exe, &profiles, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying profiles")
	}

	res := make([]profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, repo.unpack(p))
	}
	return res, total, nil
}

func (repo profileRepository) UpdateProfile(ctx context.Context, prof profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	p := repo.pack(prof)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE profile SET slug = $2, display_name = $3, title = $4, bio = $5, avatar_url = $6, hero_url = $7, website = $8, updated_at = $9 WHERE id = $1`,
		p.ID, p.Slug, p.DisplayName, p.Title, p.Bio, p.AvatarURL, p.HeroURL, p.Website, p.UpdatedAt,
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return repo.GetProfile(ctx, profile.GetFilter{ID: prof.ID}, exec...)
}

func (repo profileRepository) DeleteProfilesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM profile WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting profiles")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting profiles")
	}
	return int(cnt), nil
}

func (repo profileRepository) IncrementViewCount(ctx context.Context, id string, exec ...core.DBExecutor) error {
	// single statement so concurrent views never lose an increment
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `UPDATE profile SET view_count = view_count + 1 WHERE id = $1`, id)
	return errors.Wrap(err, "incrementing view count")
}
