package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core"
)

var (
	// errors
	ErrNotFound   = errors.New("profile not found")
	ErrSlugExists = errors.New("a profile with this slug already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string, excludedProfiles []Profile, exec ...core.DBExecutor) error
		CreateProfile(ctx context.Context, prof Profile, exec ...core.DBExecutor) (Profile, error)
		GetProfile(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Profile, error)
		// QueryProfiles pages through profiles; QueryFilter.Search does a
		// case-insensitive match on DisplayName, Title or Slug.
		QueryProfiles(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Profile, int, error)
		UpdateProfile(ctx context.Context, prof Profile, exec ...core.DBExecutor) (Profile, error)
		DeleteProfilesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		// IncrementViewCount is a single-statement atomic increment; concurrent
		// requests never lose updates.
		IncrementViewCount(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, userID string, np NewProfile) (Profile, error)
		GetByID(ctx context.Context, id string) (Profile, error)
		GetBySlug(ctx context.Context, slug string) (Profile, error)
		GetByUserID(ctx context.Context, userID string) (Profile, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Profile, int, error)
		Update(ctx context.Context, orig Profile, up UpdateProfile) (Profile, error)
		Delete(ctx context.Context, ids ...string) error
		// RecordView increments the profile's view counter as a read side effect.
		RecordView(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, userID string, np NewProfile) (Profile, error) {
	slug := np.Slug
	if slug == "" {
		slug = core.Slugify(np.DisplayName)
	}
	slug, err := svc.makeUniqueSlug(ctx, slug)
	if err != nil {
		return Profile{}, err
	}

	now := time.Now().UTC()
	prof := Profile{
		UserID:      userID,
		Slug:        slug,
		DisplayName: np.DisplayName,
		Title:       np.Title,
		Bio:         np.Bio,
		Website:     np.Website,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateProfile(ctx, prof)
}

func (svc *service) GetByID(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{ID: id})
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{UserID: userID})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Profile, int, error) {
	return svc.repo.QueryProfiles(ctx, filter)
}

func (svc *service) Update(ctx context.Context, orig Profile, up UpdateProfile) (Profile, error) {
	if up.Slug != orig.Slug {
		if err := svc.repo.CheckSlugUniqueness(ctx, up.Slug, []Profile{orig}); err != nil {
			if errors.Cause(err) == ErrSlugExists {
				return Profile{}, core.NewValidationError(err, core.FieldError{Field: "slug", Error: err.Error()})
			}
			return Profile{}, err
		}
	}

	prof := Profile{
		ID:          orig.ID,
		UserID:      orig.UserID,
		Slug:        up.Slug,
		DisplayName: up.DisplayName,
		Title:       up.Title,
		Bio:         up.Bio,
		AvatarURL:   up.AvatarURL,
		HeroURL:     up.HeroURL,
		Website:     up.Website,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateProfile(ctx, prof)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteProfilesByID(ctx, ids)
	return err
}

func (svc *service) RecordView(ctx context.Context, id string) error {
	return svc.repo.IncrementViewCount(ctx, id)
}

func (svc *service) makeUniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "profile"
	}
	slug := base
	for i := 2; ; i++ {
		err := svc.repo.CheckSlugUniqueness(ctx, slug, nil)
		if err == nil {
			return slug, nil
		}
		if errors.Cause(err) != ErrSlugExists {
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
