package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/profile"
)

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) all() []profile.Profile {
	profs := make([]profile.Profile, 0, len(repo.db.profiles))
	for _, p := range repo.db.profiles {
		profs = append(profs, *p)
	}
	sort.Slice(profs, func(i, j int) bool {
		if !profs[i].CreatedAt.Equal(profs[j].CreatedAt) {
			return profs[i].CreatedAt.After(profs[j].CreatedAt)
		}
		return profs[i].ID > profs[j].ID
	})
	return profs
}

func (repo *profileRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedProfiles []profile.Profile, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedProfiles))
	for _, prof := range excludedProfiles {
		excluded[prof.ID] = struct{}{}
	}
	for _, prof := range repo.db.profiles {
		if _, ok := excluded[prof.ID]; ok {
			continue
		}
		if prof.Slug == slug {
			return profile.ErrSlugExists
		}
	}
	return nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, prof profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	prof.ID = uuid.New().String()
	repo.db.profiles[prof.ID] = &prof
	return prof, nil
}

func (repo *profileRepository) GetProfile(ctx context.Context, filter profile.GetFilter, exec ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	switch {
	case filter.ID != "":
		if prof, ok := repo.db.profiles[filter.ID]; ok {
			return *prof, nil
		}
	case filter.Slug != "":
		for _, prof := range repo.db.profiles {
			if prof.Slug == filter.Slug {
				return *prof, nil
			}
		}
	case filter.UserID != "":
		for _, prof := range repo.db.profiles {
			if prof.UserID == filter.UserID {
				return *prof, nil
			}
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) QueryProfiles(ctx context.Context, filter *profile.QueryFilter, exec ...core.DBExecutor) ([]profile.Profile, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matched []profile.Profile
	var pg core.Pagination
	for _, prof := range repo.all() {
		if filter != nil && !matches(filter.Search, prof.DisplayName, prof.Title, prof.Slug) {
			continue
		}
		matched = append(matched, prof)
	}
	if filter != nil {
		pg = filter.Pagination
	}
	total := len(matched)
	lo, hi := pageBounds(pg, total)
	return matched[lo:hi], total, nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, prof profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.profiles[prof.ID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	orig.Slug = prof.Slug
	orig.DisplayName = prof.DisplayName
	orig.Title = prof.Title
	orig.Bio = prof.Bio
	orig.AvatarURL = prof.AvatarURL
	orig.HeroURL = prof.HeroURL
	orig.Website = prof.Website
	orig.UpdatedAt = prof.UpdatedAt
	return *orig, nil
}

func (repo *profileRepository) DeleteProfilesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.profiles[id]; ok {
			delete(repo.db.profiles, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *profileRepository) IncrementViewCount(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if prof, ok := repo.db.profiles[id]; ok {
		prof.ViewCount++
	}
	return nil
}
