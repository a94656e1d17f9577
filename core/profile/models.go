package profile

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/walimu/core"
)

// Profile is a teacher's public profile. Slug is unique and is the public URL
// segment; ViewCount is only ever mutated by atomic increments.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	Title       string    `json:"title"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	HeroURL     string    `json:"hero_url"`
	Website     string    `json:"website"`
	ViewCount   int       `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewProfile contains information needed to create a new Profile.
type NewProfile struct {
	DisplayName string `json:"display_name" validate:"required"`
	Slug        string `json:"slug" validate:"omitempty,slug"`
	Title       string `json:"title"`
	Bio         string `json:"bio"`
	Website     string `json:"website" validate:"omitempty,url"`
}

func (np *NewProfile) Validate(validate *validator.Validate) error {
	np.DisplayName = core.CleanString(np.DisplayName)
	np.Slug = core.CleanString(np.Slug, true /* lower */)
	np.Title = core.CleanString(np.Title)
	np.Website = core.CleanString(np.Website)
	return validate.Struct(np)
}

// UpdateProfile defines what information may be provided to modify an existing Profile.
type UpdateProfile struct {
	DisplayName string `json:"display_name"`
	Slug        string `json:"slug" validate:"omitempty,slug"`
	Title       string `json:"title"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	HeroURL     string `json:"hero_url"`
	Website     string `json:"website" validate:"omitempty,url"`
}

func (up *UpdateProfile) Validate(orig Profile, validate *validator.Validate) error {
	if name := core.CleanString(up.DisplayName); name != "" {
		up.DisplayName = name
	} else {
		up.DisplayName = orig.DisplayName
	}
	if slug := core.CleanString(up.Slug, true /* lower */); slug != "" {
		up.Slug = slug
	} else {
		up.Slug = orig.Slug
	}
	up.Title = core.CleanString(up.Title)
	up.Website = core.CleanString(up.Website)
	return validate.Struct(up)
}

// GetFilter selects a single Profile; the first non-empty field wins.
type GetFilter struct {
	ID     string
	Slug   string
	UserID string
}

type QueryFilter struct {
	Search string `query:"search"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Pagination.Clean()
}
