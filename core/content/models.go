package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/user"
)

// Subject is the authenticated caller acting on content, as carried by its
// verified session token claims. Ownership decisions are made from a Subject
// only, never from client-supplied identifiers.
type Subject struct {
	UserID    string
	Role      string
	ProfileID string
}

func (s Subject) IsAdmin() bool {
	return s.Role == user.RoleAdmin
}

// QueryFilter is the shared list filter for every content entity.
// Search does a case-insensitive substring match on the entity's text columns.
type QueryFilter struct {
	ProfileID string `query:"teacher_id"`
	Search    string `query:"search"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Pagination.Clean()
}

// Entities. All are owned by a Profile and listed newest first.

type Research struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Year      int       `json:"year"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Activity struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Publication struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Title     string    `json:"title"`
	Authors   string    `json:"authors"`
	Venue     string    `json:"venue"`
	Year      int       `json:"year"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Course struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	Semester    string    `json:"semester"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Education struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Degree      string    `json:"degree"`
	Institution string    `json:"institution"`
	Field       string    `json:"field"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Article struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment is a downloadable file linked to a profile; the stored file
// itself lives in the media store, only its metadata is kept here.
type Attachment struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Label       string    `json:"label"`
	FileName    string    `json:"file_name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Downloads   int       `json:"downloads"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Inputs. ProfileID is only honored for admin subjects; for teachers the owner
// is always taken from their token claims.

type ResearchInput struct {
	ProfileID string `json:"profile_id"`
	Title     string `json:"title" validate:"required"`
	Summary   string `json:"summary"`
	Year      int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Link      string `json:"link" validate:"omitempty,url"`
}

func (in *ResearchInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Link = core.CleanString(in.Link)
	return validate.Struct(in)
}

type ActivityInput struct {
	ProfileID   string    `json:"profile_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
}

func (in *ActivityInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Location = core.CleanString(in.Location)
	return validate.Struct(in)
}

type PublicationInput struct {
	ProfileID string `json:"profile_id"`
	Title     string `json:"title" validate:"required"`
	Authors   string `json:"authors"`
	Venue     string `json:"venue"`
	Year      int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Link      string `json:"link" validate:"omitempty,url"`
}

func (in *PublicationInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Authors = core.CleanString(in.Authors)
	in.Venue = core.CleanString(in.Venue)
	in.Link = core.CleanString(in.Link)
	return validate.Struct(in)
}

type CourseInput struct {
	ProfileID   string `json:"profile_id"`
	Title       string `json:"title" validate:"required"`
	Code        string `json:"code"`
	Semester    string `json:"semester"`
	Description string `json:"description"`
}

func (in *CourseInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Code = core.CleanString(in.Code)
	in.Semester = core.CleanString(in.Semester)
	return validate.Struct(in)
}

type EducationInput struct {
	ProfileID   string `json:"profile_id"`
	Degree      string `json:"degree" validate:"required"`
	Institution string `json:"institution"`
	Field       string `json:"field"`
	Year        int    `json:"year" validate:"omitempty,min=1900,max=2100"`
}

func (in *EducationInput) Validate(validate *validator.Validate) error {
	in.Degree = core.CleanString(in.Degree)
	in.Institution = core.CleanString(in.Institution)
	in.Field = core.CleanString(in.Field)
	return validate.Struct(in)
}

type ArticleInput struct {
	ProfileID string `json:"profile_id"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

func (in *ArticleInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	return validate.Struct(in)
}

type AttachmentInput struct {
	ProfileID   string `json:"profile_id"`
	Label       string `json:"label" validate:"required"`
	FileName    string `json:"file_name" validate:"required"`
	URL         string `json:"url" validate:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size" validate:"omitempty,min=0"`
}

func (in *AttachmentInput) Validate(validate *validator.Validate) error {
	in.Label = core.CleanString(in.Label)
	in.FileName = core.CleanString(in.FileName)
	return validate.Struct(in)
}
