package content

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core"
)

var (
	// errors
	ErrNotFound     = errors.New("item not found")
	ErrNoProfile    = errors.New("subject has no linked profile")
	errOwnerMissing = errors.New("profile_id is required")
)

// Authorize enforces the ownership invariant: admins may act on any item,
// teachers only on items owned by their linked profile. It is evaluated from
// the verified token claims immediately before every mutation.
func Authorize(sub Subject, ownerProfileID string) error {
	if sub.IsAdmin() {
		return nil
	}
	if sub.ProfileID != "" && sub.ProfileID == ownerProfileID {
		return nil
	}
	return core.NewForbiddenError("permission denied")
}

// resolveOwner determines the owning profile for a create: teachers always own
// what they create; admins must name the target profile explicitly.
func resolveOwner(sub Subject, payloadProfileID string) (string, error) {
	if sub.IsAdmin() {
		if payloadProfileID == "" {
			return "", core.NewValidationError(errOwnerMissing, core.FieldError{Field: "profile_id", Error: errOwnerMissing.Error()})
		}
		return payloadProfileID, nil
	}
	if sub.ProfileID == "" {
		return "", core.NewForbiddenError(ErrNoProfile.Error())
	}
	return sub.ProfileID, nil
}

type (
	Repository interface {
		CreateResearch(ctx context.Context, item Research, exec ...core.DBExecutor) (Research, error)
		GetResearch(ctx context.Context, id string, exec ...core.DBExecutor) (Research, error)
		QueryResearch(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Research, int, error)
		UpdateResearch(ctx context.Context, item Research, exec ...core.DBExecutor) (Research, error)
		DeleteResearch(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateActivity(ctx context.Context, item Activity, exec ...core.DBExecutor) (Activity, error)
		GetActivity(ctx context.Context, id string, exec ...core.DBExecutor) (Activity, error)
		QueryActivities(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Activity, int, error)
		UpdateActivity(ctx context.Context, item Activity, exec ...core.DBExecutor) (Activity, error)
		DeleteActivity(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreatePublication(ctx context.Context, item Publication, exec ...core.DBExecutor) (Publication, error)
		GetPublication(ctx context.Context, id string, exec ...core.DBExecutor) (Publication, error)
		QueryPublications(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Publication, int, error)
		UpdatePublication(ctx context.Context, item Publication, exec ...core.DBExecutor) (Publication, error)
		DeletePublication(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateCourse(ctx context.Context, item Course, exec ...core.DBExecutor) (Course, error)
		GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Course, int, error)
		UpdateCourse(ctx context.Context, item Course, exec ...core.DBExecutor) (Course, error)
		DeleteCourse(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateEducation(ctx context.Context, item Education, exec ...core.DBExecutor) (Education, error)
		GetEducation(ctx context.Context, id string, exec ...core.DBExecutor) (Education, error)
		QueryEducation(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Education, int, error)
		UpdateEducation(ctx context.Context, item Education, exec ...core.DBExecutor) (Education, error)
		DeleteEducation(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateArticle(ctx context.Context, item Article, exec ...core.DBExecutor) (Article, error)
		GetArticle(ctx context.Context, id string, exec ...core.DBExecutor) (Article, error)
		QueryArticles(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Article, int, error)
		UpdateArticle(ctx context.Context, item Article, exec ...core.DBExecutor) (Article, error)
		DeleteArticle(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateAttachment(ctx context.Context, item Attachment, exec ...core.DBExecutor) (Attachment, error)
		GetAttachment(ctx context.Context, id string, exec ...core.DBExecutor) (Attachment, error)
		QueryAttachments(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Attachment, int, error)
		UpdateAttachment(ctx context.Context, item Attachment, exec ...core.DBExecutor) (Attachment, error)
		DeleteAttachment(ctx context.Context, id string, exec ...core.DBExecutor) error
		// IncrementDownloads is a single-statement atomic increment.
		IncrementDownloads(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateResearch(ctx context.Context, sub Subject, in ResearchInput) (Research, error)
		QueryResearch(ctx context.Context, filter *QueryFilter) ([]Research, int, error)
		UpdateResearch(ctx context.Context, sub Subject, id string, in ResearchInput) (Research, error)
		DeleteResearch(ctx context.Context, sub Subject, id string) error

		CreateActivity(ctx context.Context, sub Subject, in ActivityInput) (Activity, error)
		QueryActivities(ctx context.Context, filter *QueryFilter) ([]Activity, int, error)
		UpdateActivity(ctx context.Context, sub Subject, id string, in ActivityInput) (Activity, error)
		DeleteActivity(ctx context.Context, sub Subject, id string) error

		CreatePublication(ctx context.Context, sub Subject, in PublicationInput) (Publication, error)
		QueryPublications(ctx context.Context, filter *QueryFilter) ([]Publication, int, error)
		UpdatePublication(ctx context.Context, sub Subject, id string, in PublicationInput) (Publication, error)
		DeletePublication(ctx context.Context, sub Subject, id string) error

		CreateCourse(ctx context.Context, sub Subject, in CourseInput) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter) ([]Course, int, error)
		UpdateCourse(ctx context.Context, sub Subject, id string, in CourseInput) (Course, error)
		DeleteCourse(ctx context.Context, sub Subject, id string) error

		CreateEducation(ctx context.Context, sub Subject, in EducationInput) (Education, error)
		QueryEducation(ctx context.Context, filter *QueryFilter) ([]Education, int, error)
		UpdateEducation(ctx context.Context, sub Subject, id string, in EducationInput) (Education, error)
		DeleteEducation(ctx context.Context, sub Subject, id string) error

		CreateArticle(ctx context.Context, sub Subject, in ArticleInput) (Article, error)
		QueryArticles(ctx context.Context, filter *QueryFilter) ([]Article, int, error)
		UpdateArticle(ctx context.Context, sub Subject, id string, in ArticleInput) (Article, error)
		DeleteArticle(ctx context.Context, sub Subject, id string) error

		CreateAttachment(ctx context.Context, sub Subject, in AttachmentInput) (Attachment, error)
		QueryAttachments(ctx context.Context, filter *QueryFilter) ([]Attachment, int, error)
		UpdateAttachment(ctx context.Context, sub Subject, id string, in AttachmentInput) (Attachment, error)
		DeleteAttachment(ctx context.Context, sub Subject, id string) error
		GetAttachment(ctx context.Context, id string) (Attachment, error)
		RecordDownload(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Research

func (svc *service) CreateResearch(ctx context.Context, sub Subject, in ResearchInput) (Research, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Research{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateResearch(ctx, Research{
		ProfileID: owner,
		Title:     in.Title,
		Summary:   in.Summary,
		Year:      in.Year,
		Link:      in.Link,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryResearch(ctx context.Context, filter *QueryFilter) ([]Research, int, error) {
	return svc.repo.QueryResearch(ctx, filter)
}

func (svc *service) UpdateResearch(ctx context.Context, sub Subject, id string, in ResearchInput) (Research, error) {
	item, err := svc.repo.GetResearch(ctx, id)
	if err != nil {
		return Research{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Research{}, err
	}
	item.Title = in.Title
	item.Summary = in.Summary
	item.Year = in.Year
	item.Link = in.Link
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateResearch(ctx, item)
}

func (svc *service) DeleteResearch(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetResearch(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeleteResearch(ctx, id)
}

// Activities

func (svc *service) CreateActivity(ctx context.Context, sub Subject, in ActivityInput) (Activity, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Activity{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateActivity(ctx, Activity{
		ProfileID:   owner,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Date:        in.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryActivities(ctx context.Context, filter *QueryFilter) ([]Activity, int, error) {
	return svc.repo.QueryActivities(ctx, filter)
}

func (svc *service) UpdateActivity(ctx context.Context, sub Subject, id string, in ActivityInput) (Activity, error) {
	item, err := svc.repo.GetActivity(ctx, id)
	if err != nil {
		return Activity{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Activity{}, err
	}
	item.Title = in.Title
	item.Description = in.Description
	item.Location = in.Location
	item.Date = in.Date
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateActivity(ctx, item)
}

func (svc *service) DeleteActivity(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeleteActivity(ctx, id)
}

// Publications

func (svc *service) CreatePublication(ctx context.Context, sub Subject, in PublicationInput) (Publication, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Publication{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreatePublication(ctx, Publication{
		ProfileID: owner,
		Title:     in.Title,
		Authors:   in.Authors,
		Venue:     in.Venue,
		Year:      in.Year,
		Link:      in.Link,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryPublications(ctx context.Context, filter *QueryFilter) ([]Publication, int, error) {
	return svc.repo.QueryPublications(ctx, filter)
}

func (svc *service) UpdatePublication(ctx context.Context, sub Subject, id string, in PublicationInput) (Publication, error) {
	item, err := svc.repo.GetPublication(ctx, id)
	if err != nil {
		return Publication{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Publication{}, err
	}
	item.Title = in.Title
	item.Authors = in.Authors
	item.Venue = in.Venue
	item.Year = in.Year
	item.Link = in.Link
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePublication(ctx, item)
}

func (svc *service) DeletePublication(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetPublication(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeletePublication(ctx, id)
}

// Courses

func (svc *service) CreateCourse(ctx context.Context, sub Subject, in CourseInput) (Course, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Course{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		ProfileID:   owner,
		Title:       in.Title,
		Code:        in.Code,
		Semester:    in.Semester,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryCourses(ctx context.Context, filter *QueryFilter) ([]Course, int, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *service) UpdateCourse(ctx context.Context, sub Subject, id string, in CourseInput) (Course, error) {
	item, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Course{}, err
	}
	item.Title = in.Title
	item.Code = in.Code
	item.Semester = in.Semester
	item.Description = in.Description
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, item)
}

func (svc *service) DeleteCourse(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

// Education

func (svc *service) CreateEducation(ctx context.Context, sub Subject, in EducationInput) (Education, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Education{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateEducation(ctx, Education{
		ProfileID:   owner,
		Degree:      in.Degree,
		Institution: in.Institution,
		Field:       in.Field,
		Year:        in.Year,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryEducation(ctx context.Context, filter *QueryFilter) ([]Education, int, error) {
	return svc.repo.QueryEducation(ctx, filter)
}

func (svc *service) UpdateEducation(ctx context.Context, sub Subject, id string, in EducationInput) (Education, error) {
	item, err := svc.repo.GetEducation(ctx, id)
	if err != nil {
		return Education{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Education{}, err
	}
	item.Degree = in.Degree
	item.Institution = in.Institution
	item.Field = in.Field
	item.Year = in.Year
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEducation(ctx, item)
}

func (svc *service) DeleteEducation(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetEducation(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeleteEducation(ctx, id)
}

// Articles

func (svc *service) CreateArticle(ctx context.Context, sub Subject, in ArticleInput) (Article, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Article{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateArticle(ctx, Article{
		ProfileID: owner,
		Title:     in.Title,
		Body:      in.Body,
		Published: in.Published,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryArticles(ctx context.Context, filter *QueryFilter) ([]Article, int, error) {
	return svc.repo.QueryArticles(ctx, filter)
}

func (svc *service) UpdateArticle(ctx context.Context, sub Subject, id string, in ArticleInput) (Article, error) {
	item, err := svc.repo.GetArticle(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Article{}, err
	}
	item.Title = in.Title
	item.Body = in.Body
	item.Published = in.Published
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateArticle(ctx, item)
}

func (svc *service) DeleteArticle(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetArticle(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeleteArticle(ctx, id)
}

// Attachments

func (svc *service) CreateAttachment(ctx context.Context, sub Subject, in AttachmentInput) (Attachment, error) {
	owner, err := resolveOwner(sub, in.ProfileID)
	if err != nil {
		return Attachment{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateAttachment(ctx, Attachment{
		ProfileID:   owner,
		Label:       in.Label,
		FileName:    in.FileName,
		URL:         in.URL,
		ContentType: in.ContentType,
		Size:        in.Size,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryAttachments(ctx context.Context, filter *QueryFilter) ([]Attachment, int, error) {
	return svc.repo.QueryAttachments(ctx, filter)
}

func (svc *service) UpdateAttachment(ctx context.Context, sub Subject, id string, in AttachmentInput) (Attachment, error) {
	item, err := svc.repo.GetAttachment(ctx, id)
	if err != nil {
		return Attachment{}, err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return Attachment{}, err
	}
	item.Label = in.Label
	item.FileName = in.FileName
	item.URL = in.URL
	item.ContentType = in.ContentType
	item.Size = in.Size
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAttachment(ctx, item)
}

func (svc *service) DeleteAttachment(ctx context.Context, sub Subject, id string) error {
	item, err := svc.repo.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if err = Authorize(sub, item.ProfileID); err != nil {
		return err
	}
	return svc.repo.DeleteAttachment(ctx, id)
}

func (svc *service) GetAttachment(ctx context.Context, id string) (Attachment, error) {
	return svc.repo.GetAttachment(ctx, id)
}

func (svc *service) RecordDownload(ctx context.Context, id string) error {
	return svc.repo.IncrementDownloads(ctx, id)
}
