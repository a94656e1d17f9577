package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
)

type contentRepository struct {
	db *DB
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db}
}

// listItem is the filtering/sorting view shared by all content tables.
type listItem struct {
	id         string
	profileID  string
	createdAt  time.Time
	searchCols []string
}

func filterAndPage(items []listItem, filter *content.QueryFilter) ([]string, int) {
	var matched []listItem
	var pg core.Pagination
	for _, it := range items {
		if filter != nil {
			if filter.ProfileID != "" && it.profileID != filter.ProfileID {
				continue
			}
			if !matches(filter.Search, it.searchCols...) {
				continue
			}
		}
		matched = append(matched, it)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].createdAt.After(matched[j].createdAt)
		}
		return matched[i].id > matched[j].id
	})
	if filter != nil {
		pg = filter.Pagination
	}
	total := len(matched)
	lo, hi := pageBounds(pg, total)
	ids := make([]string, 0, hi-lo)
	for _, it := range matched[lo:hi] {
		ids = append(ids, it.id)
	}
	return ids, total
}

// Research

func (repo *contentRepository) CreateResearch(ctx context.Context, item content.Research, exec ...core.DBExecutor) (content.Research, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.research[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetResearch(ctx context.Context, id string, exec ...core.DBExecutor) (content.Research, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.research[id]; ok {
		return *item, nil
	}
	return content.Research{}, content.ErrNotFound
}

func (repo *contentRepository) QueryResearch(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Research, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.research))
	for _, it := range repo.db.research {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Title, it.Summary}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Research, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.research[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdateResearch(ctx context.Context, item content.Research, exec ...core.DBExecutor) (content.Research, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.research[item.ID]
	if !ok {
		return content.Research{}, content.ErrNotFound
	}
	orig.Title = item.Title
	orig.Summary = item.Summary
	orig.Year = item.Year
	orig.Link = item.Link
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeleteResearch(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.research[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.research, id)
	return nil
}

// Activities

func (repo *contentRepository) CreateActivity(ctx context.Context, item content.Activity, exec ...core.DBExecutor) (content.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.activities[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetActivity(ctx context.Context, id string, exec ...core.DBExecutor) (content.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.activities[id]; ok {
		return *item, nil
	}
	return content.Activity{}, content.ErrNotFound
}

func (repo *contentRepository) QueryActivities(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Activity, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.activities))
	for _, it := range repo.db.activities {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Title, it.Description, it.Location}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Activity, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.activities[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdateActivity(ctx context.Context, item content.Activity, exec ...core.DBExecutor) (content.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.activities[item.ID]
	if !ok {
		return content.Activity{}, content.ErrNotFound
	}
	orig.Title = item.Title
	orig.Description = item.Description
	orig.Location = item.Location
	orig.Date = item.Date
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeleteActivity(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.activities[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.activities, id)
	return nil
}

// Publications

func (repo *contentRepository) CreatePublication(ctx context.Context, item content.Publication, exec ...core.DBExecutor) (content.Publication, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.publications[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetPublication(ctx context.Context, id string, exec ...core.DBExecutor) (content.Publication, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.publications[id]; ok {
		return *item, nil
	}
	return content.Publication{}, content.ErrNotFound
}

func (repo *contentRepository) QueryPublications(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Publication, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.publications))
	for _, it := range repo.db.publications {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Title, it.Authors, it.Venue}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Publication, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.publications[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdatePublication(ctx context.Context, item content.Publication, exec ...core.DBExecutor) (content.Publication, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.publications[item.ID]
	if !ok {
		return content.Publication{}, content.ErrNotFound
	}
	orig.Title = item.Title
	orig.Authors = item.Authors
	orig.Venue = item.Venue
	orig.Year = item.Year
	orig.Link = item.Link
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeletePublication(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.publications[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.publications, id)
	return nil
}

// Courses

func (repo *contentRepository) CreateCourse(ctx context.Context, item content.Course, exec ...core.DBExecutor) (content.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.courses[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (content.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.courses[id]; ok {
		return *item, nil
	}
	return content.Course{}, content.ErrNotFound
}

func (repo *contentRepository) QueryCourses(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Course, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.courses))
	for _, it := range repo.db.courses {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Title, it.Code, it.Description}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Course, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.courses[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdateCourse(ctx context.Context, item content.Course, exec ...core.DBExecutor) (content.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[item.ID]
	if !ok {
		return content.Course{}, content.ErrNotFound
	}
	orig.Title = item.Title
	orig.Code = item.Code
	orig.Semester = item.Semester
	orig.Description = item.Description
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeleteCourse(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.courses, id)
	return nil
}

// Education

func (repo *contentRepository) CreateEducation(ctx context.Context, item content.Education, exec ...core.DBExecutor) (content.Education, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.education[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetEducation(ctx context.Context, id string, exec ...core.DBExecutor) (content.Education, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.education[id]; ok {
		return *item, nil
	}
	return content.Education{}, content.ErrNotFound
}

func (repo *contentRepository) QueryEducation(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Education, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.education))
	for _, it := range repo.db.education {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Degree, it.Institution, it.Field}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Education, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.education[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdateEducation(ctx context.Context, item content.Education, exec ...core.DBExecutor) (content.Education, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.education[item.ID]
	if !ok {
		return content.Education{}, content.ErrNotFound
	}
	orig.Degree = item.Degree
	orig.Institution = item.Institution
	orig.Field = item.Field
	orig.Year = item.Year
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeleteEducation(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.education[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.education, id)
	return nil
}

// Articles

func (repo *contentRepository) CreateArticle(ctx context.Context, item content.Article, exec ...core.DBExecutor) (content.Article, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.articles[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetArticle(ctx context.Context, id string, exec ...core.DBExecutor) (content.Article, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.articles[id]; ok {
		return *item, nil
	}
	return content.Article{}, content.ErrNotFound
}

func (repo *contentRepository) QueryArticles(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Article, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.articles))
	for _, it := range repo.db.articles {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Title, it.Body}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Article, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.articles[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdateArticle(ctx context.Context, item content.Article, exec ...core.DBExecutor) (content.Article, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.articles[item.ID]
	if !ok {
		return content.Article{}, content.ErrNotFound
	}
	orig.Title = item.Title
	orig.Body = item.Body
	orig.Published = item.Published
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeleteArticle(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.articles[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.articles, id)
	return nil
}

// Attachments

func (repo *contentRepository) CreateAttachment(ctx context.Context, item content.Attachment, exec ...core.DBExecutor) (content.Attachment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.attachments[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetAttachment(ctx context.Context, id string, exec ...core.DBExecutor) (content.Attachment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.attachments[id]; ok {
		return *item, nil
	}
	return content.Attachment{}, content.ErrNotFound
}

func (repo *contentRepository) QueryAttachments(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Attachment, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]listItem, 0, len(repo.db.attachments))
	for _, it := range repo.db.attachments {
		items = append(items, listItem{it.ID, it.ProfileID, it.CreatedAt, []string{it.Label, it.FileName}})
	}
	ids, total := filterAndPage(items, filter)
	page := make([]content.Attachment, 0, len(ids))
	for _, id := range ids {
		page = append(page, *repo.db.attachments[id])
	}
	return page, total, nil
}

func (repo *contentRepository) UpdateAttachment(ctx context.Context, item content.Attachment, exec ...core.DBExecutor) (content.Attachment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.attachments[item.ID]
	if !ok {
		return content.Attachment{}, content.ErrNotFound
	}
	orig.Label = item.Label
	orig.FileName = item.FileName
	orig.URL = item.URL
	orig.ContentType = item.ContentType
	orig.Size = item.Size
	orig.UpdatedAt = item.UpdatedAt
	return *orig, nil
}

func (repo *contentRepository) DeleteAttachment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.attachments[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.db.attachments, id)
	return nil
}

func (repo *contentRepository) IncrementDownloads(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if item, ok := repo.db.attachments[id]; ok {
		item.Downloads++
	}
	return nil
}
