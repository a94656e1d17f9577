package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
)

// contentRepository implements content.Repository for every entity; the
// per-entity code only differs in its column mapping, the paging/search SQL is
// shared through listQuery.
type contentRepository struct {
	exec core.DBExecutor
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(exec core.DBExecutor) *contentRepository {
	return &contentRepository{exec: exec}
}

func (repo contentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return content.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo contentRepository) deleteByID(ctx context.Context, table, id string, exec []core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM "`+table+`" WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting "+table)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.ErrNotFound
	}
	return nil
}

// Research

const researchCols = `id, profile_id, title, summary, year, link, created_at, updated_at`

type dbResearch struct {
	ID        string      `db:"id"`
	ProfileID string      `db:"profile_id"`
	Title     string      `db:"title"`
	Summary   null.String `db:"summary"`
	Year      null.Int    `db:"year"`
	Link      null.String `db:"link"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func packResearch(item content.Research) dbResearch {
	return dbResearch{
		ID:        item.ID,
		ProfileID: item.ProfileID,
		Title:     item.Title,
		Summary:   null.NewString(item.Summary, item.Summary != ""),
		Year:      null.NewInt(item.Year, item.Year != 0),
		Link:      null.NewString(item.Link, item.Link != ""),
		CreatedAt: null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackResearch(r dbResearch) content.Research {
	return content.Research{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		Title:     r.Title,
		Summary:   r.Summary.String,
		Year:      r.Year.Int,
		Link:      r.Link.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreateResearch(ctx context.Context, item content.Research, exec ...core.DBExecutor) (content.Research, error) {
	item.ID = uuid.New().String()
	r := packResearch(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO research (`+researchCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.ProfileID, r.Title, r.Summary, r.Year, r.Link, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return content.Research{}, errors.Wrap(err, "inserting research")
	}
	return unpackResearch(r), nil
}

func (repo contentRepository) GetResearch(ctx context.Context, id string, exec ...core.DBExecutor) (content.Research, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Research{}, content.ErrNotFound
	}
	var items []dbResearch
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+researchCols+` FROM research WHERE id = $1`, id)
	if err != nil {
		return content.Research{}, repo.trapNoRowsErr(err, "finding research")
	}
	if len(items) == 0 {
		return content.Research{}, content.ErrNotFound
	}
	return unpackResearch(items[0]), nil
}

func (repo contentRepository) QueryResearch(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Research, int, error) {
	q := listQuery{table: "research", cols: researchCols, searchCols: []string{"title", "summary"}}
	var rows []dbResearch
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Research, 0, len(rows))
	for _, r := range rows {
		items = append(items, unpackResearch(r))
	}
	return items, total, nil
}

func (repo contentRepository) UpdateResearch(ctx context.Context, item content.Research, exec ...core.DBExecutor) (content.Research, error) {
	r := packResearch(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE research SET title = $2, summary = $3, year = $4, link = $5, updated_at = $6 WHERE id = $1`,
		r.ID, r.Title, r.Summary, r.Year, r.Link, r.UpdatedAt,
	)
	if err != nil {
		return content.Research{}, errors.Wrap(err, "updating research")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Research{}, content.ErrNotFound
	}
	return unpackResearch(r), nil
}

func (repo contentRepository) DeleteResearch(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "research", id, exec)
}

// Activities

const activityCols = `id, profile_id, title, description, location, date, created_at, updated_at`

type dbActivity struct {
	ID          string      `db:"id"`
	ProfileID   string      `db:"profile_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Location    null.String `db:"location"`
	Date        null.Time   `db:"date"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func packActivity(item content.Activity) dbActivity {
	return dbActivity{
		ID:          item.ID,
		ProfileID:   item.ProfileID,
		Title:       item.Title,
		Description: null.NewString(item.Description, item.Description != ""),
		Location:    null.NewString(item.Location, item.Location != ""),
		Date:        null.NewTime(item.Date.UTC(), !item.Date.IsZero()),
		CreatedAt:   null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackActivity(a dbActivity) content.Activity {
	return content.Activity{
		ID:          a.ID,
		ProfileID:   a.ProfileID,
		Title:       a.Title,
		Description: a.Description.String,
		Location:    a.Location.String,
		Date:        a.Date.Time,
		CreatedAt:   a.CreatedAt.Time,
		UpdatedAt:   a.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreateActivity(ctx context.Context, item content.Activity, exec ...core.DBExecutor) (content.Activity, error) {
	item.ID = uuid.New().String()
	a := packActivity(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO activity (`+activityCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ProfileID, a.Title, a.Description, a.Location, a.Date, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return content.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return unpackActivity(a), nil
}

func (repo contentRepository) GetActivity(ctx context.Context, id string, exec ...core.DBExecutor) (content.Activity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Activity{}, content.ErrNotFound
	}
	var items []dbActivity
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+activityCols+` FROM activity WHERE id = $1`, id)
	if err != nil {
		return content.Activity{}, repo.trapNoRowsErr(err, "finding activity")
	}
	if len(items) == 0 {
		return content.Activity{}, content.ErrNotFound
	}
	return unpackActivity(items[0]), nil
}

func (repo contentRepository) QueryActivities(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Activity, int, error) {
	q := listQuery{table: "activity", cols: activityCols, searchCols: []string{"title", "description", "location"}}
	var rows []dbActivity
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Activity, 0, len(rows))
	for _, a := range rows {
		items = append(items, unpackActivity(a))
	}
	return items, total, nil
}

func (repo contentRepository) UpdateActivity(ctx context.Context, item content.Activity, exec ...core.DBExecutor) (content.Activity, error) {
	a := packActivity(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE activity SET title = $2, description = $3, location = $4, date = $5, updated_at = $6 WHERE id = $1`,
		a.ID, a.Title, a.Description, a.Location, a.Date, a.UpdatedAt,
	)
	if err != nil {
		return content.Activity{}, errors.Wrap(err, "updating activity")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Activity{}, content.ErrNotFound
	}
	return unpackActivity(a), nil
}

func (repo contentRepository) DeleteActivity(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "activity", id, exec)
}

// Publications

const publicationCols = `id, profile_id, title, authors, venue, year, link, created_at, updated_at`

type dbPublication struct {
	ID        string      `db:"id"`
	ProfileID string      `db:"profile_id"`
	Title     string      `db:"title"`
	Authors   null.String `db:"authors"`
	Venue     null.String `db:"venue"`
	Year      null.Int    `db:"year"`
	Link      null.String `db:"link"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func packPublication(item content.Publication) dbPublication {
	return dbPublication{
		ID:        item.ID,
		ProfileID: item.ProfileID,
		Title:     item.Title,
		Authors:   null.NewString(item.Authors, item.Authors != ""),
		Venue:     null.NewString(item.Venue, item.Venue != ""),
		Year:      null.NewInt(item.Year, item.Year != 0),
		Link:      null.NewString(item.Link, item.Link != ""),
		CreatedAt: null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackPublication(p dbPublication) content.Publication {
	return content.Publication{
		ID:        p.ID,
		ProfileID: p.ProfileID,
		Title:     p.Title,
		Authors:   p.Authors.String,
		Venue:     p.Venue.String,
		Year:      p.Year.Int,
		Link:      p.Link.String,
		CreatedAt: p.CreatedAt.Time,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreatePublication(ctx context.Context, item content.Publication, exec ...core.DBExecutor) (content.Publication, error) {
	item.ID = uuid.New().String()
	p := packPublication(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO publication (`+publicationCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.ProfileID, p.Title, p.Authors, p.Venue, p.Year, p.Link, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return content.Publication{}, errors.Wrap(err, "inserting publication")
	}
	return unpackPublication(p), nil
}

func (repo contentRepository) GetPublication(ctx context.Context, id string, exec ...core.DBExecutor) (content.Publication, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Publication{}, content.ErrNotFound
	}
	var items []dbPublication
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+publicationCols+` FROM publication WHERE id = $1`, id)
	if err != nil {
		return content.Publication{}, repo.trapNoRowsErr(err, "finding publication")
	}
	if len(items) == 0 {
		return content.Publication{}, content.ErrNotFound
	}
	return unpackPublication(items[0]), nil
}

func (repo contentRepository) QueryPublications(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Publication, int, error) {
	q := listQuery{table: "publication", cols: publicationCols, searchCols: []string{"title", "authors", "venue"}}
	var rows []dbPublication
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Publication, 0, len(rows))
	for _, p := range rows {
		items = append(items, unpackPublication(p))
	}
	return items, total, nil
}

func (repo contentRepository) UpdatePublication(ctx context.Context, item content.Publication, exec ...core.DBExecutor) (content.Publication, error) {
	p := packPublication(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE publication SET title = $2, authors = $3, venue = $4, year = $5, link = $6, updated_at = $7 WHERE id = $1`,
		p.ID, p.Title, p.Authors, p.Venue, p.Year, p.Link, p.UpdatedAt,
	)
	if err != nil {
		return content.Publication{}, errors.Wrap(err, "updating publication")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Publication{}, content.ErrNotFound
	}
	return unpackPublication(p), nil
}

func (repo contentRepository) DeletePublication(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "publication", id, exec)
}

// Courses

const courseCols = `id, profile_id, title, code, semester, description, created_at, updated_at`

type dbCourse struct {
	ID          string      `db:"id"`
	ProfileID   string      `db:"profile_id"`
	Title       string      `db:"title"`
	Code        null.String `db:"code"`
	Semester    null.String `db:"semester"`
	Description null.String `db:"description"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func packCourse(item content.Course) dbCourse {
	return dbCourse{
		ID:          item.ID,
		ProfileID:   item.ProfileID,
		Title:       item.Title,
		Code:        null.NewString(item.Code, item.Code != ""),
		Semester:    null.NewString(item.Semester, item.Semester != ""),
		Description: null.NewString(item.Description, item.Description != ""),
		CreatedAt:   null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackCourse(c dbCourse) content.Course {
	return content.Course{
		ID:          c.ID,
		ProfileID:   c.ProfileID,
		Title:       c.Title,
		Code:        c.Code.String,
		Semester:    c.Semester.String,
		Description: c.Description.String,
		CreatedAt:   c.CreatedAt.Time,
		UpdatedAt:   c.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreateCourse(ctx context.Context, item content.Course, exec ...core.DBExecutor) (content.Course, error) {
	item.ID = uuid.New().String()
	c := packCourse(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO course (`+courseCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ProfileID, c.Title, c.Code, c.Semester, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return content.Course{}, errors.Wrap(err, "inserting course")
	}
	return unpackCourse(c), nil
}

func (repo contentRepository) GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (content.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Course{}, content.ErrNotFound
	}
	var items []dbCourse
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+courseCols+` FROM course WHERE id = $1`, id)
	if err != nil {
		return content.Course{}, repo.trapNoRowsErr(err, "finding course")
	}
	if len(items) == 0 {
		return content.Course{}, content.ErrNotFound
	}
	return unpackCourse(items[0]), nil
}

func (repo contentRepository) QueryCourses(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Course, int, error) {
	q := listQuery{table: "course", cols: courseCols, searchCols: []string{"title", "code", "description"}}
	var rows []dbCourse
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Course, 0, len(rows))
	for _, c := range rows {
		items = append(items, unpackCourse(c))
	}
	return items, total, nil
}

func (repo contentRepository) UpdateCourse(ctx context.Context, item content.Course, exec ...core.DBExecutor) (content.Course, error) {
	c := packCourse(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE course SET title = $2, code = $3, semester = $4, description = $5, updated_at = $6 WHERE id = $1`,
		c.ID, c.Title, c.Code, c.Semester, c.Description, c.UpdatedAt,
	)
	if err != nil {
		return content.Course{}, errors.Wrap(err, "updating course")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Course{}, content.ErrNotFound
	}
	return unpackCourse(c), nil
}

func (repo contentRepository) DeleteCourse(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "course", id, exec)
}

// Education

const educationCols = `id, profile_id, degree, institution, field, year, created_at, updated_at`

type dbEducation struct {
	ID          string      `db:"id"`
	ProfileID   string      `db:"profile_id"`
	Degree      string      `db:"degree"`
	Institution null.String `db:"institution"`
	Field       null.String `db:"field"`
	Year        null.Int    `db:"year"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func packEducation(item content.Education) dbEducation {
	return dbEducation{
		ID:          item.ID,
		ProfileID:   item.ProfileID,
		Degree:      item.Degree,
		Institution: null.NewString(item.Institution, item.Institution != ""),
		Field:       null.NewString(item.Field, item.Field != ""),
		Year:        null.NewInt(item.Year, item.Year != 0),
		CreatedAt:   null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackEducation(e dbEducation) content.Education {
	return content.Education{
		ID:          e.ID,
		ProfileID:   e.ProfileID,
		Degree:      e.Degree,
		Institution: e.Institution.String,
		Field:       e.Field.String,
		Year:        e.Year.Int,
		CreatedAt:   e.CreatedAt.Time,
		UpdatedAt:   e.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreateEducation(ctx context.Context, item content.Education, exec ...core.DBExecutor) (content.Education, error) {
	item.ID = uuid.New().String()
	e := packEducation(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO education (`+educationCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.ProfileID, e.Degree, e.Institution, e.Field, e.Year, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return content.Education{}, errors.Wrap(err, "inserting education")
	}
	return unpackEducation(e), nil
}

func (repo contentRepository) GetEducation(ctx context.Context, id string, exec ...core.DBExecutor) (content.Education, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Education{}, content.ErrNotFound
	}
	var items []dbEducation
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+educationCols+` FROM education WHERE id = $1`, id)
	if err != nil {
		return content.Education{}, repo.trapNoRowsErr(err, "finding education")
	}
	if len(items) == 0 {
		return content.Education{}, content.ErrNotFound
	}
	return unpackEducation(items[0]), nil
}

func (repo contentRepository) QueryEducation(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Education, int, error) {
	q := listQuery{table: "education", cols: educationCols, searchCols: []string{"degree", "institution", "field"}}
	var rows []dbEducation
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Education, 0, len(rows))
	for _, e := range rows {
		items = append(items, unpackEducation(e))
	}
	return items, total, nil
}

func (repo contentRepository) UpdateEducation(ctx context.Context, item content.Education, exec ...core.DBExecutor) (content.Education, error) {
	e := packEducation(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE education SET degree = $2, institution = $3, field = $4, year = $5, updated_at = $6 WHERE id = $1`,
		e.ID, e.Degree, e.Institution, e.Field, e.Year, e.UpdatedAt,
	)
	if err != nil {
		return content.Education{}, errors.Wrap(err, "updating education")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Education{}, content.ErrNotFound
	}
	return unpackEducation(e), nil
}

func (repo contentRepository) DeleteEducation(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "education", id, exec)
}

// Articles

const articleCols = `id, profile_id, title, body, published, created_at, updated_at`

type dbArticle struct {
	ID        string      `db:"id"`
	ProfileID string      `db:"profile_id"`
	Title     string      `db:"title"`
	Body      null.String `db:"body"`
	Published bool        `db:"published"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func packArticle(item content.Article) dbArticle {
	return dbArticle{
		ID:        item.ID,
		ProfileID: item.ProfileID,
		Title:     item.Title,
		Body:      null.NewString(item.Body, item.Body != ""),
		Published: item.Published,
		CreatedAt: null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackArticle(a dbArticle) content.Article {
	return content.Article{
		ID:        a.ID,
		ProfileID: a.ProfileID,
		Title:     a.Title,
		Body:      a.Body.String,
		Published: a.Published,
		CreatedAt: a.CreatedAt.Time,
		UpdatedAt: a.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreateArticle(ctx context.Context, item content.Article, exec ...core.DBExecutor) (content.Article, error) {
	item.ID = uuid.New().String()
	a := packArticle(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO article (`+articleCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ProfileID, a.Title, a.Body, a.Published, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return content.Article{}, errors.Wrap(err, "inserting article")
	}
	return unpackArticle(a), nil
}

func (repo contentRepository) GetArticle(ctx context.Context, id string, exec ...core.DBExecutor) (content.Article, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Article{}, content.ErrNotFound
	}
	var items []dbArticle
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+articleCols+` FROM article WHERE id = $1`, id)
	if err != nil {
		return content.Article{}, repo.trapNoRowsErr(err, "finding article")
	}
	if len(items) == 0 {
		return content.Article{}, content.ErrNotFound
	}
	return unpackArticle(items[0]), nil
}

func (repo contentRepository) QueryArticles(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Article, int, error) {
	q := listQuery{table: "article", cols: articleCols, searchCols: []string{"title", "body"}}
	var rows []dbArticle
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Article, 0, len(rows))
	for _, a := range rows {
		items = append(items, unpackArticle(a))
	}
	return items, total, nil
}

func (repo contentRepository) UpdateArticle(ctx context.Context, item content.Article, exec ...core.DBExecutor) (content.Article, error) {
	a := packArticle(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE article SET title = $2, body = $3, published = $4, updated_at = $5 WHERE id = $1`,
		a.ID, a.Title, a.Body, a.Published, a.UpdatedAt,
	)
	if err != nil {
		return content.Article{}, errors.Wrap(err, "updating article")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Article{}, content.ErrNotFound
	}
	return unpackArticle(a), nil
}

func (repo contentRepository) DeleteArticle(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "article", id, exec)
}

// Attachments

const attachmentCols = `id, profile_id, label, file_name, url, content_type, size, downloads, created_at, updated_at`

type dbAttachment struct {
	ID          string      `db:"id"`
	ProfileID   string      `db:"profile_id"`
	Label       string      `db:"label"`
	FileName    null.String `db:"file_name"`
	URL         null.String `db:"url"`
	ContentType null.String `db:"content_type"`
	Size        int64       `db:"size"`
	Downloads   int         `db:"downloads"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func packAttachment(item content.Attachment) dbAttachment {
	return dbAttachment{
		ID:          item.ID,
		ProfileID:   item.ProfileID,
		Label:       item.Label,
		FileName:    null.NewString(item.FileName, item.FileName != ""),
		URL:         null.NewString(item.URL, item.URL != ""),
		ContentType: null.NewString(item.ContentType, item.ContentType != ""),
		Size:        item.Size,
		Downloads:   item.Downloads,
		CreatedAt:   null.NewTime(item.CreatedAt.UTC(), !item.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(item.UpdatedAt.UTC(), !item.UpdatedAt.IsZero()),
	}
}

func unpackAttachment(a dbAttachment) content.Attachment {
	return content.Attachment{
		ID:          a.ID,
		ProfileID:   a.ProfileID,
		Label:       a.Label,
		FileName:    a.FileName.String,
		URL:         a.URL.String,
		ContentType: a.ContentType.String,
		Size:        a.Size,
		Downloads:   a.Downloads,
		CreatedAt:   a.CreatedAt.Time,
		UpdatedAt:   a.UpdatedAt.Time,
	}
}

func (repo contentRepository) CreateAttachment(ctx context.Context, item content.Attachment, exec ...core.DBExecutor) (content.Attachment, error) {
	item.ID = uuid.New().String()
	a := packAttachment(item)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO attachment (`+attachmentCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.ProfileID, a.Label, a.FileName, a.URL, a.ContentType, a.Size, a.Downloads, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return content.Attachment{}, errors.Wrap(err, "inserting attachment")
	}
	return unpackAttachment(a), nil
}

func (repo contentRepository) GetAttachment(ctx context.Context, id string, exec ...core.DBExecutor) (content.Attachment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return content.Attachment{}, content.ErrNotFound
	}
	var items []dbAttachment
	err := queryAll(ctx, getExec(repo.exec, exec), &items, `SELECT `+attachmentCols+` FROM attachment WHERE id = $1`, id)
	if err != nil {
		return content.Attachment{}, repo.trapNoRowsErr(err, "finding attachment")
	}
	if len(items) == 0 {
		return content.Attachment{}, content.ErrNotFound
	}
	return unpackAttachment(items[0]), nil
}

func (repo contentRepository) QueryAttachments(ctx context.Context, filter *content.QueryFilter, exec ...core.DBExecutor) ([]content.Attachment, int, error) {
	q := listQuery{table: "attachment", cols: attachmentCols, searchCols: []string{"label", "file_name"}}
	var rows []dbAttachment
	total, err := runListQuery(ctx, getExec(repo.exec, exec), q, filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	items := make([]content.Attachment, 0, len(rows))
	for _, a := range rows {
		items = append(items, unpackAttachment(a))
	}
	return items, total, nil
}

func (repo contentRepository) UpdateAttachment(ctx context.Context, item content.Attachment, exec ...core.DBExecutor) (content.Attachment, error) {
	a := packAttachment(item)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE attachment SET label = $2, file_name = $3, url = $4, content_type = $5, size = $6, updated_at = $7 WHERE id = $1`,
		a.ID, a.Label, a.FileName, a.URL, a.ContentType, a.Size, a.UpdatedAt,
	)
	if err != nil {
		return content.Attachment{}, errors.Wrap(err, "updating attachment")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return content.Attachment{}, content.ErrNotFound
	}
	return unpackAttachment(a), nil
}

func (repo contentRepository) DeleteAttachment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return repo.deleteByID(ctx, "attachment", id, exec)
}

func (repo contentRepository) IncrementDownloads(ctx context.Context, id string, exec ...core.DBExecutor) error {
	// single statement so concurrent downloads never lose an increment
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `UPDATE attachment SET downloads = downloads + 1 WHERE id = $1`, id)
	return errors.Wrap(err, "incrementing downloads")
}
