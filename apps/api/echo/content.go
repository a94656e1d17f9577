package echoapi

import (
	stdctx "context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core/content"
)

type contentApi struct {
	svc      content.Service
	validate *validator.Validate
}

// entityRoutes is one content collection; all seven share the same route
// shape, only the handlers differ.
type entityRoutes struct {
	path                         string
	list, create, update, remove echo.HandlerFunc
}

func registerContentAPI(g *echo.Group, svc content.Service, validate *validator.Validate) {
	api := contentApi{
		svc:      svc,
		validate: validate,
	}

	routes := []entityRoutes{
		{"/research", api.listResearch, api.createResearch, api.updateResearch, api.deleteResearch},
		{"/activities", api.listActivities, api.createActivity, api.updateActivity, api.deleteActivity},
		{"/publications", api.listPublications, api.createPublication, api.updatePublication, api.deletePublication},
		{"/courses", api.listCourses, api.createCourse, api.updateCourse, api.deleteCourse},
		{"/education", api.listEducation, api.createEducation, api.updateEducation, api.deleteEducation},
		{"/articles", api.listArticles, api.createArticle, api.updateArticle, api.deleteArticle},
	}
	for _, r := range routes {
		g.GET(r.path, r.list)
		g.POST(r.path, r.create)
		g.PUT(r.path+"/:id", r.update)
		g.DELETE(r.path+"/:id", r.remove)
	}

	// attachments get an ownership middleware on detail routes; the service
	// still re-checks before mutating
	ag := g.Group("/attachments")
	ag.GET("", api.listAttachments)
	ag.POST("", api.createAttachment)
	owned := ownershipMiddleware(func(ctx stdctx.Context, id string) (string, interface{}, error) {
		item, err := api.svc.GetAttachment(ctx, id)
		return item.ProfileID, item, err
	})
	ag.PUT("/:id", api.updateAttachment, owned)
	ag.DELETE("/:id", api.deleteAttachment, owned)
}

func bindContentFilter(ctx echo.Context) (*content.QueryFilter, error) {
	filter := new(content.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	return filter, nil
}

// Research

func (api *contentApi) listResearch(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryResearch(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying research")
	}
	if items == nil {
		items = []content.Research{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createResearch(ctx echo.Context) error {
	var data content.ResearchInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResearchInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreateResearch(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updateResearch(ctx echo.Context) error {
	var data content.ResearchInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResearchInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateResearch(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deleteResearch(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteResearch(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Activities

func (api *contentApi) listActivities(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryActivities(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if items == nil {
		items = []content.Activity{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createActivity(ctx echo.Context) error {
	var data content.ActivityInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActivityInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreateActivity(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updateActivity(ctx echo.Context) error {
	var data content.ActivityInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActivityInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateActivity(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deleteActivity(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteActivity(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Publications

func (api *contentApi) listPublications(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryPublications(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying publications")
	}
	if items == nil {
		items = []content.Publication{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createPublication(ctx echo.Context) error {
	var data content.PublicationInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PublicationInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreatePublication(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updatePublication(ctx echo.Context) error {
	var data content.PublicationInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PublicationInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdatePublication(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deletePublication(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeletePublication(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Courses

func (api *contentApi) listCourses(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryCourses(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if items == nil {
		items = []content.Course{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createCourse(ctx echo.Context) error {
	var data content.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreateCourse(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updateCourse(ctx echo.Context) error {
	var data content.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateCourse(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deleteCourse(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCourse(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Education

func (api *contentApi) listEducation(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryEducation(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying education")
	}
	if items == nil {
		items = []content.Education{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createEducation(ctx echo.Context) error {
	var data content.EducationInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EducationInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreateEducation(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updateEducation(ctx echo.Context) error {
	var data content.EducationInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EducationInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateEducation(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deleteEducation(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteEducation(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Articles

func (api *contentApi) listArticles(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryArticles(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying articles")
	}
	if items == nil {
		items = []content.Article{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createArticle(ctx echo.Context) error {
	var data content.ArticleInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ArticleInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreateArticle(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updateArticle(ctx echo.Context) error {
	var data content.ArticleInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ArticleInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateArticle(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deleteArticle(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteArticle(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Attachments

func (api *contentApi) listAttachments(ctx echo.Context) error {
	filter, err := bindContentFilter(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.QueryAttachments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attachments")
	}
	if items == nil {
		items = []content.Attachment{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, filter.Pagination, total))
}

func (api *contentApi) createAttachment(ctx echo.Context) error {
	var data content.AttachmentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachmentInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.CreateAttachment(ctx.Request().Context(), sub, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) updateAttachment(ctx echo.Context) error {
	var data content.AttachmentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachmentInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateAttachment(ctx.Request().Context(), sub, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) deleteAttachment(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteAttachment(ctx.Request().Context(), sub, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
