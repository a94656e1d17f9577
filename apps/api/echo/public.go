package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/profile"
)

type publicApi struct {
	profSvc profile.Service
	contSvc content.Service
}

func registerPublicAPI(g *echo.Group, profSvc profile.Service, contSvc content.Service) {
	api := publicApi{
		profSvc: profSvc,
		contSvc: contSvc,
	}
	pg := g.Group("/public")
	pg.GET("/profiles/:slug", api.retrieveProfile)
	pg.GET("/attachments/:id/download", api.downloadAttachment)
}

// PublicProfileResponse is the aggregated page payload for a teacher's
// public profile.
type PublicProfileResponse struct {
	Profile      profile.Profile       `json:"profile"`
	Research     []content.Research    `json:"research"`
	Activities   []content.Activity    `json:"activities"`
	Publications []content.Publication `json:"publications"`
	Courses      []content.Course      `json:"courses"`
	Education    []content.Education   `json:"education"`
	Articles     []content.Article     `json:"articles"`
	Attachments  []content.Attachment  `json:"attachments"`
}

func (api *publicApi) retrieveProfile(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	prof, err := api.profSvc.GetBySlug(reqCtx, ctx.Param("slug"))
	if err != nil {
		return err
	}
	if err = api.profSvc.RecordView(reqCtx, prof.ID); err != nil {
		return errors.Wrap(err, "recording profile view")
	}
	prof.ViewCount++

	filter := &content.QueryFilter{
		ProfileID:  prof.ID,
		Pagination: core.Pagination{Page: 1, Limit: core.MaxPageSize},
	}
	resp := PublicProfileResponse{Profile: prof}
	if resp.Research, _, err = api.contSvc.QueryResearch(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying research")
	}
	if resp.Activities, _, err = api.contSvc.QueryActivities(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if resp.Publications, _, err = api.contSvc.QueryPublications(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying publications")
	}
	if resp.Courses, _, err = api.contSvc.QueryCourses(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if resp.Education, _, err = api.contSvc.QueryEducation(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying education")
	}
	if resp.Articles, _, err = api.contSvc.QueryArticles(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying articles")
	}
	if resp.Attachments, _, err = api.contSvc.QueryAttachments(reqCtx, filter); err != nil {
		return errors.Wrap(err, "querying attachments")
	}

	if resp.Research == nil {
		resp.Research = []content.Research{}
	}
	if resp.Activities == nil {
		resp.Activities = []content.Activity{}
	}
	if resp.Publications == nil {
		resp.Publications = []content.Publication{}
	}
	if resp.Courses == nil {
		resp.Courses = []content.Course{}
	}
	if resp.Education == nil {
		resp.Education = []content.Education{}
	}
	if resp.Articles == nil {
		resp.Articles = []content.Article{}
	}
	if resp.Attachments == nil {
		resp.Attachments = []content.Attachment{}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *publicApi) downloadAttachment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	item, err := api.contSvc.GetAttachment(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.contSvc.RecordDownload(reqCtx, item.ID); err != nil {
		return errors.Wrap(err, "recording download")
	}
	return ctx.Redirect(http.StatusFound, item.URL)
}
