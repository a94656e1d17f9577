package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/profile"
)

type profileApi struct {
	svc      profile.Service
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, svc profile.Service, validate *validator.Validate) {
	api := profileApi{
		svc:      svc,
		validate: validate,
	}

	pg := g.Group("/profiles")
	pg.GET("", api.query)
	pg.GET("/me", api.retrieveMine)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.POST("", api.create, adminMiddleware())
	pg.DELETE("/:id", api.destroy, adminMiddleware())
}

// create makes a detached profile; the usual path is the one created alongside
// a teacher account, this one covers profiles managed for someone else.
func (api *profileApi) create(ctx echo.Context) error {
	var data CreateProfileRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateProfileRequest")
	}
	if err := data.NewProfile.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.Create(ctx.Request().Context(), data.UserID, data.NewProfile)
	if err != nil {
		return errors.Wrap(err, "creating profile")
	}
	return ctx.JSON(http.StatusCreated, prof)
}

func (api *profileApi) query(ctx echo.Context) error {
	filter := new(profile.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	profs, total, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying profiles")
	}
	if profs == nil {
		profs = []profile.Profile{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(profs, filter.Pagination, total))
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	prof, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prof)
}

// retrieveMine returns the caller's own profile.
func (api *profileApi) retrieveMine(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context subject")
	}
	if sub.ProfileID == "" {
		return errHttpNotFound
	}
	prof, err := api.svc.GetByID(ctx.Request().Context(), sub.ProfileID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	prof, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}

	// owner or admin; the subject comes from the verified token
	sub, err := getContextSubject(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context subject")
	}
	if err := content.Authorize(sub, prof.ID); err != nil {
		return err
	}

	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(prof, api.validate); err != nil {
		return err
	}

	prof, err = api.svc.Update(reqCtx, prof, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	prof, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.Delete(reqCtx, prof.ID); err != nil {
		return errors.Wrap(err, "deleting profile")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type CreateProfileRequest struct {
	UserID string `json:"user_id"`
	profile.NewProfile
}
