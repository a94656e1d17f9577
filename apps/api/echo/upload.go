package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core"
	filesvc "github.com/trezcool/walimu/services/files"
)

type uploadApi struct {
	svc filesvc.Service
}

func registerUploadAPI(g *echo.Group, svc filesvc.Service) {
	api := uploadApi{svc: svc}
	g.POST("/uploads", api.upload)
}

type UploadResponse struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func (api *uploadApi) upload(ctx echo.Context) error {
	kind, ok := filesvc.KindFromString(ctx.FormValue("type"))
	if !ok {
		err := errors.New("invalid upload type")
		return core.NewValidationError(err, core.FieldError{
			Field: "type",
			Error: "type must be one of avatar, hero, general, files",
		})
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		vErr := errors.New("missing file")
		return core.NewValidationError(vErr, core.FieldError{Field: "file", Error: "a file is required"})
	}

	saved, err := api.svc.Save(kind, fh)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, UploadResponse{
		URL:         saved.URL,
		FileName:    saved.OriginalName,
		Size:        saved.Size,
		ContentType: saved.ContentType,
	})
}
