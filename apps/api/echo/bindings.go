package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/walimu/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// ListResponse is the envelope every paginated list endpoint returns.
type ListResponse struct {
	Data interface{}   `json:"data"`
	Meta core.PageMeta `json:"meta"`
}

func newListResponse(data interface{}, p core.Pagination, total int) ListResponse {
	return ListResponse{Data: data, Meta: core.NewPageMeta(p, total)}
}
