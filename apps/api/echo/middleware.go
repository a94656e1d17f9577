package echoapi

import (
	stdctx "context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/user"
)

// pathHasPrefix reports whether path lives under prefix at a segment boundary:
// "/dashboard/admin" is under "/dashboard", "/dashboard-public" is not.
func pathHasPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}

// loginRedirect sends browsers to the login page, preserving the page they
// were after.
func loginRedirect(ctx echo.Context) error {
	next := ctx.Request().RequestURI
	return ctx.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(next))
}

// dashboardAuthErrorHandler turns any token failure on dashboard pages into a
// login redirect. Absent, malformed and expired tokens are indistinguishable.
func dashboardAuthErrorHandler(err error, ctx echo.Context) error {
	return loginRedirect(ctx)
}

// apiAuthErrorHandler fails API requests closed with a uniform 401.
func apiAuthErrorHandler(err error, ctx echo.Context) error {
	return errUnauthorized
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == user.RoleAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// dashboardRoleMiddleware sends users to the portal matching their role. This
// is a convenience redirect only; authorization stays with the API checks.
func dashboardRoleMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return loginRedirect(ctx)
		}

		path := ctx.Request().URL.Path
		isAdmin := claims.Role == user.RoleAdmin
		if pathHasPrefix(path, "/dashboard/admin") && !isAdmin {
			return ctx.Redirect(http.StatusFound, "/dashboard/teacher")
		}
		if pathHasPrefix(path, "/dashboard/teacher") && isAdmin {
			return ctx.Redirect(http.StatusFound, "/dashboard/admin")
		}
		return next(ctx)
	}
}

// objectGetter loads one content item and reports its owning profile.
type objectGetter func(ctx stdctx.Context, id string) (ownerProfileID string, obj interface{}, err error)

// ownershipMiddleware resolves the addressed item once, enforces the
// role/ownership rule against the token claims and stashes the item in the
// context under "object" for the handler.
func ownershipMiddleware(get objectGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sub, err := getContextSubject(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context subject")
			}

			owner, obj, err := get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == content.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "loading object")
			}
			if err := content.Authorize(sub, owner); err != nil {
				return err
			}

			ctx.Set("object", obj)
			return next(ctx)
		}
	}
}
