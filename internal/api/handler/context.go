package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware. A zero user
// id means the middleware did not run for this route.
func ctxClaims(c echo.Context) (ports.TokenClaims, error) {
	claims, _ := c.Get("claims").(ports.TokenClaims)
	if claims.UserID <= 0 {
		return ports.TokenClaims{}, echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	}
	return claims, nil
}

func ctxActor(c echo.Context) (ports.Actor, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return ports.Actor{}, err
	}
	return ports.Actor{UserID: claims.UserID, Admin: domain.HasAdminRole(claims.Roles)}, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	return id, nil
}
