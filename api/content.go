package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"portfolio-api/storage"
)

// getSingleton serves one of the singleton content documents. A document that
// was never saved comes back as its zero value, not a 404, so the public site
// can render defaults.
func getSingleton[T any](fetch func(ctx context.Context) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := fetch(c.Request().Context())
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				var zero T
				return c.JSON(http.StatusOK, ok(zero))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch content"))
		}
		return c.JSON(http.StatusOK, ok(doc))
	}
}

func putSingleton[T any](auth Authenticator, upsert func(ctx context.Context, doc T) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var doc T
		if err := decodeBody(c, writeMaxSize, &doc); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		if err := upsert(ctx, doc); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to save content"))
		}
		return c.JSON(http.StatusOK, ok(doc))
	}
}
