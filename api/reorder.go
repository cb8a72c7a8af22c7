package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"portfolio-api/domain"
)

type reorderApplyFunc func(ctx context.Context, updates []domain.OrderUpdate) (int, error)

type reorderDecodeFunc func(r io.Reader) ([]domain.OrderUpdate, error)

// reorderHandler is the shared core behind the reorder routes. Each route
// supplies its own body decoder (the wrapper key differs per entity) and the
// store method that applies the updates.
func reorderHandler(route string, auth Authenticator, logger *log.Logger, decode reorderDecodeFunc, apply reorderApplyFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newReorderRequestMetrics(ctx, logger, route)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.JSON(http.StatusUnauthorized, fail(authErr.Error()))
			return err
		}

		decodeStart := time.Now()
		updates, decodeErr := decode(io.LimitReader(c.Request().Body, reorderMaxSize))
		metrics.ObserveDecode(time.Since(decodeStart))
		if decodeErr != nil {
			metrics.SetErrorStage("decode")
			err = c.JSON(http.StatusBadRequest, fail("invalid body"))
			return err
		}
		metrics.SetItems(len(updates))

		if validateErr := validateOrderUpdates(updates); validateErr != nil {
			metrics.SetErrorStage("validate")
			err = c.JSON(http.StatusBadRequest, fail(validateErr.Error()))
			return err
		}

		storeStart := time.Now()
		matched, storeErr := apply(ctx, updates)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(storeErr)
			err = c.JSON(http.StatusInternalServerError, fail("failed to update order"))
			return err
		}
		metrics.SetMatched(matched)

		err = c.JSON(http.StatusOK, okMessage("Order updated successfully"))
		return err
	}
}

func validateOrderUpdates(updates []domain.OrderUpdate) error {
	if len(updates) == 0 {
		return errors.New("at least one item is required")
	}
	for _, u := range updates {
		if strings.TrimSpace(u.ID) == "" {
			return errors.New("every item needs an id")
		}
	}
	return nil
}
