package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"portfolio-api/domain"
)

// trackVisit records a public-site visit. Repeat visits from the same IP
// within the dedupe window are acknowledged but not recorded.
func trackVisit(store Storage, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ip := c.RealIP()

		added, err := deduper.Add(ctx, ip)
		if err != nil {
			c.Logger().Errorf("visit dedupe failed: %v", err)
			return c.JSON(http.StatusAccepted, okMessage("Visit recorded"))
		}
		if !added {
			return c.JSON(http.StatusAccepted, okMessage("Visit recorded"))
		}

		job := visitJob{
			visit: domain.Visit{
				IP:        ip,
				UserAgent: c.Request().UserAgent(),
				Referrer:  c.Request().Referer(),
				Time:      time.Now().UTC(),
			},
			dedupeKey: ip,
		}

		if tryEnqueueVisit(job) {
			return c.JSON(http.StatusAccepted, okMessage("Visit recorded"))
		}

		if globalLog != nil {
			globalLog.Warn("track buffer saturated; enqueueing inline")
		}

		timeout := enqueueTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		enqueueCtx, cancel := context.WithTimeout(bg, timeout)
		enqueueErr := store.EnqueueVisit(enqueueCtx, job.visit)
		cancel()

		if enqueueErr != nil {
			if rerr := deduper.Remove(ctx, ip); rerr != nil {
				c.Logger().Errorf("dedupe rollback failed: %v", rerr)
			}
			c.Logger().Errorf("visit enqueue inline failed: %v", enqueueErr)
			return c.JSON(http.StatusInternalServerError, fail("failed to record visit"))
		}

		return c.JSON(http.StatusAccepted, okMessage("Visit recorded"))
	}
}

func getRecentVisitors(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		limit := 50
		if raw := c.QueryParam("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v > 0 {
				limit = v
			}
		}

		visitors, err := store.FetchVisitors(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch visitors"))
		}
		sort.Slice(visitors, func(i, j int) bool { return visitors[i].Time.After(visitors[j].Time) })
		if len(visitors) > limit {
			visitors = visitors[:limit]
		}
		return c.JSON(http.StatusOK, ok(visitors))
	}
}

func getVisitorStats(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		stats, err := store.FetchVisitorStats(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch visitor stats"))
		}
		return c.JSON(http.StatusOK, ok(stats))
	}
}
