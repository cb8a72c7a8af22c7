package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"portfolio-api/domain"
	"portfolio-api/storage"
)

type reorderProjectsRequest struct {
	Projects []domain.OrderUpdate `json:"projects"`
}

func decodeProjectsReorder(r io.Reader) ([]domain.OrderUpdate, error) {
	var body reorderProjectsRequest
	dec := sonic.ConfigStd.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body.Projects, nil
}

func getProjects(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		projects, err := store.FetchProjects(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch projects"))
		}
		return c.JSON(http.StatusOK, ok(projects))
	}
}

func getProject(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := store.GetProject(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("project not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch project"))
		}
		return c.JSON(http.StatusOK, ok(p))
	}
}

func validateProject(p domain.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("description is required")
	}
	if !domain.ValidCategory(p.Category) {
		return errors.New("invalid category")
	}
	return nil
}

func createProject(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var p domain.Project
		if err := decodeBody(c, writeMaxSize, &p); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		if err := validateProject(p); err != nil {
			return c.JSON(http.StatusBadRequest, fail(err.Error()))
		}

		p.ID = uuid.NewString()
		p.CreatedAt = time.Now().UTC()
		if p.Order == 0 {
			existing, err := store.FetchProjects(ctx)
			if err != nil {
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, fail("failed to create project"))
			}
			p.Order = len(existing)
		}

		if err := store.InsertProject(ctx, p); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to create project"))
		}
		return c.JSON(http.StatusCreated, ok(p))
	}
}

func updateProject(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var p domain.Project
		if err := decodeBody(c, writeMaxSize, &p); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		p.ID = c.Param("id")
		if err := validateProject(p); err != nil {
			return c.JSON(http.StatusBadRequest, fail(err.Error()))
		}

		updated, err := store.UpdateProject(ctx, p)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("project not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update project"))
		}
		return c.JSON(http.StatusOK, ok(updated))
	}
}

func deleteProject(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		if err := store.DeleteProject(ctx, c.Param("id")); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("project not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to delete project"))
		}
		return c.JSON(http.StatusOK, okMessage("Project deleted successfully"))
	}
}
