package api

import (
	"errors"
	"fmt"
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

type reorderSkillsRequest struct {
	Skills []domain.OrderUpdate `json:"skills"`
}

type reorderCategoriesRequest struct {
	Categories []domain.OrderUpdate `json:"categories"`
}

func decodeSkillsReorder(r io.Reader) ([]domain.OrderUpdate, error) {
	var body reorderSkillsRequest
	dec := sonic.ConfigStd.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body.Skills, nil
}

func decodeCategoriesReorder(r io.Reader) ([]domain.OrderUpdate, error) {
	var body reorderCategoriesRequest
	dec := sonic.ConfigStd.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body.Categories, nil
}

func getSkills(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		skills, err := store.FetchSkills(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch skills"))
		}
		return c.JSON(http.StatusOK, ok(skills))
	}
}

func validateSkill(sk domain.Skill) error {
	if strings.TrimSpace(sk.Name) == "" {
		return errors.New("name is required")
	}
	if sk.Percentage < 0 || sk.Percentage > 100 {
		return errors.New("percentage must be between 0 and 100")
	}
	return nil
}

func createSkill(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var sk domain.Skill
		if err := decodeBody(c, writeMaxSize, &sk); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		if err := validateSkill(sk); err != nil {
			return c.JSON(http.StatusBadRequest, fail(err.Error()))
		}

		sk.ID = uuid.NewString()
		sk.CreatedAt = time.Now().UTC()
		if sk.Order == 0 {
			existing, err := store.FetchSkills(ctx)
			if err != nil {
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, fail("failed to create skill"))
			}
			sk.Order = len(existing)
		}

		if err := store.InsertSkill(ctx, sk); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to create skill"))
		}
		return c.JSON(http.StatusCreated, ok(sk))
	}
}

func updateSkill(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var sk domain.Skill
		if err := decodeBody(c, writeMaxSize, &sk); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		sk.ID = c.Param("id")
		if err := validateSkill(sk); err != nil {
			return c.JSON(http.StatusBadRequest, fail(err.Error()))
		}

		updated, err := store.UpdateSkill(ctx, sk)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("skill not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update skill"))
		}
		return c.JSON(http.StatusOK, ok(updated))
	}
}

func deleteSkill(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		if err := store.DeleteSkill(ctx, c.Param("id")); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("skill not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to delete skill"))
		}
		return c.JSON(http.StatusOK, okMessage("Skill deleted successfully"))
	}
}

func getCategories(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		categories, err := store.FetchCategories(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch categories"))
		}
		return c.JSON(http.StatusOK, ok(categories))
	}
}

func createCategory(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var cat domain.SkillCategory
		if err := decodeBody(c, writeMaxSize, &cat); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		cat.Name = strings.TrimSpace(cat.Name)
		if cat.Name == "" {
			return c.JSON(http.StatusBadRequest, fail("name is required"))
		}

		exists, err := store.CategoryNameExists(ctx, cat.Name, "")
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to create category"))
		}
		if exists {
			return c.JSON(http.StatusConflict, fail("a category with this name already exists"))
		}

		cat.ID = uuid.NewString()
		cat.CreatedAt = time.Now().UTC()
		if cat.Order == 0 {
			existing, err := store.FetchCategories(ctx)
			if err != nil {
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, fail("failed to create category"))
			}
			cat.Order = len(existing)
		}

		if err := store.InsertCategory(ctx, cat); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to create category"))
		}
		return c.JSON(http.StatusCreated, ok(cat))
	}
}

// updateCategory renames a category and cascades the rename to every skill in
// it, so the category filter on skills never dangles.
func updateCategory(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var cat domain.SkillCategory
		if err := decodeBody(c, writeMaxSize, &cat); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		cat.ID = c.Param("id")
		cat.Name = strings.TrimSpace(cat.Name)
		if cat.Name == "" {
			return c.JSON(http.StatusBadRequest, fail("name is required"))
		}

		current, err := store.GetCategory(ctx, cat.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("category not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update category"))
		}

		exists, err := store.CategoryNameExists(ctx, cat.Name, cat.ID)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update category"))
		}
		if exists {
			return c.JSON(http.StatusConflict, fail("a category with this name already exists"))
		}

		updated, err := store.UpdateCategory(ctx, cat)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("category not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update category"))
		}

		if current.Name != updated.Name {
			if _, err := store.RenameSkillCategory(ctx, current.Name, updated.Name); err != nil {
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, fail("failed to update category"))
			}
		}
		return c.JSON(http.StatusOK, ok(updated))
	}
}

func deleteCategory(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		cat, err := store.GetCategory(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("category not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to delete category"))
		}

		inUse, err := store.CountSkillsInCategory(ctx, cat.Name)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to delete category"))
		}
		if inUse > 0 {
			return c.JSON(http.StatusConflict, fail(fmt.Sprintf("cannot delete category, %d skill(s) are using it", inUse)))
		}

		if err := store.DeleteCategory(ctx, cat.ID); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to delete category"))
		}
		return c.JSON(http.StatusOK, okMessage("Category deleted successfully"))
	}
}

func getAdditionalTech(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		at, err := store.FetchAdditionalTech(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch additional technologies"))
		}
		return c.JSON(http.StatusOK, ok(at))
	}
}

func putAdditionalTech(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		var at domain.AdditionalTech
		if err := decodeBody(c, writeMaxSize, &at); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		if err := store.UpsertAdditionalTech(ctx, at); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update additional technologies"))
		}
		return c.JSON(http.StatusOK, ok(at))
	}
}
