package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"portfolio-api/domain"
	"portfolio-api/storage"
)

// postMessage accepts a contact-form submission from the public site.
func postMessage(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var m domain.Message
		if err := decodeBody(c, writeMaxSize, &m); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		m.Name = strings.TrimSpace(m.Name)
		m.Email = strings.TrimSpace(m.Email)
		if m.Name == "" || m.Email == "" || strings.TrimSpace(m.Message) == "" {
			return c.JSON(http.StatusBadRequest, fail("name, email and message are required"))
		}

		m.ID = uuid.NewString()
		m.IsRead = false
		m.CreatedAt = time.Now().UTC()
		if err := store.InsertMessage(ctx, m); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to send message"))
		}
		return c.JSON(http.StatusCreated, okMessage("Message sent successfully"))
	}
}

func getMessages(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		messages, err := store.FetchMessages(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to fetch messages"))
		}
		return c.JSON(http.StatusOK, ok(messages))
	}
}

func markMessageRead(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		if err := store.MarkMessageRead(ctx, c.Param("id")); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("message not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to update message"))
		}
		return c.JSON(http.StatusOK, okMessage("Message marked as read"))
	}
}

func deleteMessage(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}

		if err := store.DeleteMessage(ctx, c.Param("id")); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, fail("message not found"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("failed to delete message"))
		}
		return c.JSON(http.StatusOK, okMessage("Message deleted successfully"))
	}
}
