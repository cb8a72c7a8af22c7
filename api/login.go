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
	"golang.org/x/crypto/bcrypt"

	"portfolio-api/domain"
	"portfolio-api/storage"
)

const tokenTTL = 24 * time.Hour

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  domain.AdminUser `json:"user"`
}

func decodeBody(c echo.Context, maxSize int64, out any) error {
	lr := io.LimitReader(c.Request().Body, maxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// register creates the first admin account. Once one exists, registration is
// closed.
func register(store Storage, auth *Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var body credentialsRequest
		if err := decodeBody(c, writeMaxSize, &body); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		if body.Email == "" || len(body.Password) < 8 {
			return c.JSON(http.StatusBadRequest, fail("email and a password of at least 8 characters are required"))
		}

		count, err := store.CountUsers(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("registration failed"))
		}
		if count > 0 {
			return c.JSON(http.StatusForbidden, fail("registration is closed"))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, fail("registration failed"))
		}
		user := domain.AdminUser{
			ID:           uuid.NewString(),
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.InsertUser(ctx, user); err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("registration failed"))
		}

		token, err := auth.IssueToken(user.ID, tokenTTL)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("registration failed"))
		}
		return c.JSON(http.StatusCreated, ok(loginResponse{Token: token, User: user}))
	}
}

func login(store Storage, auth *Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var body credentialsRequest
		if err := decodeBody(c, writeMaxSize, &body); err != nil {
			return c.JSON(http.StatusBadRequest, fail("invalid body"))
		}
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))

		user, err := store.GetUserByEmail(ctx, body.Email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, fail("invalid credentials"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("login failed"))
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
			return c.JSON(http.StatusUnauthorized, fail("invalid credentials"))
		}

		token, err := auth.IssueToken(user.ID, tokenTTL)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("login failed"))
		}
		return c.JSON(http.StatusOK, ok(loginResponse{Token: token, User: user}))
	}
}

// logout exists for client symmetry. Tokens are stateless and expire on their
// own; the dashboard discards its copy.
func logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, okMessage("Logged out successfully"))
	}
}

func getMe(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, fail(err.Error()))
		}
		user, err := store.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, fail("unknown user"))
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, fail("lookup failed"))
		}
		return c.JSON(http.StatusOK, ok(user))
	}
}
