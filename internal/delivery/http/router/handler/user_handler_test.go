package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/delivery/http/validator"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	mockUC "identity/internal/mocks/usecase"
	"identity/internal/usecase"
)

func newTestHandler(t *testing.T) (*UserHandler, *mockUC.MockUserUsecase, *echo.Echo) {
	userUC := mockUC.NewMockUserUsecase(t)
	h := &UserHandler{
		userUC: userUC,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	e := echo.New()
	e.Validator = validator.New()

	return h, userUC, e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestUserHandler_Register_Created(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	user := &entity.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Status:   entity.AccountActive,
	}

	userUC.EXPECT().
		RegisterUser(mock.Anything, &usecase.RegisterUserInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Password123",
		}).
		Return(&usecase.RegisterOutput{User: user}, nil)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users",
		`{"username":"alice","email":"alice@example.com","password":"Password123"}`)

	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"username":"alice"`)
	// The password hash never appears in a response.
	assert.NotContains(t, body, "password")
}

func TestUserHandler_Register_MissingFields(t *testing.T) {
	h, _, e := newTestHandler(t)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users", `{"username":"alice"}`)

	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestUserHandler_Register_Conflict(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	userUC.EXPECT().
		RegisterUser(mock.Anything, mock.AnythingOfType("*usecase.RegisterUserInput")).
		Return(nil, domainerrors.ErrUsernameTaken.WrapMessage("username already exists"))

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users",
		`{"username":"alice","email":"alice@example.com","password":"Password123"}`)

	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "USERNAME_TAKEN")
}

func TestUserHandler_Login_ReturnsToken(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	userUC.EXPECT().
		Login(mock.Anything, &usecase.LoginInput{Login: "alice", Password: "Password123"}).
		Return(&usecase.LoginOutput{
			AccessToken: "signed-token",
			TokenType:   "bearer",
			ExpiresIn:   1800,
		}, nil)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/login",
		`{"login":"alice","password":"Password123"}`)

	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"access_token":"signed-token"`)
	assert.Contains(t, body, `"token_type":"bearer"`)
	assert.Contains(t, body, `"expires_in":1800`)
}

func TestUserHandler_Login_InvalidCredentials(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	userUC.EXPECT().
		Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed"))

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/login",
		`{"login":"alice","password":"wrong"}`)

	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestUserHandler_Me_ResolvesToken(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	user := &entity.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Status:   entity.AccountActive,
	}

	userUC.EXPECT().CurrentUser(mock.Anything, "signed-token").Return(user, nil)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users/me", "")
	c.Set(deliverycontext.KeyAccessToken, "signed-token")
	c.Set(deliverycontext.KeyUserID, user.ID)

	require.NoError(t, h.Me(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestUserHandler_Me_WithoutToken(t *testing.T) {
	h, _, e := newTestHandler(t)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users/me", "")

	require.NoError(t, h.Me(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_GetUser_InvalidID(t *testing.T) {
	h, _, e := newTestHandler(t)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.GetUser(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ID")
}

func TestUserHandler_GetUser_NotFound(t *testing.T) {
	h, userUC, e := newTestHandler(t)
	id := uuid.New()

	userUC.EXPECT().
		GetUser(mock.Anything, id).
		Return(nil, domainerrors.ErrUserNotFound.WrapMessage("user lookup failed"))

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h.GetUser(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_NOT_FOUND")
}

func TestUserHandler_ListUsers_ParsesQuery(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	userUC.EXPECT().
		ListUsers(mock.Anything, &usecase.ListUsersInput{Page: 2, PageSize: 50, IncludeInactive: true}).
		Return(&usecase.ListUsersOutput{
			Users:    []*entity.User{},
			Total:    120,
			Page:     2,
			PageSize: 50,
			Pages:    3,
		}, nil)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users?page=2&page_size=50&active_only=false", "")

	require.NoError(t, h.ListUsers(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"total":120`)
	assert.Contains(t, body, `"pages":3`)
}

func TestUserHandler_ListUsers_DefaultsToActiveOnly(t *testing.T) {
	h, userUC, e := newTestHandler(t)

	userUC.EXPECT().
		ListUsers(mock.Anything, &usecase.ListUsersInput{}).
		Return(&usecase.ListUsersOutput{
			Users:    []*entity.User{},
			Total:    0,
			Page:     1,
			PageSize: 20,
			Pages:    0,
		}, nil)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users", "")

	require.NoError(t, h.ListUsers(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserHandler_ListUsers_RejectsNonInteger(t *testing.T) {
	h, _, e := newTestHandler(t)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/users?page=two", "")

	require.NoError(t, h.ListUsers(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_DeleteUser_NoContent(t *testing.T) {
	h, userUC, e := newTestHandler(t)
	id := uuid.New()

	userUC.EXPECT().DeleteUser(mock.Anything, id).Return(nil)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/users/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h.DeleteUser(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUserHandler_UpdateUser_PartialBody(t *testing.T) {
	h, userUC, e := newTestHandler(t)
	id := uuid.New()
	email := "new@example.com"

	updated := &entity.User{
		ID:       id,
		Username: "alice",
		Email:    email,
		Status:   entity.AccountActive,
	}

	userUC.EXPECT().
		UpdateUser(mock.Anything, &usecase.UpdateUserInput{UserID: id, Email: &email}).
		Return(updated, nil)

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/users/"+id.String(),
		`{"email":"new@example.com"}`)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h.UpdateUser(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"new@example.com"`)
}
