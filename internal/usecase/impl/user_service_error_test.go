package impl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	mockRepo "identity/internal/mocks/repository"
	"identity/internal/usecase"
)

func TestUserService_RegisterUser_InvalidUsername(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
	}{
		{name: "too short", username: "ab"},
		{name: "illegal characters", username: "bad name!"},
		{name: "empty", username: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.RegisterUser(ctx, &usecase.RegisterUserInput{
				Username: tt.username,
				Email:    "test@example.com",
				Password: "Password123",
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}
}

func TestUserService_RegisterUser_InvalidEmail(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	_, err := fx.service.RegisterUser(ctx, &usecase.RegisterUserInput{
		Username: "alice",
		Email:    "not-an-email",
		Password: "Password123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_RegisterUser_WeakPassword(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().
		ValidatePasswordStrength("weak").
		Return(domainerrors.ErrPasswordStrength.WrapMessage("password too short"))

	_, err := fx.service.RegisterUser(ctx, &usecase.RegisterUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "weak",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
}

func TestUserService_RegisterUser_UsernameTaken(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().ValidatePasswordStrength("Password123").Return(nil)
	fx.hasher.EXPECT().Hash("Password123").Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Return(errors.Wrap(domainerrors.ErrUsernameTaken, "username already exists"))

	_, err := fx.service.RegisterUser(ctx, &usecase.RegisterUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Password123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUsernameTaken)
}

func TestUserService_Login_UnknownAccount(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "ghost").Return(nil, repository.ErrUserNotFound)
	// A hash comparison still runs so the miss is not distinguishable by timing.
	fx.hasher.EXPECT().Check("Password123", dummyPasswordHash).Return(false)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Login: "ghost", Password: "Password123"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	user := activeTestUser("alice", "alice@example.com")

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").Return(user, nil)
	fx.hasher.EXPECT().Check("WrongPassword1", user.PasswordHash).Return(false)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Login: "alice", Password: "WrongPassword1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_Login_InactiveAccount(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	user := activeTestUser("alice", "alice@example.com")
	user.Status = entity.AccountInactive

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").Return(user, nil)
	fx.hasher.EXPECT().Check("Password123", user.PasswordHash).Return(true)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Login: "alice", Password: "Password123"})

	require.Error(t, err)
	// Indistinguishable from a wrong password.
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_CurrentUser_InvalidToken(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.tokenService.EXPECT().
		Validate("expired-token").
		Return(nil, errors.Wrap(domainerrors.ErrTokenExpired, "token validation failed"))

	_, err := fx.service.CurrentUser(ctx, "expired-token")

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	assert.NotErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestUserService_CurrentUser_AccountGone(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.EXPECT().Validate("signed-token").Return(claimsFor(userID), nil)
	fx.userRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

	_, err := fx.service.CurrentUser(ctx, "signed-token")

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestUserService_CurrentUser_InactiveAccount(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	user := activeTestUser("alice", "alice@example.com")
	user.Status = entity.AccountInactive

	fx.tokenService.EXPECT().Validate("signed-token").Return(claimsFor(user.ID), nil)
	fx.userRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

	_, err := fx.service.CurrentUser(ctx, "signed-token")

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.userRepo.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrUserNotFound)

	_, err := fx.service.GetUser(ctx, id)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_ListUsers_InvalidPage(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().
		List(ctx, repository.ListFilter{Page: -1, PageSize: 20, ActiveOnly: true}).
		Return(nil, int64(0), domainerrors.ErrValidationFailed.WrapMessage("page must be greater than 0"))

	_, err := fx.service.ListUsers(ctx, &usecase.ListUsersInput{Page: -1})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_UpdateUser_EmailTaken(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	user := activeTestUser("alice", "alice@example.com")
	takenEmail := "taken@example.com"

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)
			mockUserRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.User")).
				Return(errors.Wrap(domainerrors.ErrEmailTaken, "email already exists"))

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrEmailTaken, "email already exists"))

	_, err := fx.service.UpdateUser(ctx, &usecase.UpdateUserInput{
		UserID: user.ID,
		Email:  &takenEmail,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrUserNotFound)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrUserNotFound, "user update failed"))

	username := "newname"
	_, err := fx.service.UpdateUser(ctx, &usecase.UpdateUserInput{UserID: id, Username: &username})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_UpdateUser_InactiveAccount(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	deactivated := activeTestUser("bob", "bob@example.com")
	deactivated.Status = entity.AccountInactive

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().NewUserRepository().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, deactivated.ID).Return(deactivated, nil)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrUserNotFound, "user update failed"))

	firstName := "Changed"
	_, err := fx.service.UpdateUser(ctx, &usecase.UpdateUserInput{UserID: deactivated.ID, FirstName: &firstName})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.userRepo.EXPECT().SoftDelete(ctx, id).Return(repository.ErrUserNotFound)

	err := fx.service.DeleteUser(ctx, id)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_ChangePassword_WrongCurrentPassword(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	user := activeTestUser("alice", "alice@example.com")

	fx.userRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)
	fx.hasher.EXPECT().Check("WrongOld1", user.PasswordHash).Return(false)

	err := fx.service.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "WrongOld1",
		NewPassword:     "NewPassword1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_ChangePassword_InactiveAccount(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	deactivated := activeTestUser("bob", "bob@example.com")
	deactivated.Status = entity.AccountInactive

	fx.userRepo.EXPECT().FindByID(ctx, deactivated.ID).Return(deactivated, nil)

	err := fx.service.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          deactivated.ID,
		CurrentPassword: "OldPassword1",
		NewPassword:     "NewPassword1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}
