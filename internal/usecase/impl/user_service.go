// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"identity/config"
	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/usecase"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 50
	emailMaxLength    = 255
	nameMaxLength     = 100

	bearerTokenType = "bearer"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// dummyPasswordHash is compared against when a login does not resolve to an
// account, so an unknown login costs the same as a wrong password.
const dummyPasswordHash = "$2a$12$C8OuPIl3rvXezNJU1Gl5YeJDdOIZ6eTQCLpPyTbIAXx0o5Fai1u1G"

// validate checks structural input formats (email syntax).
var validate = validator.New()

// userService implements the UserUsecase interface.
type userService struct {
	txManager       repository.TransactionManager
	userRepo        repository.UserRepository
	hasher          service.PasswordHasher
	tokenService    service.TokenService
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:       params.TxManager,
		userRepo:        params.UserRepo,
		hasher:          params.Hasher,
		tokenService:    params.TokenService,
		defaultPageSize: params.Config.Pagination.DefaultPageSize,
		maxPageSize:     params.Config.Pagination.MaxPageSize,
		logger:          params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterUser orchestrates the complete account registration process.
func (srv *userService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	srv.log(ctx).Info("Starting user registration", slog.String("username", username))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName("first name", input.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("last name", input.LastName); err != nil {
		return nil, err
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("username", username), slog.Any("error", err))

		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Status:       entity.AccountActive,
	}

	// Execute the creation within a single database transaction so the
	// uniqueness checks and the insert are atomic.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewUserRepository().Create(ctx, newUser)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to execute user registration transaction", slog.String("username", username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}
	srv.log(ctx).Debug("User registered successfully", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login authenticates by username or email and issues a bearer token.
// Unknown account, wrong password and inactive account all produce the same
// ErrInvalidCredentials so callers cannot probe which accounts exist.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	login := strings.ToLower(strings.TrimSpace(input.Login))

	srv.log(ctx).Debug("Starting user login")

	user, err := srv.findLoginUser(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.hasher.Check(input.Password, dummyPasswordHash)
			srv.log(ctx).Warn("Login failed", slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load account for login")
	}

	// Check password before status so both paths cost a bcrypt comparison.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !user.IsActive() {
		srv.log(ctx).Warn("Login attempt on inactive account", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	accessToken, expiresIn, err := srv.tokenService.Generate(user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to generate access token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate access token")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken: accessToken,
		TokenType:   bearerTokenType,
		ExpiresIn:   expiresIn,
		User:        user,
	}, nil
}

// findLoginUser resolves the login identifier to an account. Identifiers
// containing '@' are treated as email addresses, anything else as a username.
func (srv *userService) findLoginUser(ctx context.Context, login string) (*entity.User, error) {
	if strings.Contains(login, "@") {
		return srv.userRepo.FindByEmail(ctx, login)
	}

	return srv.userRepo.FindByUsername(ctx, login)
}

// CurrentUser resolves a bearer token to the active account it identifies.
// Every failure mode, from a bad signature to an inactive account, collapses
// into ErrUnauthenticated at this boundary.
func (srv *userService) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	claims, err := srv.tokenService.Validate(token)
	if err != nil {
		srv.log(ctx).Debug("Token validation failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "token validation failed")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load account for token")
	}

	if !user.IsActive() {
		srv.log(ctx).Debug("Token presented for inactive account", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "account is inactive")
	}

	return user, nil
}

// GetUser fetches a single account by ID regardless of its status.
func (srv *userService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "user lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// ListUsers returns one page of accounts plus paging totals.
func (srv *userService) ListUsers(ctx context.Context, input *usecase.ListUsersInput) (*usecase.ListUsersOutput, error) {
	page := input.Page
	if page == 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = srv.defaultPageSize
	}

	users, total, err := srv.userRepo.List(ctx, repository.ListFilter{
		Page:       page,
		PageSize:   pageSize,
		ActiveOnly: !input.IncludeInactive,
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to list users", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list users")
	}

	effectiveSize := pageSize
	if effectiveSize > srv.maxPageSize {
		effectiveSize = srv.maxPageSize
	}

	pages := int((total + int64(effectiveSize) - 1) / int64(effectiveSize))

	return &usecase.ListUsersOutput{
		Users:    users,
		Total:    total,
		Page:     page,
		PageSize: effectiveSize,
		Pages:    pages,
	}, nil
}

// UpdateUser applies a partial update to an account. Nil input fields are
// left unchanged; provided fields are re-validated the same way as at
// registration.
func (srv *userService) UpdateUser(ctx context.Context, input *usecase.UpdateUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating user", slog.Any("userID", input.UserID))

	var updatedUser *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user update failed")
			}

			return errors.Wrap(err, "failed to find user for update")
		}

		// Deactivated accounts are not addressable through update.
		if !user.IsActive() {
			return errors.Wrap(domainerrors.ErrUserNotFound, "user update failed")
		}

		if err := applyUserChanges(user, input); err != nil {
			return err
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updatedUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to execute user update transaction", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user update transaction")
	}
	srv.log(ctx).Debug("User updated successfully", slog.Any("userID", updatedUser.ID))

	return updatedUser, nil
}

func applyUserChanges(user *entity.User, input *usecase.UpdateUserInput) error {
	if input.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*input.Username))
		if err := validateUsername(username); err != nil {
			return err
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := validateEmail(email); err != nil {
			return err
		}
		user.Email = email
	}
	if input.FirstName != nil {
		if err := validateName("first name", *input.FirstName); err != nil {
			return err
		}
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if err := validateName("last name", *input.LastName); err != nil {
			return err
		}
		user.LastName = strings.TrimSpace(*input.LastName)
	}

	return nil
}

// DeleteUser marks an account inactive. Repeating the call on an already
// inactive account succeeds without effect.
func (srv *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	srv.log(ctx).Info("Deactivating user", slog.Any("userID", id))

	if err := srv.userRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "user deactivation failed")
		}
		srv.log(ctx).Error("Failed to deactivate user", slog.Any("userID", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to deactivate user")
	}
	srv.log(ctx).Debug("User deactivated", slog.Any("userID", id))

	return nil
}

// ChangePassword verifies the current password and replaces it with a new
// one. Deactivated accounts are treated as unauthenticated even when their
// token has not yet expired.
func (srv *userService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	srv.log(ctx).Info("Changing password", slog.Any("userID", input.UserID))

	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "password change failed")
		}

		return errors.Wrap(err, "failed to find user for password change")
	}

	if !user.IsActive() {
		srv.log(ctx).Warn("Password change on inactive account", slog.Any("userID", input.UserID))

		return errors.Wrap(domainerrors.ErrUnauthenticated, "account is inactive")
	}

	if !srv.hasher.Check(input.CurrentPassword, user.PasswordHash) {
		srv.log(ctx).Warn("Password change rejected", slog.Any("userID", input.UserID))

		return errors.Wrap(domainerrors.ErrInvalidCredentials, "current password mismatch")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash new password", slog.Any("error", err))

		return errors.Wrap(err, "failed to hash new password")
	}

	user.PasswordHash = hashedPassword
	if err := srv.userRepo.Update(ctx, user); err != nil {
		srv.log(ctx).Error("Failed to persist new password", slog.Any("userID", input.UserID), slog.Any("error", err))

		return errors.Wrap(err, "failed to persist new password")
	}
	srv.log(ctx).Debug("Password changed", slog.Any("userID", input.UserID))

	return nil
}

// --- Input validation helpers ---

func validateUsername(username string) error {
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return domainerrors.ErrValidationFailed.WrapMessage("username length must be between 3 and 50 characters")
	}
	if !usernamePattern.MatchString(username) {
		return domainerrors.ErrValidationFailed.WrapMessage("username may only contain lowercase letters, digits, underscores and hyphens")
	}

	return nil
}

func validateEmail(email string) error {
	if len(email) > emailMaxLength {
		return domainerrors.ErrValidationFailed.WrapMessage("email must not exceed 255 characters")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("email address is not valid")
	}

	return nil
}

func validateName(field, value string) error {
	if len(strings.TrimSpace(value)) > nameMaxLength {
		return domainerrors.ErrValidationFailed.WrapMessage(field + " must not exceed 100 characters")
	}

	return nil
}
