// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"identity/config"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/infra/persistence/model"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db          *gorm.DB
	maxPageSize int
}

// NewUserRepository is the constructor for userRepository.
// The pagination limit comes from the immutable process configuration.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB, cfg *config.Config) repository.UserRepository {
	return &userRepository{
		db:          db,
		maxPageSize: cfg.Pagination.MaxPageSize,
	}
}

// Create persists a new account. Username and email are pre-checked across
// all accounts regardless of status, but the unique indexes remain the
// authority: a concurrent duplicate insert slips past the pre-check and is
// translated from the constraint violation instead.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("username = ?", user.Username).
		Count(&count).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to check username uniqueness")
	}
	if count > 0 {
		return domainerrors.ErrUsernameTaken.WrapMessage("username already exists")
	}

	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("email = ?", user.Email).
		Count(&count).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to check email uniqueness")
	}
	if count > 0 {
		return domainerrors.ErrEmailTaken.WrapMessage("email already exists")
	}

	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if translated, ok := translateUniqueViolation(err); ok {
			return translated
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Reflect the generated ID and timestamps back onto the entity.
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindByID retrieves a single account by its unique ID, regardless of status.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByUsername retrieves a single account by its username, regardless of status.
// The service layer enforces active-only login.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.findOne(ctx, "username = ?", username)
}

// FindByEmail retrieves a single account by its email address, regardless of status.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&userM).Error; err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// List returns one page of accounts ordered by id ascending plus the total
// count of the matching set. Pages are 1-indexed; an oversized page size is
// clamped to the configured maximum rather than rejected.
func (repo *userRepository) List(ctx context.Context, filter repository.ListFilter) ([]*entity.User, int64, error) {
	if filter.Page < 1 {
		return nil, 0, domainerrors.ErrValidationFailed.WrapMessage("page must be greater than 0")
	}
	if filter.PageSize < 1 {
		return nil, 0, domainerrors.ErrValidationFailed.WrapMessage("page size must be greater than 0")
	}

	pageSize := filter.PageSize
	if pageSize > repo.maxPageSize {
		pageSize = repo.maxPageSize
	}

	query := repo.db.WithContext(ctx).Model(&model.UserModel{})
	if filter.ActiveOnly {
		query = query.Where("status = ?", entity.AccountActive.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count users")
	}

	var userModels []*model.UserModel
	if err := query.
		Order("id").
		Offset((filter.Page - 1) * pageSize).
		Limit(pageSize).
		Find(&userModels).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userModels))
	for _, userM := range userModels {
		users = append(users, toUserDomain(userM))
	}

	return users, total, nil
}

// Update persists the mutated fields of an existing account and refreshes its UpdatedAt.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"username":      userM.Username,
			"email":         userM.Email,
			"password_hash": userM.PasswordHash,
			"first_name":    userM.FirstName,
			"last_name":     userM.LastName,
			"status":        userM.Status,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		if translated, ok := translateUniqueViolation(result.Error); ok {
			return translated
		}
		if isNotNullConstraintViolation(result.Error) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	// Reload to reflect the store-assigned UpdatedAt on the entity.
	var fresh model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", user.ID).First(&fresh).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to reload updated user")
	}
	user.UpdatedAt = fresh.UpdatedAt
	user.CreatedAt = fresh.CreatedAt

	return nil
}

// SoftDelete marks an account inactive. Deleting an already-inactive account
// is a silent success that leaves the row untouched; the only failure for a
// well-formed id is absence.
func (repo *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ? AND status <> ?", id, entity.AccountInactive.String()).
		Updates(map[string]any{
			"status":     entity.AccountInactive.String(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to soft delete user")
	}
	if result.RowsAffected == 0 {
		// Either the id does not exist or the account was already inactive.
		var count int64
		if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to soft delete user")
		}
		if count == 0 {
			return repository.ErrUserNotFound
		}
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Status:       entity.AccountStatus(data.Status),
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Status:       data.Status.String(),
	}
}
