package sqlstore

import (
	"context"
	"errors"
	"strings"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"gorm.io/gorm"
)

const userNotFound = "Usuario no encontrado"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func usersToDomain(models []UserModel) []core.User {
	users := make([]core.User, len(models))
	for i := range models {
		users[i] = *models[i].ToDomain()
	}
	return users
}

// GetAll retrieves every user, newest first
func (r *userRepository) GetAll(ctx context.Context) ([]core.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, storeError(err, "Error al obtener la lista de usuarios", "list users")
	}
	return usersToDomain(models), nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*core.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(userNotFound)
		}
		return nil, storeError(err, "Error al obtener el usuario", "get user")
	}
	return model.ToDomain(), nil
}

// GetByUsername retrieves a user by exact username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(userNotFound)
		}
		return nil, storeError(err, "Error en el servidor", "get user by username")
	}
	return model.ToDomain(), nil
}

// Search matches term as a case-insensitive substring of username or email
func (r *userRepository) Search(ctx context.Context, term string) ([]core.User, error) {
	pattern := "%" + strings.ToLower(likeEscaper.Replace(term)) + "%"

	var models []UserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, storeError(err, "Error al buscar usuarios", "search users")
	}
	return usersToDomain(models), nil
}

// FindConflicts reports whether username or email belong to an account other than excludeID.
// Empty values are not checked.
func (r *userRepository) FindConflicts(ctx context.Context, username, email string, excludeID int64) (bool, bool, error) {
	taken := func(column, value string) (bool, error) {
		if value == "" {
			return false, nil
		}
		var count int64
		err := r.db.WithContext(ctx).Model(&UserModel{}).
			Where(column+" = ? AND id <> ?", value, excludeID).
			Count(&count).Error
		return count > 0, err
	}

	usernameTaken, err := taken("username", username)
	if err != nil {
		return false, false, storeError(err, "Error en el servidor", "check username")
	}
	emailTaken, err := taken("email", email)
	if err != nil {
		return false, false, storeError(err, "Error en el servidor", "check email")
	}
	return usernameTaken, emailTaken, nil
}

// Create inserts a user and sets its generated ID
func (r *userRepository) Create(ctx context.Context, user *core.User) error {
	model := UserModel{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if user.Email != "" {
		email := user.Email
		model.Email = &email
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return storeError(err, "Error al crear el usuario", "create user")
	}
	user.ID = model.ID
	return nil
}

// Update applies the non-nil fields of update
func (r *userRepository) Update(ctx context.Context, id int64, update core.UserUpdate) error {
	updates := map[string]interface{}{}
	if update.Username != nil {
		updates["username"] = *update.Username
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if len(updates) == 0 {
		return core.NewValidationError("", "Debe proporcionar al menos un campo para actualizar (usuario o mail)")
	}

	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return core.NewConflictError("El usuario o email ya está en uso")
		}
		return storeError(result.Error, "Error al actualizar el usuario", "update user")
	}
	if result.RowsAffected == 0 {
		return core.NewNotFoundError(userNotFound)
	}
	return nil
}

// UpdatePassword stores a new password digest
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if result.Error != nil {
		return storeError(result.Error, "Error al cambiar la contraseña", "update password")
	}
	if result.RowsAffected == 0 {
		return core.NewNotFoundError(userNotFound)
	}
	return nil
}

// Delete removes a user
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if result.Error != nil {
		return storeError(result.Error, "Error al eliminar el usuario", "delete user")
	}
	if result.RowsAffected == 0 {
		return core.NewNotFoundError(userNotFound)
	}
	return nil
}

// Extremes retrieves the newest and oldest accounts
func (r *userRepository) Extremes(ctx context.Context) (*core.User, *core.User, error) {
	pick := func(order string) (*core.User, error) {
		var models []UserModel
		if err := r.db.WithContext(ctx).Order(order).Limit(1).Find(&models).Error; err != nil {
			return nil, err
		}
		if len(models) == 0 {
			return nil, nil
		}
		return models[0].ToDomain(), nil
	}

	newest, err := pick("created_at DESC, id DESC")
	if err != nil {
		return nil, nil, storeError(err, "Error al obtener estadísticas", "get newest user")
	}
	oldest, err := pick("created_at ASC, id ASC")
	if err != nil {
		return nil, nil, storeError(err, "Error al obtener estadísticas", "get oldest user")
	}
	return newest, oldest, nil
}
