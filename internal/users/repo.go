package users

import (
	"time"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// registrationLockKey is the postgres advisory lock serialising registrations.
const registrationLockKey int64 = 0x636174616c6f67

// Repository exposes user persistence on caller-supplied handles.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(tx *gorm.DB, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := repo.Add(tx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername retrieves the user with the given username, or nil when absent.
func (r *Repository) FindByUsername(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := tx.Where("username = ?", username).First(&user).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOr404 loads a user by id or fails with NotFound.
func (r *Repository) FindOr404(tx *gorm.DB, id uint) (*models.User, error) {
	return repo.GetOr404[models.User](tx, id, "User")
}

// Taken reports whether the username or email is already registered.
func (r *Repository) Taken(tx *gorm.DB, username, email string) (bool, error) {
	var n int64
	if err := tx.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// LockRegistrations blocks concurrent registrations until tx ends, so the
// first-user check and the insert see a consistent user count. On postgres this
// is a transaction-scoped advisory lock; sqlite already allows a single writer.
func (r *Repository) LockRegistrations(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", registrationLockKey).Error
}

// Count returns the number of registered users.
func (r *Repository) Count(tx *gorm.DB) (int64, error) {
	var n int64
	if err := tx.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(tx *gorm.DB, id uint, at time.Time) error {
	return tx.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Delete removes the user row.
func (r *Repository) Delete(tx *gorm.DB, user *models.User) error {
	return repo.Delete(tx, user)
}
