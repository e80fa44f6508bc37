package users

import (
	"gorm.io/gorm"

	"plinth/app/models"
)

// UserLookup is the module's private read model: minimal account projections
// used internally without exposing the full service. It stays private so
// other modules go through the public users.service instead.
type UserLookup struct {
	db *gorm.DB
}

func NewUserLookup(db *gorm.DB) *UserLookup {
	return &UserLookup{db: db}
}

// Exists reports whether an account with the given id exists.
func (l *UserLookup) Exists(id uint) (bool, error) {
	var count int64
	if err := l.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByEmail returns the slim projection for an email address.
func (l *UserLookup) FindByEmail(email string) (*models.UserModelResponse, error) {
	var user models.User
	if err := l.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return user.ToModelResponse(), nil
}
