package models

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLen is the basic password policy.
const MinPasswordLen = 6

var (
	ErrUsernameRequired = errors.New("username required")
	ErrPasswordTooShort = fmt.Errorf("password too short (min %d)", MinPasswordLen)
	ErrUserExists       = errors.New("user already exists")
)

// CheckCredentials trims username and applies the password policy.
func CheckCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUsernameRequired
	}
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	return username, nil
}

// EnsureRoles creates the administrator and user roles when missing.
func EnsureRoles(db *gorm.DB) error {
	for _, r := range []Role{
		{Name: RoleAdministrator, Description: "full access"},
		{Name: RoleUser, Description: "regular user"},
	} {
		if err := db.Where("name = ?", r.Name).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", r.Name, err)
		}
	}
	return nil
}

// CreateUser stores a new user with the named role. loc must already be a
// resolved locale id or empty.
func CreateUser(db *gorm.DB, username, password, role, loc string) (User, error) {
	username, err := CheckCredentials(username, password)
	if err != nil {
		return User{}, err
	}
	// pre-check existing (optimistic)
	var existing User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return User{}, ErrUserExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	r := Role{Name: role}
	if err := db.Where("name = ?", role).FirstOrCreate(&r).Error; err != nil {
		return User{}, fmt.Errorf("failed to ensure %s role: %w", role, err)
	}
	rid := r.ID
	user := User{Username: username, HashedPassword: hashed, RoleID: &rid, Locale: loc}
	if err := db.Create(&user).Error; err != nil {
		if IsUniqueConstraintError(err) { // race condition after initial check
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return user, nil
}

// SetPassword replaces the password of username.
func SetPassword(db *gorm.DB, username, password string) error {
	username, err := CheckCredentials(username, password)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res := db.Model(&User{}).Where("username = ?", username).Update("hashed_password", hashed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %q not found", username)
	}
	return nil
}

// UserID resolves username to its id.
func UserID(db *gorm.DB, username string) (uint, error) {
	var u User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("user %q not found", username)
		}
		return 0, err
	}
	return u.ID, nil
}

func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
