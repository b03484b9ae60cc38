package models

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an admin account. Passwords are stored as bcrypt hashes only;
// legacy plaintext rows are rehashed on first successful login.
type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsActive     *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// caller cannot probe which admin emails exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// Login checks the credentials and mints an opaque session token backed by
// redis. The token value maps to the email; a per-email set tracks the live
// tokens so they can all be revoked at once.
func Login(ctx context.Context, input *LoginInput) (string, *User, error) {
	logger := config.GetLogger()

	if !utils.IsValidEmail(input.Email) {
		return "", nil, validationf("invalid email %q", input.Email)
	}

	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if user.IsActive != nil && !*user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := utils.ComparePassword(user.PasswordHash, input.Password); err != nil {
		// migration path: an old row may still hold the raw password
		if user.PasswordHash != input.Password {
			return "", nil, ErrInvalidCredentials
		}
		if hashed, hashErr := utils.HashPassword(input.Password); hashErr == nil {
			if saveErr := db.WithContext(ctx).Model(&user).Update("PasswordHash", string(hashed)).Error; saveErr != nil {
				config.LogError(logger, "user.go", "Login", "rehash legacy password", user.Email, saveErr)
			}
		}
	}

	token := uuid.New().String()
	lifespan := tokenLifespan()
	if err := config.SetRedisValue("Token:"+token, user.Email, lifespan); err != nil {
		return "", nil, err
	}
	if err := config.AddRedisSet("Tokens:"+user.Email, token); err != nil {
		config.LogError(logger, "user.go", "Login", "track session token", user.Email, err)
	}
	return token, &user, nil
}

// Logout revokes the presented token.
func Logout(ctx context.Context, token string) error {
	email, found, err := config.GetRedisValue("Token:" + token)
	if err != nil {
		return err
	}
	if found {
		if err := config.RemoveRedisSetMember("Tokens:"+email, token); err != nil {
			return err
		}
	}
	return config.RemoveRedisKey("Token:" + token)
}

// CreateUser registers an admin with a bcrypt-hashed password. Exposed for
// seeding; there is no public signup.
func CreateUser(ctx context.Context, email string, password string) (*User, error) {
	if !utils.IsValidEmail(email) {
		return nil, validationf("invalid email %q", email)
	}
	if len(password) < 8 {
		return nil, validationf("password must be at least 8 characters")
	}
	if err := utils.ValidateUnique[User](ctx, "email", email, 0); err != nil {
		return nil, errors.Join(ErrConflict, err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := User{
		Email:        email,
		PasswordHash: string(hashed),
		IsActive:     utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
