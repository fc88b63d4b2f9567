// Package auth holds user accounts, the session cookie and the gate that
// keeps the dashboard behind a login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"prolific/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

const defaultPasswordCost = 14

type Accounts struct {
	db   *gorm.DB
	cost int
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db, cost: defaultPasswordCost}
}

// WithCost returns a copy hashing with the given bcrypt cost.
func (a *Accounts) WithCost(cost int) *Accounts {
	return &Accounts{db: a.db, cost: cost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Accounts) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := hashPassword(password, a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (a *Accounts) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (a *Accounts) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
