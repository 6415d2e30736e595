package users

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyUsername = errors.New("username is empty")
)

// User is a platform login known to the mock platform.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	Blocked      bool      `json:"blocked,omitempty"`
	DateJoined   time.Time `json:"date_joined,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`
}

// New creates a user with a bcrypt hash of password.
func New(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		Username:     username,
		PasswordHash: hash,
		DateJoined:   time.Now(),
	}, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword reports whether password matches the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
