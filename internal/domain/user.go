package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("username already exists")
	// ErrEmailAlreadyExists is returned when trying to create a user with an email that is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("missing field")
)

// User is a registered author.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}
