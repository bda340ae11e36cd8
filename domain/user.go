package domain

import "github.com/pkg/errors"

// ErrInvalidUser is wrapped by every validation failure of a User.
var ErrInvalidUser = errors.New("invalid user")

// User is a person known to the system. ID is zero until storage assigns one.
type User struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Age      int     `json:"age" db:"age"`
	Nickname *string `json:"nickname" db:"nickname"`
}

// NewUser builds a not-yet-persisted user, rejecting values that violate the user rules.
func NewUser(name string, age int, nickname *string) (User, error) {
	u := User{Name: name, Age: age, Nickname: nickname}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Validate checks that name is non-empty and age is non-negative.
func (u User) Validate() error {
	if u.Name == "" {
		return errors.Wrap(ErrInvalidUser, "name must not be empty")
	}
	if u.Age < 0 {
		return errors.Wrapf(ErrInvalidUser, "age must be non-negative, got %d", u.Age)
	}
	return nil
}

// Persisted reports whether storage has assigned an id.
func (u User) Persisted() bool {
	return u.ID != 0
}
