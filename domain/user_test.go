package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("John Doe", 30, nil)
	require.NoError(t, err)
	assert.Zero(t, u.ID)
	assert.False(t, u.Persisted())
	assert.Equal(t, "John Doe", u.Name)
	assert.Equal(t, 30, u.Age)
	assert.Nil(t, u.Nickname)
}

func TestNewUserWithNickname(t *testing.T) {
	nick := "Janey"
	u, err := NewUser("Jane Smith", 25, &nick)
	require.NoError(t, err)
	require.NotNil(t, u.Nickname)
	assert.Equal(t, "Janey", *u.Nickname)
}

func TestNewUserRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		user string
		age  int
	}{
		{name: "empty name", user: "", age: 10},
		{name: "negative age", user: "Ann", age: -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.user, tc.age, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidUser))
		})
	}
}

func TestValidateAcceptsZeroAge(t *testing.T) {
	assert.NoError(t, User{ID: 4, Name: "baby", Age: 0}.Validate())
}
