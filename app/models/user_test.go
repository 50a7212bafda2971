package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("auth0|abc", "Asha Rao", "asha@example.org")
	require.NoError(t, err)

	assert.Equal(t, ROLE_PENDING, u.Role)
	assert.False(t, u.HasPaid)
	assert.False(t, u.AutoPayEnabled)
}

func TestNewUser_InvalidEmail(t *testing.T) {
	_, err := NewUser("auth0|abc", "Asha Rao", "not-an-email")
	assert.Error(t, err)
}

func TestUserRoleHelpers(t *testing.T) {
	assert.True(t, (&User{Role: ROLE_ADMIN}).IsAdmin())
	assert.False(t, (&User{Role: ROLE_INDIVIDUAL}).IsAdmin())

	assert.True(t, (&User{Role: ROLE_INDIVIDUAL}).IsMember())
	assert.True(t, (&User{Role: ROLE_ASSOCIATE}).IsMember())
	assert.False(t, (&User{Role: ROLE_PENDING}).IsMember())
	assert.False(t, (&User{Role: ROLE_ADMIN}).IsMember())
}

func TestMembershipCurrent(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 6, 0)
	past := now.AddDate(0, -6, 0)

	// Associate members never pay, so they are always current.
	assert.True(t, (&User{Role: ROLE_ASSOCIATE}).MembershipCurrent(now))

	paid := &User{Role: ROLE_INDIVIDUAL, HasPaid: true, MembershipEnd: &future}
	assert.True(t, paid.MembershipCurrent(now))

	lapsed := &User{Role: ROLE_INDIVIDUAL, HasPaid: true, MembershipEnd: &past}
	assert.False(t, lapsed.MembershipCurrent(now))

	unpaid := &User{Role: ROLE_INDIVIDUAL, HasPaid: false, MembershipEnd: &future}
	assert.False(t, unpaid.MembershipCurrent(now))

	noEnd := &User{Role: ROLE_INDIVIDUAL, HasPaid: true}
	assert.False(t, noEnd.MembershipCurrent(now))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(ROLE_ADMIN))
	assert.True(t, ValidRole(ROLE_INDIVIDUAL))
	assert.True(t, ValidRole(ROLE_ASSOCIATE))
	assert.True(t, ValidRole(ROLE_PENDING))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
