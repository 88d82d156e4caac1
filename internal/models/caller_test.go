package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contactbook/internal/models"
)

func TestCaller_IsAdminFailsClosed(t *testing.T) {
	var nilCaller *models.Caller
	assert.False(t, nilCaller.IsAdmin())
	assert.False(t, nilCaller.SeesAll())
	assert.False(t, (&models.Caller{}).IsAdmin())
	assert.False(t, (&models.Caller{Role: models.RoleAdmin}).IsAdmin(), "anonymous caller with a role")
	assert.False(t, (&models.Caller{UserID: 1, Role: models.RoleRegular}).IsAdmin())
	assert.True(t, (&models.Caller{UserID: 1, Role: models.RoleAdmin}).IsAdmin())
}

func TestCaller_SeesAll(t *testing.T) {
	assert.True(t, (&models.Caller{UserID: 1, Role: models.RoleAdmin}).SeesAll())
	assert.True(t, (&models.Caller{UserID: 2, Unscoped: true}).SeesAll())
	assert.False(t, (&models.Caller{Unscoped: true}).SeesAll())
	assert.False(t, (&models.Caller{UserID: 2}).SeesAll())
}

func TestCallerFor(t *testing.T) {
	u := &models.User{ID: 3, Username: "bob"}

	c := models.CallerFor(u, nil)
	assert.Equal(t, models.RoleRegular, c.Role)

	c = models.CallerFor(u, &models.UserProfile{Role: models.RoleAdmin})
	assert.Equal(t, uint(3), c.UserID)
	assert.Equal(t, "bob", c.Username)
	assert.True(t, c.IsAdmin())
}
