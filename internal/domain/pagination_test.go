package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, PerPage: 500}.Normalize()
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 200, p.Offset())

	p = PageRequest{Page: math.MaxInt, PerPage: 10}.Normalize()
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*10, p.Offset())

	p = PageRequest{Page: MaxPage, PerPage: MaxPerPage}.Normalize()
	assert.Positive(t, p.Offset())
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsPrivileged())
	assert.True(t, RoleModerator.IsPrivileged())
	assert.False(t, RoleUser.IsPrivileged())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("ROOT").Valid())
}
