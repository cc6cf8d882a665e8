package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{45, 20, 3},
		{0, 20, 0},
		{40, 20, 2},
		{1, 20, 1},
		{10, 0, 0},
		{10, -1, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.total, c.size), "total=%d size=%d", c.total, c.size)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]string{"a", "b"}, 45, 0, 20)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext())

	last := NewPage([]string{"x"}, 45, 3, 20)
	assert.False(t, last.HasNext())

	empty := NewPage[string](nil, 0, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext())
}

func TestNewPage_ClampsOversizePage(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 3, 1, 2)
	assert.Equal(t, []int{1, 2}, p.Items)
	assert.Equal(t, 2, p.TotalPages)

	// без pageSize ограничивать нечем
	p = NewPage([]int{1, 2, 3}, 3, 1, 0)
	assert.Len(t, p.Items, 3)
}

func TestAdminUser_AsUser(t *testing.T) {
	u := AdminUser{ID: "a1", Email: "root@erp.io", Name: "Root", Role: "SUPER_ADMIN"}.AsUser()
	assert.Equal(t, "", u.TenantID)
	assert.Equal(t, PlatformAdminTenant, u.TenantName)
	assert.Equal(t, AdminTier, u.Tier)
	assert.Empty(t, u.Permissions)
	assert.NotNil(t, u.Permissions)
}

func TestLoginResult_Principal(t *testing.T) {
	_, ok := LoginResult{}.Principal()
	assert.False(t, ok)

	u, ok := LoginResult{User: &User{ID: "u1", TenantName: "Acme"}}.Principal()
	assert.True(t, ok)
	assert.Equal(t, "Acme", u.TenantName)

	u, ok = LoginResult{Admin: &AdminUser{ID: "a1"}, User: &User{ID: "u1"}}.Principal()
	assert.True(t, ok)
	assert.Equal(t, "a1", u.ID)
}

func TestTier_Name(t *testing.T) {
	assert.Equal(t, "Basic", TierL1.Name())
	assert.Equal(t, "Pro", TierL2.Name())
	assert.Equal(t, "Enterprise", TierL3.Name())
	assert.Equal(t, "L9", Tier("L9").Name())
}
