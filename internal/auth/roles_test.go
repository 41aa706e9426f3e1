package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

func TestIsStaff(t *testing.T) {
	settings := domain.Settings{AllowedRoles: []string{"staff", "mods"}}

	cases := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"no roles", nil, false},
		{"disjoint roles", []string{"member", "vip"}, false},
		{"one matching role", []string{"member", "mods"}, true},
		{"exact role", []string{"staff"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsStaff(domain.Actor{ID: "u", RoleIDs: tc.roles}, settings))
		})
	}

	assert.False(t, IsStaff(domain.Actor{RoleIDs: []string{"staff"}}, domain.Settings{}))
}

func TestCanRate(t *testing.T) {
	actor := domain.Actor{RoleIDs: []string{"customer"}}

	assert.True(t, CanRate(actor, domain.Settings{RatingAllowedRoleID: "customer"}))
	assert.False(t, CanRate(actor, domain.Settings{RatingAllowedRoleID: "other"}))
	assert.False(t, CanRate(actor, domain.Settings{}))
	assert.False(t, CanRate(domain.Actor{RoleIDs: []string{""}}, domain.Settings{}))
}

func TestCanConfigure(t *testing.T) {
	assert.True(t, CanConfigure(domain.Actor{CanManageGuild: true}))
	assert.False(t, CanConfigure(domain.Actor{}))
}
