package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/conference-checkin/internal/model"
)

func TestGateTable(t *testing.T) {
	g := NewGate()

	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{model.RoleOrganizer, PermRegistrationCreate, true},
		{model.RoleOrganizer, PermCheckinRecord, true},
		{model.RoleOrganizer, PermCheckinDelete, true},
		{model.RoleOrganizer, PermCheckinList, true},
		{model.RoleStaff, PermCheckinRecord, true},
		{model.RoleStaff, PermCheckinDelete, true},
		{model.RoleAttendee, PermRegistrationCreate, true},
		{model.RoleAttendee, PermCheckinRecord, false},
		{model.RoleAttendee, PermCheckinDelete, false},
		{model.RoleAttendee, PermCheckinList, false},
		{"", PermCheckinRecord, false},
		{"VISITOR", PermRegistrationCreate, false},
	}
	for _, tc := range cases {
		got := g.Authorize(1, tc.role, tc.permission, 3)
		assert.Equal(t, tc.want, got, "role=%q perm=%q", tc.role, tc.permission)
	}
}

func TestGateUnknownPermission(t *testing.T) {
	g := NewGate()
	assert.False(t, g.Authorize(1, model.RoleOrganizer, "conferences:delete", 0))
}
