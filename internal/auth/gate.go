// Package auth holds the authorization gate consulted before every
// mutating entry point. The gate answers a single question — may this
// user perform this action — and handlers translate a false answer into
// 403 with zero state change.
package auth

import "github.com/iliyamo/conference-checkin/internal/model"

// Permission names used by the handlers.
const (
	PermRegistrationCreate = "registrations:create"
	PermCheckinRecord      = "checkins:record"
	PermCheckinDelete      = "checkins:delete"
	PermCheckinList        = "checkins:list"
)

// Gate evaluates role-based permissions. The table is static; it is a
// value type so handlers can embed it without wiring.
type Gate struct {
	table map[string]map[string]bool
}

// NewGate returns the gate with the platform's permission table.
// Attendees may only create registrations (for themselves, which the
// handler enforces); desk operations belong to staff and organizers.
func NewGate() *Gate {
	return &Gate{table: map[string]map[string]bool{
		model.RoleOrganizer: {
			PermRegistrationCreate: true,
			PermCheckinRecord:      true,
			PermCheckinDelete:      true,
			PermCheckinList:        true,
		},
		model.RoleStaff: {
			PermRegistrationCreate: true,
			PermCheckinRecord:      true,
			PermCheckinDelete:      true,
			PermCheckinList:        true,
		},
		model.RoleAttendee: {
			PermRegistrationCreate: true,
		},
	}}
}

// Authorize reports whether a user with the given role holds the
// permission. The conferenceID parameter is accepted for call-site
// symmetry with conference-scoped policies; the current table is
// role-global and ignores it.
func (g *Gate) Authorize(userID uint64, role, permission string, conferenceID uint64) bool {
	_ = userID
	_ = conferenceID
	perms, ok := g.table[role]
	if !ok {
		return false
	}
	return perms[permission]
}
