package model

import "time"

// Registration status values. The check-in engine only ever moves a
// registration between StatusRegistered and StatusCheckedIn; the
// cancelled and no-show states are set by organizer tooling outside
// this service and are never touched here.
const (
	StatusRegistered = "registered"
	StatusCheckedIn  = "checked-in"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

// Registration records an attendee's enrollment for a conference.  The
// qr_code column carries the unique token minted at creation time; it
// doubles as the scan payload at the door and as proof of possession
// when a check-in is reversed.
//
// Fields:
//  ID               – primary key identifier.
//  AttendeeID       – user who registered.
//  ConferenceID     – conference being attended.
//  RegistrationDate – server-assigned creation timestamp.
//  Status           – one of the Status* constants above.
//  QRCode           – globally unique QR token (REG-<conf>-<att>-<rand10>).
type Registration struct {
	ID               uint64    // registrations.id
	AttendeeID       uint64    // registrations.attendee_id
	ConferenceID     uint64    // registrations.conference_id
	RegistrationDate time.Time // registrations.registration_date
	Status           string    // registrations.status
	QRCode           string    // registrations.qr_code (unique)
}
