package model

import "time"

// Check-in methods. QR is used when the attendee's badge was scanned,
// manual when staff looked the registration up by hand.
const (
	MethodQR     = "qr"
	MethodManual = "manual"
)

// Check-in attempt statuses. Every attempt is logged: a repeated scan
// inside the dedup window is stored as CheckinDuplicate rather than
// rejected, and CheckinError is reserved for rows written by recovery
// tooling. Only non-error rows count as presence.
const (
	CheckinSuccess   = "success"
	CheckinDuplicate = "duplicate"
	CheckinError     = "error"
)

// Checkin is one append-only presence-confirmation event.  SessionID is
// nil for a conference-level check-in; a non-nil value scopes the event
// to a single session.  Rows are never updated, only inserted, and are
// deleted solely through the QR-verified reversal path.
//
// Fields:
//  ID             – primary key identifier.
//  RegistrationID – registration this attempt belongs to.
//  SessionID      – session scope; nil means conference-level.
//  CheckinTime    – server-assigned attempt timestamp.
//  Method         – MethodQR or MethodManual.
//  Status         – CheckinSuccess, CheckinDuplicate or CheckinError.
type Checkin struct {
	ID             uint64    // checkins.id
	RegistrationID uint64    // checkins.registration_id
	SessionID      *uint64   // checkins.session_id (nullable)
	CheckinTime    time.Time // checkins.checkin_time
	Method         string    // checkins.method
	Status         string    // checkins.status
}
