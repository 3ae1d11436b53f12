// Package service implements the registration and check-in engine. All
// mutating operations run inside a single transaction supplied by the
// injected TxManager: they either fully commit or fully roll back.
package service

import "errors"

// Tagged error kinds returned by the services. Callers branch on these
// with errors.Is instead of matching message text; anything else coming
// out of a service is an unexpected persistence failure propagated
// unchanged.
var (
	// ErrRegistrationNotFound means the referenced registration does
	// not exist. Nothing has been written when it is returned.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrCheckinNotFound means the referenced check-in row is absent.
	ErrCheckinNotFound = errors.New("check-in not found")

	// ErrConferenceNotFound means the target conference is absent.
	ErrConferenceNotFound = errors.New("conference not found")

	// ErrSessionNotFound means the requested session scope is absent.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAttendeeNotFound means the attendee user is absent.
	ErrAttendeeNotFound = errors.New("attendee not found")

	// ErrQRCodeExhausted means registration creation burned through its
	// whole token retry budget on uniqueness conflicts. With a
	// ten-character random suffix this indicates something is badly
	// wrong with the randomness source or the table, so it is treated
	// as fatal rather than retried further.
	ErrQRCodeExhausted = errors.New("qr code generation exhausted retry budget")
)
