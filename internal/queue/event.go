// Package queue publishes and consumes check-in events over RabbitMQ.
// The consumer side appends records to logs/checkin.log.
package queue

// CheckinRecordedEvent is published after a check-in attempt commits.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database. Duplicate
// attempts are published too; consumers filter on Status when they only
// care about genuinely new presences.
type CheckinRecordedEvent struct {
	CheckinID      uint64  `json:"checkin_id"`
	RegistrationID uint64  `json:"registration_id"`
	ConferenceID   uint64  `json:"conference_id"`
	SessionID      *uint64 `json:"session_id,omitempty"`
	AttendeeID     uint64  `json:"attendee_id"`
	AttendeeName   string  `json:"attendee_name"`
	Method         string  `json:"method"`
	Status         string  `json:"status"`
	CheckinTime    string  `json:"checkin_time"`
}
