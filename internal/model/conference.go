package model

import "time"

// Conference is a top-level event that attendees register for.  Full
// conference management lives in the organizer tooling; this service
// only reads conferences to validate registrations and check-ins.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – display name of the conference.
//  StartsAt – opening timestamp.
//  EndsAt   – closing timestamp.
type Conference struct {
	ID       uint64    // conferences.id
	Name     string    // conferences.name
	StartsAt time.Time // conferences.starts_at
	EndsAt   time.Time // conferences.ends_at
}

// Session is a single talk or workshop inside a conference.  Check-ins
// may be scoped to a session; the session scope is independent of the
// conference-level scope.
//
// Fields:
//  ID           – primary key identifier.
//  ConferenceID – parent conference.
//  Title        – session title.
//  StartsAt     – session start timestamp.
//  EndsAt       – session end timestamp.
type Session struct {
	ID           uint64    // sessions.id
	ConferenceID uint64    // sessions.conference_id
	Title        string    // sessions.title
	StartsAt     time.Time // sessions.starts_at
	EndsAt       time.Time // sessions.ends_at
}
