// Package session maps capture timestamps to stable session folders.
//
// Camera devices have no coordination channel between them; the only
// thing they share is the submission time and a group ID. The resolver
// is the rendezvous point: every capture arriving within the session
// window lands in the same folder.
package session

import (
	"fmt"
	"sync"
	"time"

	"photobooth-server/internal/models"
)

// Resolver owns the groupID -> session table. It is safe for
// concurrent use; the read-check-create-write cycle for a group runs
// under a single lock so two near-simultaneous first captures cannot
// mint two divergent sessions.
type Resolver struct {
	mu       sync.Mutex
	timeout  time.Duration
	loc      *time.Location
	sessions map[string]models.Session
}

// NewResolver creates a resolver with the given session window.
// utcOffsetHours fixes the wall clock used in folder names for
// region-locked deployments.
func NewResolver(timeout time.Duration, utcOffsetHours int) *Resolver {
	loc := time.UTC
	if utcOffsetHours != 0 {
		loc = time.FixedZone(fmt.Sprintf("UTC%+d", utcOffsetHours), utcOffsetHours*3600)
	}
	return &Resolver{
		timeout:  timeout,
		loc:      loc,
		sessions: make(map[string]models.Session),
	}
}

// Resolve returns the current session for groupID, creating a fresh
// one when none exists or the existing one has outlived the window.
// Sessions live only in process memory; a restart mid-shoot splits the
// shoot into two folders, which is an accepted tradeoff.
func (r *Resolver) Resolve(groupID string, now time.Time) models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[groupID]; ok && s.Age(now) <= r.timeout {
		return s
	}

	s := models.Session{
		GroupID:    groupID,
		FolderName: folderName(groupID, now.In(r.loc)),
		CreatedAt:  now,
	}
	r.sessions[groupID] = s
	return s
}

// folderName encodes local wall-clock time plus the group ID:
// HH-MM-SS_DD-MM-YYYY_<groupId>. Truncation to whole seconds gives
// independent devices a chance to compute the identical name.
func folderName(groupID string, local time.Time) string {
	return local.Format("15-04-05_02-01-2006") + "_" + groupID
}
