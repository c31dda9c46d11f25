package models

import "time"

// Session groups captures taken within one time window by devices
// sharing a group ID. FolderName is the on-disk directory the
// captures land in.
type Session struct {
	GroupID    string    `json:"group_id"`
	FolderName string    `json:"folder_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Age returns how long ago the session was created.
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}
