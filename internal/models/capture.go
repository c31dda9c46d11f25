package models

import "time"

// Capture records one stored photograph belonging to a session.
type Capture struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	CameraID  string    `json:"camera_id"`
	Session   string    `json:"session"`
	FilePath  string    `json:"file_path"` // relative to the storage root
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}
