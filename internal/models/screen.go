package models

import "time"

// Screen is a registered display device. Collages can be rendered to
// its native resolution instead of the default canvas sizes.
type Screen struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}
