package domain

import "time"

// Guest is the identity behind one submission session.
type Guest struct {
	ID                string
	Email             string
	PortraitImagePath *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasPortrait reports whether a portrait has been stored for the guest.
func (g *Guest) HasPortrait() bool {
	return g != nil && g.PortraitImagePath != nil && *g.PortraitImagePath != ""
}
