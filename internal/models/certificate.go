package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Certificate records where the PDF artifact for a passing attempt lives.
// FilePath holds either a local filesystem path or a public URL; use
// Location to branch on which one it is.
type Certificate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AttemptID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"attempt_id"`
	FilePath  string    `gorm:"size:512;not null" json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LocationKind int

const (
	LocationLocal LocationKind = iota
	LocationRemote
)

// Location is a tagged view of a certificate's durable location, so callers
// branch on Kind instead of re-checking URL prefixes at every use site.
type Location struct {
	Kind  LocationKind
	Value string
}

func ParseLocation(s string) Location {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return Location{Kind: LocationRemote, Value: s}
	}
	return Location{Kind: LocationLocal, Value: s}
}

func (c *Certificate) Location() Location {
	return ParseLocation(c.FilePath)
}
