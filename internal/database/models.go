package database

import (
	"fmt"
	"strings"
	"time"
)

// HeardStation is one row of the heard list: the most recent sighting of
// a source callsign on the stream, plus a running packet count.
type HeardStation struct {
	Callsign   string    `gorm:"primarykey;size:12;not null" json:"callsign"`
	SSID       string    `gorm:"size:4" json:"ssid"`
	Digipeated bool      `json:"digipeated"`
	Packets    uint32    `gorm:"not null" json:"packets"`
	LastPath   string    `gorm:"size:80" json:"last_path"`
	LastText   string    `gorm:"size:256" json:"last_text"`
	LastHeard  time.Time `gorm:"index" json:"last_heard"`
}

// TableName specifies the table name for GORM
func (HeardStation) TableName() string {
	return "heard_stations"
}

// String returns a formatted string representation
func (s HeardStation) String() string {
	call := s.Callsign
	if s.SSID != "" && s.SSID != "0" {
		call = fmt.Sprintf("%s-%s", s.Callsign, s.SSID)
	}
	return fmt.Sprintf("%s heard %d time(s), last %s",
		call, s.Packets, s.LastHeard.Format(time.RFC3339))
}

// IsValid checks if the record has required fields
func (s HeardStation) IsValid() bool {
	return s.Callsign != ""
}

// SanitizeFields cleans up the record before storage
func (s *HeardStation) SanitizeFields() {
	s.Callsign = strings.ToUpper(strings.TrimSpace(s.Callsign))
	s.SSID = strings.TrimSpace(s.SSID)
}
