package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aprsgo/aprsis/aprs"
)

// StationRepository provides database operations for heard stations
type StationRepository struct {
	db *gorm.DB
}

// NewStationRepository creates a new repository instance
func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Record notes one received frame: the source station's row is created
// or updated with a bumped packet count and the frame's path and text.
func (r *StationRepository) Record(frame aprs.Frame) error {
	if frame.Source.Base == "" {
		return fmt.Errorf("frame has no source callsign")
	}

	path := make([]string, 0, len(frame.Path))
	for _, hop := range frame.Path {
		path = append(path, hop.String())
	}

	station := HeardStation{
		Callsign:   frame.Source.Base,
		SSID:       frame.Source.SSID,
		Digipeated: frame.Source.Digipeated,
		Packets:    1,
		LastPath:   strings.Join(path, ","),
		LastText:   frame.Text,
		LastHeard:  time.Now(),
	}
	station.SanitizeFields()

	var existing HeardStation
	err := r.db.Where("callsign = ?", station.Callsign).First(&existing).Error
	switch {
	case err == nil:
		station.Packets = existing.Packets + 1
	case err != gorm.ErrRecordNotFound:
		return err
	}

	return r.db.Save(&station).Error
}

// GetByCallsign finds a station by its base callsign
func (r *StationRepository) GetByCallsign(callsign string) (*HeardStation, error) {
	var station HeardStation
	err := r.db.Where("callsign = ?", callsign).First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// Recent returns the most recently heard stations, newest first
func (r *StationRepository) Recent(limit int) ([]HeardStation, error) {
	var stations []HeardStation
	err := r.db.Order("last_heard DESC").Limit(limit).Find(&stations).Error
	if err != nil {
		return nil, err
	}
	return stations, nil
}

// Count returns the total number of stations heard
func (r *StationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&HeardStation{}).Count(&count).Error
	return count, err
}
