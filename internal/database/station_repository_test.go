package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprsgo/aprsis/aprs"
)

func testRepository(t *testing.T) *StationRepository {
	t.Helper()

	db, err := NewDB(Config{Path: filepath.Join(t.TempDir(), "test.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStationRepository(db.GetDB())
}

func TestStationRepository_Record(t *testing.T) {
	repo := testRepository(t)

	frame, err := aprs.ParseFrame([]byte("W2GMD-9>APRS,WIDE1-1:first"))
	require.NoError(t, err)
	require.NoError(t, repo.Record(frame))

	station, err := repo.GetByCallsign("W2GMD")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), station.Packets)
	assert.Equal(t, "9", station.SSID)
	assert.Equal(t, "WIDE1-1", station.LastPath)
	assert.Equal(t, "first", station.LastText)

	// A second frame from the same station bumps the count and replaces
	// the last-heard fields.
	frame, err = aprs.ParseFrame([]byte("W2GMD-9>APRS:second"))
	require.NoError(t, err)
	require.NoError(t, repo.Record(frame))

	station, err = repo.GetByCallsign("W2GMD")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), station.Packets)
	assert.Equal(t, "", station.LastPath)
	assert.Equal(t, "second", station.LastText)
}

func TestStationRepository_RecordNoSource(t *testing.T) {
	repo := testRepository(t)

	frame, err := aprs.ParseFrame([]byte("garbage with no header"))
	require.NoError(t, err)
	assert.Error(t, repo.Record(frame))
}

func TestStationRepository_Count(t *testing.T) {
	repo := testRepository(t)

	for _, line := range []string{"A1AA>APRS:x", "B2BB>APRS:y", "A1AA>APRS:z"} {
		frame, err := aprs.ParseFrame([]byte(line))
		require.NoError(t, err)
		require.NoError(t, repo.Record(frame))
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStationRepository_Recent(t *testing.T) {
	repo := testRepository(t)

	for _, line := range []string{"A1AA>APRS:x", "B2BB>APRS:y"} {
		frame, err := aprs.ParseFrame([]byte(line))
		require.NoError(t, err)
		require.NoError(t, repo.Record(frame))
	}

	stations, err := repo.Recent(10)
	require.NoError(t, err)
	assert.Len(t, stations, 2)
}
