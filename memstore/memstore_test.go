package memstore

import (
	"errors"
	"strings"
	"testing"

	"github.com/gbl08ma/firedispatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
stations:
  - id: alpha
    name: Alpha
    callSign: ALPHA-1
    location: [38.71, -9.14]
    departments:
      - id: alpha-rescue
        name: Rescue
        units:
          - id: rescue-1
            name: Rescue 1
      - id: alpha-admin
        name: Administration
  - id: bravo
    name: Bravo
    callSign: BRAVO-2
    commission: out_of_commission
alerts:
  - id: a1
    type: fire
    name: Kitchen fire
    priority: high
    station: alpha
    status: active
    reportedAt: 2024-03-01T12:00:00Z
  - id: a2
    type: flood
    name: Basement flood
    priority: low
    station: bravo
    reportedAt: 2024-03-01T11:00:00Z
incidents:
  - id: i1
    alert: a1
    station: alpha
    department: alpha-rescue
    unit: rescue-1
    createdAt: 2024-03-01T12:05:00Z
`

func loadTestSeed(t *testing.T) *Store {
	t.Helper()
	s, err := Load(strings.NewReader(testSeed))
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := loadTestSeed(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	stations, err := tx.Stations()
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, types.InCommission, stations[0].Commission)
	require.NotNil(t, stations[0].Location)
	assert.Equal(t, types.Point{38.71, -9.14}, *stations[0].Location)
	assert.Equal(t, types.OutOfCommission, stations[1].Commission)

	departments, err := tx.Departments()
	require.NoError(t, err)
	assert.Len(t, departments, 2)
	units, err := tx.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "alpha-rescue", units[0].DepartmentID)

	alerts, err := tx.Alerts()
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "a2", alerts[0].ID, "alerts are ordered by report time")
	assert.Equal(t, types.StatusPending, alerts[0].Status)

	incident, err := tx.Incident("i1")
	require.NoError(t, err)
	assert.Equal(t, types.PriorityHigh, incident.Priority, "priority is inherited from the alert")
	assert.Equal(t, types.StatusPending, incident.Status)
	assert.Equal(t, 1, incident.Version)
}

func TestLoadRejectsDanglingReferences(t *testing.T) {
	_, err := Load(strings.NewReader(`
alerts:
  - id: a1
    station: nowhere
`))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`
stations:
  - id: alpha
incidents:
  - id: i1
    alert: ghost
    station: alpha
`))
	assert.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	stations, err := tx.Stations()
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestWritesOnlyVisibleAfterCommit(t *testing.T) {
	s := loadTestSeed(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	alert, err := tx.Alert("a2")
	require.NoError(t, err)
	alert.StationID = "alpha"
	require.NoError(t, tx.SaveAlert(alert))

	forStation, err := tx.AlertsForStation("alpha")
	require.NoError(t, err)
	assert.Len(t, forStation, 2, "a transaction sees its own writes")
	require.NoError(t, tx.Rollback())

	tx, err = s.Begin()
	require.NoError(t, err)
	alert, err = tx.Alert("a2")
	require.NoError(t, err)
	assert.Equal(t, "bravo", alert.StationID, "rolled back writes are discarded")
	alert.StationID = "alpha"
	require.NoError(t, tx.SaveAlert(alert))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())

	tx, err = s.Begin()
	require.NoError(t, err)
	defer tx.Commit()
	alert, err = tx.Alert("a2")
	require.NoError(t, err)
	assert.Equal(t, "alpha", alert.StationID)
}

func TestSaveIncidentVersions(t *testing.T) {
	s := loadTestSeed(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	incident, err := tx.Incident("i1")
	require.NoError(t, err)
	stale := *incident

	incident.Status = types.StatusActive
	require.NoError(t, tx.SaveIncident(incident))
	assert.Equal(t, 2, incident.Version)

	stale.Status = types.StatusCancelled
	err = tx.SaveIncident(&stale)
	assert.True(t, errors.Is(err, types.ErrConflict))

	fresh := types.Incident{ID: "i1", AlertID: "a1", StationID: "alpha"}
	assert.True(t, errors.Is(tx.SaveIncident(&fresh), types.ErrConflict), "inserting an existing ID")

	_, err = tx.Incident("ghost")
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestReferrals(t *testing.T) {
	s := loadTestSeed(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	incident, err := tx.Incident("i1")
	require.NoError(t, err)
	referral, err := types.NewReferral(incident, "bravo", "help")
	require.NoError(t, err)
	require.NoError(t, tx.InsertReferral(referral))
	assert.Error(t, tx.InsertReferral(referral))

	for _, station := range []string{"alpha", "bravo"} {
		referrals, err := tx.ReferralsForStation(station)
		require.NoError(t, err)
		assert.Len(t, referrals, 1, station)
	}
	all, err := tx.Referrals()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.True(t, errors.Is(tx.LockStation("zulu"), types.ErrNotFound))
}
