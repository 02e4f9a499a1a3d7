package dispatch

import (
	"fmt"
	"testing"

	"github.com/gbl08ma/firedispatch/types"
	"github.com/stretchr/testify/assert"
)

func TestCheckReferralEligibility(t *testing.T) {
	station := &types.Station{ID: "s", Commission: types.InCommission}

	eligible, reason := CheckReferralEligibility(station, nil, nil)
	assert.True(t, eligible)
	assert.Equal(t, "", reason)

	// closed items and items of other stations are not load
	alerts := []*types.Alert{
		{ID: "a1", StationID: "s", Status: types.StatusCompleted},
		{ID: "a2", StationID: "other", Status: types.StatusPending},
		{ID: "a3", StationID: "s", Status: types.StatusDispatched},
	}
	incidents := []*types.Incident{
		{ID: "i1", StationID: "s", Status: types.StatusReferred},
		{ID: "i2", StationID: "other", Status: types.StatusActive},
		{ID: "i3", StationID: "s", Status: types.StatusOnScene},
	}
	eligible, reason = CheckReferralEligibility(station, alerts, incidents)
	assert.True(t, eligible)
	assert.Equal(t, "", reason)
}

func TestCheckReferralEligibilityOutOfCommission(t *testing.T) {
	station := &types.Station{ID: "s", Commission: types.OutOfCommission}
	alerts := []*types.Alert{{ID: "a", StationID: "s", Status: types.StatusActive}}

	eligible, reason := CheckReferralEligibility(station, alerts, nil)
	assert.False(t, eligible)
	assert.Equal(t, "Station is out of commission.", reason, "commission is checked first")
}

func TestCheckReferralEligibilityCountsActiveAlerts(t *testing.T) {
	station := &types.Station{ID: "s", Commission: types.InCommission}
	incidents := []*types.Incident{{ID: "i", StationID: "s", Status: types.StatusActive}}
	for n := 1; n <= 12; n++ {
		alerts := []*types.Alert{}
		for k := 0; k < n; k++ {
			status := types.StatusPending
			if k%2 == 1 {
				status = types.StatusActive
			}
			alerts = append(alerts, &types.Alert{ID: fmt.Sprint(k), StationID: "s", Status: status})
		}
		eligible, reason := CheckReferralEligibility(station, alerts, incidents)
		assert.False(t, eligible)
		assert.Equal(t, fmt.Sprintf("Station has %d active alert(s).", n), reason)
	}
}

func TestCheckReferralEligibilityActiveIncidents(t *testing.T) {
	station := &types.Station{ID: "s", Commission: types.InCommission}
	incidents := []*types.Incident{
		{ID: "i1", StationID: "s", Status: types.StatusPending},
		{ID: "i2", StationID: "s", Status: types.StatusActive},
		{ID: "i3", StationID: "s", Status: types.StatusDispatched},
	}
	eligible, reason := CheckReferralEligibility(station, nil, incidents)
	assert.False(t, eligible)
	assert.Equal(t, "Station has 2 active incident(s).", reason)

	assert.Equal(t, StationLoad{ActiveAlerts: 0, ActiveIncidents: 2}, ComputeStationLoad("s", nil, incidents))
}
