package dispatch

import (
	"fmt"

	"github.com/gbl08ma/firedispatch/types"
)

// StationLoad is the live load of a station, computed from current alert and incident rows
type StationLoad struct {
	ActiveAlerts    int
	ActiveIncidents int
}

// ComputeStationLoad counts the alerts and incidents attributed to the station that are pending or active
func ComputeStationLoad(stationID string, alerts []*types.Alert, incidents []*types.Incident) StationLoad {
	var load StationLoad
	for _, alert := range alerts {
		if alert.StationID == stationID && alert.Status.CountsAsLoad() {
			load.ActiveAlerts++
		}
	}
	for _, incident := range incidents {
		if incident.StationID == stationID && incident.Status.CountsAsLoad() {
			load.ActiveIncidents++
		}
	}
	return load
}

// CheckReferralEligibility decides whether station may currently receive a referred incident.
// When it may not, reason explains why. alerts and incidents may contain records of other stations
func CheckReferralEligibility(station *types.Station, alerts []*types.Alert, incidents []*types.Incident) (eligible bool, reason string) {
	if !station.InCommission() {
		return false, "Station is out of commission."
	}
	load := ComputeStationLoad(station.ID, alerts, incidents)
	if load.ActiveAlerts > 0 {
		return false, fmt.Sprintf("Station has %d active alert(s).", load.ActiveAlerts)
	}
	if load.ActiveIncidents > 0 {
		return false, fmt.Sprintf("Station has %d active incident(s).", load.ActiveIncidents)
	}
	return true, ""
}
