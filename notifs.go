package main

import (
	"github.com/gbl08ma/firedispatch/dispatch"
)

var incidentNotifications = make(chan dispatch.IncidentNotification, 100)

// NotificationHandler logs every incident change and forwards it to telemetry
func NotificationHandler(notifications <-chan dispatch.IncidentNotification) {
	for n := range notifications {
		if n.Referral != nil {
			mainLog.Printf("Incident %s referred from %s to %s (handoff code %s)",
				n.Incident.ID, n.Referral.FromStationID, n.Referral.ToStationID, n.Referral.HandoffCode)
		} else {
			mainLog.Printf("Incident %s is now %s at %s", n.Incident.ID, n.Incident.Status, n.Incident.StationID)
		}

		select {
		case IncidentTelemetry <- n:
		default:
		}
	}
}
