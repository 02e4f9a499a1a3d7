package main

import (
	"time"

	"github.com/gbl08ma/firedispatch/dispatch"
	statsd "gopkg.in/alexcesaro/statsd.v2"
)

// APIrequestTelemetry is a channel where something should be sent whenever an API
// request is served
var APIrequestTelemetry = make(chan interface{}, 10)

// IncidentTelemetry receives the incident notifications to be counted
var IncidentTelemetry = make(chan dispatch.IncidentNotification, 10)

// StatsSender is meant to be called as a goroutine that handles sending telemetry
// to a statsd (or compatible) server
func StatsSender() {
	statsdAddress, present := secrets.Get("statsdAddress")
	statsdPrefix, present2 := secrets.Get("statsdPrefix")
	if !present || !present2 {
		return
	}

	c, err := statsd.New(statsd.Address(statsdAddress), statsd.Prefix(statsdPrefix))
	if err != nil {
		// If nothing is listening on the target port, an error is returned and
		// the returned client does nothing but is still usable. So we can
		// just log the error and go on.
		mainLog.Println(err)
	}
	defer c.Close()

	ticker := time.NewTicker(1 * time.Minute)

	for {
		select {
		case <-ticker.C:
			sendLoadGauges(c)
		case <-APIrequestTelemetry:
			c.Increment("apicalls")
		case n := <-IncidentTelemetry:
			c.Increment("incident_" + string(n.Incident.Status))
			if n.Referral != nil {
				c.Increment("referrals")
			}
		}
	}
}

func sendLoadGauges(c *statsd.Client) {
	stations, err := coordinator.Stations()
	if err != nil {
		mainLog.Println(err)
		return
	}
	for _, station := range stations {
		load, err := coordinator.StationLoad(station.ID)
		if err != nil {
			mainLog.Println(err)
			continue
		}
		c.Gauge("active_alerts_"+station.ID, load.ActiveAlerts)
		c.Gauge("active_incidents_"+station.ID, load.ActiveIncidents)
	}
	ranked, err := coordinator.Ranked("")
	if err != nil {
		mainLog.Println(err)
		return
	}
	c.Gauge("ongoing_incidents", len(ranked))
}
