package main

import (
	"github.com/gbl08ma/firedispatch/resource"
	"github.com/yarf-framework/yarf"
)

// APIserver starts the API server
func APIserver() {
	y := yarf.New()

	v1 := yarf.RouteGroup("/v1")
	v1.Insert(new(resource.Telemetry).WithChannel(APIrequestTelemetry))

	v1.Add("/stations", new(resource.Station).WithCoordinator(coordinator))
	v1.Add("/stations/:id", new(resource.Station).WithCoordinator(coordinator))
	v1.Add("/stations/:id/eligibility", new(resource.StationEligibility).WithCoordinator(coordinator))
	v1.Add("/stations/:id/referraloptions", new(resource.StationReferralOptions).WithCoordinator(coordinator))
	v1.Add("/stations/:id/urgent", new(resource.StationUrgency).WithCoordinator(coordinator))

	v1.Add("/incidents", new(resource.Incident).WithCoordinator(coordinator))
	v1.Add("/incidents/:id", new(resource.Incident).WithCoordinator(coordinator))
	v1.Add("/incidents/:id/:action", new(resource.IncidentAction).WithCoordinator(coordinator))

	v1.Add("/alerts", new(resource.Alert).WithCoordinator(coordinator))
	v1.Add("/alerts/:id", new(resource.Alert).WithCoordinator(coordinator))
	v1.Add("/alerts/:id/accept", new(resource.AlertAcceptance).WithCoordinator(coordinator))

	v1.Add("/assignments/validate", new(resource.AssignmentValidation).WithCoordinator(coordinator))

	v1.Add("/referrals", new(resource.Referral).WithCoordinator(coordinator))

	y.AddGroup(v1)

	y.Logger = webLog
	y.Start(APIListenAddr)
}
