package resource

import (
	"time"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/ulule/deepcopier"
	"github.com/yarf-framework/yarf"
)

// Alert composites resource
type Alert struct {
	resource
}

type apiAlert struct {
	ID           string         `msgpack:"id" json:"id" xml:"id"`
	Type         string         `msgpack:"type" json:"type" xml:"type"`
	Name         string         `msgpack:"name" json:"name" xml:"name"`
	Location     types.Point    `msgpack:"location" json:"location" xml:"location"`
	LocationName string         `msgpack:"locationName" json:"locationName" xml:"locationName"`
	MapURL       string         `msgpack:"mapURL" json:"mapURL,omitempty" xml:"mapURL,omitempty"`
	Priority     types.Priority `msgpack:"priority" json:"priority" xml:"priority"`
	StationID    string         `msgpack:"station" json:"station" xml:"station"`
	Status       types.Status   `msgpack:"status" json:"status" xml:"status"`
	ReportedAt   time.Time      `msgpack:"reportedAt" json:"reportedAt" xml:"reportedAt"`
}

type apiAlertReport struct {
	Type         string         `msgpack:"type" json:"type"`
	Name         string         `msgpack:"name" json:"name"`
	Location     types.Point    `msgpack:"location" json:"location"`
	LocationName string         `msgpack:"locationName" json:"locationName"`
	MapURL       string         `msgpack:"mapURL" json:"mapURL"`
	Priority     types.Priority `msgpack:"priority" json:"priority"`
	StationID    string         `msgpack:"station" json:"station"`
}

func toAPIAlert(alert *types.Alert) apiAlert {
	aa := &apiAlert{}
	deepcopier.Copy(*alert).To(aa)
	return *aa
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *Alert) WithCoordinator(coordinator *dispatch.Coordinator) *Alert {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Alert) Get(c *yarf.Context) error {
	if c.Param("id") != "" {
		alert, err := r.coordinator.Alert(c.Param("id"))
		if err != nil {
			return RenderError(c, err)
		}
		RenderData(c, toAPIAlert(alert))
	} else {
		alerts, err := r.coordinator.Alerts(stationFilter(c))
		if err != nil {
			return err
		}
		apialerts := make([]apiAlert, len(alerts))
		for i := range alerts {
			apialerts[i] = toAPIAlert(alerts[i])
		}
		RenderData(c, apialerts)
	}
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Alert) Post(c *yarf.Context) error {
	var request apiAlertReport
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
	}

	alert := &types.Alert{}
	deepcopier.Copy(request).To(alert)
	created, err := r.coordinator.ReportAlert(alert)
	if err != nil {
		return RenderError(c, err)
	}
	RenderData(c, toAPIAlert(created))
	return nil
}

// AlertAcceptance composites resource
type AlertAcceptance struct {
	resource
}

type apiAcceptance struct {
	StationID    string `msgpack:"station" json:"station"`
	DepartmentID string `msgpack:"department" json:"department"`
	UnitID       string `msgpack:"unit" json:"unit"`
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *AlertAcceptance) WithCoordinator(coordinator *dispatch.Coordinator) *AlertAcceptance {
	r.coordinator = coordinator
	return r
}

// Post serves HTTP POST requests on this resource
func (r *AlertAcceptance) Post(c *yarf.Context) error {
	var request apiAcceptance
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
	}

	incident, err := r.coordinator.Accept(c.Param("id"), request.StationID, request.DepartmentID, request.UnitID)
	if err != nil {
		return RenderError(c, err)
	}
	RenderData(c, toAPIIncident(incident))
	return nil
}
