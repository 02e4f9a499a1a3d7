package resource

import (
	"net/http"
	"time"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/ulule/deepcopier"
	"github.com/yarf-framework/yarf"
)

// Incident composites resource
type Incident struct {
	resource
}

type apiIncident struct {
	ID           string         `msgpack:"id" json:"id" xml:"id"`
	AlertID      string         `msgpack:"alert" json:"alert" xml:"alert"`
	StationID    string         `msgpack:"station" json:"station" xml:"station"`
	DepartmentID string         `msgpack:"department" json:"department" xml:"department"`
	UnitID       string         `msgpack:"unit" json:"unit,omitempty" xml:"unit,omitempty"`
	Priority     types.Priority `msgpack:"priority" json:"priority" xml:"priority"`
	Status       types.Status   `msgpack:"status" json:"status" xml:"status"`
	Narrative    string         `msgpack:"narrative" json:"narrative" xml:"narrative"`
	CreatedAt    time.Time      `msgpack:"createdAt" json:"createdAt" xml:"createdAt"`
	UpdatedAt    time.Time      `msgpack:"updatedAt" json:"updatedAt" xml:"updatedAt"`
	Dispatched   *time.Time     `msgpack:"dispatchedAt" json:"dispatchedAt,omitempty" xml:"dispatchedAt,omitempty" deepcopier:"skip"`
	EnRoute      *time.Time     `msgpack:"enRouteAt" json:"enRouteAt,omitempty" xml:"enRouteAt,omitempty" deepcopier:"skip"`
	OnScene      *time.Time     `msgpack:"onSceneAt" json:"onSceneAt,omitempty" xml:"onSceneAt,omitempty" deepcopier:"skip"`
	Closed       *time.Time     `msgpack:"closedAt" json:"closedAt,omitempty" xml:"closedAt,omitempty" deepcopier:"skip"`
	Version      int            `msgpack:"version" json:"version" xml:"version"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toAPIIncident(incident *types.Incident) apiIncident {
	ai := &apiIncident{}
	deepcopier.Copy(*incident).To(ai)
	ai.Dispatched = optionalTime(incident.DispatchedAt)
	ai.EnRoute = optionalTime(incident.EnRouteAt)
	ai.OnScene = optionalTime(incident.OnSceneAt)
	ai.Closed = optionalTime(incident.ClosedAt)
	return *ai
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *Incident) WithCoordinator(coordinator *dispatch.Coordinator) *Incident {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Incident) Get(c *yarf.Context) error {
	if c.Param("id") != "" {
		incident, err := r.coordinator.Incident(c.Param("id"))
		if err != nil {
			return RenderError(c, err)
		}
		RenderData(c, toAPIIncident(incident))
	} else {
		incidents, err := r.coordinator.Incidents(stationFilter(c))
		if err != nil {
			return err
		}
		apiincidents := make([]apiIncident, len(incidents))
		for i := range incidents {
			apiincidents[i] = toAPIIncident(incidents[i])
		}
		RenderData(c, apiincidents)
	}
	return nil
}

// IncidentAction composites resource
type IncidentAction struct {
	resource
}

// incidentActions maps the actions accepted in the route to the status they move incidents to
var incidentActions = map[string]types.Status{
	"acknowledge": types.StatusActive,
	"dispatch":    types.StatusDispatched,
	"enroute":     types.StatusEnRoute,
	"onscene":     types.StatusOnScene,
	"close":       types.StatusCompleted,
	"cancel":      types.StatusCancelled,
}

type apiIncidentAction struct {
	Reason string `msgpack:"reason" json:"reason"`
	From   string `msgpack:"from" json:"from"`
	To     string `msgpack:"to" json:"to"`
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *IncidentAction) WithCoordinator(coordinator *dispatch.Coordinator) *IncidentAction {
	r.coordinator = coordinator
	return r
}

// Post serves HTTP POST requests on this resource
func (r *IncidentAction) Post(c *yarf.Context) error {
	id := c.Param("id")

	var request apiIncidentAction
	switch c.Param("action") {
	case "close", "cancel", "refer":
		err := r.DecodeRequest(c, &request)
		if err != nil {
			return err
		}
	}

	if c.Param("action") == "refer" {
		referral, err := r.coordinator.Refer(id, request.From, request.To, request.Reason)
		if err != nil {
			return RenderError(c, err)
		}
		RenderData(c, toAPIReferral(referral))
		return nil
	}

	to, ok := incidentActions[c.Param("action")]
	if !ok {
		return &yarf.CustomError{
			HTTPCode:  http.StatusNotFound,
			ErrorMsg:  "Unknown incident action",
			ErrorBody: "Unknown incident action",
		}
	}
	incident, err := r.coordinator.Apply(id, to, request.Reason)
	if err != nil {
		return RenderError(c, err)
	}
	RenderData(c, toAPIIncident(incident))
	return nil
}
