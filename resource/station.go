package resource

import (
	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/ulule/deepcopier"
	"github.com/yarf-framework/yarf"
)

// Station composites resource
type Station struct {
	resource
}

type apiStation struct {
	ID         string                 `msgpack:"id" json:"id" xml:"id"`
	Name       string                 `msgpack:"name" json:"name" xml:"name"`
	CallSign   string                 `msgpack:"callSign" json:"callSign" xml:"callSign"`
	Commission types.CommissionStatus `msgpack:"commission" json:"commission" xml:"commission"`
	Location   *types.Point           `msgpack:"location" json:"location,omitempty" xml:"location,omitempty"`
}

type apiDepartment struct {
	ID           string    `msgpack:"id" json:"id" xml:"id"`
	Name         string    `msgpack:"name" json:"name" xml:"name"`
	UnitRequired bool      `msgpack:"unitRequired" json:"unitRequired" xml:"unitRequired"`
	Units        []apiUnit `msgpack:"units" json:"units" xml:"units"`
}

type apiUnit struct {
	ID   string `msgpack:"id" json:"id" xml:"id"`
	Name string `msgpack:"name" json:"name" xml:"name"`
}

type apiStationWrapper struct {
	apiStation  `msgpack:",inline"`
	Departments []apiDepartment `msgpack:"departments" json:"departments" xml:"departments"`
}

func toAPIStation(station *types.Station) apiStation {
	as := &apiStation{}
	deepcopier.Copy(*station).To(as)
	return *as
}

func toAPIDepartments(dir dispatch.Directory, stationID string) []apiDepartment {
	departments := []apiDepartment{}
	for _, d := range dispatch.SelectableDepartments(dir, stationID) {
		ad := apiDepartment{
			ID:           d.ID,
			Name:         d.Name,
			UnitRequired: dispatch.UnitRequired(dir, d.ID),
			Units:        toAPIUnits(dispatch.SelectableUnits(dir, d.ID)),
		}
		departments = append(departments, ad)
	}
	return departments
}

func toAPIUnits(units []*types.Unit) []apiUnit {
	result := make([]apiUnit, len(units))
	for i, u := range units {
		result[i] = apiUnit{ID: u.ID, Name: u.Name}
	}
	return result
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *Station) WithCoordinator(coordinator *dispatch.Coordinator) *Station {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Station) Get(c *yarf.Context) error {
	if c.Param("id") != "" {
		station, err := r.coordinator.Station(c.Param("id"))
		if err != nil {
			return RenderError(c, err)
		}
		dir, err := r.coordinator.Directory()
		if err != nil {
			return err
		}
		RenderData(c, apiStationWrapper{
			apiStation:  toAPIStation(station),
			Departments: toAPIDepartments(dir, station.ID),
		})
	} else {
		stations, err := r.coordinator.Stations()
		if err != nil {
			return err
		}
		apistations := make([]apiStation, len(stations))
		for i := range stations {
			apistations[i] = toAPIStation(stations[i])
		}
		RenderData(c, apistations)
	}
	return nil
}

// StationEligibility composites resource
type StationEligibility struct {
	resource
}

type apiEligibility struct {
	StationID       string `msgpack:"station" json:"station" xml:"station"`
	Eligible        bool   `msgpack:"eligible" json:"eligible" xml:"eligible"`
	Reason          string `msgpack:"reason" json:"reason" xml:"reason"`
	ActiveAlerts    int    `msgpack:"activeAlerts" json:"activeAlerts" xml:"activeAlerts"`
	ActiveIncidents int    `msgpack:"activeIncidents" json:"activeIncidents" xml:"activeIncidents"`
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *StationEligibility) WithCoordinator(coordinator *dispatch.Coordinator) *StationEligibility {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *StationEligibility) Get(c *yarf.Context) error {
	e, err := r.coordinator.StationEligibility(c.Param("id"))
	if err != nil {
		return RenderError(c, err)
	}
	RenderData(c, apiEligibility{
		StationID:       c.Param("id"),
		Eligible:        e.Eligible,
		Reason:          e.Reason,
		ActiveAlerts:    e.Load.ActiveAlerts,
		ActiveIncidents: e.Load.ActiveIncidents,
	})
	return nil
}

// StationReferralOptions composites resource
type StationReferralOptions struct {
	resource
}

type apiReferralOption struct {
	Station  apiStation `msgpack:"station" json:"station" xml:"station"`
	Eligible bool       `msgpack:"eligible" json:"eligible" xml:"eligible"`
	Reason   string     `msgpack:"reason" json:"reason" xml:"reason"`
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *StationReferralOptions) WithCoordinator(coordinator *dispatch.Coordinator) *StationReferralOptions {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *StationReferralOptions) Get(c *yarf.Context) error {
	options, err := r.coordinator.ReferralOptions(c.Param("id"))
	if err != nil {
		return RenderError(c, err)
	}
	apioptions := make([]apiReferralOption, len(options))
	for i, o := range options {
		apioptions[i] = apiReferralOption{
			Station:  toAPIStation(o.Station),
			Eligible: o.Eligible,
			Reason:   o.Reason,
		}
	}
	RenderData(c, apioptions)
	return nil
}

// StationUrgency composites resource
type StationUrgency struct {
	resource
}

type apiUrgency struct {
	MostUrgent *apiIncident  `msgpack:"mostUrgent" json:"mostUrgent" xml:"mostUrgent"`
	Ranked     []apiIncident `msgpack:"ranked" json:"ranked" xml:"ranked"`
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *StationUrgency) WithCoordinator(coordinator *dispatch.Coordinator) *StationUrgency {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *StationUrgency) Get(c *yarf.Context) error {
	ranked, err := r.coordinator.Ranked(c.Param("id"))
	if err != nil {
		return RenderError(c, err)
	}
	data := apiUrgency{
		Ranked: make([]apiIncident, len(ranked)),
	}
	for i := range ranked {
		data.Ranked[i] = toAPIIncident(ranked[i])
	}
	if most := dispatch.ComputeMostUrgent(ranked); most != nil {
		ai := toAPIIncident(most)
		data.MostUrgent = &ai
	}
	RenderData(c, data)
	return nil
}
