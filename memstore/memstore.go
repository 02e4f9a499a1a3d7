// Package memstore implements types.Store in memory. Transactions are serialized:
// a transaction holds the store lock from Begin until Commit or Rollback, and its
// writes only become visible on Commit.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gbl08ma/firedispatch/types"
	"github.com/thoas/go-funk"
)

type state struct {
	stations    map[string]types.Station
	departments map[string]types.Department
	units       map[string]types.Unit
	alerts      map[string]types.Alert
	incidents   map[string]types.Incident
	referrals   map[string]types.Referral
}

func newState() *state {
	return &state{
		stations:    make(map[string]types.Station),
		departments: make(map[string]types.Department),
		units:       make(map[string]types.Unit),
		alerts:      make(map[string]types.Alert),
		incidents:   make(map[string]types.Incident),
		referrals:   make(map[string]types.Referral),
	}
}

// Store is an in-memory types.Store
type Store struct {
	mu    sync.Mutex
	state *state
}

// New returns a new, empty Store
func New() *Store {
	return &Store{state: newState()}
}

// Begin implements types.Store
func (s *Store) Begin() (types.Tx, error) {
	s.mu.Lock()
	return &tx{
		store:     s,
		alerts:    make(map[string]types.Alert),
		incidents: make(map[string]types.Incident),
		referrals: make(map[string]types.Referral),
	}, nil
}

// AddStation registers a station in the reference directory
func (s *Store) AddStation(station types.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.stations[station.ID] = station
}

// AddDepartment registers a department in the reference directory
func (s *Store) AddDepartment(department types.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.departments[department.ID] = department
}

// AddUnit registers a unit in the reference directory
func (s *Store) AddUnit(unit types.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.units[unit.ID] = unit
}

// AddAlert stores an alert, as intake would
func (s *Store) AddAlert(alert types.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.alerts[alert.ID] = alert
}

// AddIncident stores an incident as-is, bypassing version checks. A zero Version is stored as 1
func (s *Store) AddIncident(incident types.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if incident.Version == 0 {
		incident.Version = 1
	}
	s.state.incidents[incident.ID] = incident
}

type tx struct {
	store     *Store
	alerts    map[string]types.Alert
	incidents map[string]types.Incident
	referrals map[string]types.Referral
	done      bool
}

func (t *tx) base() *state {
	return t.store.state
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	for id, a := range t.alerts {
		t.base().alerts[id] = a
	}
	for id, i := range t.incidents {
		t.base().incidents[id] = i
	}
	for id, r := range t.referrals {
		t.base().referrals[id] = r
	}
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Stations() ([]*types.Station, error) {
	stations := []*types.Station{}
	for _, s := range t.base().stations {
		stations = append(stations, &s)
	}
	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Name < stations[j].Name
	})
	return stations, nil
}

func (t *tx) Station(id string) (*types.Station, error) {
	s, present := t.base().stations[id]
	if !present {
		return nil, fmt.Errorf("station %s %w", id, types.ErrNotFound)
	}
	return &s, nil
}

func (t *tx) Departments() ([]*types.Department, error) {
	departments := []*types.Department{}
	for _, d := range t.base().departments {
		departments = append(departments, &d)
	}
	sort.SliceStable(departments, func(i, j int) bool {
		return departments[i].Name < departments[j].Name
	})
	return departments, nil
}

func (t *tx) Department(id string) (*types.Department, error) {
	d, present := t.base().departments[id]
	if !present {
		return nil, fmt.Errorf("department %s %w", id, types.ErrNotFound)
	}
	return &d, nil
}

func (t *tx) Units() ([]*types.Unit, error) {
	units := []*types.Unit{}
	for _, u := range t.base().units {
		units = append(units, &u)
	}
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Name < units[j].Name
	})
	return units, nil
}

func (t *tx) alert(id string) (types.Alert, bool) {
	if a, present := t.alerts[id]; present {
		return a, true
	}
	a, present := t.base().alerts[id]
	return a, present
}

func (t *tx) Alerts() ([]*types.Alert, error) {
	alerts := []*types.Alert{}
	for _, id := range t.alertIDs() {
		a, _ := t.alert(id)
		alerts = append(alerts, &a)
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ReportedAt.Before(alerts[j].ReportedAt)
	})
	return alerts, nil
}

func (t *tx) alertIDs() []string {
	ids := funk.Keys(t.base().alerts).([]string)
	for id := range t.alerts {
		if _, present := t.base().alerts[id]; !present {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (t *tx) Alert(id string) (*types.Alert, error) {
	a, present := t.alert(id)
	if !present {
		return nil, fmt.Errorf("alert %s %w", id, types.ErrNotFound)
	}
	return &a, nil
}

func (t *tx) AlertsForStation(stationID string) ([]*types.Alert, error) {
	alerts, err := t.Alerts()
	if err != nil {
		return nil, err
	}
	return funk.Filter(alerts, func(a *types.Alert) bool {
		return a.StationID == stationID
	}).([]*types.Alert), nil
}

func (t *tx) SaveAlert(alert *types.Alert) error {
	t.alerts[alert.ID] = *alert
	return nil
}

func (t *tx) incident(id string) (types.Incident, bool) {
	if i, present := t.incidents[id]; present {
		return i, true
	}
	i, present := t.base().incidents[id]
	return i, present
}

func (t *tx) allIncidents() []*types.Incident {
	ids := funk.Keys(t.base().incidents).([]string)
	for id := range t.incidents {
		if _, present := t.base().incidents[id]; !present {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	incidents := []*types.Incident{}
	for _, id := range ids {
		i, _ := t.incident(id)
		incidents = append(incidents, &i)
	}
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.Before(incidents[j].CreatedAt)
	})
	return incidents
}

func (t *tx) Incident(id string) (*types.Incident, error) {
	i, present := t.incident(id)
	if !present {
		return nil, fmt.Errorf("incident %s %w", id, types.ErrNotFound)
	}
	return &i, nil
}

func (t *tx) Incidents() ([]*types.Incident, error) {
	return t.allIncidents(), nil
}

func (t *tx) OngoingIncidents() ([]*types.Incident, error) {
	return funk.Filter(t.allIncidents(), func(i *types.Incident) bool {
		return !i.Status.IsTerminal()
	}).([]*types.Incident), nil
}

func (t *tx) IncidentsForStation(stationID string) ([]*types.Incident, error) {
	return funk.Filter(t.allIncidents(), func(i *types.Incident) bool {
		return i.StationID == stationID
	}).([]*types.Incident), nil
}

func (t *tx) SaveIncident(incident *types.Incident) error {
	current, present := t.incident(incident.ID)
	switch {
	case incident.Version == 0 && present:
		return fmt.Errorf("SaveIncident: incident %s already exists: %w", incident.ID, types.ErrConflict)
	case incident.Version != 0 && (!present || current.Version != incident.Version):
		return fmt.Errorf("SaveIncident: incident %s: %w", incident.ID, types.ErrConflict)
	}
	incident.Version++
	t.incidents[incident.ID] = *incident
	return nil
}

func (t *tx) Referrals() ([]*types.Referral, error) {
	return t.referralsMatching(func(r *types.Referral) bool { return true }), nil
}

func (t *tx) ReferralsForStation(stationID string) ([]*types.Referral, error) {
	return t.referralsMatching(func(r *types.Referral) bool {
		return r.FromStationID == stationID || r.ToStationID == stationID
	}), nil
}

func (t *tx) referralsMatching(match func(r *types.Referral) bool) []*types.Referral {
	referrals := []*types.Referral{}
	add := func(r types.Referral) {
		if match(&r) {
			referrals = append(referrals, &r)
		}
	}
	for _, r := range t.base().referrals {
		add(r)
	}
	for _, r := range t.referrals {
		add(r)
	}
	sort.SliceStable(referrals, func(i, j int) bool {
		return referrals[i].CreatedAt.Before(referrals[j].CreatedAt)
	})
	return referrals
}

func (t *tx) InsertReferral(referral *types.Referral) error {
	_, inBase := t.base().referrals[referral.ID]
	_, inTx := t.referrals[referral.ID]
	if inBase || inTx {
		return fmt.Errorf("InsertReferral: referral %s already exists", referral.ID)
	}
	t.referrals[referral.ID] = *referral
	return nil
}

func (t *tx) LockStation(id string) error {
	// transactions are already serialized by the store lock
	if _, present := t.base().stations[id]; !present {
		return fmt.Errorf("station %s %w", id, types.ErrNotFound)
	}
	return nil
}
