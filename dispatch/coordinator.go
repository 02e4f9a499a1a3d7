package dispatch

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gbl08ma/firedispatch/types"
	cache "github.com/patrickmn/go-cache"
)

// IncidentNotification is published after every committed coordinator command.
// Referral is only set for referrals
type IncidentNotification struct {
	Incident *types.Incident
	Referral *types.Referral
}

// Coordinator applies dispatch commands to incidents held in a types.Store
type Coordinator struct {
	store         types.Store
	locks         *keyedMutex
	log           *log.Logger
	notifications chan<- IncidentNotification

	rankings    *cache.Cache
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewCoordinator returns a Coordinator working on the given store
func NewCoordinator(store types.Store) *Coordinator {
	return &Coordinator{
		store:       store,
		locks:       newKeyedMutex(),
		log:         log.New(io.Discard, "", 0),
		rankings:    cache.New(5*time.Minute, 10*time.Minute),
		generations: make(map[string]uint64),
	}
}

// WithLogger sets the logger used to record applied commands
func (c *Coordinator) WithLogger(logger *log.Logger) *Coordinator {
	c.log = logger
	return c
}

// WithNotifications sets the channel where notifications of committed commands are sent.
// Notifications are dropped when the channel is not ready to receive
func (c *Coordinator) WithNotifications(ch chan<- IncidentNotification) *Coordinator {
	c.notifications = ch
	return c
}

func (c *Coordinator) notify(n IncidentNotification) {
	if c.notifications == nil {
		return
	}
	select {
	case c.notifications <- n:
	default:
	}
}

// Acknowledge makes an operator take ownership of a pending incident
func (c *Coordinator) Acknowledge(incidentID string) error {
	_, err := c.Apply(incidentID, types.StatusActive, "")
	return err
}

// Dispatch marks resources as dispatched to a pending or active incident
func (c *Coordinator) Dispatch(incidentID string) error {
	_, err := c.Apply(incidentID, types.StatusDispatched, "")
	return err
}

// AdvanceToEnRoute records that the dispatched unit is travelling to the incident
func (c *Coordinator) AdvanceToEnRoute(incidentID string) error {
	_, err := c.Apply(incidentID, types.StatusEnRoute, "")
	return err
}

// AdvanceToOnScene records that the unit arrived at the incident location
func (c *Coordinator) AdvanceToOnScene(incidentID string) error {
	_, err := c.Apply(incidentID, types.StatusOnScene, "")
	return err
}

// Close completes a non-terminal incident. The reason is added to the narrative
func (c *Coordinator) Close(incidentID, reason string) error {
	_, err := c.Apply(incidentID, types.StatusCompleted, reason)
	return err
}

// Cancel cancels a non-terminal incident. The reason is added to the narrative
func (c *Coordinator) Cancel(incidentID, reason string) error {
	_, err := c.Apply(incidentID, types.StatusCancelled, reason)
	return err
}

// Apply moves an incident to the given status and returns the incident as committed.
// reason is required when completing or cancelling and ignored otherwise.
// Referrals go through Refer
func (c *Coordinator) Apply(incidentID string, to types.Status, reason string) (*types.Incident, error) {
	switch to {
	case types.StatusActive:
		return c.transition(incidentID, to, nil)
	case types.StatusDispatched:
		return c.transition(incidentID, to, func(incident *types.Incident, now time.Time) {
			incident.DispatchedAt = now
		})
	case types.StatusEnRoute:
		return c.transition(incidentID, to, func(incident *types.Incident, now time.Time) {
			incident.EnRouteAt = now
		})
	case types.StatusOnScene:
		return c.transition(incidentID, to, func(incident *types.Incident, now time.Time) {
			incident.OnSceneAt = now
		})
	case types.StatusCompleted, types.StatusCancelled:
		if strings.TrimSpace(reason) == "" {
			return nil, missingReason()
		}
		verb := "Closed"
		if to == types.StatusCancelled {
			verb = "Cancelled"
		}
		return c.transition(incidentID, to, func(incident *types.Incident, now time.Time) {
			incident.ClosedAt = now
			incident.AppendNarrative(now, verb+": "+reason)
		})
	}
	return nil, &Error{
		Kind:   KindInvalidTransition,
		Reason: fmt.Sprintf("Incidents cannot be moved to %s", to),
	}
}

// transition moves an incident to the given status, applying apply to it before it is saved.
// The incident's alert takes the matching alert status
func (c *Coordinator) transition(incidentID string, to types.Status, apply func(incident *types.Incident, now time.Time)) (*types.Incident, error) {
	unlock := c.locks.Lock(incidentID)
	defer unlock()

	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	incident, err := tx.Incident(incidentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if err := checkTransition(incident, to); err != nil {
		return nil, err
	}

	from := incident.Status
	now := time.Now()
	incident.Status = to
	incident.UpdatedAt = now
	if apply != nil {
		apply(incident, now)
	}
	if err := tx.SaveIncident(incident); err != nil {
		return nil, mapStoreError(err)
	}

	alert, err := tx.Alert(incident.AlertID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	alert.Status = to.AlertStatus()
	if err := tx.SaveAlert(alert); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapStoreError(err)
	}
	c.invalidateRankings(incident.StationID)
	c.log.Printf("incident %s: %s -> %s (station %s)", incident.ID, from, to, incident.StationID)
	c.notify(IncidentNotification{Incident: incident})
	return incident, nil
}

// Refer hands an incident off from one station to another. The incident becomes referred,
// and its alert is attributed to the destination as pending, for that station to accept
func (c *Coordinator) Refer(incidentID, fromStationID, toStationID, reason string) (*types.Referral, error) {
	fields := []FieldError{}
	if strings.TrimSpace(reason) == "" {
		fields = append(fields, missingReason().Fields...)
	}
	switch {
	case toStationID == "":
		fields = append(fields, FieldError{
			Field:   "to",
			Code:    CodeDestinationRequired,
			Message: "A destination station is required",
		})
	case toStationID == fromStationID:
		fields = append(fields, FieldError{
			Field:   "to",
			Code:    CodeSameStation,
			Message: "An incident cannot be referred to its own station",
		})
	}
	if len(fields) > 0 {
		return nil, ValidationError(fields...)
	}

	unlock := c.locks.Lock(incidentID)
	defer unlock()

	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	incident, err := tx.Incident(incidentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if incident.StationID != fromStationID {
		return nil, ValidationError(FieldError{
			Field:   "from",
			Code:    CodeSourceMismatch,
			Message: "The incident is not handled by the source station",
		})
	}
	if incident.Status.IsTerminal() {
		return nil, &Error{
			Kind:   KindAlreadyTerminal,
			Reason: fmt.Sprintf("Incident is already %s", incident.Status),
		}
	}

	// the destination row stays locked until commit, so two referrals to the same
	// station see each other's effects on its load
	if err := tx.LockStation(toStationID); err != nil {
		return nil, mapStoreError(err)
	}
	destination, err := tx.Station(toStationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	alerts, err := tx.AlertsForStation(toStationID)
	if err != nil {
		return nil, err
	}
	incidents, err := tx.IncidentsForStation(toStationID)
	if err != nil {
		return nil, err
	}
	if eligible, why := CheckReferralEligibility(destination, alerts, incidents); !eligible {
		return nil, &Error{Kind: KindIneligibleDestination, Reason: why}
	}

	from := incident.Status
	now := time.Now()
	incident.Status = types.StatusReferred
	incident.UpdatedAt = now
	incident.ClosedAt = now
	incident.AppendNarrative(now, fmt.Sprintf("Referred to %s: %s", destination.CallSign, reason))
	if err := tx.SaveIncident(incident); err != nil {
		return nil, mapStoreError(err)
	}

	alert, err := tx.Alert(incident.AlertID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	alert.StationID = toStationID
	alert.Status = types.StatusPending
	if err := tx.SaveAlert(alert); err != nil {
		return nil, err
	}

	referral, err := types.NewReferral(incident, toStationID, reason)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertReferral(referral); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapStoreError(err)
	}
	c.invalidateRankings(fromStationID, toStationID)
	c.log.Printf("incident %s: %s -> %s (station %s, referred to %s, handoff %s)",
		incident.ID, from, incident.Status, fromStationID, toStationID, referral.HandoffCode)
	c.notify(IncidentNotification{Incident: incident, Referral: referral})
	return referral, nil
}

// Accept turns a pending alert attributed to the station into a pending incident
// assigned to the given department and unit. unitID may be empty for departments without units
func (c *Coordinator) Accept(alertID, stationID, departmentID, unitID string) (*types.Incident, error) {
	if departmentID == "" {
		return nil, ValidationError(FieldError{
			Field:   "departmentId",
			Code:    CodeDepartmentRequired,
			Message: "A department must be selected",
		})
	}

	unlock := c.locks.Lock("alert:" + alertID)
	defer unlock()

	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	alert, err := tx.Alert(alertID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if alert.StationID != stationID {
		return nil, ValidationError(FieldError{
			Field:   "stationId",
			Code:    CodeStationMismatch,
			Message: "The alert is not attributed to the station",
		})
	}
	if alert.Status != types.StatusPending {
		return nil, ValidationError(FieldError{
			Field:   "alertId",
			Code:    CodeAlertNotPending,
			Message: fmt.Sprintf("The alert is %s", alert.Status),
		})
	}

	station, err := tx.Station(stationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	dir, err := loadDirectory(tx)
	if err != nil {
		return nil, err
	}
	if fields := ValidateAssignment(dir, &stationID, &departmentID, &unitID); len(fields) > 0 {
		return nil, ValidationError(fields...)
	}

	incident, err := types.NewIncident(alert, stationID, departmentID, unitID)
	if err != nil {
		return nil, err
	}
	incident.AppendNarrative(incident.CreatedAt, "Accepted by "+station.CallSign)
	if err := tx.SaveIncident(incident); err != nil {
		return nil, mapStoreError(err)
	}
	alert.Status = types.StatusActive
	if err := tx.SaveAlert(alert); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapStoreError(err)
	}
	c.invalidateRankings(stationID)
	c.log.Printf("incident %s: accepted from alert %s (station %s)", incident.ID, alert.ID, stationID)
	c.notify(IncidentNotification{Incident: incident})
	return incident, nil
}

// ReportAlert registers a new pending alert. ID, status and report time are assigned by the coordinator
func (c *Coordinator) ReportAlert(alert *types.Alert) (*types.Alert, error) {
	fields := []FieldError{}
	if strings.TrimSpace(alert.Type) == "" {
		fields = append(fields, FieldError{Field: "type", Code: CodeRequired, Message: "The alert type is required"})
	}
	if strings.TrimSpace(alert.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Code: CodeRequired, Message: "The alert name is required"})
	}
	if !alert.Priority.IsValid() {
		fields = append(fields, FieldError{Field: "priority", Code: CodeInvalidPriority, Message: "Unknown priority"})
	}
	if alert.StationID == "" {
		fields = append(fields, FieldError{Field: "stationId", Code: CodeStationRequired, Message: "A station is required"})
	}
	if len(fields) > 0 {
		return nil, ValidationError(fields...)
	}

	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Station(alert.StationID); err != nil {
		return nil, mapStoreError(err)
	}

	created, err := types.NewAlert(alert.Type, alert.Name, alert.Priority, alert.StationID)
	if err != nil {
		return nil, err
	}
	created.Location = alert.Location
	created.LocationName = alert.LocationName
	created.MapURL = alert.MapURL
	if err := tx.SaveAlert(created); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	c.invalidateRankings(created.StationID)
	c.log.Printf("alert %s: reported (station %s, priority %s)", created.ID, created.StationID, created.Priority)
	return created, nil
}
