package types

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	"github.com/lib/pq"
	uuid "github.com/satori/go.uuid"
)

// Incident is the operational record of a station's handling of an Alert
type Incident struct {
	ID           string
	AlertID      string
	StationID    string
	DepartmentID string
	UnitID       string
	Priority     Priority
	Status       Status
	Narrative    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DispatchedAt time.Time
	EnRouteAt    time.Time
	OnSceneAt    time.Time
	ClosedAt     time.Time
	// Version is incremented on every update and is zero for incidents never persisted
	Version int
}

// NewIncident returns a new pending Incident for the given alert, to be handled by the
// given station department (and unit, which may be empty)
func NewIncident(alert *Alert, stationID, departmentID, unitID string) (*Incident, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Incident{
		ID:           id.String(),
		AlertID:      alert.ID,
		StationID:    stationID,
		DepartmentID: departmentID,
		UnitID:       unitID,
		Priority:     alert.Priority,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AppendNarrative adds a timestamped line to the narrative of the incident
func (incident *Incident) AppendNarrative(t time.Time, line string) {
	entry := fmt.Sprintf("[%s] %s", t.Format(time.RFC3339), strings.TrimSpace(line))
	if incident.Narrative == "" {
		incident.Narrative = entry
		return
	}
	incident.Narrative += "\n" + entry
}

// GetIncidents returns a slice with all registered incidents
func GetIncidents(node sqalx.Node) ([]*Incident, error) {
	return getIncidentsWithSelect(node, sdb.Select())
}

// GetOngoingIncidents returns a slice with all incidents that are not in a terminal status
func GetOngoingIncidents(node sqalx.Node) ([]*Incident, error) {
	s := sdb.Select().
		Where(sq.NotEq{"status": []Status{StatusCompleted, StatusCancelled, StatusReferred}})
	return getIncidentsWithSelect(node, s)
}

// GetIncidentsForStation returns the incidents handled by the given station
func GetIncidentsForStation(node sqalx.Node, stationID string) ([]*Incident, error) {
	s := sdb.Select().
		Where(sq.Eq{"station": stationID})
	return getIncidentsWithSelect(node, s)
}

func getIncidentsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Incident, error) {
	incidents := []*Incident{}

	tx, err := node.Beginx()
	if err != nil {
		return incidents, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "alert", "station", "department", "unit", "priority", "status",
		"narrative", "created_at", "updated_at", "dispatched_at", "en_route_at", "on_scene_at", "closed_at",
		"version").
		From("incident").
		OrderBy("created_at ASC").
		RunWith(tx).Query()
	if err != nil {
		return incidents, fmt.Errorf("getIncidentsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var incident Incident
		var unitID sql.NullString
		var dispatchedAt, enRouteAt, onSceneAt, closedAt pq.NullTime
		err := rows.Scan(
			&incident.ID,
			&incident.AlertID,
			&incident.StationID,
			&incident.DepartmentID,
			&unitID,
			&incident.Priority,
			&incident.Status,
			&incident.Narrative,
			&incident.CreatedAt,
			&incident.UpdatedAt,
			&dispatchedAt,
			&enRouteAt,
			&onSceneAt,
			&closedAt,
			&incident.Version)
		if err != nil {
			return incidents, fmt.Errorf("getIncidentsWithSelect: %s", err)
		}
		incident.UnitID = unitID.String
		incident.DispatchedAt = dispatchedAt.Time
		incident.EnRouteAt = enRouteAt.Time
		incident.OnSceneAt = onSceneAt.Time
		incident.ClosedAt = closedAt.Time
		incidents = append(incidents, &incident)
	}
	if err := rows.Err(); err != nil {
		return incidents, fmt.Errorf("getIncidentsWithSelect: %s", err)
	}
	return incidents, nil
}

// GetIncident returns the Incident with the given ID
func GetIncident(node sqalx.Node, id string) (*Incident, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	incidents, err := getIncidentsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		return nil, fmt.Errorf("incident %s %w", id, ErrNotFound)
	}
	return incidents[0], nil
}

func nullTime(t time.Time) pq.NullTime {
	return pq.NullTime{
		Time:  t,
		Valid: !t.IsZero(),
	}
}

// Update adds the incident, or updates it if the stored version matches incident.Version.
// ErrConflict is returned when the stored version differs. On success, incident.Version
// holds the new version
func (incident *Incident) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if incident.Version == 0 {
		_, err = sdb.Insert("incident").
			Columns("id", "alert", "station", "department", "unit", "priority", "status",
				"narrative", "created_at", "updated_at", "dispatched_at", "en_route_at", "on_scene_at", "closed_at",
				"version").
			Values(incident.ID, incident.AlertID, incident.StationID, incident.DepartmentID, nullString(incident.UnitID),
				incident.Priority, incident.Status, incident.Narrative, incident.CreatedAt, incident.UpdatedAt,
				nullTime(incident.DispatchedAt), nullTime(incident.EnRouteAt), nullTime(incident.OnSceneAt),
				nullTime(incident.ClosedAt), 1).
			RunWith(tx).Exec()
		if err != nil {
			return errors.New("AddIncident: " + err.Error())
		}
	} else {
		result, err := sdb.Update("incident").
			Set("status", incident.Status).
			Set("department", incident.DepartmentID).
			Set("unit", nullString(incident.UnitID)).
			Set("narrative", incident.Narrative).
			Set("updated_at", incident.UpdatedAt).
			Set("dispatched_at", nullTime(incident.DispatchedAt)).
			Set("en_route_at", nullTime(incident.EnRouteAt)).
			Set("on_scene_at", nullTime(incident.OnSceneAt)).
			Set("closed_at", nullTime(incident.ClosedAt)).
			Set("version", sq.Expr("version + 1")).
			Where(sq.Eq{"id": incident.ID, "version": incident.Version}).
			RunWith(tx).Exec()
		if err != nil {
			return errors.New("UpdateIncident: " + err.Error())
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return errors.New("UpdateIncident: " + err.Error())
		}
		if affected == 0 {
			return fmt.Errorf("UpdateIncident: incident %s: %w", incident.ID, ErrConflict)
		}
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	incident.Version++
	return nil
}
