package types

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	uuid "github.com/satori/go.uuid"
)

// Alert is an emergency report submitted by a citizen or field officer, before
// (or while) a station handles it as an Incident
type Alert struct {
	ID           string
	Type         string
	Name         string
	Location     Point
	LocationName string
	MapURL       string
	Priority     Priority
	StationID    string
	Status       Status
	ReportedAt   time.Time
}

// NewAlert returns a new pending Alert with a random ID, reported now
func NewAlert(alertType, name string, priority Priority, stationID string) (*Alert, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Alert{
		ID:         id.String(),
		Type:       alertType,
		Name:       name,
		Priority:   priority,
		StationID:  stationID,
		Status:     StatusPending,
		ReportedAt: time.Now(),
	}, nil
}

// GetAlerts returns a slice with all registered alerts
func GetAlerts(node sqalx.Node) ([]*Alert, error) {
	return getAlertsWithSelect(node, sdb.Select())
}

// GetAlertsForStation returns the alerts currently attributed to the given station
func GetAlertsForStation(node sqalx.Node, stationID string) ([]*Alert, error) {
	s := sdb.Select().
		Where(sq.Eq{"station": stationID})
	return getAlertsWithSelect(node, s)
}

func getAlertsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Alert, error) {
	alerts := []*Alert{}

	tx, err := node.Beginx()
	if err != nil {
		return alerts, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "type", "name", "location", "location_name", "map_url",
		"priority", "station", "status", "reported_at").
		From("alert").
		OrderBy("reported_at ASC").
		RunWith(tx).Query()
	if err != nil {
		return alerts, fmt.Errorf("getAlertsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var alert Alert
		var mapURL sql.NullString
		err := rows.Scan(
			&alert.ID,
			&alert.Type,
			&alert.Name,
			&alert.Location,
			&alert.LocationName,
			&mapURL,
			&alert.Priority,
			&alert.StationID,
			&alert.Status,
			&alert.ReportedAt)
		if err != nil {
			return alerts, fmt.Errorf("getAlertsWithSelect: %s", err)
		}
		alert.MapURL = mapURL.String
		alerts = append(alerts, &alert)
	}
	if err := rows.Err(); err != nil {
		return alerts, fmt.Errorf("getAlertsWithSelect: %s", err)
	}
	return alerts, nil
}

// GetAlert returns the Alert with the given ID
func GetAlert(node sqalx.Node, id string) (*Alert, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	alerts, err := getAlertsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, fmt.Errorf("alert %s %w", id, ErrNotFound)
	}
	return alerts[0], nil
}

// Update adds or updates the alert
func (alert *Alert) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("alert").
		Columns("id", "type", "name", "location", "location_name", "map_url",
			"priority", "station", "status", "reported_at").
		Values(alert.ID, alert.Type, alert.Name, alert.Location, alert.LocationName, nullString(alert.MapURL),
			alert.Priority, alert.StationID, alert.Status, alert.ReportedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET priority = ?, station = ?, status = ?",
			alert.Priority, alert.StationID, alert.Status).
		RunWith(tx).Exec()
	if err != nil {
		return errors.New("AddAlert: " + err.Error())
	}
	return tx.Commit()
}
