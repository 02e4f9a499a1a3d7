package types

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Station is a fire station
type Station struct {
	ID         string
	Name       string
	CallSign   string
	Commission CommissionStatus
	Location   *Point
}

// InCommission returns whether the station is currently operational
func (station *Station) InCommission() bool {
	return station.Commission != OutOfCommission
}

// GetStations returns a slice with all registered stations
func GetStations(node sqalx.Node) ([]*Station, error) {
	return getStationsWithSelect(node, sdb.Select().OrderBy("name ASC"))
}

func getStationsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Station, error) {
	stations := []*Station{}

	tx, err := node.Beginx()
	if err != nil {
		return stations, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "name", "call_sign", "commission", "location").
		From("station").
		RunWith(tx).Query()
	if err != nil {
		return stations, fmt.Errorf("getStationsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var station Station
		var location NullPoint
		err := rows.Scan(
			&station.ID,
			&station.Name,
			&station.CallSign,
			&station.Commission,
			&location)
		if err != nil {
			return stations, fmt.Errorf("getStationsWithSelect: %s", err)
		}
		if location.Valid {
			station.Location = &location.Point
		}
		stations = append(stations, &station)
	}
	if err := rows.Err(); err != nil {
		return stations, fmt.Errorf("getStationsWithSelect: %s", err)
	}
	return stations, nil
}

// GetStation returns the Station with the given ID
func GetStation(node sqalx.Node, id string) (*Station, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	stations, err := getStationsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("station %s %w", id, ErrNotFound)
	}
	return stations[0], nil
}

// LockStation takes a row lock on the station for the duration of the transaction in node,
// serializing concurrent writers that change the load of this station
func LockStation(node sqalx.Node, id string) error {
	rows, err := sdb.Select("id").
		From("station").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		RunWith(node).Query()
	if err != nil {
		return fmt.Errorf("LockStation: %s", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("LockStation: %s", err)
		}
		return fmt.Errorf("station %s %w", id, ErrNotFound)
	}
	return rows.Err()
}

// Departments returns the departments owned by this station
func (station *Station) Departments(node sqalx.Node) ([]*Department, error) {
	s := sdb.Select().
		Where(sq.Eq{"station": station.ID})
	return getDepartmentsWithSelect(node, s)
}
