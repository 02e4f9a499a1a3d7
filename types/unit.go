package types

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Unit is an optional subdivision of a Department
type Unit struct {
	ID           string
	Name         string
	DepartmentID string
}

// GetUnits returns a slice with all registered units
func GetUnits(node sqalx.Node) ([]*Unit, error) {
	return getUnitsWithSelect(node, sdb.Select())
}

func getUnitsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Unit, error) {
	units := []*Unit{}

	tx, err := node.Beginx()
	if err != nil {
		return units, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "name", "department").
		From("unit").
		OrderBy("name ASC").
		RunWith(tx).Query()
	if err != nil {
		return units, fmt.Errorf("getUnitsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var unit Unit
		err := rows.Scan(
			&unit.ID,
			&unit.Name,
			&unit.DepartmentID)
		if err != nil {
			return units, fmt.Errorf("getUnitsWithSelect: %s", err)
		}
		units = append(units, &unit)
	}
	if err := rows.Err(); err != nil {
		return units, fmt.Errorf("getUnitsWithSelect: %s", err)
	}
	return units, nil
}

// GetUnit returns the Unit with the given ID
func GetUnit(node sqalx.Node, id string) (*Unit, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	units, err := getUnitsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("unit %s %w", id, ErrNotFound)
	}
	return units[0], nil
}
