package types

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Department is a department of a Station. Every department belongs to exactly one station
type Department struct {
	ID        string
	Name      string
	StationID string
}

// GetDepartments returns a slice with all registered departments
func GetDepartments(node sqalx.Node) ([]*Department, error) {
	return getDepartmentsWithSelect(node, sdb.Select())
}

func getDepartmentsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Department, error) {
	departments := []*Department{}

	tx, err := node.Beginx()
	if err != nil {
		return departments, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "name", "station").
		From("department").
		OrderBy("name ASC").
		RunWith(tx).Query()
	if err != nil {
		return departments, fmt.Errorf("getDepartmentsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var department Department
		err := rows.Scan(
			&department.ID,
			&department.Name,
			&department.StationID)
		if err != nil {
			return departments, fmt.Errorf("getDepartmentsWithSelect: %s", err)
		}
		departments = append(departments, &department)
	}
	if err := rows.Err(); err != nil {
		return departments, fmt.Errorf("getDepartmentsWithSelect: %s", err)
	}
	return departments, nil
}

// GetDepartment returns the Department with the given ID
func GetDepartment(node sqalx.Node, id string) (*Department, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	departments, err := getDepartmentsWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, fmt.Errorf("department %s %w", id, ErrNotFound)
	}
	return departments[0], nil
}

// Units returns the units of this department
func (department *Department) Units(node sqalx.Node) ([]*Unit, error) {
	s := sdb.Select().
		Where(sq.Eq{"department": department.ID})
	return getUnitsWithSelect(node, s)
}
