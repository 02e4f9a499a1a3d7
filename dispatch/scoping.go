package dispatch

import (
	"github.com/gbl08ma/firedispatch/types"
	"github.com/thoas/go-funk"
)

// Directory is a snapshot of the reference directory used to validate personnel assignments
type Directory struct {
	Departments []*types.Department
	Units       []*types.Unit
}

func (dir Directory) department(id string) *types.Department {
	for _, d := range dir.Departments {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// SelectableDepartments returns the departments owned by the given station
func SelectableDepartments(dir Directory, stationID string) []*types.Department {
	return funk.Filter(dir.Departments, func(d *types.Department) bool {
		return d.StationID == stationID
	}).([]*types.Department)
}

// SelectableUnits returns the units owned by the given department
func SelectableUnits(dir Directory, departmentID string) []*types.Unit {
	return funk.Filter(dir.Units, func(u *types.Unit) bool {
		return u.DepartmentID == departmentID
	}).([]*types.Unit)
}

// UnitRequired returns whether assignments to the given department must name a unit,
// which is the case when the department owns at least one unit
func UnitRequired(dir Directory, departmentID string) bool {
	return funk.Find(dir.Units, func(u *types.Unit) bool {
		return u.DepartmentID == departmentID
	}) != nil
}

// ValidateAssignment checks that the department belongs to the station and that the
// unit belongs to the department. nil or empty IDs count as missing.
// It returns an empty slice when the assignment is valid
func ValidateAssignment(dir Directory, stationID, departmentID, unitID *string) []FieldError {
	errs := []FieldError{}
	if isBlank(stationID) {
		errs = append(errs, FieldError{
			Field:   "stationId",
			Code:    CodeStationRequired,
			Message: "A station is required",
		})
	}
	if isBlank(departmentID) {
		errs = append(errs, FieldError{
			Field:   "departmentId",
			Code:    CodeDepartmentRequired,
			Message: "A department must be selected",
		})
	}
	if len(errs) > 0 {
		return errs
	}

	department := dir.department(*departmentID)
	if department == nil || department.StationID != *stationID {
		return append(errs, FieldError{
			Field:   "departmentId",
			Code:    CodeDepartmentStationMismatch,
			Message: "The department does not belong to the station",
		})
	}

	units := SelectableUnits(dir, department.ID)
	switch {
	case len(units) == 0 && !isBlank(unitID):
		errs = append(errs, FieldError{
			Field:   "unitId",
			Code:    CodeUnitDepartmentMismatch,
			Message: "The department has no units",
		})
	case len(units) > 0 && isBlank(unitID):
		errs = append(errs, FieldError{
			Field:   "unitId",
			Code:    CodeUnitRequired,
			Message: "A unit must be selected",
		})
	case len(units) > 0 && funk.Find(units, func(u *types.Unit) bool { return u.ID == *unitID }) == nil:
		errs = append(errs, FieldError{
			Field:   "unitId",
			Code:    CodeUnitDepartmentMismatch,
			Message: "The unit does not belong to the department",
		})
	}
	return errs
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

// Assignment holds the in-progress selections of an assignment form
type Assignment struct {
	StationID    string `json:"stationId" msgpack:"stationId"`
	DepartmentID string `json:"departmentId" msgpack:"departmentId"`
	UnitID       string `json:"unitId" msgpack:"unitId"`
}

// SelectDepartment changes the selected department. The selected unit is always
// cleared, even if the department did not change
func (a *Assignment) SelectDepartment(departmentID string) {
	a.DepartmentID = departmentID
	a.UnitID = ""
}

// Validate validates the assignment against dir
func (a *Assignment) Validate(dir Directory) []FieldError {
	return ValidateAssignment(dir, &a.StationID, &a.DepartmentID, &a.UnitID)
}
