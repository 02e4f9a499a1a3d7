package dispatch

import (
	"testing"

	"github.com/gbl08ma/firedispatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() Directory {
	return Directory{
		Departments: []*types.Department{
			{ID: "rescue", Name: "Rescue", StationID: "alpha"},
			{ID: "admin", Name: "Administration", StationID: "alpha"},
			{ID: "hazmat", Name: "Hazmat", StationID: "bravo"},
		},
		Units: []*types.Unit{
			{ID: "r1", Name: "Rescue 1", DepartmentID: "rescue"},
			{ID: "r2", Name: "Rescue 2", DepartmentID: "rescue"},
			{ID: "h1", Name: "Hazmat 1", DepartmentID: "hazmat"},
		},
	}
}

func str(s string) *string {
	return &s
}

func codes(fields []FieldError) []string {
	result := []string{}
	for _, f := range fields {
		result = append(result, f.Code)
	}
	return result
}

func TestValidateAssignment(t *testing.T) {
	dir := testDirectory()
	tests := []struct {
		name       string
		station    *string
		department *string
		unit       *string
		want       []string
	}{
		{"valid with unit", str("alpha"), str("rescue"), str("r2"), []string{}},
		{"valid without units", str("alpha"), str("admin"), nil, []string{}},
		{"valid without units, empty unit", str("alpha"), str("admin"), str(""), []string{}},
		{"missing department", str("alpha"), nil, str("r1"), []string{CodeDepartmentRequired}},
		{"empty department", str("alpha"), str(""), nil, []string{CodeDepartmentRequired}},
		{"missing station", nil, str("rescue"), str("r1"), []string{CodeStationRequired}},
		{"empty station", str(""), str("rescue"), str("r1"), []string{CodeStationRequired}},
		{"missing station and department", nil, nil, nil, []string{CodeStationRequired, CodeDepartmentRequired}},
		{"department of other station", str("alpha"), str("hazmat"), str("h1"), []string{CodeDepartmentStationMismatch}},
		{"unknown department", str("alpha"), str("ghost"), nil, []string{CodeDepartmentStationMismatch}},
		{"missing unit", str("alpha"), str("rescue"), nil, []string{CodeUnitRequired}},
		{"unit of other department", str("alpha"), str("rescue"), str("h1"), []string{CodeUnitDepartmentMismatch}},
		{"unknown unit", str("alpha"), str("rescue"), str("r9"), []string{CodeUnitDepartmentMismatch}},
		{"unit for department without units", str("alpha"), str("admin"), str("u1"), []string{CodeUnitDepartmentMismatch}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(ValidateAssignment(dir, tt.station, tt.department, tt.unit)))
		})
	}
}

func TestValidateAssignmentRejectsEveryForeignUnit(t *testing.T) {
	dir := testDirectory()
	for _, d := range dir.Departments {
		for _, u := range dir.Units {
			if u.DepartmentID == d.ID {
				continue
			}
			fields := ValidateAssignment(dir, &d.StationID, &d.ID, &u.ID)
			require.Len(t, fields, 1, "%s/%s", d.ID, u.ID)
			assert.Equal(t, CodeUnitDepartmentMismatch, fields[0].Code)
			assert.Equal(t, "unitId", fields[0].Field)
		}
	}
}

func TestSelectables(t *testing.T) {
	dir := testDirectory()

	departments := SelectableDepartments(dir, "alpha")
	require.Len(t, departments, 2)
	assert.Equal(t, "rescue", departments[0].ID)
	assert.Equal(t, "admin", departments[1].ID)
	assert.Empty(t, SelectableDepartments(dir, "charlie"))

	units := SelectableUnits(dir, "rescue")
	require.Len(t, units, 2)
	assert.Empty(t, SelectableUnits(dir, "admin"))

	assert.True(t, UnitRequired(dir, "rescue"))
	assert.False(t, UnitRequired(dir, "admin"))
}

func TestAssignmentSelectDepartment(t *testing.T) {
	a := &Assignment{StationID: "alpha", DepartmentID: "rescue", UnitID: "r1"}
	assert.Empty(t, a.Validate(testDirectory()))

	a.SelectDepartment("rescue")
	assert.Equal(t, "", a.UnitID, "unit is cleared even if the department is the same")
	assert.Equal(t, []string{CodeUnitRequired}, codes(a.Validate(testDirectory())))

	a.UnitID = "r1"
	a.SelectDepartment("admin")
	assert.Equal(t, "admin", a.DepartmentID)
	assert.Equal(t, "", a.UnitID)
	assert.Empty(t, a.Validate(testDirectory()))
}
