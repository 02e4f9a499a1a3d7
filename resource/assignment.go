package resource

import (
	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/yarf-framework/yarf"
)

// AssignmentValidation composites resource
type AssignmentValidation struct {
	resource
}

type apiAssignment struct {
	StationID    *string `msgpack:"station" json:"station"`
	DepartmentID *string `msgpack:"department" json:"department"`
	UnitID       *string `msgpack:"unit" json:"unit"`
}

type apiAssignmentResult struct {
	Valid        bool      `msgpack:"valid" json:"valid" xml:"valid"`
	UnitRequired bool      `msgpack:"unitRequired" json:"unitRequired" xml:"unitRequired"`
	Units        []apiUnit `msgpack:"units" json:"units" xml:"units"`
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *AssignmentValidation) WithCoordinator(coordinator *dispatch.Coordinator) *AssignmentValidation {
	r.coordinator = coordinator
	return r
}

// Post serves HTTP POST requests on this resource
func (r *AssignmentValidation) Post(c *yarf.Context) error {
	var request apiAssignment
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
	}

	dir, err := r.coordinator.Directory()
	if err != nil {
		return err
	}
	fields := dispatch.ValidateAssignment(dir, request.StationID, request.DepartmentID, request.UnitID)
	if len(fields) > 0 {
		return RenderError(c, dispatch.ValidationError(fields...))
	}

	RenderData(c, apiAssignmentResult{
		Valid:        true,
		UnitRequired: dispatch.UnitRequired(dir, *request.DepartmentID),
		Units:        toAPIUnits(dispatch.SelectableUnits(dir, *request.DepartmentID)),
	})
	return nil
}
