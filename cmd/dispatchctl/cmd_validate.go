package main

import (
	"errors"
	"fmt"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/spf13/cobra"
)

var errInvalidAssignment = errors.New("invalid assignment")

func newValidateCmd() *cobra.Command {
	var station, department, unit string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a department and unit assignment for a station",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coordinator, closeFn, err := openCoordinator()
			if err != nil {
				return err
			}
			defer closeFn()

			var unitID *string
			if cmd.Flags().Changed("unit") {
				unitID = &unit
			}
			fieldErrors, err := coordinator.ValidateAssignment(&station, &department, unitID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(fieldErrors) == 0 {
				fmt.Fprintln(out, "Assignment is valid")
				return nil
			}

			for _, fe := range fieldErrors {
				fmt.Fprintf(out, "%s: %s (%s)\n", fe.Field, fe.Message, fe.Code)
				if fe.Code != dispatch.CodeUnitRequired {
					continue
				}
				dir, err := coordinator.Directory()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Units of the department:")
				for _, u := range dispatch.SelectableUnits(dir, department) {
					fmt.Fprintf(out, "  %s (%s)\n", u.ID, u.Name)
				}
			}
			return errInvalidAssignment
		},
	}
	f := cmd.Flags()
	f.StringVar(&station, "station", "", "Station ID (required)")
	f.StringVar(&department, "department", "", "Department ID (required)")
	f.StringVar(&unit, "unit", "", "Unit ID")
	_ = cmd.MarkFlagRequired("station")
	_ = cmd.MarkFlagRequired("department")
	return cmd
}
