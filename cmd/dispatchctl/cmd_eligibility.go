package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newEligibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eligibility <station>",
		Short: "Check whether a station can receive referrals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, closeFn, err := openCoordinator()
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := coordinator.StationEligibility(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Station:          %s\n", args[0])
			fmt.Fprintf(out, "Eligible:         %t\n", e.Eligible)
			if !e.Eligible {
				fmt.Fprintf(out, "Reason:           %s\n", e.Reason)
			}
			fmt.Fprintf(out, "Active alerts:    %d\n", e.Load.ActiveAlerts)
			fmt.Fprintf(out, "Active incidents: %d\n", e.Load.ActiveIncidents)
			return nil
		},
	}
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options <station>",
		Short: "List the stations an incident of a station can be referred to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, closeFn, err := openCoordinator()
			if err != nil {
				return err
			}
			defer closeFn()

			options, err := coordinator.ReferralOptions(args[0])
			if err != nil {
				return err
			}
			t := newTable("Station", "Call sign", "Eligible", "Reason")
			for _, option := range options {
				t.AppendRow(table.Row{option.Station.ID, option.Station.CallSign, option.Eligible, option.Reason})
			}
			renderTable(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
