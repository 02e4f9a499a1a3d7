package main

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// now is replaced in tests
var now = time.Now

func newUrgentCmd() *cobra.Command {
	var station string
	cmd := &cobra.Command{
		Use:   "urgent",
		Short: "List ongoing incidents, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coordinator, closeFn, err := openCoordinator()
			if err != nil {
				return err
			}
			defer closeFn()

			ranked, err := coordinator.Ranked(station)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				fmt.Fprintln(out, "No ongoing incidents")
				return nil
			}

			t := newTable("Incident", "Priority", "Status", "Station", "Age")
			for _, incident := range ranked {
				age := durafmt.Parse(now().Sub(incident.CreatedAt).Truncate(time.Minute)).LimitFirstN(2)
				t.AppendRow(table.Row{incident.ID, incident.Priority, incident.Status, incident.StationID, age.String()})
			}
			renderTable(out, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&station, "station", "", "Only list incidents of this station")
	return cmd
}
