package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"moonday/internal/ics"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "List the events of an exported .ics file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	body, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	events, err := ics.ParseCalendar(body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSUMMARY\tREMINDER")
	for _, ev := range events {
		remind := "-"
		if len(ev.Alarms) > 0 {
			remind = ev.Alarms[0].Format("2006/01/02 15:04Z")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ev.Start.Format("2006/01/02"), ev.Summary, remind)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d events\n", len(events))
	return nil
}
