package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appLog "moonday/internal/log"
	"moonday/internal/refresh"
)

var outputPath string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write moonday events to an .ics file",
	Long: `Computes moondays from now until the end of --up-to-year and writes
them as an iCalendar file. Use "-o -" to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the first 50 moondays",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "moondays.ics", "Output file, or - for stdout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := refresh.Generate(newGenerator(), cfg, now())
	if err != nil {
		return err
	}

	if outputPath == "-" {
		_, err := cmd.OutOrStdout().Write(snap.ICS)
		return err
	}

	if err := os.WriteFile(outputPath, snap.ICS, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	appLog.Info("calendar written", "path", outputPath, "events", len(snap.Events), "up_to_year", snap.Options.UpToYear)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d moondays to %s\n", len(snap.Events), outputPath)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := refresh.Generate(newGenerator(), cfg, now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snap.Events) == 0 {
		fmt.Fprintln(out, "No moondays in range.")
		return nil
	}

	rows := snap.Preview()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOON PHASE\tDATE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Display)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Listing %d of %d moondays.\n", len(rows), len(snap.Events))
	return nil
}
