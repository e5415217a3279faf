package commands

import (
	"bytes"
	"cmp"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Malifforas/music/pkg/analysis"
	"github.com/Malifforas/music/pkg/cli"
)

var flagLimit int

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored composition",
	Long: `Show a stored composition. With --format pretty the three voices are drawn
as a score; other formats print the full record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := getFormat()
		if err != nil {
			return err
		}
		s, closeStudio, err := openStudio(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStudio()

		rec, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if format == cli.FormatPretty {
			st := cli.NewStyles(cli.DefaultTheme)
			sheet := cli.ScoreSheet(st, rec.ID, &rec.Composition)
			sheet.Footer = fmt.Sprintf("seed %d · created %s", rec.Seed, cli.FormatTime(rec.CreatedAt))
			fmt.Fprintln(cmd.OutOrStdout(), sheet.Render(72))
			return nil
		}
		return outputResult(cmd, rec)
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored compositions, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStudio, err := openStudio(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStudio()

		recs, err := s.List(cmd.Context(), flagLimit)
		if err != nil {
			return err
		}
		rows := make([]recordSummary, len(recs))
		for i, rec := range recs {
			rows[i] = summarize(rec)
		}

		if outputFormat != "" || outputJSON {
			return outputResult(cmd, rows)
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No compositions yet.")
			fmt.Fprintln(cmd.OutOrStdout(), "Create one with: retrogen compose")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSCALE\tPROGRESSION\tSEED")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Created, r.Scale, r.Progression, r.Seed)
		}
		return w.Flush()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write the MIDI file of a stored composition",
	Long: `Write the MIDI file of a stored composition to -o (default <id>.mid).
Records whose artifact is missing are rendered again from their seed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, closeStudio, err := openStudio(ctx)
		if err != nil {
			return err
		}
		defer closeStudio()

		data, err := s.MIDI(ctx, args[0])
		if err != nil {
			return err
		}
		if outputFile == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		path := cmp.Or(outputFile, args[0]+".mid")
		n, err := writeFile(ctx, path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		cli.Success(cmd.ErrOrStderr(), "Exported %s (%s)", path, cli.FormatBytes(n))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored composition and its MIDI file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStudio, err := openStudio(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStudio()

		if err := s.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Composition %q deleted.\n", args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Descriptive statistics of a stored composition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStudio, err := openStudio(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStudio()

		rec, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		sum := analysis.Summarize(&rec.Composition)

		if outputFormat != "" || outputJSON {
			return outputResult(cmd, sum)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n\n", sum.Scale, sum.Progression)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VOICE\tEVENTS\tBEATS\tMEAN DUR\tSTD DUR\tDISTINCT\tENTROPY\tMEAN STEP")
		for _, v := range sum.Voices {
			fmt.Fprintf(w, "%s\t%d\t%g\t%.3f\t%.3f\t%d\t%.3f\t%.3f\n",
				v.Voice, v.Events, v.Beats, v.MeanDuration, v.StdDuration, v.Distinct, v.Entropy, v.MeanStep)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of compositions (0 for all)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
}
