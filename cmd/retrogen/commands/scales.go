package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Malifforas/music/pkg/theory"
)

type scaleInfo struct {
	Name    string `json:"name" yaml:"name"`
	Degrees []int  `json:"degrees" yaml:"degrees"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

var scalesCmd = &cobra.Command{
	Use:   "scales",
	Short: "List the built-in scales and progressions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var scales []scaleInfo
		for _, name := range theory.ScaleNames() {
			info := scaleInfo{Name: name, Default: name == theory.DefaultScale}
			for _, d := range theory.Degrees(name) {
				info.Degrees = append(info.Degrees, int(d))
			}
			scales = append(scales, info)
		}
		var progressions []string
		for _, p := range theory.Progressions() {
			progressions = append(progressions, p.String())
		}

		if outputFormat != "" || outputJSON {
			return outputResult(cmd, map[string]any{
				"scales":       scales,
				"progressions": progressions,
			})
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCALE\tDEGREES\tDEFAULT")
		for _, s := range scales {
			degrees := make([]string, len(s.Degrees))
			for i, d := range s.Degrees {
				degrees[i] = fmt.Sprint(d)
			}
			def := ""
			if s.Default {
				def = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, strings.Join(degrees, " "), def)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nProgressions: %s\n", strings.Join(progressions, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scalesCmd)
}
