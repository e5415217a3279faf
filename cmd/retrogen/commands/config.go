package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Malifforas/music/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage contexts",
	Long: `Manage named contexts holding generation defaults and storage locations.

Examples:
  retrogen config add-context chip --scale dorian --tempo 140
  retrogen config add-context cloud --store s3://my-bucket/music?region=eu-west-1
  retrogen config use-context chip
  retrogen config set layout simultaneous
  retrogen config list-contexts`,
}

// newContext is filled by the add-context flags.
var newContext cli.Context

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		ctx := newContext
		if err := cfg.AddContext(args[0], &ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Context %q added.\n", args[0])
		if cfg.CurrentContext == args[0] {
			fmt.Fprintf(cmd.OutOrStdout(), "Context %q is now current.\n", args[0])
		}
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted.\n", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q.\n", args[0])
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Display the current context name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No current context set.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CurrentContext)
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context [name]",
	Short: "Show a context (default: the current one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := contextName
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" && cfg.CurrentContext == "" {
			return fmt.Errorf("no current context; pass a name or run 'retrogen config use-context'")
		}
		ctx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}
		return outputResult(cmd, ctx)
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No contexts configured.")
			fmt.Fprintln(cmd.OutOrStdout(), "Create one with: retrogen config add-context <name>")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tSCALE\tTEMPO\tSTORE")
		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			store := ctx.Store
			if store == "" {
				store = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, ctx.ScaleOrDefault(),
				strconv.FormatFloat(ctx.TempoOrDefault(), 'g', -1, 64), store)
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the whole configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", cfg.Path())
		return outputResult(cmd, cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in a context (default: the current one)",
	Long: `Set a value in the context selected with -c, or the current context.

Keys: scale, tempo, layout, bass_mode, velocity, instruments, library,
store, log_file, extra.<name>`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := contextName
		if name == "" {
			name = cfg.CurrentContext
		}
		if name == "" {
			return fmt.Errorf("no context selected; use -c or 'retrogen config use-context'")
		}
		ctx, err := cfg.GetContext(name)
		if err != nil {
			return err
		}
		if err := ctx.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s (context: %s)\n", args[0], args[1], name)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a value from a context (default: the current one)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		v, err := ctx.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.StringVar(&newContext.Scale, "scale", "", "default scale")
	f.Float64Var(&newContext.Tempo, "tempo", 0, "default tempo in BPM")
	f.StringVar(&newContext.Layout, "layout", "", "default layout: sequential or simultaneous")
	f.StringVar(&newContext.BassMode, "bass-mode", "", "default bass mode: wrap or strict")
	f.StringVar(&newContext.Velocity, "velocity", "", "default velocity: fixed or dynamic")
	f.StringVar(&newContext.Instruments, "instruments", "", "default instruments: default or random")
	f.StringVar(&newContext.Library, "library", "", "library location: directory or memory://")
	f.StringVar(&newContext.Store, "store", "", "artifact store: directory, memory:// or s3://bucket/prefix")
	f.StringVar(&newContext.LogFile, "log-file", "", "log file")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configCurrentContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)

	rootCmd.AddCommand(configCmd)
}
