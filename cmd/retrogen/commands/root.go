package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Malifforas/music/pkg/cli"
)

const (
	appName = "retrogen"

	// configEnv overrides the config file location.
	configEnv = "RETROGEN_CONFIG"
)

var (
	// Global flags
	cfgFile      string
	contextName  string
	outputFile   string
	inputFile    string
	outputFormat string
	outputJSON   bool
	verbose      bool
	logFile      string

	// Global configuration
	globalConfig  *cli.Config
	configLoadErr error

	logOutput io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "retrogen",
	Short: "Procedural retro-game music generator",
	Long: `retrogen composes short three-voice pieces (melody, harmony, bass) from a
scale and a chord progression, and writes them as Standard MIDI Files.

Every composition is recorded in a local library together with its seed, so
it can be shown, analysed and re-exported later.

Configuration is stored in ~/.retromusic/retrogen/config.yaml and supports
multiple contexts, similar to kubectl's context management.

Examples:
  # Compose in the default minor scale
  retrogen compose

  # Compose a reproducible piece in major over I-IV-V
  retrogen compose --scale major --seed 42 --progression I-IV-V -o tune.mid

  # Show it as a score
  retrogen show <id> --format pretty`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeLogging(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.retromusic/retrogen/config.yaml, env "+configEnv+")")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input request file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "output format: yaml, json, pretty or raw (default depends on the command)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (relative names go to the logs directory)")
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = os.Getenv(configEnv)
	}
	globalConfig, configLoadErr = cli.LoadConfig(appName, path)
}

// getConfig returns the loaded configuration.
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// getContext returns the context selected by -c, or the current one.
func getContext() (*cli.Context, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ResolveContext(contextName)
}

// getFormat returns the output format, honouring --json.
func getFormat() (cli.OutputFormat, error) {
	if outputJSON {
		return cli.FormatJSON, nil
	}
	return cli.ParseFormat(outputFormat)
}

// outputResult writes result to stdout, or to -o when set.
func outputResult(cmd *cobra.Command, result any) error {
	format, err := getFormat()
	if err != nil {
		return err
	}
	if outputFile == "" {
		return cli.Output(cmd.OutOrStdout(), result, format)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := cli.Output(f, result, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	cli.Success(cmd.ErrOrStderr(), "Output written to %s", outputFile)
	return nil
}

func setupLogging(*cobra.Command, []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	name := logFile
	if name == "" {
		if ctx, err := getContext(); err == nil {
			name = ctx.LogFile
		}
	}
	if name != "" {
		path := name
		if cfg, err := getConfig(); err == nil {
			path = cfg.Paths().LogPath(name)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		logOutput = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

func closeLogging() error {
	if logOutput == nil {
		return nil
	}
	err := logOutput.Close()
	logOutput = nil
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return err
}
