package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/monetlab/monet/internal/cliconfig"
)

const helpBanner = `
 ███╗   ███╗  ██████╗  ███╗   ██╗ ███████╗ ████████╗
 ████╗ ████║ ██╔═══██╗ ████╗  ██║ ██╔════╝ ╚══██╔══╝
 ██╔████╔██║ ██║   ██║ ██╔██╗ ██║ █████╗      ██║
 ██║╚██╔╝██║ ██║   ██║ ██║╚██╗██║ ██╔══╝      ██║
 ██║ ╚═╝ ██║ ╚██████╔╝ ██║ ╚████║ ███████╗    ██║
 ╚═╝     ╚═╝  ╚═════╝  ╚═╝  ╚═══╝ ╚══════╝    ╚═╝
`

const helpDescription = `
Sort single-particle tracks by motion type, folder by folder.

Highlights:
  - Reads TrackMate, Icy and plain x/y trajectory tables; columns are matched by name.
  - Labels every track Brownian, FBM or CTRW with a model server or a local MSD fit.
  - Writes a copy of each table holding only the rows of the tracks you keep,
    mirrored into MoNet_<folder> next to the input.
  - Configure via file ($HOME/.monet/config.toml), MONET_* env, or flags.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  monet run ~/data/exp1 --filter Brownian
  monet run ~/data/exp1 --classifier msd --journal ~/.monet/runs.db
  monet watch ~/data/incoming --filter FBM --debounce 5s
  monet scan ~/data/exp1
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "monet",
		Short:         "Sort single-particle tracks by motion type",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, &cfg, cfgPath)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.monet/config.toml)")
	flags.StringVar(&cfg.Filter, "filter", cfg.Filter, "motion type to keep: All, Brownian, FBM or CTRW")
	flags.StringVar(&cfg.Classifier, "classifier", cfg.Classifier, "classifier backend: http or msd")
	flags.StringVar(&cfg.ModelURL, "model-url", cfg.ModelURL, "model server base URL")
	flags.StringVar(&cfg.ModelName, "model-name", cfg.ModelName, "served model name")
	flags.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "model server request timeout")
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retries of a failed predict call")
	flags.StringSliceVar(&cfg.Extensions, "ext", cfg.Extensions, "file extensions to process")
	flags.IntVar(&cfg.MinTrackPoints, "min-track-points", cfg.MinTrackPoints, "tracks with fewer points are labeled Unknown")
	flags.StringVar(&cfg.Journal, "journal", cfg.Journal, "SQLite database recording run outcomes (optional)")
	flags.StringVar(&cfg.SettingsDir, "settings-dir", cfg.SettingsDir, "directory for app_settings.json (default: $HOME/.monet)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.IntVar(&cfg.MSDMaxLag, "msd-max-lag", cfg.MSDMaxLag, "largest lag of the MSD fit")
	flags.Float64Var(&cfg.MSDAlphaTolerance, "msd-alpha-tolerance", cfg.MSDAlphaTolerance, "|alpha-1| above which a track is FBM")
	flags.Float64Var(&cfg.MSDTrapFraction, "msd-trap-fraction", cfg.MSDTrapFraction, "immobile step fraction at which a track is CTRW")
	if err := flags.MarkHidden("settings-dir"); err != nil {
		log.Info().Err(err).Msg("failed to hide settings-dir flag")
	}

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Classify and filter every table under a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), &cfg, args)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [input]",
		Short: "Re-run whenever tables appear or change under a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), &cfg, args)
		},
	}
	watchCmd.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "quiet period after the last change before a run")

	scanCmd := &cobra.Command{
		Use:   "scan [input]",
		Short: "List the tables a run would process and their resolved columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.OutOrStdout(), &cfg, args)
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Show a journaled run and its file outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), &cfg, args[0])
		},
	}

	root.AddCommand(runCmd, watchCmd, scanCmd, reportCmd)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("monet")
		os.Exit(1)
	}
}

// loadConfig applies the config file and MONET_* environment on top of the
// flag defaults, leaving explicitly set flags untouched, then validates.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	// The filter remembered from the last session applies unless some source
	// chose one.
	if !changed["filter"] && cfg.Filter == cliconfig.DefaultConfig().Filter {
		cfg.Filter = ""
	}

	return cfg.Validate()
}
