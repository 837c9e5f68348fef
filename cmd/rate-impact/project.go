package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iwvelando/rate-impact/internal/config"
	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/internal/lead"
	"github.com/iwvelando/rate-impact/internal/presets"
	"github.com/iwvelando/rate-impact/internal/report"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/output"
	"github.com/iwvelando/rate-impact/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// projectFlags override the configuration file for a single run.
type projectFlags struct {
	outputFormat string
	outputFile   string
	region       string
	scenario     string
	customBps    int
	real         bool
	cpi          float64
}

func (f *projectFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.outputFormat, "output-format", "", "type of output override: pretty, csv, json, pdf")
	flags.StringVar(&f.outputFile, "output-file", "", "write output to this file instead of stdout")
	flags.StringVar(&f.region, "region", "", "apply this region's preset rates")
	flags.StringVar(&f.scenario, "scenario", "", "rate shock: -25, -50, -100, conservative, moderate, aggressive or custom")
	flags.IntVar(&f.customBps, "custom-bps", 0, "custom rate shock in basis points")
	flags.BoolVar(&f.real, "real", false, "report inflation-adjusted values")
	flags.Float64Var(&f.cpi, "cpi", 0, "annual inflation rate used for real values (0.025 = 2.5%)")
}

// apply writes every flag the user set over the loaded configuration.
func (f *projectFlags) apply(cmd *cobra.Command, conf *config.Configuration) {
	flags := cmd.Flags()
	if flags.Changed("output-format") {
		conf.Output.Format = f.outputFormat
	}
	if flags.Changed("output-file") {
		conf.Output.File = f.outputFile
	}
	if flags.Changed("region") {
		conf.Region = f.region
		conf.ApplyPreset = true
	}
	if flags.Changed("scenario") {
		conf.Scenario.Selector = f.scenario
	}
	if flags.Changed("custom-bps") {
		conf.Scenario.CustomBps = f.customBps
		if !flags.Changed("scenario") {
			conf.Scenario.Selector = string(engine.SelectorCustom)
		}
	}
	if flags.Changed("real") {
		conf.Scenario.ShowReal = f.real
	}
	if flags.Changed("cpi") {
		conf.Scenario.CPI = f.cpi
	}
}

func newProjectCmd(root *rootOptions) *cobra.Command {
	flags := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project income under the selected rate shock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjection(cmd, root, flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	flags := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Project income under every canned rate shock",
		Long: `compare projects the holdings under the conservative, moderate and
aggressive shocks, followed by the selected scenario when it is not one of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjection(cmd, root, flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func runProjection(cmd *cobra.Command, root *rootOptions, flags *projectFlags, compare bool) error {
	const op = "main.runProjection"

	conf, err := root.loadConfiguration(cmd)
	if err != nil {
		return err
	}
	flags.apply(cmd, conf)

	logger, err := initializeLogger(conf.Logging, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", op),
		)
	}

	store, err := presetStore(cmd, logger)
	if err != nil {
		return err
	}
	holdings, scenario, warnings, err := conf.Resolve(cmd.Context(), store)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		logger.Warn("Preset warning: "+warning,
			zap.String("op", op),
			zap.String("region", conf.Region),
		)
	}

	var results []engine.Result
	if compare {
		results = engine.Compare(holdings, scenario)
	} else {
		results = []engine.Result{engine.Project(holdings, scenario)}
	}
	logger.Debug("projection computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
	)

	return writeResults(cmd.OutOrStdout(), conf.Output.File, outputFormat, results)
}

// presetStore returns the Redis-backed store when PRESETS_REDIS_URL is set
// and reachable, and the built-in table otherwise.
func presetStore(cmd *cobra.Command, logger *zap.Logger) (presets.Store, error) {
	env, err := config.LoadEnvironment(config.DefaultEnvFiles...)
	if err != nil {
		return nil, err
	}
	return presets.NewStore(cmd.Context(), env.PresetsRedisURL, presets.DefaultKeyPrefix, logger), nil
}

func writeResults(stdout io.Writer, file, outputFormat string, results []engine.Result) (err error) {
	if outputFormat == constants.OutputFormatPDF && file == "" {
		file = constants.DefaultPDFOutputFile
	}

	w := stdout
	if file != "" {
		f, createErr := os.Create(file)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	if outputFormat != constants.OutputFormatPDF {
		return output.Write(w, outputFormat, results)
	}

	first := results[0]
	bookingURL, err := lead.BookingURL(constants.DefaultBookingURL, first.Shock.Bps, first.Display().Totals.Delta, constants.DefaultProduct, lead.Attribution{})
	if err != nil {
		return err
	}
	return report.Write(w, results, report.Options{
		Generated:  time.Now(),
		BookingURL: bookingURL,
	})
}
