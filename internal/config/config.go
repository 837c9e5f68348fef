// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/pkg/coerce"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides of configuration keys, e.g.
// RATE_IMPACT_SCENARIO_SELECTOR.
const EnvPrefix = "RATE_IMPACT"

// Configuration holds all configuration for a projection run.
type Configuration struct {
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
	Region      string            `yaml:"region,omitempty"`
	ApplyPreset bool              `yaml:"applyPreset,omitempty"`
	Scenario    ScenarioConfig    `yaml:"scenario"`
	Holdings    engine.HoldingSet `yaml:"holdings"`

	unknownKeys []string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, pdf
	File   string `yaml:"file,omitempty"`
}

// ScenarioConfig is the user-facing rate shock selection. Selector accepts a
// canned bps value or name ("-50", "moderate") or "custom".
type ScenarioConfig struct {
	Selector  string  `yaml:"selector"`
	CustomBps int     `yaml:"customBps"`
	ShowReal  bool    `yaml:"showReal"`
	CPI       float64 `yaml:"cpi"`
}

// Default returns the configuration used for anything a file or request
// leaves out.
func Default() Configuration {
	return Configuration{
		Output:   OutputConfig{Format: constants.OutputFormatPretty},
		Region:   constants.DefaultRegion,
		Scenario: ScenarioConfig{Selector: string(engine.SelectorModerate), CPI: 0.025},
		Holdings: DefaultHoldings(),
	}
}

// DefaultHoldings returns the sample household used when holdings are omitted.
func DefaultHoldings() engine.HoldingSet {
	return engine.HoldingSet{
		MoneyMarket: engine.MoneyMarket{Include: true, Balance: 250000, APY: 0.045, Beta: 0.9},
		CDs:         []engine.CD{{Balance: 100000, APY: 0.052, MonthsToRenew: 6, Passthrough: 0.7}},
		BondFund:    engine.BondFund{Include: true, Value: 300000, SECYield: 0.045, Duration: 5, Passthrough: 0.9},
		MYGA:        engine.MYGA{Include: true, Amount: 150000, Rate: 0.053, Term: 5, RiderCount: 0},
		FIA:         engine.FIA{Include: true, Amount: 200000, Cap: 0.06, Participation: 1.7, RiderFee: 0.01, PayoutFactor: 0.055, StartAge: 60},
		SPIA:        engine.SPIA{Include: false, Premium: 150000, PayoutFactor: 0.072},
		HELOC:       engine.HELOC{Include: false, Balance: 0, Margin: 0.01},
	}
}

// decoderOptions makes every decode lenient: numbers given as text are
// parsed, and text that is not a number becomes 0. Lists given replace the
// defaults rather than merging into them. Keys that match no field are
// recorded in md.
func decoderOptions(md *mapstructure.Metadata) viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = coerce.DecodeHook()
		dc.WeaklyTypedInput = true
		dc.ZeroFields = true
		dc.Metadata = md
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return unmarshal(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return unmarshal(v)
}

// DecodeMap decodes an already parsed document, such as a JSON request body,
// over the defaults.
func DecodeMap(input map[string]interface{}) (*Configuration, error) {
	configuration := Default()
	var md mapstructure.Metadata
	dc := &mapstructure.DecoderConfig{Result: &configuration}
	decoderOptions(&md)(dc)

	decoder, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.unknownKeys = sortedKeys(md.Unused)
	return &configuration, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Configuration, error) {
	configuration := Default()
	var md mapstructure.Metadata
	if err := v.Unmarshal(&configuration, decoderOptions(&md)); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.unknownKeys = sortedKeys(md.Unused)
	return &configuration, nil
}

func sortedKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return sorted
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	h := c.Holdings
	validator := validation.ConfigValidator{
		Amounts: []validation.HoldingAmount{
			{Name: "Money market balance", Amount: h.MoneyMarket.Balance, Included: h.MoneyMarket.Include},
			{Name: "Bond fund value", Amount: h.BondFund.Value, Included: h.BondFund.Include},
			{Name: "MYGA amount", Amount: h.MYGA.Amount, Included: h.MYGA.Include},
			{Name: "FIA amount", Amount: h.FIA.Amount, Included: h.FIA.Include},
			{Name: "SPIA premium", Amount: h.SPIA.Premium, Included: h.SPIA.Include},
			{Name: "HELOC balance", Amount: h.HELOC.Balance, Included: h.HELOC.Include},
		},
		MYGATerm:    h.MYGA.Term,
		RiderCount:  h.MYGA.RiderCount,
		CPI:         c.Scenario.CPI,
		ShowReal:    c.Scenario.ShowReal,
		Selector:    c.Scenario.Selector,
		UnknownKeys: c.unknownKeys,
	}
	for i, cd := range h.CDs {
		validator.Amounts = append(validator.Amounts, validation.HoldingAmount{Name: fmt.Sprintf("CD #%d balance", i+1), Amount: cd.Balance, Included: true})
		validator.MonthsToRenew = append(validator.MonthsToRenew, cd.MonthsToRenew)
	}
	return validator.ValidateAll()
}
