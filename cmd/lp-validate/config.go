package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ScottSallinen/lp-validate/dataset"
	"github.com/ScottSallinen/lp-validate/rule"
	"github.com/ScottSallinen/lp-validate/validate"
)

const envPrefix = "LPV"

// Rule names accepted by --rule.
const (
	RuleEquivalence = "equivalence"
	RuleEpsilon     = "epsilon"
	RuleTolerance   = "tolerance"
	RulePathLength  = "path-length"
	RuleExpression  = "expression"
)

var ErrConfig = errors.New("invalid configuration")

// Config holds every setting of a run. Precedence: flags, then LPV_* environment
// variables (a .env file is loaded into the environment first), then the config file.
type Config struct {
	Reference   string  `mapstructure:"reference"`
	Output      string  `mapstructure:"output"`
	Rule        string  `mapstructure:"rule"`
	Epsilon     float64 `mapstructure:"epsilon"`    // Epsilon of epsilon/path-length, tolerance of tolerance. 0 uses the rule default.
	Expression  string  `mapstructure:"expression"` // CEL source over `candidate` and `reference`.
	ValueType   string  `mapstructure:"value-type"` // int or float. Empty uses the rule's natural type.
	Verbose     bool    `mapstructure:"verbose"`
	MaxReported int     `mapstructure:"max-reported"`
	Deviations  int     `mapstructure:"deviations"`
	Workers     int     `mapstructure:"workers"`
	SkipHidden  bool    `mapstructure:"skip-hidden"`
	Summary     string  `mapstructure:"summary"` // YAML summary path. Empty writes none.
	Debug       int     `mapstructure:"debug"`
	NoColour    bool    `mapstructure:"no-colour"`
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Optional YAML/TOML config file")
	flags.String("env-file", ".env", "Optional .env file loaded into the environment")
	flags.Int("debug", 0, "Log level: 0 info, 1 debug, 2 trace")
	flags.Bool("no-colour", false, "Disable coloured log output")
	flags.String("rule", RuleEquivalence, "Equivalence rule: equivalence, epsilon, tolerance, path-length or expression")
	flags.Float64("epsilon", 0, "Epsilon (or tolerance) of the numeric rules; 0 uses the rule default")
	flags.String("expression", "", "CEL expression for the expression rule, e.g. 'candidate >= reference'")
	flags.String("value-type", "", "Value type of the expression or equivalence rule: int or float")
	flags.Int("workers", 1, "Files parsed concurrently")
	flags.Bool("skip-hidden", false, "Ignore files whose name starts with '.' or '_'")
}

// Loads the configuration for the command's flags.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		// Ignore a missing file; the environment is used as is.
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	v.SetDefault("max-reported", validate.DefaultMaxReported)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return &cfg, nil
}

func (c *Config) LoadOptions() dataset.Options {
	return dataset.Options{Workers: c.Workers, SkipHidden: c.SkipHidden}
}

func (c *Config) ValidateConfig() validate.Config {
	return validate.Config{
		ReferencePath: c.Reference,
		OutputPath:    c.Output,
		Options: validate.Options{
			Verbose:     c.Verbose,
			MaxReported: c.MaxReported,
			Deviations:  c.Deviations,
		},
		Load: c.LoadOptions(),
	}
}

// Exactly one of Int and Float is set.
type Selection struct {
	Name  string
	Int   rule.Rule[int64]
	Float rule.Rule[float64]
}

func (c *Config) SelectRule() (Selection, error) {
	sel := Selection{Name: c.Rule}
	valueType := strings.ToLower(c.ValueType)
	if valueType != "" && valueType != "int" && valueType != "float" {
		return sel, fmt.Errorf("%w: unknown value type '%s'", ErrConfig, c.ValueType)
	}
	numeric := func(r rule.Rule[float64]) (Selection, error) {
		if valueType == "int" {
			return sel, fmt.Errorf("%w: rule %s compares float values", ErrConfig, c.Rule)
		}
		sel.Float = r
		return sel, nil
	}

	switch c.Rule {
	case RuleEquivalence, "":
		sel.Name = RuleEquivalence
		if valueType == "float" {
			sel.Float = rule.FloatEquivalence{}
		} else {
			sel.Int = rule.Equivalence{}
		}
		return sel, nil
	case RuleEpsilon:
		return numeric(rule.NewEpsilon(c.Epsilon))
	case RuleTolerance:
		return numeric(rule.NewTolerance(c.Epsilon))
	case RulePathLength:
		return numeric(rule.NewPathLength(c.Epsilon))
	case RuleExpression:
		if c.Expression == "" {
			return sel, fmt.Errorf("%w: the expression rule needs --expression", ErrConfig)
		}
		var err error
		if valueType == "int" {
			sel.Int, err = rule.NewExpression[int64](c.Expression)
		} else {
			sel.Float, err = rule.NewExpression[float64](c.Expression)
		}
		if err != nil {
			return sel, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return sel, nil
	}
	return sel, fmt.Errorf("%w: unknown rule '%s'", ErrConfig, c.Rule)
}
