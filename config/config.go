// Package config loads abcbench settings from defaults, a YAML file, the
// environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/weiihann/abcbench/recipe"
	"github.com/weiihann/abcbench/report"
)

const (
	EnvPrefix     = "ABCBENCH"
	EnvConfigFile = "ABCBENCH_CONFIG"

	defaultABCBin       = "abc"
	defaultBenchmarkDir = "."
	defaultResultDir    = "results"
	defaultTimeout      = 300 * time.Second
	defaultLibName      = "temp.aig"
	defaultLogFile      = "log.txt"
	defaultResultsBase  = "run_abc_stats"
	defaultFormat       = "csv"
	defaultRetryDelay   = time.Second
)

var defaultModes = []string{"", "-c", "-x"}

// Config is everything a sweep or a library build needs. It is passed
// explicitly; nothing here is process-global.
type Config struct {
	ABCBin string `mapstructure:"abc_bin"`
	ABCSrc string `mapstructure:"abc_src"`
	// ABCEnv holds KEY=VALUE pairs added to the environment abc runs in.
	ABCEnv []string `mapstructure:"abc_env"`

	BenchmarkDir string   `mapstructure:"benchmark_dir"`
	BenchmarkExt string   `mapstructure:"benchmark_ext"`
	Benchmarks   []string `mapstructure:"benchmarks"`
	Modes        []string `mapstructure:"modes"`
	BenchScript  string   `mapstructure:"bench_script"`

	Timeout         time.Duration `mapstructure:"timeout"`
	ContinueOnError bool          `mapstructure:"continue_on_error"`
	Retries         int           `mapstructure:"retries"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`

	ResultDir   string `mapstructure:"result_dir"`
	LogFile     string `mapstructure:"log_file"`
	ResultsFile string `mapstructure:"results_file"`
	MetricsFile string `mapstructure:"metrics_file"`
	Format      string `mapstructure:"format"`

	LibName       string        `mapstructure:"lib_name"`
	LibBenchmarks []string      `mapstructure:"lib_benchmarks"`
	LibRecipe     string        `mapstructure:"lib_recipe"`
	LibTimeout    time.Duration `mapstructure:"lib_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("abc_bin", defaultABCBin)
	v.SetDefault("abc_env", []string{})
	v.SetDefault("benchmark_dir", defaultBenchmarkDir)
	v.SetDefault("benchmark_ext", recipe.DefaultExtension)
	v.SetDefault("benchmarks", []string{})
	v.SetDefault("modes", defaultModes)
	v.SetDefault("bench_script", recipe.DefaultBenchmarkScript)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("continue_on_error", false)
	v.SetDefault("retries", 0)
	v.SetDefault("retry_interval", defaultRetryDelay)
	v.SetDefault("result_dir", defaultResultDir)
	v.SetDefault("log_file", defaultLogFile)
	v.SetDefault("results_file", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("format", defaultFormat)
	v.SetDefault("lib_name", defaultLibName)
	v.SetDefault("lib_benchmarks", []string{})
	v.SetDefault("lib_recipe", recipe.DefaultLibraryRecipe)
	v.SetDefault("lib_timeout", time.Duration(0))
}

// Load reads configuration. path may be empty, in which case
// ABCBENCH_CONFIG is consulted and then abcbench.yaml in the working
// directory; a missing default file is not an error. Flags that were set
// on the command line override everything else; their names use dashes
// where the keys use underscores.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = v.GetString("config")
		explicit = path != ""
	}

	if explicit {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("abcbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return decode(v.AllSettings())
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error

	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" {
			return
		}

		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})

	return bindErr
}

func decode(settings map[string]any) (*Config, error) {
	var cfg Config
	decoderConfig := &mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHookFunc reads a bare number given for a duration key,
// such as `timeout: 300` or ABCBENCH_TIMEOUT=300, as seconds. Values
// already typed as time.Duration and strings with a unit pass through.
func secondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != durationType || f == durationType {
			return data, nil
		}

		v := reflect.ValueOf(data)

		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(v.Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(v.Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(v.Float() * float64(time.Second)), nil
		case reflect.String:
			secs, err := strconv.ParseFloat(v.String(), 64)
			if err != nil {
				return data, nil
			}

			return time.Duration(secs * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.ABCBin == "" && cfg.ABCSrc == "" {
		cfg.ABCBin = defaultABCBin
	}
	if cfg.BenchmarkExt == "" {
		cfg.BenchmarkExt = recipe.DefaultExtension
	}
	if cfg.BenchScript == "" {
		cfg.BenchScript = recipe.DefaultBenchmarkScript
	}
	if cfg.Modes == nil {
		cfg.Modes = slices.Clone(defaultModes)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.ResultsFile == "" {
		cfg.ResultsFile = defaultResultsBase + report.Extension(cfg.Format)
	}
	if cfg.LibName == "" {
		cfg.LibName = defaultLibName
	}
	if cfg.LibRecipe == "" {
		cfg.LibRecipe = recipe.DefaultLibraryRecipe
	}
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if c.ABCBin == "" && c.ABCSrc == "" {
		return errors.New("abc_bin or abc_src must be set")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.LibTimeout < 0 {
		return fmt.Errorf("lib_timeout must not be negative, got %s", c.LibTimeout)
	}
	for _, kv := range c.ABCEnv {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("abc_env entry %q is not KEY=VALUE", kv)
		}
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if !slices.Contains(report.Formats, c.Format) {
		return fmt.Errorf("invalid format '%s'. Must be one of: %s",
			c.Format, strings.Join(report.Formats, ", "))
	}

	return nil
}

// Resolve places a relative output file under ResultDir.
func (c *Config) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(c.ResultDir, name)
}
