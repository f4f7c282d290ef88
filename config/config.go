package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"

	"github.com/kilianp07/maintsched/core/cp"
	"github.com/kilianp07/maintsched/core/formulation"
	"github.com/kilianp07/maintsched/core/metrics"
	"github.com/kilianp07/maintsched/core/runlog"
	"github.com/kilianp07/maintsched/infra/logger"
	"github.com/kilianp07/maintsched/infra/mqtt"
	"github.com/kilianp07/maintsched/pkg/export"
)

// EnvPrefix prefixes environment overrides, e.g. MAINT_SOLVER__WORKERS=4.
const EnvPrefix = "MAINT_"

type Config struct {
	Solver  cp.Config           `json:"solver"`
	Model   formulation.Options `json:"model"`
	Metrics metrics.Config      `json:"metrics"`
	RunLog  runlog.Config       `json:"run_log"`
	MQTT    mqtt.Config         `json:"mqtt"`
	Report  ReportConfig        `json:"report"`
	Log     logger.Config       `json:"log"`
}

// ReportConfig selects how a solved schedule is written.
type ReportConfig struct {
	// Format is one of json, csv, yaml, solution.
	Format string `json:"format"`
	// Path is the output file. Empty writes to stdout.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *ReportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = export.FormatJSON
	}
}

// Validate checks the format name.
func (c ReportConfig) Validate() error {
	for _, f := range export.Formats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("report format must be one of %s, got %q", strings.Join(export.Formats, ", "), c.Format)
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Model.SetDefaults()
	c.RunLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Report.SetDefaults()
	c.Log.SetDefaults()
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var err error
	err = multierr.Append(err, c.Solver.Validate())
	err = multierr.Append(err, c.Model.Validate())
	err = multierr.Append(err, c.RunLog.Validate())
	err = multierr.Append(err, c.MQTT.Validate())
	err = multierr.Append(err, c.Report.Validate())
	err = multierr.Append(err, c.Log.Validate())
	return err
}

// Default returns a configuration built from defaults and the environment.
func Default() (*Config, error) { return Load("") }

// Load reads the YAML or JSON file at path, applies environment overrides
// and defaults, then validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
