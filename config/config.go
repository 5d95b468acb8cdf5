// Package config loads the detector configuration and the OLT host list.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nanoncore/nano-outage/logger"
	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/common"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the full detector configuration.
type Config struct {
	HostsFile     string            `yaml:"hosts_file"`
	Vendor        string            `yaml:"vendor"`
	SNMP          SNMPConfig        `yaml:"snmp"`
	Poll          PollConfig        `yaml:"poll"`
	Correlation   CorrelationConfig `yaml:"correlation"`
	ModelDenylist []string          `yaml:"model_denylist"`
	Output        OutputConfig      `yaml:"output"`
	Logging       logger.Config     `yaml:"logging"`
}

// SNMPConfig holds session parameters shared by all devices.
type SNMPConfig struct {
	Port           int           `yaml:"port"`
	Community      string        `yaml:"community"`
	Version        string        `yaml:"version"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	MaxRepetitions int           `yaml:"max_repetitions"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
}

// PollConfig controls the polling loop.
type PollConfig struct {
	Interval       time.Duration `yaml:"interval"`
	Concurrency    int           `yaml:"concurrency"`
	BackoffInitial time.Duration `yaml:"backoff_initial"`
	BackoffMax     time.Duration `yaml:"backoff_max"`
}

// CorrelationConfig controls clustering.
type CorrelationConfig struct {
	Threshold      time.Duration `yaml:"threshold"`
	MinClusterSize int           `yaml:"min_cluster_size"`
}

// OutputConfig selects the event output format.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HostsFile: "ips.txt",
		Vendor:    string(types.VendorBDCOM),
		SNMP: SNMPConfig{
			Port:           161,
			Community:      "public",
			Version:        "2c",
			Timeout:        time.Second,
			Retries:        3,
			MaxRepetitions: 25,
		},
		Poll: PollConfig{
			Interval:       3 * time.Second,
			Concurrency:    4,
			BackoffInitial: 3 * time.Second,
			BackoffMax:     5 * time.Minute,
		},
		Correlation: CorrelationConfig{
			Threshold:      3 * time.Second,
			MinClusterSize: 2,
		},
		ModelDenylist: []string{"GP3600", "P3310B"},
		Output:        OutputConfig{Format: FormatText},
		Logging:       logger.Config{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	switch types.Vendor(c.Vendor) {
	case types.VendorBDCOM, types.VendorMock:
	default:
		errs = append(errs, fmt.Errorf("vendor %q is not supported", c.Vendor))
	}

	if c.SNMP.Port < 1 || c.SNMP.Port > 65535 {
		errs = append(errs, fmt.Errorf("snmp.port %d out of range", c.SNMP.Port))
	}
	switch c.SNMP.Version {
	case "1", "2c":
		if c.SNMP.Community == "" {
			errs = append(errs, errors.New("snmp.community is required for v1/v2c"))
		}
	case "3":
		if c.SNMP.Username == "" {
			errs = append(errs, errors.New("snmp.username is required for v3"))
		}
	default:
		errs = append(errs, fmt.Errorf("snmp.version %q must be 1, 2c or 3", c.SNMP.Version))
	}
	if c.SNMP.Timeout <= 0 {
		errs = append(errs, errors.New("snmp.timeout must be positive"))
	}
	if c.SNMP.Retries < 0 {
		errs = append(errs, errors.New("snmp.retries must not be negative"))
	}
	if c.SNMP.MaxRepetitions < 1 || c.SNMP.MaxRepetitions > 255 {
		errs = append(errs, fmt.Errorf("snmp.max_repetitions %d out of range", c.SNMP.MaxRepetitions))
	}

	if c.Poll.Interval <= 0 {
		errs = append(errs, errors.New("poll.interval must be positive"))
	}
	if c.Poll.Concurrency < 1 {
		errs = append(errs, errors.New("poll.concurrency must be at least 1"))
	}
	if c.Poll.BackoffInitial <= 0 {
		errs = append(errs, errors.New("poll.backoff_initial must be positive"))
	}
	if c.Poll.BackoffMax < c.Poll.BackoffInitial {
		errs = append(errs, errors.New("poll.backoff_max must not be below poll.backoff_initial"))
	}

	if c.Correlation.Threshold <= 0 {
		errs = append(errs, errors.New("correlation.threshold must be positive"))
	}
	if c.Correlation.MinClusterSize < 2 {
		errs = append(errs, errors.New("correlation.min_cluster_size must be at least 2"))
	}

	switch c.Output.Format {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("output.format %q must be %s or %s", c.Output.Format, FormatText, FormatJSON))
	}

	return errors.Join(errs...)
}

// DeniedModel returns the first denylist entry found in sysDescr.
func (c *Config) DeniedModel(sysDescr string) (string, bool) {
	for _, m := range c.ModelDenylist {
		m = strings.TrimSpace(m)
		if m != "" && strings.Contains(sysDescr, m) {
			return m, true
		}
	}
	return "", false
}

// Equipment builds the driver configuration for one host.
func (c *Config) Equipment(host Host) *types.EquipmentConfig {
	port := host.Port
	if port == 0 {
		port = c.SNMP.Port
	}

	return &types.EquipmentConfig{
		Name:     host.String(),
		Type:     types.EquipmentTypeOLT,
		Vendor:   types.Vendor(c.Vendor),
		Address:  host.Address,
		Port:     port,
		Protocol: types.ProtocolSNMP,
		Username: c.SNMP.Username,
		Password: c.SNMP.Password,
		Timeout:  c.SNMP.Timeout,
		Retries:  c.SNMP.Retries,
		Metadata: map[string]string{
			common.MetaSNMPVersion:   c.SNMP.Version,
			common.MetaSNMPCommunity: c.SNMP.Community,
			common.MetaMaxRepetition: strconv.Itoa(c.SNMP.MaxRepetitions),
		},
	}
}
