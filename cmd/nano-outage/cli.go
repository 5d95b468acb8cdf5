package main

import (
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/nanoncore/nano-outage/config"
	"github.com/nanoncore/nano-outage/types"
)

// options defines command line options. Zero values leave the
// configuration file untouched.
type options struct {
	Config      string        `short:"c" long:"config" description:"path to the YAML config file"`
	Hosts       string        `short:"H" long:"hosts" description:"path to the OLT host list"`
	Community   string        `short:"C" long:"community" description:"SNMP community"`
	Interval    time.Duration `short:"i" long:"interval" description:"pause between polling cycles"`
	Concurrency int           `short:"n" long:"concurrency" description:"number of OLTs polled at once"`
	Format      string        `short:"f" long:"format" choice:"text" choice:"json" description:"event output format"`
	Once        bool          `long:"once" description:"run a single polling cycle and exit"`
	LogLevel    string        `short:"l" long:"log-level" description:"log level (debug, info, warn, error)"`
	Simulate    bool          `long:"simulate" description:"poll the built-in simulated OLT instead of real devices"`
	Version     bool          `short:"v" long:"version" description:"display the version and exit"`
}

func parseOptions(args []string) (*options, error) {
	opts := &options{}
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "nano-outage"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func isHelp(err error) bool {
	return flags.WroteHelp(err)
}

// apply overrides cfg with the options that were set.
func (o *options) apply(cfg *config.Config) {
	if o.Hosts != "" {
		cfg.HostsFile = o.Hosts
	}
	if o.Community != "" {
		cfg.SNMP.Community = o.Community
	}
	if o.Interval > 0 {
		cfg.Poll.Interval = o.Interval
	}
	if o.Concurrency > 0 {
		cfg.Poll.Concurrency = o.Concurrency
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Simulate {
		cfg.Vendor = string(types.VendorMock)
	}
}

// simulatedHosts is the host list used by --simulate when none is given.
var simulatedHosts = []config.Host{
	{Address: "192.0.2.1"},
	{Address: "192.0.2.2"},
}

func (o *options) hosts(cfg *config.Config) ([]config.Host, error) {
	if o.Simulate && o.Hosts == "" {
		return simulatedHosts, nil
	}
	return config.LoadHosts(cfg.HostsFile)
}
