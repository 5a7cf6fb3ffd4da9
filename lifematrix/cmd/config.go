package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/sarchlab/lifematrix/scheduler"
	"github.com/sarchlab/lifematrix/sim"
	"github.com/spf13/cobra"
)

// envPrefix starts the name of every environment variable the CLI reads.
const envPrefix = "LIFEMATRIX_"

// Config holds the settings of one run.
type Config struct {
	FrameDuration  uint32
	InitialTimeout uint32
	ScanFreq       sim.Freq
	LoopFreq       sim.Freq
	Generations    uint64
	Show           bool
	Record         bool
	RecordFile     string
	Monitor        bool
	MonitorPort    int
	Open           bool
}

// DefaultConfig returns the firmware settings with every extra turned off.
func DefaultConfig() Config {
	return Config{
		FrameDuration:  scheduler.DefaultFrameDuration,
		InitialTimeout: scheduler.DefaultInitialTimeout,
		ScanFreq:       scheduler.DefaultScanFreq,
	}
}

// hclConfigFile is the layout of a --config file. Absent attributes keep the
// value from the layer below.
type hclConfigFile struct {
	FrameDuration  *uint32  `hcl:"frame_duration,optional"`
	InitialTimeout *uint32  `hcl:"initial_timeout,optional"`
	ScanFreq       *float64 `hcl:"scan_freq,optional"`
	LoopFreq       *float64 `hcl:"loop_freq,optional"`
	Generations    *uint64  `hcl:"generations,optional"`
	Show           *bool    `hcl:"show,optional"`
	Record         *bool    `hcl:"record,optional"`
	RecordFile     *string  `hcl:"record_file,optional"`
	Monitor        *bool    `hcl:"monitor,optional"`
	MonitorPort    *int     `hcl:"monitor_port,optional"`
	Open           *bool    `hcl:"open,optional"`
}

// LoadHCL applies the attributes set in an HCL file.
func (c *Config) LoadHCL(path string) error {
	parser := hclparse.NewParser()

	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var parsed hclConfigFile

	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	setIfPresent(&c.FrameDuration, parsed.FrameDuration)
	setIfPresent(&c.InitialTimeout, parsed.InitialTimeout)
	setIfPresent(&c.Generations, parsed.Generations)
	setIfPresent(&c.Show, parsed.Show)
	setIfPresent(&c.Record, parsed.Record)
	setIfPresent(&c.RecordFile, parsed.RecordFile)
	setIfPresent(&c.Monitor, parsed.Monitor)
	setIfPresent(&c.MonitorPort, parsed.MonitorPort)
	setIfPresent(&c.Open, parsed.Open)

	if parsed.ScanFreq != nil {
		c.ScanFreq = sim.Freq(*parsed.ScanFreq)
	}

	if parsed.LoopFreq != nil {
		c.LoopFreq = sim.Freq(*parsed.LoopFreq)
	}

	return nil
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// LoadEnvFile loads a dotenv file into the process environment. Variables
// that are already set win over the file. A missing file is an error only
// when required is set.
func LoadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if !required && errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// LoadEnv applies the LIFEMATRIX_* variables that lookup finds.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.setUint32("FRAME_DURATION", &c.FrameDuration)
	env.setUint32("INITIAL_TIMEOUT", &c.InitialTimeout)
	env.setFreq("SCAN_FREQ", &c.ScanFreq)
	env.setFreq("LOOP_FREQ", &c.LoopFreq)
	env.setUint64("GENERATIONS", &c.Generations)
	env.setBool("SHOW", &c.Show)
	env.setBool("RECORD", &c.Record)
	env.setString("RECORD_FILE", &c.RecordFile)
	env.setBool("MONITOR", &c.Monitor)
	env.setInt("MONITOR_PORT", &c.MonitorPort)
	env.setBool("OPEN", &c.Open)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) get(name string) (string, bool) {
	return r.lookup(envPrefix + name)
}

func (r *envReader) fail(name string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
}

func (r *envReader) setUint32(name string, dst *uint32) {
	if v, ok := r.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			r.fail(name, err)
			return
		}

		*dst = uint32(n)
	}
}

func (r *envReader) setUint64(name string, dst *uint64) {
	if v, ok := r.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			r.fail(name, err)
			return
		}

		*dst = n
	}
}

func (r *envReader) setInt(name string, dst *int) {
	if v, ok := r.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(name, err)
			return
		}

		*dst = n
	}
}

func (r *envReader) setFreq(name string, dst *sim.Freq) {
	if v, ok := r.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(name, err)
			return
		}

		*dst = sim.Freq(f)
	}
}

func (r *envReader) setBool(name string, dst *bool) {
	if v, ok := r.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(name, err)
			return
		}

		*dst = b
	}
}

func (r *envReader) setString(name string, dst *string) {
	if v, ok := r.get(name); ok {
		*dst = v
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := DefaultConfig()
	flags := cmd.Flags()

	flags.Uint32("frame-duration", def.FrameDuration,
		"Loop iterations each generation is shown for.")
	flags.Uint32("initial-timeout", def.InitialTimeout,
		"Loop iterations before the first generation is stepped.")
	flags.Float64("scan-freq", float64(def.ScanFreq),
		"Display refresh frequency in Hz.")
	flags.Float64("loop-freq", 0,
		"Pace the loop at this many iterations per second. 0 runs unpaced.")
	flags.Uint64("generations", 0,
		"Stop after this many generations. 0 runs until interrupted.")
	flags.Bool("show", false, "Print every generation as text.")
	flags.Bool("record", false, "Record every generation to SQLite.")
	flags.String("record-file", "",
		"Recording file name without the .sqlite3 extension.")
	flags.Bool("monitor", false, "Serve the monitoring web page.")
	flags.Int("monitor-port", 0,
		"Port of the monitoring server. 0 picks a free port.")
	flags.Bool("open", false, "Open the monitoring page in a browser.")
	flags.String("config", "", "HCL file with run settings.")
	flags.String("env-file", ".env", "Dotenv file with LIFEMATRIX_* settings.")
}

// ApplyFlags applies the flags that were set on the command line.
func (c *Config) ApplyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	var errs []error

	changed := func(name string) bool { return flags.Changed(name) }
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if changed("frame-duration") {
		v, err := flags.GetUint32("frame-duration")
		collect(err)
		c.FrameDuration = v
	}

	if changed("initial-timeout") {
		v, err := flags.GetUint32("initial-timeout")
		collect(err)
		c.InitialTimeout = v
	}

	if changed("scan-freq") {
		v, err := flags.GetFloat64("scan-freq")
		collect(err)
		c.ScanFreq = sim.Freq(v)
	}

	if changed("loop-freq") {
		v, err := flags.GetFloat64("loop-freq")
		collect(err)
		c.LoopFreq = sim.Freq(v)
	}

	if changed("generations") {
		v, err := flags.GetUint64("generations")
		collect(err)
		c.Generations = v
	}

	if changed("show") {
		v, err := flags.GetBool("show")
		collect(err)
		c.Show = v
	}

	if changed("record") {
		v, err := flags.GetBool("record")
		collect(err)
		c.Record = v
	}

	if changed("record-file") {
		v, err := flags.GetString("record-file")
		collect(err)
		c.RecordFile = v
		c.Record = true
	}

	if changed("monitor") {
		v, err := flags.GetBool("monitor")
		collect(err)
		c.Monitor = v
	}

	if changed("monitor-port") {
		v, err := flags.GetInt("monitor-port")
		collect(err)
		c.MonitorPort = v
	}

	if changed("open") {
		v, err := flags.GetBool("open")
		collect(err)
		c.Open = v
	}

	return errors.Join(errs...)
}

// Validate rejects settings the scheduler would panic on.
func (c Config) Validate() error {
	if c.FrameDuration == 0 {
		return errors.New("frame duration must be at least 1")
	}

	if c.ScanFreq <= 0 {
		return fmt.Errorf("scan frequency must be positive, got %v", c.ScanFreq)
	}

	if c.LoopFreq < 0 {
		return fmt.Errorf("loop frequency must not be negative, got %v",
			c.LoopFreq)
	}

	if c.Open && !c.Monitor {
		return errors.New("--open needs --monitor")
	}

	return nil
}

// loadConfig builds the config of a run from every layer in order.
func loadConfig(cmd *cobra.Command) (Config, error) {
	c := DefaultConfig()

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		if err := c.LoadHCL(configFile); err != nil {
			return c, err
		}
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		err := LoadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		if err != nil {
			return c, err
		}
	}

	if err := c.LoadEnv(os.LookupEnv); err != nil {
		return c, err
	}

	if err := c.ApplyFlags(cmd); err != nil {
		return c, err
	}

	return c, c.Validate()
}
