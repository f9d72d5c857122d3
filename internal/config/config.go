package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/jamsched/internal/broadcast"
	"github.com/me/jamsched/internal/packer"
	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

// Window names accepted by ControllerConfig.Window.
const (
	WindowDeadline = "deadline"
	WindowPeriod   = "period"
)

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Addr      string `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `yaml:"log_format"` // Log format: text, json
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// ControllerConfig holds the controller's cycle layout and scheduling
// parameters. Durations other than TimeUnit are in schedule time units.
type ControllerConfig struct {
	ControllerID string        `yaml:"controller_id"`
	Mode         model.Mode    `yaml:"mode"`
	TimeUnit     time.Duration `yaml:"time_unit"`

	CycleDuration int64 `yaml:"cycle_duration"`
	RTDuration    int64 `yaml:"rt_duration"`
	SYDuration    int64 `yaml:"sy_duration"`
	PPDuration    int64 `yaml:"pp_duration"`

	ProbingSlots int `yaml:"probing_slots"`
	SYSlots      int `yaml:"sy_slots"`
	RTReward     int `yaml:"rt_reward"`

	MaxHyperperiod     int64               `yaml:"max_hyperperiod"`
	SchedulingDuration int64               `yaml:"scheduling_duration"`
	Window             string              `yaml:"window"`
	Parallelism        int                 `yaml:"parallelism"`
	Bands              model.PriorityBands `yaml:"bands"`

	// Workload is the path of the initial workload file, if any.
	Workload string `yaml:"workload"`
	// BroadcastLog receives every broadcast as NDJSON. "-" is stdout,
	// empty disables it.
	BroadcastLog string `yaml:"broadcast_log"`

	Server ServerConfig `yaml:"server"`
}

// DefaultControllerConfig returns the standard 6500-unit cycle at one
// millisecond per unit.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		ControllerID:       "controller",
		Mode:               model.ModeClassic,
		TimeUnit:           time.Millisecond,
		CycleDuration:      6500,
		RTDuration:         5000,
		SYDuration:         1000,
		PPDuration:         500,
		ProbingSlots:       4,
		SYSlots:            4,
		RTReward:           5,
		MaxHyperperiod:     5000,
		SchedulingDuration: 5000,
		Window:             WindowDeadline,
		Bands:              model.DefaultPriorityBands(),
		Server:             DefaultServerConfig(),
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are an error.
func Load(path string) (ControllerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ControllerConfig{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults.
func Parse(data []byte) (ControllerConfig, error) {
	cfg := DefaultControllerConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return ControllerConfig{}, fmt.Errorf("config parse error: %w", err)
	}
	return cfg, nil
}

// Validate checks the cycle layout and scheduling parameters.
func (c ControllerConfig) Validate() *model.APIError {
	var errs []model.FieldError
	add := func(field, msg string) {
		errs = append(errs, model.FieldError{Field: field, Message: msg})
	}

	if !c.Mode.IsValid() {
		add("mode", fmt.Sprintf("unknown mode %q", c.Mode))
	}
	if c.TimeUnit <= 0 {
		add("time_unit", "must be positive")
	}
	for _, d := range []struct {
		field string
		v     int64
	}{
		{"rt_duration", c.RTDuration},
		{"sy_duration", c.SYDuration},
		{"pp_duration", c.PPDuration},
	} {
		if d.v < 0 {
			add(d.field, "must not be negative")
		}
	}
	if c.CycleDuration <= 0 {
		add("cycle_duration", "must be positive")
	} else if sum := c.RTDuration + c.SYDuration + c.PPDuration; sum != c.CycleDuration {
		add("cycle_duration", fmt.Sprintf("must equal rt_duration + sy_duration + pp_duration (%d), got %d", sum, c.CycleDuration))
	}
	if c.ProbingSlots <= 0 {
		add("probing_slots", "must be positive")
	}
	if c.SYSlots <= 0 {
		add("sy_slots", "must be positive")
	}
	if c.RTReward < 0 {
		add("rt_reward", "must not be negative")
	}
	if c.MaxHyperperiod < 0 {
		add("max_hyperperiod", "must not be negative")
	}
	if c.Mode == model.ModeClassic && c.MaxHyperperiod == 0 {
		add("max_hyperperiod", "is required in classic mode")
	}
	if c.SchedulingDuration <= 0 {
		add("scheduling_duration", "must be positive")
	}
	if c.Window != WindowDeadline && c.Window != WindowPeriod {
		add("window", fmt.Sprintf("must be %q or %q", WindowDeadline, WindowPeriod))
	}
	if c.Parallelism < 0 {
		add("parallelism", "must not be negative")
	}
	if !c.Bands.Ordered() {
		add("bands", "must be positive, non-empty and strictly increasing")
	}

	if len(errs) > 0 {
		return model.NewValidationError("Invalid controller config", errs...)
	}
	return nil
}

// WindowFunc returns the packer window named by c.Window.
func (c ControllerConfig) WindowFunc() packer.WindowFunc {
	if c.Window == WindowPeriod {
		return packer.PeriodWindow
	}
	return packer.DeadlineWindow
}

// PlannerConfig derives the planner parameters.
func (c ControllerConfig) PlannerConfig() scheduler.PlannerConfig {
	return scheduler.PlannerConfig{
		Bands:       c.Bands,
		Window:      c.WindowFunc(),
		Parallelism: c.Parallelism,
	}
}

// LoopConfig derives the cycle loop parameters.
func (c ControllerConfig) LoopConfig() scheduler.Config {
	return scheduler.Config{
		Interval:    time.Duration(c.CycleDuration) * c.TimeUnit,
		CycleLength: c.CycleDuration,
		Envelope: broadcast.Envelope{
			ControllerID:    c.ControllerID,
			ProbingSlots:    c.ProbingSlots,
			ProbingDuration: c.PPDuration,
			SYSlots:         c.SYSlots,
			SYDuration:      c.SYDuration,
			RTReward:        c.RTReward,
		},
	}
}

// Defaults derives the values filled into workloads that omit them.
func (c ControllerConfig) Defaults() workload.Defaults {
	return workload.Defaults{
		Mode:           c.Mode,
		MaxHyperperiod: c.MaxHyperperiod,
		Horizon:        c.SchedulingDuration,
	}
}
