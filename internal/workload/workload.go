// Package workload reads and validates the task and worker lists of a cycle.
package workload

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/jamsched/pkg/model"
)

// Workload is one cycle's scheduling input.
type Workload struct {
	Mode           model.Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
	MaxHyperperiod int64      `json:"max_hyperperiod,omitempty" yaml:"max_hyperperiod,omitempty"`
	// Horizon is the hybrid scheduling duration.
	Horizon int64            `json:"scheduling_duration,omitempty" yaml:"scheduling_duration,omitempty"`
	Workers []model.Worker   `json:"workers" yaml:"workers"`
	Tasks   []model.TaskSpec `json:"tasks" yaml:"tasks"`
}

// Defaults fills the fields a workload may omit.
type Defaults struct {
	Mode           model.Mode
	MaxHyperperiod int64
	Horizon        int64
}

// ApplyDefaults sets every zero-valued cycle parameter from d.
func (w *Workload) ApplyDefaults(d Defaults) {
	if w.Mode == "" {
		w.Mode = d.Mode
	}
	if w.MaxHyperperiod == 0 {
		w.MaxHyperperiod = d.MaxHyperperiod
	}
	if w.Horizon == 0 {
		w.Horizon = d.Horizon
	}
}

// Clone returns a deep copy.
func (w *Workload) Clone() *Workload {
	c := *w
	c.Workers = append([]model.Worker(nil), w.Workers...)
	c.Tasks = make([]model.TaskSpec, len(w.Tasks))
	for i, t := range w.Tasks {
		t.Compulsory = append([]model.Worker(nil), t.Compulsory...)
		t.Optional = append([]model.Worker(nil), t.Optional...)
		c.Tasks[i] = t
	}
	return &c
}

// Parser decodes workload documents. JSON input is accepted as YAML.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser with the given logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger.With("component", "workload")}
}

// Parse decodes a YAML or JSON workload document.
func (p *Parser) Parse(data []byte) (*Workload, error) {
	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	p.logger.Debug("workload parsed", "workers", len(w.Workers), "tasks", len(w.Tasks), "mode", w.Mode)
	return &w, nil
}

// ParseFile reads and decodes the workload at path.
func (p *Parser) ParseFile(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	w, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}
