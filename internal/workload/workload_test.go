package workload

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/me/jamsched/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParser() *Parser {
	return NewParser(testLogger())
}

func testValidator() *Validator {
	return NewValidator(model.DefaultPriorityBands(), testLogger())
}

func TestParseFile_ClassicYAML(t *testing.T) {
	w, err := testParser().ParseFile(filepath.Join("testdata", "classic.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	want := &Workload{
		Mode:           model.ModeClassic,
		MaxHyperperiod: 5000,
		Workers:        []model.Worker{"A1", "A2"},
		Tasks: []model.TaskSpec{
			{
				Identity:    model.Identity{ApplicationID: "1", TaskID: "1"},
				Compulsory:  []model.Worker{"A1"},
				Optional:    []model.Worker{"A2"},
				Computation: 100,
				Period:      1000,
				Deadline:    1000,
			},
			{
				Identity:    model.Identity{ApplicationID: "1", TaskID: "2"},
				Compulsory:  []model.Worker{"A1"},
				Computation: 200,
				Period:      500,
				Deadline:    500,
			},
		},
	}
	if diff := cmp.Diff(want, w); diff != "" {
		t.Errorf("workload mismatch (-want +got):\n%s", diff)
	}
	if apiErr := testValidator().Validate(w); apiErr != nil {
		t.Errorf("expected valid, got %v (%+v)", apiErr, apiErr.Details)
	}
}

func TestParseFile_HybridJSON(t *testing.T) {
	w, err := testParser().ParseFile(filepath.Join("testdata", "hybrid.json"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if w.Mode != model.ModeHybrid || w.Horizon != 5000 {
		t.Errorf("mode = %q, horizon = %d", w.Mode, w.Horizon)
	}
	if len(w.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(w.Tasks))
	}
	sy := w.Tasks[1]
	if !sy.IsOneShot() || sy.Class != model.ClassSY || sy.Priority.Optional != 5 {
		t.Errorf("sy task = %+v", sy)
	}
	if apiErr := testValidator().Validate(w); apiErr != nil {
		t.Errorf("expected valid, got %v (%+v)", apiErr, apiErr.Details)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := testParser().Parse([]byte("workers: [A1\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := testParser().ParseFile(filepath.Join("testdata", "nope.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestApplyDefaults(t *testing.T) {
	w := &Workload{MaxHyperperiod: 100}
	w.ApplyDefaults(Defaults{Mode: model.ModeHybrid, MaxHyperperiod: 5000, Horizon: 5000})
	if w.Mode != model.ModeHybrid || w.MaxHyperperiod != 100 || w.Horizon != 5000 {
		t.Errorf("after defaults: %+v", w)
	}
}

func TestClone(t *testing.T) {
	w, err := testParser().ParseFile(filepath.Join("testdata", "classic.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	c := w.Clone()
	c.Tasks[0].Release = 99
	c.Tasks[0].Compulsory[0] = "Z"
	c.Workers[0] = "Z"
	if w.Tasks[0].Release != 0 || w.Tasks[0].Compulsory[0] != "A1" || w.Workers[0] != "A1" {
		t.Error("Clone shares state with the original")
	}
}

func validClassic() *Workload {
	return &Workload{
		Mode:           model.ModeClassic,
		MaxHyperperiod: 1000,
		Workers:        []model.Worker{"A1", "A2"},
		Tasks: []model.TaskSpec{{
			Identity:    model.Identity{ApplicationID: "1", TaskID: "1"},
			Compulsory:  []model.Worker{"A1"},
			Computation: 10,
			Period:      100,
			Deadline:    100,
			Priority:    model.Priority{Compulsory: 3, Optional: 1},
		}},
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *Workload)
		field  string
	}{
		{"unknown mode", func(w *Workload) { w.Mode = "batch" }, "mode"},
		{"classic without bound", func(w *Workload) { w.MaxHyperperiod = 0 }, "max_hyperperiod"},
		{"hybrid without horizon", func(w *Workload) { w.Mode = model.ModeHybrid }, "scheduling_duration"},
		{"no workers", func(w *Workload) { w.Workers = nil; w.Tasks = nil }, "workers"},
		{"duplicate worker", func(w *Workload) { w.Workers = append(w.Workers, "A1") }, "workers[2]"},
		{"unknown worker", func(w *Workload) { w.Tasks[0].Compulsory = []model.Worker{"Z9"} }, "tasks[0].compulsory[0]"},
		{"zero computation", func(w *Workload) { w.Tasks[0].Computation = 0 }, "tasks[0].computation"},
		{"zero period", func(w *Workload) { w.Tasks[0].Period = 0 }, "tasks[0].period"},
		{"negative period", func(w *Workload) { w.Tasks[0].Period = -5 }, "tasks[0].period"},
		{"negative release", func(w *Workload) { w.Tasks[0].Release = -1 }, "tasks[0].release"},
		{"one-shot in classic", func(w *Workload) { w.Tasks[0].Period = model.OneShot }, "tasks[0].period"},
		{"deadline below computation", func(w *Workload) { w.Tasks[0].Deadline = 5 }, "tasks[0].deadline"},
		{"unknown class", func(w *Workload) { w.Tasks[0].Class = "be" }, "tasks[0].class"},
		{"no workers named", func(w *Workload) { w.Tasks[0].Compulsory = nil }, "tasks[0]"},
		{"compulsory and optional", func(w *Workload) { w.Tasks[0].Optional = []model.Worker{"A1"} }, "tasks[0].optional[0]"},
		{"negative priority", func(w *Workload) { w.Tasks[0].Priority.Optional = -1 }, "tasks[0].priority"},
		{"missing identity", func(w *Workload) { w.Tasks[0].TaskID = "" }, "tasks[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validClassic()
			tt.mutate(w)
			apiErr := testValidator().Validate(w)
			if apiErr == nil {
				t.Fatal("expected validation error")
			}
			if apiErr.Code != model.ErrValidation {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrValidation)
			}
			found := false
			for _, d := range apiErr.Details {
				if d.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("details %+v lack field %q", apiErr.Details, tt.field)
			}
		})
	}
}

func TestValidate_HybridPriorityBands(t *testing.T) {
	tests := []struct {
		name     string
		class    model.TaskClass
		priority model.Priority
		field    string
	}{
		{"rt compulsory below band", model.ClassRT, model.Priority{Compulsory: 2, Optional: 1}, "tasks[0].priority.compulsory"},
		{"rt optional in compulsory band", model.ClassRT, model.Priority{Compulsory: 4, Optional: 3}, "tasks[0].priority.optional"},
		{"sy outside synchronous band", model.ClassSY, model.Priority{Compulsory: 4, Optional: 5}, "tasks[0].priority.compulsory"},
		{"reserved weight", model.ClassSY, model.Priority{Compulsory: 7, Optional: 5}, "tasks[0].priority.compulsory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validClassic()
			w.Mode = model.ModeHybrid
			w.Horizon = 1000
			w.Tasks[0].Class = tt.class
			w.Tasks[0].Optional = []model.Worker{"A2"}
			w.Tasks[0].Priority = tt.priority

			apiErr := testValidator().Validate(w)
			if apiErr == nil {
				t.Fatal("expected validation error")
			}
			if len(apiErr.Details) != 1 || apiErr.Details[0].Field != tt.field {
				t.Errorf("details = %+v, want only %q", apiErr.Details, tt.field)
			}
		})
	}
}

func TestValidate_HybridAllowsOneShot(t *testing.T) {
	w := validClassic()
	w.Mode = model.ModeHybrid
	w.Horizon = 1000
	w.Tasks[0].Period = model.OneShot
	if apiErr := testValidator().Validate(w); apiErr != nil {
		t.Errorf("expected valid, got %v (%+v)", apiErr, apiErr.Details)
	}
}
