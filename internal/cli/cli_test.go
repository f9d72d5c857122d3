package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/me/jamsched/internal/broadcast"
	"github.com/me/jamsched/internal/config"
	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/internal/server"
	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

const classicWorkload = `mode: classic
max_hyperperiod: 5000
workers: [A1, A2]
tasks:
  - application_id: "1"
    task_id: "1"
    compulsory: [A1]
    optional: [A2]
    computation: 100
    period: 1000
    deadline: 1000
    priority: {compulsory: 3, optional: 1}
  - application_id: "1"
    task_id: "2"
    compulsory: [A1]
    computation: 200
    period: 500
    deadline: 500
    priority: {compulsory: 3, optional: 1}
`

const rebaseWorkload = `mode: hybrid
scheduling_duration: 10
workers: [A1]
tasks:
  - application_id: "1"
    task_id: p
    compulsory: [A1]
    release: 3
    computation: 1
    period: 4
    deadline: 4
    priority: {compulsory: 3, optional: 1}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startTestServer starts a controller API backed by a loop that is ticked
// manually, and returns the URL and the loop.
func startTestServer(t *testing.T) (string, *scheduler.Loop) {
	t.Helper()
	logger := quietLogger()
	planner := scheduler.NewPlanner(scheduler.DefaultPlannerConfig(), logger)
	rec := broadcast.NewRecorder()
	loop := scheduler.NewLoop(planner, rec, nil, scheduler.DefaultConfig(), logger)

	srv := server.New(config.DefaultServerConfig(), planner, logger,
		server.WithLoop(loop),
		server.WithRecorder(rec),
		server.WithDefaults(config.DefaultControllerConfig().Defaults()),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL, loop
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := root.Execute()
	return buf.String(), err
}

func TestPlanCommand(t *testing.T) {
	path := writeFile(t, "classic.yaml", classicWorkload)

	out, err := runCLI(t, "plan", path)
	if err != nil {
		t.Fatalf("plan error: %v\noutput: %s", err, out)
	}
	for _, want := range []string{
		"Mode: classic",
		"Assignment matrix:",
		"PriorityValue",
		"Worker A1  horizon=1000  busy=500",
		"1/2#0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanCommand_JSON(t *testing.T) {
	path := writeFile(t, "classic.yaml", classicWorkload)

	out, err := runCLI(t, "plan", "--json", path)
	if err != nil {
		t.Fatalf("plan error: %v\noutput: %s", err, out)
	}
	var plan model.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(plan.Schedule.Workers) != 2 {
		t.Errorf("workers = %d, want 2", len(plan.Schedule.Workers))
	}
	if got := plan.Matrix.TasksOn(0); len(got) != 2 {
		t.Errorf("tasks on A1 = %v, want both", got)
	}
}

func TestPlanCommand_Overrides(t *testing.T) {
	path := writeFile(t, "classic.yaml", classicWorkload)

	out, err := runCLI(t, "plan", "--mode", "hybrid", "--horizon", "1000", path)
	if err != nil {
		t.Fatalf("plan error: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Mode: hybrid") {
		t.Errorf("output missing hybrid mode:\n%s", out)
	}

	if _, err := runCLI(t, "plan", "--window", "slack", path); err == nil {
		t.Error("expected error for unknown window")
	}
}

func TestPlanCommand_Remote(t *testing.T) {
	url, _ := startTestServer(t)
	path := writeFile(t, "classic.yaml", classicWorkload)

	out, err := runCLI(t, "--server", url, "plan", "--remote", path)
	if err != nil {
		t.Fatalf("plan error: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Worker A1  horizon=1000  busy=500") {
		t.Errorf("remote plan output unexpected:\n%s", out)
	}
}

func TestPlanCommand_MissingFile(t *testing.T) {
	if _, err := runCLI(t, "plan", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing workload")
	}
}

func TestValidateCommand(t *testing.T) {
	path := writeFile(t, "classic.yaml", classicWorkload)
	out, err := runCLI(t, "validate", path)
	if err != nil {
		t.Fatalf("validate error: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "ok (classic, 2 workers, 2 tasks)") {
		t.Errorf("output = %q", out)
	}

	bad := writeFile(t, "bad.yaml", strings.Replace(classicWorkload, "computation: 200", "computation: 0", 1))
	out, err = runCLI(t, "validate", bad)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out, "tasks[1].computation") {
		t.Errorf("output missing field path:\n%s", out)
	}
}

func TestValidateCommand_Config(t *testing.T) {
	cfgPath := writeFile(t, "controller.yaml", "mode: hybrid\nscheduling_duration: 700\n")
	path := writeFile(t, "bare.yaml", strings.Replace(classicWorkload, "mode: classic\n", "", 1))

	out, err := runCLI(t, "--config", cfgPath, "validate", path)
	if err != nil {
		t.Fatalf("validate error: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "ok (hybrid,") {
		t.Errorf("config default mode not applied:\n%s", out)
	}
}

func TestRebaseCommand(t *testing.T) {
	path := writeFile(t, "w.yaml", rebaseWorkload)

	tests := []struct {
		cycles string
		want   int64
	}{
		{"0", 3},
		{"1", 1},
		{"2", 3},
	}
	for _, tt := range tests {
		t.Run("cycles="+tt.cycles, func(t *testing.T) {
			out, err := runCLI(t, "rebase", "--cycle-length", "10", "--cycles", tt.cycles, path)
			if err != nil {
				t.Fatalf("rebase error: %v\noutput: %s", err, out)
			}
			var w workload.Workload
			if err := yaml.Unmarshal([]byte(out), &w); err != nil {
				t.Fatalf("invalid YAML: %v\n%s", err, out)
			}
			if got := w.Tasks[0].Release; got != tt.want {
				t.Errorf("release = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := runCLI(t, "rebase", "--cycle-length", "0", path); err == nil {
		t.Error("expected error for zero cycle length")
	}
}

func TestSubmitAndStatus(t *testing.T) {
	url, loop := startTestServer(t)
	path := writeFile(t, "w.yaml", rebaseWorkload)

	out, err := runCLI(t, "--server", url, "submit", path)
	if err != nil {
		t.Fatalf("submit error: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Workload accepted: 1 workers, 1 tasks, planned from cycle 0") {
		t.Errorf("submit output = %q", out)
	}

	if _, err := runCLI(t, "--server", url, "status"); err == nil {
		t.Error("expected error before the first cycle")
	}

	if err := loop.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	out, err = runCLI(t, "--server", url, "status")
	if err != nil {
		t.Fatalf("status error: %v\noutput: %s", err, out)
	}
	for _, want := range []string{"Cycle:      0 (effective 1)", "Mode:       hybrid", "A1"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestSubmit_Rejected(t *testing.T) {
	url, loop := startTestServer(t)
	path := writeFile(t, "bad.yaml", strings.Replace(rebaseWorkload, "period: 4", "period: 0", 1))

	out, err := runCLI(t, "--server", url, "submit", path)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(out, "tasks[0].period") {
		t.Errorf("output missing field detail:\n%s", out)
	}
	if loop.Workload() != nil {
		t.Error("rejected workload was installed")
	}
}

func TestClient(t *testing.T) {
	url, loop := startTestServer(t)
	c := NewClient(url, quietLogger())
	ctx := context.Background()

	w, err := workload.NewParser(quietLogger()).Parse([]byte(rebaseWorkload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	plan, err := c.Plan(ctx, w)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	ws, ok := plan.Schedule.For("A1")
	if !ok || len(ws.Entries) != 2 || ws.Entries[0].Start != 3 || ws.Entries[1].Start != 7 {
		t.Errorf("remote schedule = %+v", plan.Schedule)
	}

	if _, err := c.Latest(ctx); err == nil {
		t.Error("Latest before the first cycle: expected error")
	}

	accepted, err := c.SubmitWorkload(ctx, w)
	if err != nil {
		t.Fatalf("SubmitWorkload: %v", err)
	}
	if *accepted != (Accepted{Cycle: 0, Workers: 1, Tasks: 1}) {
		t.Errorf("accepted = %+v", *accepted)
	}

	if err := loop.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	b, err := c.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if b.EffectiveCycle != 1 || b.Mode != model.ModeHybrid {
		t.Errorf("broadcast = cycle %d mode %s", b.EffectiveCycle, b.Mode)
	}

	w.Tasks[0].Computation = 0
	_, err = c.SubmitWorkload(ctx, w)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrValidation {
		t.Errorf("SubmitWorkload(invalid) error = %v, want validation APIError", err)
	}
}

func TestRootCmd_BadLogFormat(t *testing.T) {
	if _, err := runCLI(t, "--log-format", "xml", "status"); err == nil {
		t.Error("expected error for unknown log format")
	}
}
