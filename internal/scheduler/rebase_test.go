package scheduler

import (
	"testing"

	"github.com/me/jamsched/pkg/model"
)

func TestRebaseRelease(t *testing.T) {
	tests := []struct {
		name                    string
		release, period, length int64
		want                    int64
	}{
		{"aligned", 0, 500, 6500, 0},
		{"carry remainder", 3, 4, 10, 1},
		{"period longer than cycle", 200, 10000, 6500, 3700},
		{"release on boundary", 10, 4, 10, 0},
		{"release beyond boundary", 12, 4, 10, 2},
		{"release periods beyond boundary", 17, 5, 10, 7},
		{"period divides remainder", 2, 4, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RebaseRelease(tt.release, tt.period, tt.length); got != tt.want {
				t.Errorf("RebaseRelease(%d, %d, %d) = %d, want %d", tt.release, tt.period, tt.length, got, tt.want)
			}
		})
	}
}

func TestRebaseReleaseKeepsPhase(t *testing.T) {
	// The first release at or after the boundary of the original sequence
	// must become the new offset.
	const length = 6500
	for _, period := range []int64{7, 300, 999, 6500, 7000} {
		for _, release := range []int64{0, 1, 5, period - 1} {
			got := RebaseRelease(release, period, length)
			if got < 0 || got >= period {
				t.Errorf("RebaseRelease(%d, %d) = %d, want within [0,%d)", release, period, got, period)
			}
			if (got+length-release)%period != 0 {
				t.Errorf("RebaseRelease(%d, %d) = %d breaks the release phase", release, period, got)
			}
		}
	}
}

func TestRebase(t *testing.T) {
	tasks := []model.TaskSpec{
		{Identity: model.Identity{ApplicationID: "1", TaskID: "p"}, Release: 3, Period: 4},
		{Identity: model.Identity{ApplicationID: "1", TaskID: "once"}, Release: 3, Period: model.OneShot},
	}
	got := Rebase(tasks, 10)
	if got[0].Release != 1 {
		t.Errorf("periodic release = %d, want 1", got[0].Release)
	}
	if got[1].Release != 3 {
		t.Errorf("one-shot release = %d, want 3", got[1].Release)
	}
	if tasks[0].Release != 3 {
		t.Error("Rebase modified its input")
	}
}
