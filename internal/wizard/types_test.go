package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetentionIsValid(t *testing.T) {
	for _, r := range []Retention{Retention1Day, Retention7Days, Retention30Days, Retention1Year, RetentionAlways} {
		assert.True(t, r.IsValid(), string(r))
	}
	assert.False(t, Retention("").IsValid())
	assert.False(t, Retention("2weeks").IsValid())
}

func TestRetentionExpiredAt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		retention Retention
		age       time.Duration
		want      bool
	}{
		{Retention1Day, 23 * time.Hour, false},
		{Retention1Day, 25 * time.Hour, true},
		{Retention7Days, 8 * 24 * time.Hour, true},
		{Retention30Days, 29 * 24 * time.Hour, false},
		{Retention1Year, 366 * 24 * time.Hour, true},
		{RetentionAlways, 10 * 365 * 24 * time.Hour, false},
	}
	for _, tt := range tests {
		got := tt.retention.ExpiredAt(now.Add(-tt.age), now)
		assert.Equal(t, tt.want, got, "%s after %s", tt.retention, tt.age)
	}
}

func TestShouldPoll(t *testing.T) {
	tests := []struct {
		name  string
		entry *ProgressEntry
		want  bool
	}{
		{"no run progress", nil, false},
		// Zero percent means generation has not actually started yet; the
		// client must not show a spinner during that window.
		{"in progress at zero percent", &ProgressEntry{Status: RunStatusInProgress}, false},
		{"in progress underway", &ProgressEntry{Status: RunStatusInProgress, PercentComplete: 12}, true},
		{"completed", &ProgressEntry{Status: RunStatusCompleted, PercentComplete: 100}, false},
		{"failed", &ProgressEntry{Status: RunStatusFailed, PercentComplete: 50, Error: "boom"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wizard{ID: "w1", Type: "duplicate-ssn"}
			if tt.entry != nil {
				w.Data.SetProgress(StepIDRun, tt.entry)
			}
			assert.Equal(t, tt.want, w.ShouldPoll())
		})
	}
}

func TestProgressForNilSafety(t *testing.T) {
	var d *WizardData
	assert.Nil(t, d.ProgressFor(StepIDRun))

	var empty WizardData
	assert.Nil(t, empty.ProgressFor(StepIDRun))

	empty.SetProgress("validate", &ProgressEntry{Status: RunStatusCompleted})
	assert.NotNil(t, empty.ProgressFor("validate"))
	assert.Nil(t, empty.ProgressFor(StepIDRun))
}
