package analysis

import (
	"testing"
	"time"

	"github.com/xcawolfe-amzn/digestctl/internal/driver"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		t.Fatalf("parsing time %q: %v", value, err)
	}
	return tm
}

func TestCompute_Sections(t *testing.T) {
	rows := []driver.Row{
		{User: "alice", Time: at(t, "2021-08-15T08:00:00"), Cell: "A"}, // warmup
		{User: "bob", Time: at(t, "2021-08-15T09:00:00"), Cell: "B"},   // warmup
		{User: "alice", Time: at(t, "2021-08-15T10:00:00"), Cell: "A"}, // observation (== owStart)
		{User: "carol", Time: at(t, "2021-08-15T11:00:00"), Cell: "C"}, // observation
		{User: "alice", Time: at(t, "2021-08-15T12:00:00"), Cell: "A"}, // observation (== owEnd)
		{User: "bob", Time: at(t, "2021-08-15T13:00:00"), Cell: "B"},   // buffer
	}
	owStart := at(t, "2021-08-15T10:00:00")
	owEnd := at(t, "2021-08-15T12:00:00")

	got := Compute(rows, owStart, owEnd)

	if got.Warmup.Events != 2 || got.Warmup.DistinctUsers != 2 {
		t.Errorf("Warmup = %+v, want Events=2 DistinctUsers=2", got.Warmup)
	}
	if got.Observation.Events != 3 || got.Observation.DistinctUsers != 2 {
		t.Errorf("Observation = %+v, want Events=3 DistinctUsers=2", got.Observation)
	}
	if got.Buffer.Events != 1 || got.Buffer.DistinctUsers != 1 {
		t.Errorf("Buffer = %+v, want Events=1 DistinctUsers=1", got.Buffer)
	}

	wantWarmupDur := owStart.Sub(at(t, "2021-08-15T08:00:00")).Seconds()
	if got.Warmup.DurationSeconds != wantWarmupDur {
		t.Errorf("Warmup.DurationSeconds = %v, want %v", got.Warmup.DurationSeconds, wantWarmupDur)
	}
	wantBufferDur := at(t, "2021-08-15T13:00:00").Sub(owEnd).Seconds()
	if got.Buffer.DurationSeconds != wantBufferDur {
		t.Errorf("Buffer.DurationSeconds = %v, want %v", got.Buffer.DurationSeconds, wantBufferDur)
	}
	wantObsDur := owEnd.Sub(owStart).Seconds()
	if got.Observation.DurationSeconds != wantObsDur {
		t.Errorf("Observation.DurationSeconds = %v, want %v", got.Observation.DurationSeconds, wantObsDur)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	got := Compute(nil, at(t, "2021-08-15T10:00:00"), at(t, "2021-08-15T12:00:00"))
	if got != (Metadata{}) {
		t.Errorf("Compute(nil) = %+v, want zero value", got)
	}
}
