package driver

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/xcawolfe-amzn/digestctl/internal/digest"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		t.Fatalf("parsing time %q: %v", value, err)
	}
	return tm
}

func TestRun_GroupsByUserAndProps(t *testing.T) {
	rows := []Row{
		{User: "alice", UserProps: []string{"home"}, Time: at(t, "2021-08-15T10:00:00"), Cell: "A"},
		{User: "bob", UserProps: []string{"home"}, Time: at(t, "2021-08-15T10:00:00"), Cell: "X"},
		{User: "alice", UserProps: []string{"home"}, Time: at(t, "2021-08-15T10:00:05"), Cell: "A"},
	}
	out, err := Run(rows, digest.DefaultParams(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d digest rows, want 2 (one per user)", len(out))
	}
	if out[0].User != "alice" || out[1].User != "bob" {
		t.Errorf("got order %s, %s; want lexicographic alice, bob", out[0].User, out[1].User)
	}
	if out[0].NumEvents != 2 {
		t.Errorf("alice digest NumEvents = %d, want 2", out[0].NumEvents)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	out, err := Run(nil, digest.DefaultParams(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d rows, want 0", len(out))
	}
}

func TestRun_PermutationInvariance(t *testing.T) {
	var rows []Row
	base := at(t, "2021-08-15T00:00:00")
	users := []string{"alice", "bob", "carol"}
	for _, u := range users {
		for i := 0; i < 20; i++ {
			rows = append(rows, Row{
				User: u,
				Time: base.Add(time.Duration(i) * 10 * time.Second),
				Cell: string(rune('A' + i%3)),
			})
		}
	}

	want, err := Run(rows, digest.DefaultParams(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]Row(nil), rows...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Run(shuffled, digest.DefaultParams(), RunOptions{})
		if err != nil {
			t.Fatalf("trial %d: Run: %v", trial, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("trial %d: shuffled Run differs from original-order Run", trial)
		}
	}
}

func TestRun_OutOfOrderRowsAreSortedNotSkipped(t *testing.T) {
	rows := []Row{
		{User: "alice", Time: at(t, "2021-08-15T10:00:05"), Cell: "A"},
		{User: "alice", Time: at(t, "2021-08-15T10:00:00"), Cell: "A"}, // earlier than the row above; the per-group sort reorders it
		{User: "bob", Time: at(t, "2021-08-15T10:00:00"), Cell: "X"},
	}
	// Run sorts each group by time before digesting, so rows given out of
	// order never reach the state machine out of order and no
	// UnorderedEvents skip is reported; duplicate timestamps are legal.
	out, err := Run(rows, digest.DefaultParams(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d digest rows, want 2", len(out))
	}
}

func TestRun_WindowOptionClipsPerGroup(t *testing.T) {
	base := at(t, "2021-08-15T00:00:00")
	var rows []Row
	for burst := 0; burst < 2; burst++ {
		burstStart := base.Add(time.Duration(burst) * 20 * time.Hour)
		for i := 0; i < 3; i++ {
			rows = append(rows, Row{
				User: "alice",
				Time: burstStart.Add(time.Duration(i) * 5 * time.Second),
				Cell: "A",
			})
		}
	}
	owStart := rows[3].Time.Add(-time.Second)
	owEnd := rows[5].Time.Add(time.Second)

	out, err := Run(rows, digest.DefaultParams(), RunOptions{Window: &WindowOptions{OWStart: owStart, OWEnd: owEnd}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d digest rows, want 1 (only the second burst starts in-window)", len(out))
	}
	if out[0].DigestID != 0 {
		t.Errorf("DigestID = %d, want 0", out[0].DigestID)
	}
}
