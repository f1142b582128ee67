// Package driver implements the multi-user orchestrator (spec §4.3): it
// groups a table of raw rows by (user, user_props…), sorts each group by
// time, and runs the digest state machine — optionally composed with the
// observation-window clipper — independently per group.
//
// Groups are independent of one another (§5), so Run fans them out
// across a worker pool the same way the teacher's quota.Rotator fans out
// independent per-session tmux operations: build an index-preserving
// work list, run it concurrently, join once, and only then sort the
// combined output deterministically.
package driver

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xcawolfe-amzn/digestctl/internal/digest"
	"github.com/xcawolfe-amzn/digestctl/internal/window"
)

// Row is one input event row: a user, its static properties, and the
// (time, cell) observation.
type Row struct {
	User      string
	UserProps []string
	Time      time.Time
	Cell      string
}

// DigestRow is one output row: a digest labelled with its group and a
// zero-based, per-group digest_id.
type DigestRow struct {
	User      string
	UserProps []string
	DigestID  int
	digest.Digest
}

// WindowOptions selects the C2→C1 composition for every group.
type WindowOptions struct {
	OWStart time.Time
	OWEnd   time.Time
}

// RunOptions configures a single driver run.
type RunOptions struct {
	// Window, if non-nil, clips each group's events to the observation
	// window before digesting (spec §4.2/§4.3). If nil, every group is
	// digested in full.
	Window *WindowOptions

	// MaxWorkers bounds how many groups are digested concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	MaxWorkers int
}

// SkippedGroup records a user group whose stream was abandoned because
// of a fatal per-stream error (UnorderedEvents).
type SkippedGroup struct {
	User      string
	UserProps []string
	Err       error
}

// PartialError is returned by Run when one or more groups were skipped
// but the run otherwise completed; DigestRows still holds every
// successfully digested group's output. It is never used to mask a
// whole-run failure — InvalidParameters still aborts Run outright.
type PartialError struct {
	Skipped []SkippedGroup
}

func (e *PartialError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d user stream(s) skipped:", len(e.Skipped))
	for _, s := range e.Skipped {
		fmt.Fprintf(&sb, " [user=%s props=%v: %v]", s.User, s.UserProps, s.Err)
	}
	return sb.String()
}

type groupKey struct {
	user  string
	props []string
}

const keySep = "\x1f"

func (k groupKey) mapKey() string {
	return strings.Join(append([]string{k.user}, k.props...), keySep)
}

func (k groupKey) less(other groupKey) bool {
	if k.user != other.user {
		return k.user < other.user
	}
	for i := 0; i < len(k.props) && i < len(other.props); i++ {
		if k.props[i] != other.props[i] {
			return k.props[i] < other.props[i]
		}
	}
	return len(k.props) < len(other.props)
}

type group struct {
	key  groupKey
	rows []Row
}

// partition groups rows by (user, user_props…), preserving the original
// row order within each group (stable sort applied next by the caller).
func partition(rows []Row) []*group {
	index := make(map[string]*group)
	var order []*group
	for _, r := range rows {
		k := groupKey{user: r.User, props: r.UserProps}
		mk := k.mapKey()
		g, ok := index[mk]
		if !ok {
			g = &group{key: k}
			index[mk] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	return order
}

// Run groups rows, sorts each group by time, and digests every group
// independently. Row order in the input never affects the output: the
// driver is invariant under input permutation (spec §4.3).
//
// A group whose stream raises UnorderedEvents is skipped — its rows
// contribute nothing to DigestRows — and recorded in the returned
// *PartialError, which is non-nil whenever at least one group was
// skipped. InvalidParameters is checked once, up front, and aborts the
// whole run before any group is processed.
func Run(rows []Row, p digest.Params, opts RunOptions) ([]DigestRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []DigestRow{}, nil
	}

	groups := partition(rows)
	for _, g := range groups {
		sort.SliceStable(g.rows, func(i, j int) bool { return g.rows[i].Time.Before(g.rows[j].Time) })
	}

	results := make([][]DigestRow, len(groups))
	skipped := make([]*SkippedGroup, len(groups))

	var eg errgroup.Group
	limit := opts.MaxWorkers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(limit)

	for i, g := range groups {
		eg.Go(func() error {
			rows, err := digestGroup(g, p, opts.Window)
			if err != nil {
				if _, ok := err.(*digest.UnorderedEventsError); ok {
					skipped[i] = &SkippedGroup{User: g.key.user, UserProps: g.key.props, Err: err}
					return nil
				}
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Pair each group with its result/skip by index, then sort the pairs
	// once by grouping key — this is the single point where §5's
	// "lexicographic on grouping tuple, then by digest_id" ordering
	// guarantee is applied, independent of goroutine completion order.
	type paired struct {
		key  groupKey
		rows []DigestRow
		skip *SkippedGroup
	}
	pairs := make([]paired, len(groups))
	for i, g := range groups {
		pairs[i] = paired{key: g.key, rows: results[i], skip: skipped[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key.less(pairs[j].key) })

	var out []DigestRow
	var partial PartialError
	for _, pr := range pairs {
		if pr.skip != nil {
			partial.Skipped = append(partial.Skipped, *pr.skip)
			continue
		}
		out = append(out, pr.rows...)
	}

	if len(partial.Skipped) > 0 {
		return out, &partial
	}
	return out, nil
}

func digestGroup(g *group, p digest.Params, w *WindowOptions) ([]DigestRow, error) {
	events := make([]digest.Event, len(g.rows))
	for i, r := range g.rows {
		events[i] = digest.Event{Time: r.Time, Cell: r.Cell}
	}

	var digests []digest.Digest
	var err error
	if w != nil {
		digests, err = window.Run(events, w.OWStart, w.OWEnd, p)
	} else {
		digests, err = digest.Run(events, p)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]DigestRow, len(digests))
	for i, d := range digests {
		rows[i] = DigestRow{
			User:      g.key.user,
			UserProps: g.key.props,
			DigestID:  i,
			Digest:    d,
		}
	}
	return rows, nil
}
