package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []game.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] r%d %s", ev.Seq, ev.Round, ev.Kind)
			if ev.Challenge != 0 {
				fmt.Fprintf(&buf, " #%d", ev.Challenge)
			}
			fmt.Fprintf(&buf, " @%dms\n", ev.Offset.Milliseconds())
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.Final, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertTraceContains checks for an event of the given kind whose fields
// include the expected ones.
func assertTraceContains(events []game.Event, a Assertion) error {
	for _, ev := range events {
		if string(ev.Kind) == a.Kind && matchFields(trace.Fields(ev), a.Fields) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s event with fields %v", a.Kind, a.Fields),
		Actual:   "not found in trace",
		Trace:    events,
	}
}

// assertTraceOrder checks that kinds occur in the given order. Other events
// may appear in between; a kind may be listed more than once.
func assertTraceOrder(events []game.Event, a Assertion) error {
	next := 0
	for _, ev := range events {
		if next < len(a.Kinds) && string(ev.Kind) == a.Kinds[next] {
			next++
		}
	}
	if next == len(a.Kinds) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
		Actual:   fmt.Sprintf("matched %v, then no %s", a.Kinds[:next], a.Kinds[next]),
		Trace:    events,
	}
}

// assertTraceCount checks the exact number of matching events.
func assertTraceCount(events []game.Event, a Assertion) error {
	count := 0
	for _, ev := range events {
		if string(ev.Kind) == a.Kind && matchFields(trace.Fields(ev), a.Fields) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}

	return nil
}

// assertFinalState checks the final snapshot against expected values
// (subset semantics).
func assertFinalState(snap game.Snapshot, a Assertion) error {
	actual := snapshotFields(snap)

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		want := a.Expect[key]
		got, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   "no such snapshot field",
			}
		}
		if !valuesEqual(want, got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s = %v", key, want),
				Actual:   fmt.Sprintf("%s = %v", key, got),
			}
		}
	}
	return nil
}

// snapshotFields flattens the snapshot for final_state assertions.
func snapshotFields(snap game.Snapshot) map[string]any {
	return map[string]any{
		"round":         snap.Round,
		"state":         string(snap.State),
		"mode":          string(snap.Mode),
		"score":         snap.Score,
		"combo":         snap.Combo,
		"best_combo":    snap.BestCombo,
		"multiplier":    snap.Multiplier,
		"next_spawn_in": snap.NextSpawnIn,
		"game_over":     snap.GameOver,
		"focused":       int64(snap.Focused),
		"challenges":    len(snap.Challenges),
	}
}

// matchFields reports whether actual contains every expected field.
func matchFields(actual, expected map[string]any) bool {
	for k, want := range expected {
		got, ok := actual[k]
		if !ok || !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

// valuesEqual compares YAML-decoded expectations with trace and snapshot
// values, treating all integer types alike.
func valuesEqual(expected, actual any) bool {
	if e, ok := asInt(expected); ok {
		a, ok := asInt(actual)
		return ok && e == a
	}
	switch exp := expected.(type) {
	case string:
		act, ok := actual.(string)
		return ok && exp == act
	case bool:
		act, ok := actual.(bool)
		return ok && exp == act
	}
	return false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
