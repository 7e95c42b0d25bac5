package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/input"
)

// Scenario is one scripted game.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mode is the input mode: direct (default) or keypad.
	Mode string `yaml:"mode,omitempty"`

	// Operands lists the (a, b) pairs challenges receive, in spawn order.
	// The list repeats; each new round starts again from the first pair.
	Operands [][]int `yaml:"operands,omitempty"`

	// Steps are the player actions and clock advances, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action applied to the engine.
type Step struct {
	// Action is one of start, reset, digit, backspace, text, focus, advance.
	Action string `yaml:"action"`

	// Challenge is the target challenge id (0 means the focused one).
	Challenge int64 `yaml:"challenge,omitempty"`

	// Value is the digit for digit steps and the new text for text steps.
	Value string `yaml:"value,omitempty"`

	// Duration is how far advance moves the clock, e.g. "1500ms".
	Duration string `yaml:"duration,omitempty"`

	// Expect is checked against the snapshot after the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists snapshot values to check after a step. Unset fields are
// not checked.
type Expect struct {
	Score       *int             `yaml:"score,omitempty"`
	Combo       *int             `yaml:"combo,omitempty"`
	State       string           `yaml:"state,omitempty"`
	Round       *int             `yaml:"round,omitempty"`
	Challenges  *int             `yaml:"challenges,omitempty"`
	Focused     *int64           `yaml:"focused,omitempty"`
	NextSpawnIn *int             `yaml:"next_spawn_in,omitempty"`
	Phases      map[int64]string `yaml:"phases,omitempty"`
	Texts       map[int64]string `yaml:"texts,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event of Kind whose fields include Fields
	// - "trace_order": Kinds appear in this order (gaps allowed)
	// - "trace_count": exactly Count events of Kind (matching Fields)
	// - "final_state": the final snapshot includes Expect
	Type string `yaml:"type"`

	Kind   string         `yaml:"kind,omitempty"`
	Fields map[string]any `yaml:"fields,omitempty"`
	Kinds  []string       `yaml:"kinds,omitempty"`
	Count  int            `yaml:"count,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Step action constants.
const (
	ActionStart     = "start"
	ActionReset     = "reset"
	ActionDigit     = "digit"
	ActionBackspace = "backspace"
	ActionText      = "text"
	ActionFocus     = "focus"
	ActionAdvance   = "advance"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// InputKind returns the scenario's concrete input mode.
func (s *Scenario) InputKind() input.Kind {
	if s.Mode == "" {
		return input.KindDirect
	}
	return input.Kind(s.Mode)
}

// Pairs returns the scripted operand pairs.
func (s *Scenario) Pairs() [][2]int {
	out := make([][2]int, 0, len(s.Operands))
	for _, p := range s.Operands {
		out = append(out, [2]int{p[0], p[1]})
	}
	return out
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.InputKind() {
	case input.KindDirect, input.KindKeypad:
	default:
		return fmt.Errorf("mode must be direct or keypad, got %q", s.Mode)
	}

	for i, p := range s.Operands {
		if len(p) != 2 {
			return fmt.Errorf("operands[%d]: want a pair, got %d values", i, len(p))
		}
		for _, v := range p {
			if v < board.MinOperand || v > board.MaxOperand {
				return fmt.Errorf("operands[%d]: %d outside [%d, %d]", i, v, board.MinOperand, board.MaxOperand)
			}
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step) error {
	switch step.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionStart, ActionReset, ActionBackspace, ActionText:
	case ActionDigit:
		if utf8.RuneCountInString(step.Value) != 1 {
			return fmt.Errorf("steps[%d]: digit needs a single-character value, got %q", index, step.Value)
		}
	case ActionFocus:
		if step.Challenge <= 0 {
			return fmt.Errorf("steps[%d]: focus needs a challenge", index)
		}
	case ActionAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return fmt.Errorf("steps[%d]: advance duration: %w", index, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d]: advance duration must be positive", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
