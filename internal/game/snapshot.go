package game

import (
	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/input"
	"github.com/roach88/mathtables/internal/scoring"
)

// ChallengeView is the read-only view of one challenge.
type ChallengeView struct {
	ID      board.ID `json:"id"`
	A       int      `json:"a"`
	B       int      `json:"b"`
	Text    string   `json:"text"`
	Phase   string   `json:"phase"`
	Focused bool     `json:"focused"`
}

// Snapshot is an immutable copy of session state for renderers.
type Snapshot struct {
	Round       int             `json:"round"`
	State       State           `json:"state"`
	Mode        input.Kind      `json:"mode"`
	Score       int             `json:"score"`
	Combo       int             `json:"combo"`
	BestCombo   int             `json:"best_combo"`
	Multiplier  string          `json:"multiplier"`
	NextSpawnIn int             `json:"next_spawn_in"`
	GameOver    bool            `json:"game_over"`
	Focused     board.ID        `json:"focused"`
	Capacity    int             `json:"capacity"`
	Challenges  []ChallengeView `json:"challenges"`
}

// Challenge returns the view for id.
func (s Snapshot) Challenge(id board.ID) (ChallengeView, bool) {
	for _, c := range s.Challenges {
		if c.ID == id {
			return c, true
		}
	}
	return ChallengeView{}, false
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	focused := s.mode.Focused()
	views := make([]ChallengeView, 0, s.board.Len())
	for _, c := range s.board.Challenges() {
		views = append(views, ChallengeView{
			ID:      c.ID,
			A:       c.A,
			B:       c.B,
			Text:    c.Text,
			Phase:   c.Phase.String(),
			Focused: c.ID == focused,
		})
	}
	return Snapshot{
		Round:       s.round,
		State:       s.state,
		Mode:        s.mode.Kind(),
		Score:       s.score,
		Combo:       s.combo,
		BestCombo:   s.bestCombo,
		Multiplier:  scoring.Multiplier(s.combo).StringFixed(1),
		NextSpawnIn: s.countdown,
		GameOver:    s.state == StateGameOver,
		Focused:     focused,
		Capacity:    s.board.Capacity(),
		Challenges:  views,
	}
}
