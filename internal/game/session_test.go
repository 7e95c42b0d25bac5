package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/clock"
	"github.com/roach88/mathtables/internal/input"
	"github.com/roach88/mathtables/internal/testutil"
)

type fixture struct {
	clk *clock.Manual
	rec *Recorder
	s   *Session
}

func newFixture(t *testing.T, kind input.Kind, pairs ...[2]int) *fixture {
	t.Helper()
	mode, err := input.New(kind, input.DefaultMaxLength)
	require.NoError(t, err)

	f := &fixture{clk: testutil.NewClock(), rec: &Recorder{}}
	f.s = New(DefaultConfig(), f.clk, mode,
		WithObserver(f.rec),
		WithOperands(testutil.NewOperands(pairs...)),
	)
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.True(t, f.s.Start())
}

func (f *fixture) challenge(t *testing.T, id board.ID) ChallengeView {
	t.Helper()
	c, ok := f.s.Snapshot().Challenge(id)
	require.True(t, ok, "challenge %d not on board", id)
	return c
}

func TestSession_IdleIsInert(t *testing.T) {
	f := newFixture(t, input.KindDirect)

	assert.False(t, f.s.SubmitDigit(1, '1'))
	assert.False(t, f.s.SubmitBackspace(1))
	assert.False(t, f.s.SubmitText(1, "12"))
	assert.False(t, f.s.Focus(1))

	snap := f.s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Challenges)
	assert.Equal(t, 8, snap.NextSpawnIn)
	assert.Equal(t, "1.0", snap.Multiplier)
	assert.Equal(t, 0, f.clk.Pending())
}

func TestSession_StartSpawnsImmediately(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)

	snap := f.s.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, 0, snap.Score)
	require.Len(t, snap.Challenges, 1)
	assert.Equal(t, ChallengeView{ID: 1, A: 3, B: 4, Phase: "entering"}, snap.Challenges[0])
	assert.Equal(t, []EventKind{EventStarted, EventSpawned}, f.rec.Kinds())

	assert.False(t, f.s.Start(), "second start is refused")
}

func TestSession_ChallengeSettles(t *testing.T) {
	f := newFixture(t, input.KindDirect)
	f.start(t)

	f.clk.Advance(999 * time.Millisecond)
	assert.Equal(t, "entering", f.challenge(t, 1).Phase)

	f.clk.Advance(time.Millisecond)
	assert.Equal(t, "active", f.challenge(t, 1).Phase)
}

func TestSession_InputAcceptedWhileEntering(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)

	require.True(t, f.s.SubmitDigit(1, '1'))
	assert.Equal(t, "1", f.challenge(t, 1).Text)
	assert.Equal(t, "entering", f.challenge(t, 1).Phase)
}

// Operands (3,4): "5" is too short to judge, "12" is correct.
func TestSession_PartialThenCorrect(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)
	f.clk.Advance(2 * time.Second)

	require.True(t, f.s.SubmitText(1, "5"))
	c := f.challenge(t, 1)
	assert.Equal(t, "active", c.Phase)
	assert.Equal(t, 0, f.s.Combo())
	assert.Equal(t, 0, f.s.Score())

	require.True(t, f.s.SubmitText(1, "12"))
	assert.Equal(t, "resolving", f.challenge(t, 1).Phase)
	assert.Equal(t, 1, f.s.Combo())
	assert.Equal(t, 100, f.s.Score())

	last := f.rec.Events[len(f.rec.Events)-1]
	assert.Equal(t, EventCorrect, last.Kind)
	assert.Equal(t, 2*time.Second, last.Elapsed)
	assert.Equal(t, 100, last.Points)
}

func TestSession_TwoFastCorrectAnswers(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4}, [2]int{2, 5})
	f.start(t)

	f.clk.Advance(time.Second)
	require.True(t, f.s.SubmitText(1, "12"))
	assert.Equal(t, 100, f.s.Score())

	f.clk.Advance(300 * time.Millisecond)
	snap := f.s.Snapshot()
	require.Len(t, snap.Challenges, 1, "emptied board respawns at once")
	assert.Equal(t, board.ID(2), snap.Challenges[0].ID)

	require.True(t, f.s.SubmitText(2, "10"))
	assert.Equal(t, 250, f.s.Score())
	assert.Equal(t, 2, f.s.Combo())
	assert.Equal(t, "2.0", f.s.Snapshot().Multiplier)

	assert.Equal(t, []EventKind{
		EventStarted, EventSpawned, EventSettled,
		EventInput, EventCorrect, EventRemoved, EventSpawned,
		EventInput, EventCorrect,
	}, f.rec.Kinds())

	var points []int
	for _, ev := range f.rec.Events {
		if ev.Kind == EventCorrect {
			points = append(points, ev.Points)
		}
	}
	assert.Equal(t, []int{100, 150}, points)
}

func TestSession_SlowAnswerScoresLowerTier(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want int
	}{
		{3 * time.Second, 100},
		{3100 * time.Millisecond, 75},
		{5 * time.Second, 75},
		{7 * time.Second, 50},
	}
	for _, tt := range tests {
		t.Run(tt.wait.String(), func(t *testing.T) {
			f := newFixture(t, input.KindDirect, [2]int{3, 4})
			f.start(t)
			f.clk.Advance(tt.wait)

			require.True(t, f.s.SubmitText(1, "12"))
			assert.Equal(t, tt.want, f.s.Score())
		})
	}
}

func TestSession_IncorrectResetsComboAndKeepsChallenge(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{2, 3}, [2]int{3, 4})
	f.start(t)

	require.True(t, f.s.SubmitText(1, "6"))
	require.Equal(t, 1, f.s.Combo())
	f.clk.Advance(300 * time.Millisecond)

	require.True(t, f.s.SubmitText(2, "15"))
	assert.Equal(t, 0, f.s.Combo())
	assert.Equal(t, 100, f.s.Score(), "score never drops")
	c := f.challenge(t, 2)
	assert.Equal(t, "rejected", c.Phase)
	assert.Equal(t, "15", c.Text)

	f.clk.Advance(500 * time.Millisecond)
	c = f.challenge(t, 2)
	assert.Equal(t, "active", c.Phase)
	assert.Equal(t, "15", c.Text, "text retained after rejection")

	require.True(t, f.s.SubmitText(2, "12"))
	assert.Equal(t, 200, f.s.Score())
	assert.Equal(t, 1, f.s.Combo())
}

func TestSession_RepeatedRejectionRestartsFeedback(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)

	require.True(t, f.s.SubmitText(1, "15"))
	f.clk.Advance(400 * time.Millisecond)
	require.True(t, f.s.SubmitDigit(1, '9'))
	assert.Equal(t, "rejected", f.challenge(t, 1).Phase)

	f.clk.Advance(400 * time.Millisecond)
	assert.Equal(t, "rejected", f.challenge(t, 1).Phase, "first feedback timer was cancelled")

	f.clk.Advance(100 * time.Millisecond)
	assert.Equal(t, "active", f.challenge(t, 1).Phase)
}

func TestSession_ShortWrongAnswerIsNotJudged(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{10, 10})
	f.start(t)
	require.True(t, f.s.SubmitText(1, "10"))

	assert.Equal(t, "entering", f.challenge(t, 1).Phase)
	assert.NotContains(t, f.rec.Kinds(), EventIncorrect)
}

func TestSession_NonDigitIgnored(t *testing.T) {
	f := newFixture(t, input.KindDirect)
	f.start(t)

	assert.False(t, f.s.SubmitDigit(1, 'a'))
	assert.False(t, f.s.SubmitText(1, "1a"))
	assert.Equal(t, "", f.challenge(t, 1).Text)
}

func TestSession_ResolvingChallengeIgnoresInput(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)
	require.True(t, f.s.SubmitText(1, "12"))

	assert.False(t, f.s.SubmitDigit(1, '3'))
	assert.False(t, f.s.SubmitBackspace(1))
	assert.Equal(t, 100, f.s.Score())
}

func TestSession_BackspaceCanCompleteAnswer(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)
	require.True(t, f.s.SubmitText(1, "123"))
	require.Equal(t, "rejected", f.challenge(t, 1).Phase)

	require.True(t, f.s.SubmitBackspace(1))
	assert.Equal(t, "resolving", f.challenge(t, 1).Phase)
}

func TestSession_RegularSpawnCadence(t *testing.T) {
	f := newFixture(t, input.KindDirect)
	f.start(t)

	f.clk.Advance(7999 * time.Millisecond)
	assert.Len(t, f.s.Snapshot().Challenges, 1)

	f.clk.Advance(time.Millisecond)
	assert.Len(t, f.s.Snapshot().Challenges, 2)

	f.clk.Advance(8 * time.Second)
	assert.Len(t, f.s.Snapshot().Challenges, 3)
}

func TestSession_FullBoardEndsGame(t *testing.T) {
	f := newFixture(t, input.KindDirect)
	f.start(t)

	f.clk.Advance(40 * time.Second)
	snap := f.s.Snapshot()
	require.Equal(t, StateRunning, snap.State)
	require.Len(t, snap.Challenges, board.DefaultCapacity)

	f.clk.Advance(8 * time.Second)
	snap = f.s.Snapshot()
	assert.Equal(t, StateGameOver, snap.State)
	assert.True(t, snap.GameOver)
	assert.Len(t, snap.Challenges, board.DefaultCapacity, "no seventh challenge")
	assert.Equal(t, 0, f.clk.Pending(), "all timers cancelled")
	assert.Equal(t, EventGameOver, f.rec.Events[len(f.rec.Events)-1].Kind)

	assert.False(t, f.s.SubmitText(1, "12"), "game over is inert")
	assert.False(t, f.s.Start(), "a finished session is not restarted")
}

func TestSession_Countdown(t *testing.T) {
	f := newFixture(t, input.KindDirect)
	f.start(t)
	assert.Equal(t, 8, f.s.Snapshot().NextSpawnIn)

	f.clk.Advance(time.Second)
	assert.Equal(t, 7, f.s.Snapshot().NextSpawnIn)

	f.clk.Advance(6 * time.Second)
	assert.Equal(t, 1, f.s.Snapshot().NextSpawnIn)

	f.clk.Advance(time.Second)
	assert.Equal(t, 8, f.s.Snapshot().NextSpawnIn, "spawn resets the countdown")

	f.clk.Advance(time.Second)
	assert.Equal(t, 7, f.s.Snapshot().NextSpawnIn)
}

func TestSession_EarlySpawnResetsCountdown(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)

	f.clk.Advance(2500 * time.Millisecond)
	assert.Equal(t, 6, f.s.Snapshot().NextSpawnIn)
	require.True(t, f.s.SubmitText(1, "12"))

	f.clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 8, f.s.Snapshot().NextSpawnIn)

	// The countdown ticks a full period after the early spawn.
	f.clk.Advance(700 * time.Millisecond)
	assert.Equal(t, 8, f.s.Snapshot().NextSpawnIn)
	f.clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 7, f.s.Snapshot().NextSpawnIn)

	// The regular cadence is not shifted by the early spawn.
	f.clk.Advance(4200 * time.Millisecond)
	assert.Len(t, f.s.Snapshot().Challenges, 2)
	assert.Equal(t, 8, f.s.Snapshot().NextSpawnIn)
}

func TestSession_KeypadFocusFollowsResolution(t *testing.T) {
	f := newFixture(t, input.KindKeypad, [2]int{3, 4}, [2]int{5, 6})
	f.start(t)
	assert.Equal(t, board.ID(1), f.s.Snapshot().Focused)

	f.clk.Advance(8 * time.Second)
	assert.Equal(t, board.ID(1), f.s.Snapshot().Focused, "new spawn does not steal focus")

	require.True(t, f.s.SubmitDigit(board.NoID, '1'))
	require.True(t, f.s.SubmitDigit(board.NoID, '2'))
	assert.Equal(t, 50, f.s.Score(), "solved after 8s")

	snap := f.s.Snapshot()
	assert.Equal(t, board.ID(2), snap.Focused, "focus moves on resolve")
	assert.True(t, f.challenge(t, 2).Focused)
	assert.False(t, f.challenge(t, 1).Focused)

	f.clk.Advance(300 * time.Millisecond)
	assert.Equal(t, board.ID(2), f.s.Snapshot().Focused)
	assert.Len(t, f.s.Snapshot().Challenges, 1)
}

func TestSession_KeypadFocusAndRespawn(t *testing.T) {
	f := newFixture(t, input.KindKeypad, [2]int{3, 4}, [2]int{2, 2})
	f.start(t)

	require.True(t, f.s.SubmitDigit(board.NoID, '1'))
	require.True(t, f.s.SubmitDigit(board.NoID, '2'))
	assert.Equal(t, board.NoID, f.s.Snapshot().Focused)
	assert.False(t, f.s.SubmitDigit(board.NoID, '4'), "nothing focused")

	f.clk.Advance(300 * time.Millisecond)
	assert.Equal(t, board.ID(2), f.s.Snapshot().Focused, "respawned challenge takes focus")
}

func TestSession_KeypadExplicitFocus(t *testing.T) {
	f := newFixture(t, input.KindKeypad, [2]int{3, 4}, [2]int{5, 6})
	f.start(t)
	f.clk.Advance(8 * time.Second)

	require.True(t, f.s.Focus(2))
	require.True(t, f.s.SubmitDigit(board.NoID, '3'))
	assert.Equal(t, "3", f.challenge(t, 2).Text)
	assert.Equal(t, "", f.challenge(t, 1).Text)
}

func TestSession_CloseCancelsTimers(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4})
	f.start(t)
	require.True(t, f.s.SubmitText(1, "12"))
	require.NotZero(t, f.clk.Pending())

	f.s.Close()
	assert.Equal(t, 0, f.clk.Pending())
	assert.Equal(t, EventAbandoned, f.rec.Events[len(f.rec.Events)-1].Kind)

	n := len(f.rec.Events)
	f.clk.Advance(time.Minute)
	assert.Len(t, f.rec.Events, n)
	assert.False(t, f.s.SubmitDigit(1, '1'))

	f.s.Close()
	assert.Len(t, f.rec.Events, n, "close is idempotent")
}

// leakyClock schedules on a manual clock but hands out timers that cannot be
// cancelled, as if their fire was already queued.
type leakyClock struct{ *clock.Manual }

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (c leakyClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.Manual.AfterFunc(d, f)
	return leakyTimer{}
}

func TestSession_StaleCallbacksAfterCloseAreIgnored(t *testing.T) {
	clk := testutil.NewClock()
	rec := &Recorder{}
	old := New(DefaultConfig(), leakyClock{clk}, input.NewDirect(),
		WithObserver(rec), WithOperands(testutil.NewOperands()))
	require.True(t, old.Start())
	require.True(t, old.SubmitText(1, "12"))
	old.Close()

	fresh := New(DefaultConfig(), clk, input.NewDirect(),
		WithRound(2), WithOperands(testutil.NewOperands([2]int{9, 9})))
	require.True(t, fresh.Start())

	n := len(rec.Events)
	before := old.Snapshot()
	clk.Advance(20 * time.Second)

	assert.Len(t, rec.Events, n, "closed session emits nothing")
	assert.Equal(t, before, old.Snapshot(), "closed session state frozen")

	snap := fresh.Snapshot()
	assert.Equal(t, 2, snap.Round)
	assert.Equal(t, 0, snap.Score)
	assert.Len(t, snap.Challenges, 3)
	assert.Equal(t, 9, snap.Challenges[0].A)
}

func TestSession_EventsAreOrdered(t *testing.T) {
	f := newFixture(t, input.KindDirect, [2]int{3, 4}, [2]int{2, 5})
	f.start(t)
	f.clk.Advance(time.Second)
	f.s.SubmitText(1, "12")
	f.clk.Advance(10 * time.Second)

	require.NotEmpty(t, f.rec.Events)
	for i, ev := range f.rec.Events {
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.Equal(t, 1, ev.Round)
		assert.Equal(t, input.KindDirect, ev.Mode)
		if i > 0 {
			assert.GreaterOrEqual(t, ev.Offset, f.rec.Events[i-1].Offset)
		}
	}
	spawned := f.rec.Events[1]
	assert.Equal(t, EventSpawned, spawned.Kind)
	assert.Equal(t, 3, spawned.A)
	assert.Equal(t, 4, spawned.B)
}

// Random play must never break the board, score or focus invariants.
func TestSession_RandomPlayKeepsInvariants(t *testing.T) {
	for _, kind := range []input.Kind{input.KindDirect, input.KindKeypad} {
		t.Run(string(kind), func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, uint64(len(kind))))
			mode, err := input.New(kind, input.DefaultMaxLength)
			require.NoError(t, err)
			clk := testutil.NewClock()
			s := New(DefaultConfig(), clk, mode, WithOperands(board.NewRandomOperands(99)))
			require.True(t, s.Start())

			prevScore := 0
			for step := 0; step < 2000 && s.State() == StateRunning; step++ {
				snap := s.Snapshot()
				target := board.NoID
				if len(snap.Challenges) > 0 {
					target = snap.Challenges[r.IntN(len(snap.Challenges))].ID
				}
				switch r.IntN(5) {
				case 0:
					clk.Advance(time.Duration(r.IntN(2000)) * time.Millisecond)
				case 1:
					s.SubmitBackspace(target)
				case 2:
					s.Focus(target)
				default:
					s.SubmitDigit(target, rune('0'+r.IntN(10)))
				}

				snap = s.Snapshot()
				require.LessOrEqual(t, len(snap.Challenges), snap.Capacity)
				require.GreaterOrEqual(t, snap.Score, prevScore)
				prevScore = snap.Score

				seen := make(map[board.ID]bool)
				focused := 0
				for _, c := range snap.Challenges {
					require.False(t, seen[c.ID], "duplicate id %d", c.ID)
					seen[c.ID] = true
					if c.Focused {
						focused++
					}
				}
				require.LessOrEqual(t, focused, 1)
				if snap.Focused != board.NoID {
					require.True(t, seen[snap.Focused], "focus on removed challenge")
				}
				if snap.State == StateRunning && kind == input.KindDirect {
					require.NotEmpty(t, snap.Challenges)
				}
			}
		})
	}
}
