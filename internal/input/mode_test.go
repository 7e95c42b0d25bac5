package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/testutil"
)

// boardWith returns a board holding n challenges (ids 1..n), all 3 x 4.
func boardWith(t *testing.T, n int) *board.Board {
	t.Helper()
	b := board.New(board.DefaultCapacity, testutil.NewOperands())
	for i := 0; i < n; i++ {
		_, err := b.Spawn(testutil.Epoch)
		require.NoError(t, err)
	}
	return b
}

func text(t *testing.T, b *board.Board, id board.ID) string {
	t.Helper()
	c, ok := b.Get(id)
	require.True(t, ok, "challenge %d not on board", id)
	return c.Text
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"direct", KindDirect, false},
		{"KEYPAD", KindKeypad, false},
		{" auto ", KindAuto, false},
		{"", KindAuto, false},
		{"mouse", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect(t *testing.T) {
	assert.Equal(t, KindKeypad, Select(true))
	assert.Equal(t, KindDirect, Select(false))
	assert.Equal(t, KindKeypad, KindAuto.Resolve(true))
	assert.Equal(t, KindDirect, KindDirect.Resolve(true))
}

func TestNew(t *testing.T) {
	m, err := New(KindDirect, 0)
	require.NoError(t, err)
	assert.Equal(t, KindDirect, m.Kind())

	m, err = New(KindKeypad, 3)
	require.NoError(t, err)
	assert.Equal(t, KindKeypad, m.Kind())
	assert.Equal(t, 3, m.(*Keypad).MaxLength())

	_, err = New(KindAuto, 0)
	assert.Error(t, err)
}

func TestDirect_DigitAppendsToTarget(t *testing.T) {
	b := boardWith(t, 2)
	m := NewDirect()

	c := m.Digit(b, 2, '1')
	require.NotNil(t, c)
	assert.Equal(t, board.ID(2), c.ID)
	m.Digit(b, 2, '2')

	assert.Equal(t, "", text(t, b, 1))
	assert.Equal(t, "12", text(t, b, 2))
}

func TestDirect_IgnoresNonDigits(t *testing.T) {
	b := boardWith(t, 1)
	m := NewDirect()
	m.Digit(b, 1, '4')

	assert.Nil(t, m.Digit(b, 1, 'x'))
	assert.Nil(t, m.Digit(b, 1, '-'))
	assert.Equal(t, "4", text(t, b, 1))
}

func TestDirect_IgnoresUnknownOrResolvingTarget(t *testing.T) {
	b := boardWith(t, 1)
	m := NewDirect()

	assert.Nil(t, m.Digit(b, 9, '1'))
	assert.Nil(t, m.Digit(b, board.NoID, '1'))

	c, _ := b.Get(1)
	c.Phase = board.PhaseResolving
	assert.Nil(t, m.Digit(b, 1, '1'))
	assert.Nil(t, m.Backspace(b, 1))
}

func TestDirect_LengthIsNotCapped(t *testing.T) {
	b := boardWith(t, 1)
	m := NewDirect()
	for _, d := range "123456" {
		require.NotNil(t, m.Digit(b, 1, d))
	}
	assert.Equal(t, "123456", text(t, b, 1))
}

func TestDirect_Backspace(t *testing.T) {
	b := boardWith(t, 1)
	m := NewDirect()

	assert.Nil(t, m.Backspace(b, 1), "empty text is unchanged")

	m.Digit(b, 1, '1')
	m.Digit(b, 1, '3')
	require.NotNil(t, m.Backspace(b, 1))
	assert.Equal(t, "1", text(t, b, 1))
}

func TestDirect_Replace(t *testing.T) {
	b := boardWith(t, 1)
	m := NewDirect()

	require.NotNil(t, m.Replace(b, 1, "12"))
	assert.Equal(t, "12", text(t, b, 1))

	assert.Nil(t, m.Replace(b, 1, "1a"), "non-digit edit refused")
	assert.Equal(t, "12", text(t, b, 1))

	assert.Nil(t, m.Replace(b, 1, "12"), "no change")

	require.NotNil(t, m.Replace(b, 1, ""))
	assert.Equal(t, "", text(t, b, 1))
}

func TestDirect_HasNoFocus(t *testing.T) {
	b := boardWith(t, 1)
	m := NewDirect()

	assert.False(t, m.Focus(b, 1))
	assert.Equal(t, board.NoID, m.Focused())
}

func TestKeypad_DigitWithoutFocusIsNoop(t *testing.T) {
	b := boardWith(t, 1)
	m := NewKeypad(0)

	assert.Nil(t, m.Digit(b, 1, '1'))
	assert.Equal(t, "", text(t, b, 1))
}

func TestKeypad_WritesToFocusedIgnoringTarget(t *testing.T) {
	b := boardWith(t, 2)
	m := NewKeypad(0)
	require.True(t, m.Focus(b, 1))

	c := m.Digit(b, 2, '7')
	require.NotNil(t, c)
	assert.Equal(t, board.ID(1), c.ID)
	assert.Equal(t, "7", text(t, b, 1))
	assert.Equal(t, "", text(t, b, 2))
}

func TestKeypad_CapsLength(t *testing.T) {
	b := boardWith(t, 1)
	m := NewKeypad(DefaultMaxLength)
	m.Focus(b, 1)

	for _, d := range "9999" {
		require.NotNil(t, m.Digit(b, board.NoID, d))
	}
	assert.Nil(t, m.Digit(b, board.NoID, '9'))
	assert.Equal(t, "9999", text(t, b, 1))
}

func TestKeypad_Backspace(t *testing.T) {
	b := boardWith(t, 1)
	m := NewKeypad(0)
	assert.Nil(t, m.Backspace(b, board.NoID))

	m.Focus(b, 1)
	m.Digit(b, board.NoID, '1')
	m.Digit(b, board.NoID, '2')
	require.NotNil(t, m.Backspace(b, board.NoID))
	assert.Equal(t, "1", text(t, b, 1))
}

func TestKeypad_ReplaceIsIgnored(t *testing.T) {
	b := boardWith(t, 1)
	m := NewKeypad(0)
	m.Focus(b, 1)

	assert.Nil(t, m.Replace(b, 1, "12"))
	assert.Equal(t, "", text(t, b, 1))
}

func TestKeypad_Focus(t *testing.T) {
	b := boardWith(t, 2)
	m := NewKeypad(0)

	assert.False(t, m.Focus(b, 9), "unknown challenge")
	assert.True(t, m.Focus(b, 2))
	assert.False(t, m.Focus(b, 2), "already focused")

	c, _ := b.Get(1)
	c.Phase = board.PhaseResolving
	assert.False(t, m.Focus(b, 1), "resolving challenge cannot take focus")
	assert.Equal(t, board.ID(2), m.Focused())
}

func TestKeypad_SpawnedFocusesWhenNothingFocused(t *testing.T) {
	b := boardWith(t, 0)
	m := NewKeypad(0)

	c1, _ := b.Spawn(testutil.Epoch)
	m.Spawned(b, c1)
	assert.Equal(t, c1.ID, m.Focused())

	c2, _ := b.Spawn(testutil.Epoch)
	m.Spawned(b, c2)
	assert.Equal(t, c1.ID, m.Focused(), "existing focus kept")
}

func TestKeypad_ReleasedMovesFocusToNewest(t *testing.T) {
	b := boardWith(t, 3)
	m := NewKeypad(0)
	m.Focus(b, 2)

	c2, _ := b.Get(2)
	c2.Phase = board.PhaseResolving
	m.Released(b, 2)
	assert.Equal(t, board.ID(3), m.Focused())

	require.True(t, b.Remove(2))
	m.Released(b, 2)
	assert.Equal(t, board.ID(3), m.Focused(), "unrelated release keeps focus")
}

func TestKeypad_ReleasedSkipsResolving(t *testing.T) {
	b := boardWith(t, 3)
	m := NewKeypad(0)
	m.Focus(b, 3)

	c2, _ := b.Get(2)
	c2.Phase = board.PhaseResolving
	c3, _ := b.Get(3)
	c3.Phase = board.PhaseResolving
	m.Released(b, 3)

	assert.Equal(t, board.ID(1), m.Focused())
}

func TestKeypad_ReleasedClearsFocusOnEmptyBoard(t *testing.T) {
	b := boardWith(t, 1)
	m := NewKeypad(0)
	m.Focus(b, 1)

	require.True(t, b.Remove(1))
	m.Released(b, 1)

	assert.Equal(t, board.NoID, m.Focused())
}

// Focus must always name a challenge on the board that accepts input.
func TestKeypad_FocusNeverDangles(t *testing.T) {
	b := boardWith(t, 0)
	m := NewKeypad(0)

	for i := 0; i < 4; i++ {
		c, _ := b.Spawn(testutil.Epoch)
		m.Spawned(b, c)
	}
	for _, id := range []board.ID{1, 4, 2, 3} {
		c, _ := b.Get(id)
		c.Phase = board.PhaseResolving
		m.Released(b, id)
		b.Remove(id)
		m.Released(b, id)

		if f := m.Focused(); f != board.NoID {
			fc, ok := b.Get(f)
			require.True(t, ok, "focus %d not on board", f)
			assert.True(t, fc.AcceptsInput())
		}
	}
	assert.Equal(t, board.NoID, m.Focused())
}
