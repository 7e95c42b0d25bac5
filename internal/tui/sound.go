package tui

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/roach88/mathtables/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays feedback for answers.
type Sound interface {
	Correct()
	Incorrect()
	GameOver()
}

// Silent is a Sound that plays nothing.
type Silent struct{}

func (Silent) Correct()   {}
func (Silent) Incorrect() {}
func (Silent) GameOver()  {}

// Tone is a frequency held for a duration.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var (
	correctTones   = []Tone{{Freq: 880, Duration: 60 * time.Millisecond}, {Freq: 1320, Duration: 80 * time.Millisecond}}
	incorrectTones = []Tone{{Freq: 220, Duration: 150 * time.Millisecond}}
	gameOverTones  = []Tone{
		{Freq: 440, Duration: 150 * time.Millisecond},
		{Freq: 330, Duration: 150 * time.Millisecond},
		{Freq: 220, Duration: 300 * time.Millisecond},
	}
)

// Speaker plays tones through the default audio device.
type Speaker struct {
	mu          sync.Mutex
	initialized bool
	logger      *slog.Logger
}

// NewSpeaker opens the audio device. Without one, every tone is
// dropped and the game runs silently.
func NewSpeaker(logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Speaker{logger: logger}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		logger.Warn("audio unavailable, playing silently", "error", err)
		return s
	}
	s.initialized = true
	return s
}

func (s *Speaker) Correct()   { s.play(correctTones) }
func (s *Speaker) Incorrect() { s.play(incorrectTones) }
func (s *Speaker) GameOver()  { s.play(gameOverTones) }

// Close releases the audio device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		speaker.Clear()
		speaker.Close()
		s.initialized = false
	}
}

func (s *Speaker) play(tones []Tone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	streamer, err := Melody(sampleRate, tones)
	if err != nil {
		s.logger.Warn("tone generation failed", "error", err)
		return
	}
	speaker.Play(streamer)
}

// Melody plays tones back to back.
func Melody(sr beep.SampleRate, tones []Tone) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		sine, err := generators.SineTone(sr, t.Freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(sr.N(t.Duration), quiet(sine)))
	}
	return beep.Seq(parts...), nil
}

// quiet scales a full-amplitude tone down to a comfortable level.
func quiet(s beep.Streamer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			samples[i][0] *= 0.2
			samples[i][1] *= 0.2
		}
		return n, ok
	})
}

// SoundObserver plays s on answer and game-over events.
func SoundObserver(s Sound) game.Observer {
	return game.ObserverFunc(func(ev game.Event) {
		switch ev.Kind {
		case game.EventCorrect:
			s.Correct()
		case game.EventIncorrect:
			s.Incorrect()
		case game.EventGameOver:
			s.GameOver()
		}
	})
}
