package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/phanxgames/birch"
	"go.uber.org/zap"
)

// ErrUnknownSound is returned by Play for an id that was never loaded.
var ErrUnknownSound = errors.New("audio: unknown sound")

var _ birch.Audio = (*Player)(nil)

// voice is one playing instance of a sound.
type voice struct {
	ctrl *beep.Ctrl
	done atomic.Bool
}

// Player mixes loaded sounds through the speaker.
type Player struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	sounds      map[string]*beep.Buffer
	voices      map[string]*voice
	mixer       *beep.Mixer
	master      *effects.Volume
	level       float64
	initialized bool
}

// NewPlayer creates a player mixing at sampleRate Hz.
func NewPlayer(sampleRate int) *Player {
	mixer := &beep.Mixer{}
	return &Player{
		sampleRate: beep.SampleRate(sampleRate),
		sounds:     make(map[string]*beep.Buffer),
		voices:     make(map[string]*voice),
		mixer:      mixer,
		master:     &effects.Volume{Streamer: mixer, Base: 2},
		level:      1,
	}
}

// Init opens the speaker and starts mixing. Calling it twice is a no-op.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(p.master)
	p.initialized = true
	return nil
}

// Close stops every voice and detaches from the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.withSpeaker(func() {
		p.mixer.Clear()
	})
	clear(p.voices)
	if p.initialized {
		speaker.Clear()
		p.initialized = false
	}
}

// withSpeaker runs fn holding the speaker lock when the speaker is running.
func (p *Player) withSpeaker(fn func()) {
	if !p.initialized {
		fn()
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	fn()
}

// Load buffers s under id, resampling to the player's rate if needed.
// Loading an id again replaces the sound.
func (p *Player) Load(id string, s beep.Streamer, format beep.Format) {
	if format.SampleRate != p.sampleRate {
		s = beep.Resample(4, format.SampleRate, p.sampleRate, s)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: p.sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(s)

	p.mu.Lock()
	p.sounds[id] = buf
	p.mu.Unlock()
}

// LoadWAV decodes WAV data from r and loads it under id.
func (p *Player) LoadWAV(id string, r io.Reader) error {
	s, format, err := wav.Decode(r)
	if err != nil {
		return fmt.Errorf("audio: decode %q: %w", id, err)
	}
	defer s.Close()
	p.Load(id, s, format)
	return nil
}

// Has reports whether a sound is loaded under id.
func (p *Player) Has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sounds[id]
	return ok
}

// Play starts the sound loaded under id, replacing a voice already playing
// it. loops is the number of times to play; loops <= 0 plays until stopped.
func (p *Player) Play(id string, loops int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf, ok := p.sounds[id]
	if !ok {
		return fmt.Errorf("play %q: %w", id, ErrUnknownSound)
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	switch {
	case loops <= 0:
		s = beep.Loop(-1, buf.Streamer(0, buf.Len()))
	case loops > 1:
		s = beep.Loop(loops, buf.Streamer(0, buf.Len()))
	}

	v := &voice{}
	v.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() { v.done.Store(true) }))}

	p.withSpeaker(func() {
		if old := p.voices[id]; old != nil {
			old.ctrl.Streamer = nil
		}
		p.mixer.Add(v.ctrl)
	})
	p.voices[id] = v
	birch.Logger().Debug("audio play", zap.String("sound", id), zap.Int("loops", loops))
	return nil
}

// Pause pauses the voice playing id, if any.
func (p *Player) Pause(id string) {
	p.setPaused(id, true)
}

// Resume resumes the paused voice for id, if any.
func (p *Player) Resume(id string) {
	p.setPaused(id, false)
}

func (p *Player) setPaused(id string, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.voices[id]
	if v == nil {
		return
	}
	p.withSpeaker(func() {
		v.ctrl.Paused = paused
	})
}

// Stop ends the voice playing id, if any.
func (p *Player) Stop(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.voices[id]
	if v == nil {
		return
	}
	p.withSpeaker(func() {
		v.ctrl.Streamer = nil
	})
	v.done.Store(true)
	delete(p.voices, id)
}

// IsPlaying reports whether id has a voice that is neither paused nor
// finished.
func (p *Player) IsPlaying(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.voices[id]
	if v == nil || v.done.Load() {
		return false
	}
	paused := false
	p.withSpeaker(func() {
		paused = v.ctrl.Paused
	})
	return !paused
}

// SetVolume sets the master volume, clamped to [0, 1]. 0 mutes.
func (p *Player) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))

	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = v
	p.withSpeaker(func() {
		if v == 0 {
			p.master.Silent = true
			p.master.Volume = 0
			return
		}
		p.master.Silent = false
		p.master.Volume = math.Log2(v)
	})
}

// Volume returns the master volume set with SetVolume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}
