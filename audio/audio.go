// Package audio loads a sound clip, plays it on loop and exposes a running
// spectral analysis of what is being played.
package audio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/stewi1014/glhologram/asset"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Clip is a fully decoded audio buffer.
type Clip struct {
	Name   string
	Format beep.Format
	Buffer *beep.Buffer
}

func (c *Clip) Duration() time.Duration {
	return c.Format.SampleRate.D(c.Buffer.Len())
}

// Load decodes the file at path by extension.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	return Decode(filepath.Base(path), f)
}

// Decode reads an mp3 or wav stream named name into memory and closes rc.
func Decode(name string, rc io.ReadCloser) (*Clip, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		stream, format, err = mp3.Decode(rc)
	case ".wav":
		stream, format, err = wav.Decode(rc)
	default:
		rc.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer stream.Close()

	buf := beep.NewBuffer(format)
	buf.Append(stream)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return &Clip{
		Name:   name,
		Format: format,
		Buffer: buf,
	}, nil
}

type PlayOptions struct {
	Volume float64 // linear gain, 1 is unchanged
	Loop   bool
}

// Chain builds the playback stream for clip: looped if asked, attenuated,
// then passed through the analyser so it measures what is heard.
func Chain(clip *Clip, opts PlayOptions, analyser *Analyser) beep.Streamer {
	var s beep.Streamer
	if opts.Loop {
		s = beep.Loop(-1, clip.Buffer.Streamer(0, clip.Buffer.Len()))
	} else {
		s = clip.Buffer.Streamer(0, clip.Buffer.Len())
	}

	s = &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(opts.Volume),
		Silent:   opts.Volume <= 0,
	}

	if analyser != nil {
		s = &tap{Streamer: s, analyser: analyser}
	}
	return s
}

type tap struct {
	beep.Streamer
	analyser *Analyser
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	if n > 0 {
		t.analyser.Write(samples[:n])
	}
	return n, ok
}

// Output plays a stream recorded at the given format.
type Output interface {
	Play(s beep.Streamer, format beep.Format) error
}

// Speaker plays through the system audio device. The device is opened on
// first use at SampleRate; streams at other rates are resampled.
type Speaker struct {
	SampleRate beep.SampleRate

	once sync.Once
	err  error
}

func (s *Speaker) Play(st beep.Streamer, format beep.Format) error {
	s.once.Do(func() {
		s.err = speaker.Init(s.SampleRate, s.SampleRate.N(time.Second/10))
	})
	if s.err != nil {
		return fmt.Errorf("speaker init: %w", s.err)
	}

	if format.SampleRate != s.SampleRate {
		st = beep.Resample(4, format.SampleRate, s.SampleRate, st)
	}
	speaker.Play(st)
	return nil
}

// Source couples playback with analysis. It reports no amplitude until
// its clip has loaded and been handed to the output.
type Source struct {
	analyser *Analyser
	output   Output
	opts     PlayOptions

	clip    *asset.State[*Clip]
	playing atomic.Bool
}

func NewSource(analyser *Analyser, output Output, opts PlayOptions) *Source {
	return &Source{
		analyser: analyser,
		output:   output,
		opts:     opts,
	}
}

func (s *Source) Analyser() *Analyser {
	return s.analyser
}

// Attach sets the clip to play. Playback starts on the first Update that
// finds it ready.
func (s *Source) Attach(clip *asset.State[*Clip]) {
	s.clip = clip
}

// Update checks the attached clip and starts playback once it is ready. A
// clip that fails to load or play is dropped, so the error is returned once.
func (s *Source) Update() error {
	if s.clip == nil || s.Playing() {
		return nil
	}

	switch s.clip.Status() {
	case asset.Pending:
		return nil
	case asset.Failed:
		s.clip = nil
		return nil
	}

	clip, _ := s.clip.Get()
	if err := s.Start(clip); err != nil {
		s.clip = nil
		return err
	}
	return nil
}

// Start begins playback. Calling it again restarts from a fresh analysis.
func (s *Source) Start(clip *Clip) error {
	if clip == nil || clip.Buffer == nil {
		return errors.New("start audio: no clip")
	}

	s.analyser.Reset()
	if err := s.output.Play(Chain(clip, s.opts, s.analyser), clip.Format); err != nil {
		return fmt.Errorf("play %s: %w", clip.Name, err)
	}
	s.playing.Store(true)
	log.Printf("playing %s (%v)", clip.Name, clip.Duration().Round(time.Millisecond))
	return nil
}

func (s *Source) Playing() bool {
	return s.playing.Load()
}

func (s *Source) AverageFrequency() (float64, bool) {
	if !s.playing.Load() {
		return 0, false
	}
	return s.analyser.AverageFrequency(), true
}
