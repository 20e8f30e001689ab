package audio

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stewi1014/glhologram/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormat = beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}

// tone is a full-scale sine at freq Hz.
func tone(freq float64, rate beep.SampleRate) beep.Streamer {
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			v := math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})
}

func writeWav(t *testing.T, samples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, wav.Encode(f, beep.Take(samples, tone(1000, testFormat.SampleRate)), testFormat))
	return path
}

type fakeOutput struct {
	streamer beep.Streamer
	format   beep.Format
	err      error
	plays    int
}

func (o *fakeOutput) Play(s beep.Streamer, format beep.Format) error {
	if o.err != nil {
		return o.err
	}
	o.streamer, o.format = s, format
	o.plays++
	return nil
}

// pull drains n samples from the fake output, as the speaker goroutine would.
func (o *fakeOutput) pull(n int) [][2]float64 {
	buf := make([][2]float64, n)
	got, _ := o.streamer.Stream(buf)
	return buf[:got]
}

func TestLoadWav(t *testing.T) {
	path := writeWav(t, 4000)

	clip, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tone.wav", clip.Name)
	assert.Equal(t, 4000, clip.Buffer.Len())
	assert.Equal(t, testFormat.SampleRate, clip.Format.SampleRate)
	assert.InDelta(t, 0.5, clip.Duration().Seconds(), 1e-9)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Decode("song.ogg", io.NopCloser(strings.NewReader("")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode("broken.wav", io.NopCloser(strings.NewReader("not a riff header")))
	assert.Error(t, err)
}

func TestChainLoops(t *testing.T) {
	clip, err := Load(writeWav(t, 100))
	require.NoError(t, err)

	looped := Chain(clip, PlayOptions{Volume: 1, Loop: true}, nil)
	buf := make([][2]float64, 350)
	n, ok := looped.Stream(buf)
	assert.Equal(t, 350, n)
	assert.True(t, ok)

	once := Chain(clip, PlayOptions{Volume: 1}, nil)
	n, _ = once.Stream(buf)
	assert.Equal(t, 100, n)
}

func TestChainVolume(t *testing.T) {
	clip, err := Load(writeWav(t, 64))
	require.NoError(t, err)

	full := make([][2]float64, 64)
	Chain(clip, PlayOptions{Volume: 1}, nil).Stream(full)
	half := make([][2]float64, 64)
	Chain(clip, PlayOptions{Volume: 0.5}, nil).Stream(half)
	muted := make([][2]float64, 64)
	Chain(clip, PlayOptions{Volume: 0}, nil).Stream(muted)

	for i := range full {
		assert.InDelta(t, full[i][0]/2, half[i][0], 1e-9)
		assert.Equal(t, 0.0, muted[i][0])
	}
}

func TestAnalyserHearsPlaybackVolume(t *testing.T) {
	clip, err := Load(writeWav(t, 800))
	require.NoError(t, err)

	average := func(volume float64) float64 {
		analyser, err := NewAnalyser(DefaultAnalyserOptions())
		require.NoError(t, err)
		buf := make([][2]float64, 512)
		Chain(clip, PlayOptions{Volume: volume, Loop: true}, analyser).Stream(buf)
		return analyser.AverageFrequency()
	}

	full, half, quiet := average(1), average(0.5), average(0.0001)
	assert.Greater(t, full, 0.0)
	assert.Less(t, half, full)
	assert.Less(t, quiet, half)
}

func TestSourceReportsOnlyWhilePlaying(t *testing.T) {
	analyser, err := NewAnalyser(DefaultAnalyserOptions())
	require.NoError(t, err)

	out := &fakeOutput{}
	src := NewSource(analyser, out, PlayOptions{Volume: 0.5, Loop: true})

	v, ok := src.AverageFrequency()
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)

	src.Attach(&asset.State[*Clip]{Path: "tone.wav"})
	require.NoError(t, src.Update())
	_, ok = src.AverageFrequency()
	assert.False(t, ok, "clip still loading")
	assert.Equal(t, 0, out.plays)

	clip, err := Load(writeWav(t, 800))
	require.NoError(t, err)
	src.Attach(asset.ReadyState("tone.wav", clip))
	require.NoError(t, src.Update())
	require.NoError(t, src.Update())
	assert.True(t, src.Playing())
	assert.Equal(t, 1, out.plays, "playback starts once")
	assert.Equal(t, clip.Format, out.format)

	out.pull(256)
	v, ok = src.AverageFrequency()
	assert.True(t, ok)
	assert.Greater(t, v, 0.0)
	assert.LessOrEqual(t, v, 255.0)
}

func TestSourceStartFailure(t *testing.T) {
	analyser, err := NewAnalyser(DefaultAnalyserOptions())
	require.NoError(t, err)

	src := NewSource(analyser, &fakeOutput{err: assert.AnError}, PlayOptions{Volume: 1})
	clip, err := Load(writeWav(t, 10))
	require.NoError(t, err)

	assert.ErrorIs(t, src.Start(clip), assert.AnError)
	assert.False(t, src.Playing())

	src.Attach(asset.ReadyState("tone.wav", clip))
	assert.ErrorIs(t, src.Update(), assert.AnError)
	assert.NoError(t, src.Update(), "a failed clip is not retried")

	assert.Error(t, src.Start(nil))
}
