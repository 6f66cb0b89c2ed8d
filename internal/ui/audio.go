package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SoundType is a sound effect.
type SoundType int

const (
	SoundMove SoundType = iota
	SoundCapture
	SoundCheck
	SoundInvalid
	SoundGameEnd
)

const sampleRate = 44100

// AudioManager plays procedurally generated sound effects.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager generates the sound effects. There is one audio context
// per process, so a second manager shares the first one's.
func NewAudioManager(enabled bool) *AudioManager {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	am := &AudioManager{
		context: ctx,
		sounds:  make(map[SoundType][]byte),
		enabled: enabled,
		volume:  0.5,
	}
	am.sounds[SoundMove] = click(440, 0.08, 0.3)
	am.sounds[SoundCapture] = click(330, 0.12, 0.5)
	am.sounds[SoundCheck] = tone([]float64{880}, 0.15, 0.4, attackDecay)
	am.sounds[SoundInvalid] = buzz(150, 0.1, 0.3)
	// C major.
	am.sounds[SoundGameEnd] = tone([]float64{261.63, 329.63, 392.00}, 0.4, 0.5, swell)
	return am
}

// pcm renders duration seconds of sample(t, progress) as 16-bit stereo.
func pcm(duration float64, sample func(t, progress float64) float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := range samples {
		t := float64(i) / sampleRate
		v := max(-1, min(1, sample(t, t/duration)))
		val := int16(v * 32767)
		data[i*4] = byte(val)
		data[i*4+1] = byte(val >> 8)
		data[i*4+2] = byte(val)
		data[i*4+3] = byte(val >> 8)
	}
	return data
}

// click is a short percussive knock, like a piece set down on wood.
func click(freq, duration, amplitude float64) []byte {
	return pcm(duration, func(t, _ float64) float64 {
		noise := (math.Sin(t*sampleRate*0.3) + math.Sin(t*sampleRate*0.7)) * 0.3
		return (math.Sin(2*math.Pi*freq*t) + noise) * math.Exp(-t*30) * amplitude
	})
}

func buzz(freq, duration, amplitude float64) []byte {
	return pcm(duration, func(t, progress float64) float64 {
		wave := math.Sin(2*math.Pi*freq*t) + 0.3*math.Sin(4*math.Pi*freq*t)
		return wave * (1 - progress) * amplitude * 0.5
	})
}

func attackDecay(progress float64) float64 {
	if progress < 0.1 {
		return progress / 0.1
	}
	return 1 - (progress-0.1)/0.9
}

func swell(progress float64) float64 {
	switch {
	case progress < 0.1:
		return progress / 0.1
	case progress > 0.7:
		return (1 - progress) / 0.3
	default:
		return 1
	}
}

// tone mixes sine waves of the given frequencies under an envelope.
func tone(freqs []float64, duration, amplitude float64, envelope func(float64) float64) []byte {
	return pcm(duration, func(t, progress float64) float64 {
		var sum float64
		for _, f := range freqs {
			sum += math.Sin(2 * math.Pi * f * t)
		}
		return sum / float64(len(freqs)) * envelope(progress) * amplitude
	})
}

// Play plays a sound effect. Sounds may overlap.
func (am *AudioManager) Play(sound SoundType) {
	if !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled returns whether audio is enabled.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
