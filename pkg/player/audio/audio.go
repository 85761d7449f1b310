// Package audio queues the core's interleaved stereo samples to an SDL
// audio device and tracks how often the device starves. The underrun
// count and the fill level feed the CPU scaler's decisions.
package audio

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

const bytesPerFrame = 4 // s16 stereo

type Output struct {
	log *logger.Logger
	dev sdl.AudioDeviceID

	sampleRate  int
	targetBytes uint32 // queue depth we aim to keep
	started     bool

	underruns atomic.Uint32
	muted     atomic.Bool
}

// Open creates a paused audio device at the given rate. bufferMs is
// the queue depth the output tries to hold; fill percent is relative
// to it.
func Open(sampleRate, bufferMs int, log *logger.Logger) (*Output, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, errors.Wrap(err, "sdl audio")
	}
	want := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  1024,
	}
	var have sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, &want, &have, 0)
	if err != nil {
		return nil, errors.Wrap(err, "open audio device")
	}
	o := &Output{
		log:         log,
		dev:         dev,
		sampleRate:  int(have.Freq),
		targetBytes: uint32(bufferMs * int(have.Freq) / 1000 * bytesPerFrame),
	}
	log.Debug().Int("rate", o.sampleRate).Uint32("target_bytes", o.targetBytes).Msg("audio device open")
	return o, nil
}

// SetRate reopens nothing; cores that change rate mid-session get
// resampled by SDL only if the device was opened allowing changes,
// which we don't. Log and keep going, pitch drift beats a teardown.
func (o *Output) SetRate(rate int) {
	if rate != o.sampleRate {
		o.log.Warn().Int("have", o.sampleRate).Int("want", rate).Msg("core changed sample rate mid-session")
	}
}

// Write queues interleaved s16 stereo frames. Returns the number of
// frames consumed (always all of them; SDL's queue grows as needed).
func (o *Output) Write(samples []int16) int {
	if len(samples) == 0 || o.muted.Load() {
		return len(samples) / 2
	}
	if o.started && sdl.GetQueuedAudioSize(o.dev) == 0 {
		o.underruns.Add(1)
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	if err := sdl.QueueAudio(o.dev, buf); err != nil {
		o.log.Warn().Err(err).Msg("audio queue write")
		return 0
	}
	if !o.started {
		// hold playback until half the target is buffered, avoids an
		// immediate underrun on the first frames
		if sdl.GetQueuedAudioSize(o.dev) >= o.targetBytes/2 {
			sdl.PauseAudioDevice(o.dev, false)
			o.started = true
		}
	}
	return len(samples) / 2
}

// Underruns reports the cumulative count of device starvations.
func (o *Output) Underruns() uint32 { return o.underruns.Load() }

// FillPercent reports queue depth relative to the target, capped at
// 100.
func (o *Output) FillPercent() int {
	if o.targetBytes == 0 {
		return 0
	}
	p := int(sdl.GetQueuedAudioSize(o.dev) * 100 / o.targetBytes)
	if p > 100 {
		p = 100
	}
	return p
}

// SetMute drops incoming samples and clears the queue so stale audio
// doesn't play on unmute.
func (o *Output) SetMute(mute bool) {
	o.muted.Store(mute)
	if mute {
		sdl.ClearQueuedAudio(o.dev)
	}
}

// Pause stops the device without losing queued samples.
func (o *Output) Pause(paused bool) {
	if o.started {
		sdl.PauseAudioDevice(o.dev, paused)
	}
}

func (o *Output) SampleRate() int { return o.sampleRate }

func (o *Output) Close() {
	if o.dev != 0 {
		sdl.CloseAudioDevice(o.dev)
		o.dev = 0
	}
}
