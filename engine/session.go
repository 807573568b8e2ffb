// Package engine renders a decoded audio buffer through the fixed
// mastering chain: headroom trim, rumble filtering, optional modulation
// effects, spectral correction, tonal shelving, compression, saturation,
// makeup gain, limiting, and fades. Output is always stereo at 48 kHz.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/soundsculpt/masterline/audio"
	"github.com/soundsculpt/masterline/dsp/resample"
)

// RenderSampleRate is the fixed output rate of the mastering chain.
const RenderSampleRate = 48000

// ErrRender indicates the processing chain failed to complete. No partial
// output accompanies it.
var ErrRender = errors.New("engine: render failed")

// Session owns one render invocation: its configuration, its derived
// dynamics parameters, and a unique identifier for log correlation. Every
// Render call builds a fresh stage chain, so a Session may be used for
// repeated renders and independent Sessions may run concurrently.
type Session struct {
	id     string
	cfg    Config
	params Parameters
}

// NewSession validates the configuration and prepares a render session.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		params: DeriveParameters(cfg.Intensity),
	}, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Parameters returns the derived dynamics parameters.
func (s *Session) Parameters() Parameters { return s.params }

// Render masters the source buffer and returns a new stereo buffer at
// 48 kHz with the same duration (rounded up to whole frames). The source
// is not modified.
func (s *Session) Render(src *audio.Buffer) (*audio.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	left, right, err := prepareStereo(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	stages, err := buildChain(s.cfg, s.params, RenderSampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	for _, stage := range stages {
		stage.Process(left, right)
	}

	return &audio.Buffer{
		SampleRate: RenderSampleRate,
		Data:       [][]float64{left, right},
	}, nil
}

// Render is a convenience wrapper that creates a single-use session.
func Render(src *audio.Buffer, cfg Config) (*audio.Buffer, error) {
	session, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return session.Render(src)
}

// prepareStereo converts the source to two channels at the render rate.
// Mono input is duplicated; the samples are copied so later stages never
// touch caller-owned memory.
func prepareStereo(src *audio.Buffer) (left, right []float64, err error) {
	var inL, inR []float64
	switch src.Channels() {
	case 1:
		inL = src.Data[0]
		inR = src.Data[0]
	case 2:
		inL = src.Data[0]
		inR = src.Data[1]
	default:
		return nil, nil, fmt.Errorf("unsupported channel count %d", src.Channels())
	}

	left, err = resample.Resample(inL, src.SampleRate, RenderSampleRate)
	if err != nil {
		return nil, nil, err
	}
	right, err = resample.Resample(inR, src.SampleRate, RenderSampleRate)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
