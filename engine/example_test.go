package engine_test

import (
	"fmt"
	"math"

	"github.com/soundsculpt/masterline/audio"
	"github.com/soundsculpt/masterline/engine"
)

func ExampleRender() {
	src, err := audio.New(1, 44100, 44100)
	if err != nil {
		panic(err)
	}
	for i := range src.Data[0] {
		src.Data[0][i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}

	cfg := engine.DefaultConfig()
	cfg.Intensity = engine.IntensityHigh
	cfg.Preset = engine.PresetPop

	out, err := engine.Render(src, cfg)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%d ch, %d Hz, %d frames\n", out.Channels(), out.SampleRate, out.Frames())
	// Output:
	// 2 ch, 48000 Hz, 48000 frames
}
