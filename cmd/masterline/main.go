package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/soundsculpt/masterline/analysis"
	"github.com/soundsculpt/masterline/audio/decode"
	"github.com/soundsculpt/masterline/audio/encode"
	"github.com/soundsculpt/masterline/engine"
	"github.com/soundsculpt/masterline/measure"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Input  string `arg:"" name:"input" help:"Audio file to master (WAV, MP3, or FLAC)" type:"existingfile"`
	Output string `short:"o" help:"Output path; defaults to the input name with the export extension"`
	Format string `short:"f" default:"wav" enum:"wav,mp3" help:"Export format (wav or mp3)"`

	Preset    string `default:"balanced" enum:"balanced,pop,electronic,rock,lofi" help:"Tonal preset"`
	Intensity string `short:"i" default:"medium" enum:"low,medium,high" help:"Mastering intensity"`

	Chorus  float64 `default:"0" help:"Chorus intensity in [0, 1]"`
	Phaser  float64 `default:"0" help:"Phaser intensity in [0, 1]"`
	Flanger float64 `default:"0" help:"Flanger intensity in [0, 1]"`

	NoWarmth      bool `help:"Disable warmth saturation"`
	NoFades       bool `help:"Disable fade-in/fade-out"`
	NoNaturalizer bool `help:"Disable the resonance-notch naturalizer"`

	Reference string `help:"Write a reduced base64 analysis payload to this path instead of mastering"`
	Report    bool   `help:"Print level and spectral statistics for the rendered output"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	Version   bool   `help:"Show version information"`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("masterline"),
		kong.Description("Offline mastering chain: corrective EQ, dynamics, saturation, and creative modulation effects."),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Println("masterline " + version)
		os.Exit(0)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cli.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(cli, log); err != nil {
		log.WithError(err).Error("processing failed")
		kctx.Exit(1)
	}
}

func run(cli *CLI, log *logrus.Logger) error {
	src, err := os.ReadFile(cli.Input)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"input": cli.Input,
		"bytes": len(src),
	}).Debug("source loaded")

	if cli.Reference != "" {
		return runReference(cli, log, src)
	}
	return runMaster(cli, log, src)
}

// runReference handles the analysis payload path: shrink the source and
// write the base64 WAV string.
func runReference(cli *CLI, log *logrus.Logger, src []byte) error {
	start := time.Now()
	payload, err := analysis.PrepareReference(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cli.Reference, []byte(payload), 0o644); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"output":  cli.Reference,
		"bytes":   len(payload),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("analysis payload written")
	return nil
}

// runMaster handles the main path: decode, render, encode, write.
func runMaster(cli *CLI, log *logrus.Logger, src []byte) error {
	buf, err := decode.Decode(src)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"channels":    buf.Channels(),
		"sample_rate": buf.SampleRate,
		"duration":    fmt.Sprintf("%.2fs", buf.Duration()),
	}).Debug("source decoded")

	cfg := engine.DefaultConfig()
	cfg.Intensity = engine.Intensity(cli.Intensity)
	cfg.Preset = engine.Preset(cli.Preset)
	cfg.ExportFormat = encode.Format(cli.Format)
	cfg.EnableWarmth = !cli.NoWarmth
	cfg.EnableFades = !cli.NoFades
	cfg.EnableNaturalizer = !cli.NoNaturalizer
	cfg.CreativeFX = engine.CreativeFX{
		Chorus:  cli.Chorus,
		Phaser:  cli.Phaser,
		Flanger: cli.Flanger,
	}

	session, err := engine.NewSession(cfg)
	if err != nil {
		return err
	}
	log.WithField("session", session.ID()).Debug("render session created")

	start := time.Now()
	rendered, err := session.Render(buf)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"session": session.ID(),
		"frames":  rendered.Frames(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("render complete")

	if cli.Report {
		report, err := measure.Analyze(rendered)
		if err != nil {
			return err
		}
		printReport(report)
	}

	result, err := encode.Encode(rendered, cfg.ExportFormat, cli.Input)
	if err != nil {
		return err
	}

	outPath := cli.Output
	if outPath == "" {
		outPath = result.Name
	}
	if err := os.WriteFile(outPath, result.Data, 0o644); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"output": outPath,
		"format": cfg.ExportFormat,
		"mime":   result.MIME,
		"bytes":  len(result.Data),
	}).Info("master written")
	return nil
}

func printReport(r measure.Report) {
	fmt.Printf("peak       %8.2f dBFS\n", r.PeakDB)
	fmt.Printf("rms        %8.2f dBFS\n", r.RMSDB)
	fmt.Printf("crest      %8.2f dB\n", r.CrestDB)
	fmt.Printf("loudness   %8.2f LU\n", r.LoudnessLU)
	fmt.Printf("centroid   %8.0f Hz\n", r.CentroidHz)
	fmt.Printf("rolloff    %8.0f Hz\n", r.RolloffHz)
}
