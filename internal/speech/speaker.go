package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
)

// Options shape how an utterance is voiced. Zero values mean the host
// engine's defaults.
type Options struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// Speaker is the host text-to-speech capability. Speak blocks until the
// utterance finishes or ctx is cancelled.
type Speaker interface {
	Speak(ctx context.Context, text string, opts Options) error
}

// NoopSpeaker is the degrade path when no engine is available.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(context.Context, string, Options) error { return nil }

// CommandSpeaker shells out to the platform TTS binary. Cancelling the
// context kills the process, which is how mid-utterance cancellation
// works.
type CommandSpeaker struct {
	// Command overrides autodetection when set.
	Command string
}

// DetectSpeaker returns a CommandSpeaker for the host engine, or
// NoopSpeaker when none is known for this platform.
func DetectSpeaker() Speaker {
	switch runtime.GOOS {
	case "darwin":
		return &CommandSpeaker{Command: "say"}
	case "linux":
		if _, err := exec.LookPath("espeak"); err == nil {
			return &CommandSpeaker{Command: "espeak"}
		}
	}
	return NoopSpeaker{}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string, opts Options) error {
	var args []string
	switch s.Command {
	case "say":
		if opts.Rate > 0 {
			// say takes words per minute; rate 1.0 ~= 200 wpm.
			args = append(args, "-r", strconv.Itoa(int(opts.Rate*200)))
		}
	case "espeak":
		if opts.Rate > 0 {
			args = append(args, "-s", strconv.Itoa(int(opts.Rate*175)))
		}
		if opts.Pitch > 0 {
			args = append(args, "-p", strconv.Itoa(int(opts.Pitch*50)))
		}
		if opts.Volume > 0 {
			args = append(args, "-a", strconv.Itoa(int(opts.Volume*100)))
		}
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, s.Command, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech command %q: %w", s.Command, err)
	}
	return nil
}
