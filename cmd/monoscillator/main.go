package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chase3718/monoscillator/synth"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// -------------------- Tunables --------------------

const (
	ringSize      = 512
	controlTickMS = 100
)

// options is everything read from the command line.
type options struct {
	debug    bool
	rate     uint
	buffer   time.Duration
	volume   int
	phase    string
	midi     bool
	prefer   string
	exclude  string
	serial   string
	baud     int
	headless bool
	logPath  string
	render   string
	out      string
	tail     time.Duration
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging (adds source location)")
	fs.UintVar(&o.rate, "rate", 48000, "sample rate in Hz")
	fs.DurationVar(&o.buffer, "buffer", 20*time.Millisecond, "speaker buffer length")
	fs.IntVar(&o.volume, "volume", 50, "initial volume 0-100")
	fs.StringVar(&o.phase, "phase", "absolute", "oscillator phase mode: absolute or continuous")
	fs.BoolVar(&o.midi, "midi", true, "watch rtmidi inputs and auto-connect")
	fs.StringVar(&o.prefer, "prefer", strings.Join(defaultPreferred, ","), "comma separated preferred MIDI device patterns")
	fs.StringVar(&o.exclude, "exclude", strings.Join(defaultExcluded, ","), "comma separated MIDI device patterns to ignore")
	fs.StringVar(&o.serial, "serial", "", "serial device carrying DIN MIDI (empty = off)")
	fs.IntVar(&o.baud, "baud", MIDIBaud, "serial baud rate")
	fs.BoolVar(&o.headless, "headless", false, "run without the terminal UI")
	fs.StringVar(&o.logPath, "log", "monoscillator.log", "log file used while the terminal UI is active")
	fs.StringVar(&o.render, "render", "", "render this MIDI file to -out instead of playing live")
	fs.StringVar(&o.out, "out", "out.wav", "WAV output for -render")
	fs.DurationVar(&o.tail, "tail", time.Second, "silence rendered after the last MIDI event")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.volume < 0 || o.volume > sliderMax {
		return o, fmt.Errorf("-volume %d outside 0-%d", o.volume, sliderMax)
	}
	if o.rate == 0 || o.rate > 1<<20 {
		return o, fmt.Errorf("-rate %d out of range", o.rate)
	}
	return o, nil
}

func (o options) engineConfig() (synth.Config, error) {
	phase, err := synth.ParsePhaseMode(o.phase)
	if err != nil {
		return synth.Config{}, err
	}
	cfg := synth.DefaultConfig()
	cfg.SampleRate = uint32(o.rate)
	cfg.Volume = float64(o.volume) / sliderMax
	cfg.Phase = phase
	return cfg, cfg.Validate()
}

// -------------------- Diagnostics --------------------

// diagReporter logs what the audio callback counted since the last poll.
type diagReporter struct {
	engine *synth.Engine
	rings  []*synth.EventRing
	prev   synth.DiagSnapshot
	drops  uint64
}

func (r *diagReporter) poll() {
	cur := r.engine.Diagnostics().Snapshot()
	d := cur.Sub(r.prev)
	r.prev = cur

	if d.StackOverflows > 0 {
		logger.Error("synth: note stack full, note-on dropped",
			"count", d.StackOverflows, "last_note", synth.NoteName(int(d.LastOverflowNote)))
	}
	if d.UnmatchedNoteOffs > 0 {
		logger.Warn("synth: note-off without note-on",
			"count", d.UnmatchedNoteOffs, "last_note", synth.NoteName(int(d.LastUnmatchedNote)))
	}
	if d.Retriggers > 0 {
		logger.Debug("synth: note-on for held note", "count", d.Retriggers)
	}
	if d.Overruns > 0 {
		logger.Warn("synth: audio deadline missed", "blocks", d.Overruns)
	}

	var drops uint64
	for _, ring := range r.rings {
		drops += ring.Dropped()
	}
	if drops > r.drops {
		logger.Warn("synth: midi events dropped, ring full", "count", drops-r.drops)
		r.drops = drops
	}
}

// -------------------- Main --------------------

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	useUI := opts.render == "" && !opts.headless && term.IsTerminal(int(os.Stdin.Fd()))

	logOut := io.Writer(os.Stderr)
	if useUI {
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	initLogger(logOut, opts.debug)

	cfg, err := opts.engineConfig()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(2)
	}
	engine, err := synth.NewEngine(cfg)
	if err != nil {
		logger.Error("engine init failed", "err", err)
		os.Exit(1)
	}

	if opts.render != "" {
		logger.Info("monoscillator rendering", "in", opts.render, "out", opts.out, "rate", cfg.SampleRate, "phase", cfg.Phase)
		if err := renderFile(engine, opts.render, opts.out, opts.tail); err != nil {
			logger.Error("render failed", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("monoscillator starting",
		"rate", cfg.SampleRate,
		"buffer", opts.buffer,
		"volume", opts.volume,
		"phase", cfg.Phase,
		"midi", opts.midi,
		"serial", opts.serial,
		"ui", useUI,
		"debug", opts.debug,
	)

	if err := run(engine, opts, useUI); err != nil {
		logger.Error("monoscillator stopped", "err", err)
		os.Exit(1)
	}
}

// run wires the MIDI sources, the speaker, and the control surface, then
// blocks until the user quits or a signal arrives.
func run(engine *synth.Engine, opts options, useUI bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// one ring per producer keeps every ring single-producer
	midiRing := synth.NewEventRing(ringSize)
	serialRing := synth.NewEventRing(ringSize)
	keyRing := synth.NewEventRing(ringSize)

	if err := startSpeaker(engine, engine.SampleRate(), opts.buffer, midiRing, serialRing, keyRing); err != nil {
		return err
	}
	defer stopSpeaker()

	var watcher *MIDIWatcher
	if opts.midi {
		w, err := NewMIDIWatcher(midiRing, splitPatterns(opts.prefer), splitPatterns(opts.exclude), func() {
			logger.Warn("midi: disconnect, releasing held notes")
			engine.Panic()
		})
		if err != nil {
			return fmt.Errorf("midi watcher init: %w", err)
		}
		defer w.Close()
		watcher = w
	}

	if opts.serial != "" {
		sp, err := OpenSerial(opts.serial, opts.baud, serialRing)
		if err != nil {
			return err
		}
		defer sp.Close()
		sp.Start()
	}

	reporter := &diagReporter{engine: engine, rings: []*synth.EventRing{midiRing, serialRing, keyRing}}
	control := func() {
		if watcher != nil {
			watcher.Tick()
		}
		reporter.poll()
	}

	if useUI {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("ui: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("ui: %w", err)
		}
		defer screen.Fini()

		status := func() string {
			if watcher == nil {
				return "midi  off"
			}
			if name, ok := watcher.Connected(); ok {
				return "midi  " + name
			}
			return "midi  waiting"
		}
		ui := newVolumeUI(screen, engine, NewKeyboardState(keyRing), status)

		uiCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			ticker := time.NewTicker(controlTickMS * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-uiCtx.Done():
					return
				case <-ticker.C:
					control()
				}
			}
		}()
		ui.run(uiCtx)
		return nil
	}

	logger.Info("running, waiting for MIDI input (ctrl-c to quit)")
	ticker := time.NewTicker(controlTickMS * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			control()
		}
	}
}
