// Command proofd is the proofreading daemon: it watches the focused
// text field, runs the analysis engine over settled edits, and hands
// positioned annotations to the overlay renderer, with a terminal
// status display for observability.
//
// Platform bridges (accessibility provider, overlay renderer, display
// enumerator) register themselves via the focus, annotate, and spatial
// registries. Without a bridge compiled in, proofd runs against a
// scripted demo text field so the pipeline can be exercised anywhere.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"proofd/internal/annotate"
	"proofd/internal/config"
	"proofd/internal/coord"
	"proofd/internal/correct"
	"proofd/internal/dict"
	"proofd/internal/engine"
	"proofd/internal/engine/wordlist"
	"proofd/internal/focus"
	"proofd/internal/history"
	"proofd/internal/logging"
	"proofd/internal/otel"
	"proofd/internal/spatial"
	"proofd/internal/ui"
)

func main() {
	demo := flag.Bool("demo", false, "run against a scripted in-process text field")
	headless := flag.Bool("headless", false, "run without the status display")
	flag.Parse()

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "proofd: logging init: %v\n", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Warn("config load failed, using defaults", "err", err)
		cfg = config.DefaultConfig()
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "proofd: create data dir: %v\n", err)
		os.Exit(1)
	}

	// Observability: JSONL event log plus a ring buffer for the TUI feed.
	events := otel.NewNullLogger()
	eventsPath := filepath.Join(dataDir, "events.jsonl")
	if f, err := os.OpenFile(eventsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		events = otel.NewLogger(f)
	} else {
		logging.Warn("event log unavailable", "err", err)
	}
	ring := otel.NewRingBuffer(256)
	events.SetRingBuffer(ring)
	defer events.Close()

	userDict, err := dict.Open(filepath.Join(dataDir, "dictionary.txt"))
	if err != nil {
		logging.Error("dictionary unavailable", "err", err)
		events.Error(otel.KindStoreError, "dict", err)
	}
	if userDict != nil {
		defer userDict.Close()
	}

	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		logging.Error("history store unavailable", "err", err)
		events.Error(otel.KindStoreError, "history", err)
	}
	if store != nil {
		defer store.Close()
	}

	// Pipeline endpoints: platform bridge if one is compiled in,
	// otherwise the demo field.
	provider := focus.NewPlatform()
	renderer := annotate.NewPlatform()
	displays := spatial.NewPlatform()

	var field *demoField
	if *demo || provider == nil {
		if !*demo {
			logging.Warn("no platform bridge compiled in, running demo field")
		}
		field = newDemoField()
		provider = field
		displays = demoDisplays{}
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}

	// The engine starts from the base word list and is pre-taught the
	// user dictionary; later additions flow through the coordinator.
	factory := func() (engine.Engine, error) {
		eng, err := wordlist.New(cfg.Engine.WordListPath)
		if err != nil {
			return nil, err
		}
		if userDict != nil {
			for _, w := range userDict.Words() {
				eng.AddWord(w)
			}
		}
		return eng, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program *tea.Program

	c := coord.New(coord.Deps{
		Provider:  provider,
		Renderer:  renderer,
		Factory:   factory,
		Dict:      userDict,
		Store:     store,
		Displays:  displays,
		Clipboard: correct.NewSystemClipboard(),
		Paster:    nil, // paste synthesis needs a platform bridge
		Config:    cfg,
		Events:    events,
		Notify: func(v any) {
			if program != nil && !*headless {
				program.Send(v)
			}
		},
	})

	if !*headless {
		model := ui.New(c, ring, cfg.UI.FeedLines)
		program = tea.NewProgram(model, tea.WithAltScreen())
	}

	events.Info(otel.KindStartup, "main", "")
	logging.Info("proofd starting", "demo", field != nil, "headless", *headless)

	c.Start(ctx)
	if field != nil {
		field.Run(ctx)
	}

	if *headless {
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()
	} else {
		if _, err := program.Run(); err != nil {
			logging.Error("status display failed", "err", err)
		}
	}

	events.Info(otel.KindShutdown, "main", "")
	cancel()
	c.Stop()
}

// nopRenderer discards annotations; the status display still shows
// them via pass messages.
type nopRenderer struct{}

func (nopRenderer) UpdateAnnotations([]annotate.Annotation) {}
func (nopRenderer) ClearAnnotations()                       {}
