package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/share"
)

// Controls is what the keyboard drives.
type Controls interface {
	Resize(width, height int)
	SetText(text string)
	RandomizeColors() domain.ColorPair
	ToggleWebcam() bool
	Share(ctx context.Context) (share.Payload, error)
}

const help = "t text  c colors  w webcam  s share  q quit"

// Runner reads terminal events and turns them into controls.
type Runner struct {
	screen   tcell.Screen
	surface  *Surface
	controls Controls

	editing bool
	text    []rune
}

// NewRunner creates a runner. The text being edited starts as initial.
func NewRunner(screen tcell.Screen, surface *Surface, controls Controls, initial string) *Runner {
	return &Runner{screen: screen, surface: surface, controls: controls, text: []rune(initial)}
}

// Run handles events until quit or ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	r.surface.SetStatus(help)
	r.controls.Resize(r.surface.Size())

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !r.handle(ctx, ev) {
				return nil
			}
		}
	}
}

// handle processes one event and reports whether to keep running.
func (r *Runner) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		r.screen.Sync()
		r.controls.Resize(r.surface.Size())
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if r.editing {
			r.edit(ev)
			return true
		}
		return r.command(ctx, ev)
	}
	return true
}

func (r *Runner) command(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape {
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'c':
		r.controls.RandomizeColors()
	case 'w':
		if r.controls.ToggleWebcam() {
			r.surface.SetStatus("webcam on")
		} else {
			r.surface.SetStatus("webcam off")
		}
	case 's':
		p, err := r.controls.Share(ctx)
		switch {
		case errors.Is(err, share.ErrUnsupported):
			r.surface.SetStatus("sharing is not available here")
		case err != nil:
			slog.Warn("share failed", "error", err)
			r.surface.SetStatus(fmt.Sprintf("share failed: %v", err))
		default:
			r.surface.SetStatus("shared " + p.URL)
		}
	case 't':
		r.editing = true
		r.surface.SetStatus("text: " + string(r.text))
	}
	return true
}

// edit applies one keystroke to the text. Every change goes to the palette
// right away, like typing into the page's input.
func (r *Runner) edit(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyEscape:
		r.editing = false
		r.surface.SetStatus(help)
		return
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(r.text) == 0 {
			return
		}
		r.text = r.text[:len(r.text)-1]
	case tcell.KeyRune:
		r.text = append(r.text, ev.Rune())
	default:
		return
	}
	r.controls.SetText(string(r.text))
	r.surface.SetStatus("text: " + string(r.text))
}
