package build

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Renderer draws build progress. On a terminal it keeps a live area with one line per
// file; otherwise it prints a line per finished file.
type Renderer struct {
	state       *ProgressState
	renderState *RenderState
	interactive bool

	mu   sync.Mutex
	area *pterm.AreaPrinter
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewRenderer creates a renderer. interactive selects the live area display.
func NewRenderer(interactive bool) *Renderer {
	return &Renderer{
		state:       NewProgressState(),
		renderState: NewRenderState(),
		interactive: interactive,
	}
}

// State exposes the progress state the renderer folds events into.
func (r *Renderer) State() *ProgressState { return r.state }

// Start begins the live display. It is a no-op in non-interactive mode.
func (r *Renderer) Start() {
	if !r.interactive {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area != nil {
		return
	}

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(false).Start()
	if err != nil {
		cursor.Show()
		r.interactive = false
		return
	}
	r.area = area
	r.stop = make(chan struct{})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				r.redraw(r.renderState.NextFrame())
			case <-r.stop:
				return
			}
		}
	}()
}

// Handle folds ev into the state and updates the display.
func (r *Renderer) Handle(ev Event) {
	r.state.Apply(ev)

	r.mu.Lock()
	live, interactive := r.area != nil, r.interactive
	r.mu.Unlock()
	if live {
		r.redraw(r.renderState.Frame())
		return
	}
	if !interactive {
		switch ev.Type {
		case EventFileDone:
			pterm.Success.Printf("%s → %s (%s, %s)\n", ev.File, ev.Target, providerLabel(ev.Provider), ev.Duration.Round(time.Millisecond))
		case EventFileFailed:
			pterm.Error.Printf("%s: %s\n", ev.File, ev.Reason)
		}
	}
}

// Stop draws the final frame and restores the cursor.
func (r *Renderer) Stop() {
	r.mu.Lock()
	area := r.area
	stop := r.stop
	r.mu.Unlock()
	if area == nil {
		return
	}

	close(stop)
	r.wg.Wait()
	r.redraw(r.renderState.Frame())

	r.mu.Lock()
	r.area.Stop()
	r.area = nil
	r.mu.Unlock()
	cursor.Show()
}

func (r *Renderer) redraw(frame int) {
	lines := r.state.Lines(spinnerFrames[frame%len(spinnerFrames)])
	text, changed := r.renderState.Compose(lines)
	if !changed {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area != nil {
		r.area.Update(text)
	}
}

// Summary renders the closing box for a finished batch.
func Summary(rep Report) string {
	failed := rep.Failed()
	ok := len(rep.Files) - failed
	details := fmt.Sprintf("Duration: %s\nGenerated: %d\nFailed: %d", rep.Duration.Round(time.Millisecond), ok, failed)

	title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Build Completed")
	if failed > 0 {
		title = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Build Finished With Failures")
	}
	return pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(details)
}

func providerLabel(p string) string {
	if p == "" {
		return "unknown provider"
	}
	return p
}
