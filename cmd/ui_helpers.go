package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The spinner runs in a separate goroutine and
// can be stopped by calling the returned function.
//
// The spinner clears the line when stopped. The returned function is safe to call
// more than once.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// progress shows a spinner line for the statement currently running.
// It hides the cursor while active and removes the line when stopped, so
// results printed between statements are not interleaved with frames.
// A disabled progress does nothing.
type progress struct {
	enabled bool

	mu   sync.Mutex
	area *pterm.AreaPrinter
	stop chan struct{}
	wg   sync.WaitGroup
}

func newProgress(enabled bool) *progress {
	return &progress{enabled: enabled}
}

// Start replaces any running spinner with one showing text.
func (p *progress) Start(text string) {
	if !p.enabled {
		return
	}
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return
	}
	p.area = area
	p.stop = make(chan struct{})
	p.wg.Add(1)
	go func(stop chan struct{}) {
		defer p.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		idx := 0
		for {
			area.Update(fmt.Sprintf("%s %s", spinnerFrames[idx%len(spinnerFrames)], text))
			select {
			case <-t.C:
				idx++
			case <-stop:
				return
			}
		}
	}(p.stop)
}

// Stop removes the spinner line and shows the cursor again.
func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.area == nil {
		return
	}
	close(p.stop)
	p.wg.Wait()
	_ = p.area.Stop()
	p.area = nil
	cursor.Show()
}
