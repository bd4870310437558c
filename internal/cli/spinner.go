package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on w until stopped or its context ends.
// With a positive total it also shows how many steps have finished.
type spinner struct {
	w     io.Writer
	label string
	total int
	steps atomic.Int64

	ctx      context.Context
	cancel   context.CancelFunc
	started  atomic.Bool
	finished chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	width int
}

func newSpinner(ctx context.Context, w io.Writer, label string, total int) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:        w,
		label:    label,
		total:    total,
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
}

// Start begins the animation. It is a no-op after the first call.
func (s *spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.finished)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(s.line(frame))
			}
		}
	}()
}

// Advance records one finished step.
func (s *spinner) Advance() {
	s.steps.Add(1)
}

// Stop ends the animation and clears the line. It may be called repeatedly.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.finished
		}
		s.draw("")
	})
}

func (s *spinner) line(frame int) string {
	text := s.label
	if s.total > 0 {
		text = fmt.Sprintf("%s %d/%d", s.label, s.steps.Load(), s.total)
	}
	return styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + StyleDim.Render(text)
}

// draw replaces the current line with text.
func (s *spinner) draw(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := max(s.width-lipgloss.Width(text), 0)
	fmt.Fprintf(s.w, "\r%s%s", text, strings.Repeat(" ", pad))
	if text == "" {
		fmt.Fprint(s.w, "\r")
	}
	s.width = lipgloss.Width(text)
}
