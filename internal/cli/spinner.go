package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	bspinner "github.com/charmbracelet/bubbles/spinner"
)

// spinner draws an animated status line until it is stopped or its context
// ends. The message may change while it runs.
type spinner struct {
	out    io.Writer
	frames bspinner.Spinner

	mu    sync.Mutex
	msg   string
	width int // widest line drawn so far, for clearing

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// startSpinner begins drawing msg to w.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	s := &spinner{
		out:    w,
		frames: bspinner.MiniDot,
		msg:    msg,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(s.frames.Frames[i%len(s.frames.Frames)])
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.stop:
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.msg
	s.width = max(s.width, len([]rune(line)))
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+1))
}

// SetMessage replaces the text shown next to the animation.
func (s *spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop clears the line and waits for the animation to end. It is safe to
// call more than once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
