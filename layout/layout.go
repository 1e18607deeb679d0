package layout

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"
)

// View names.
const (
	PAST_CMD = "pastcommand"
	INPUT    = "input"
	LOGGER   = "logger"
	MANUAL   = "manual"
)

// Lines entered in the input box that the past command view hasn't printed yet.
type history struct {
	lines []string
	m     sync.Mutex
}

func (h *history) push(line string) {
	h.m.Lock()
	defer h.m.Unlock()
	h.lines = append(h.lines, line)
}

func (h *history) drain() []string {
	h.m.Lock()
	defer h.m.Unlock()
	lines := h.lines
	h.lines = nil
	return lines
}

// PastCmd is the ViewManager that logs past command.
type PastCmd struct {
	name    string
	history *history
}

// Input box for command. Every entered line goes to submit; a returned error is shown
// under the line in the past command view.
type Input struct {
	name    string
	submit  func(string) error
	history *history
}

type Logger struct {
	name string
}

type Manual struct {
	name string
	text string
}

func (pc *PastCmd) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom left corner.
	v, err := g.SetView(pc.name, 1, maxY*2/3, maxX/3, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	for _, line := range pc.history.drain() {
		fmt.Fprintln(v, line)
	}
	return nil
}

func (i *Input) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom, full width.
	v, err := g.SetView(i.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Autoscroll = true
	v.Editor = i
	v.Editable = true
	return nil
}

func (l *Logger) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Right side.
	v, err := g.SetView(l.name, maxX/3+1, 1, maxX-1, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (m *Manual) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Top left corner.
	v, err := g.SetView(m.name, 1, 1, maxX/3, maxY*2/3-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Clear()
	fmt.Fprintln(v, m.text)
	return nil
}

func (i *Input) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		// Remove \n from the buffer.
		s := strings.Replace(v.Buffer(), "\n", "", -1)
		line := "> " + s
		if err := i.submit(s); err != nil {
			line += "\n" + err.Error()
		}
		i.history.push(line)

		// Reset cursor.
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)

	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func SetFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

// Create a GUI. Lines typed in the input box are handed to submit; manual is shown top left.
func CreateGui(submit func(string) error, manual string) (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}

	g.Cursor = true

	h := &history{}
	pc := &PastCmd{name: PAST_CMD, history: h}
	input := &Input{name: INPUT, submit: submit, history: h}
	l := &Logger{name: LOGGER}
	m := &Manual{name: MANUAL, text: manual}
	focus := gocui.ManagerFunc(SetFocus(INPUT))
	g.SetManager(pc, input, l, m, focus)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		g.Close()
		return nil, err
	}

	return g, nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

type viewWriter struct {
	g    *gocui.Gui
	name string
}

// LogWriter returns a writer appending to the logger view. Writes are queued on the GUI's
// main loop, so it is safe from any goroutine.
func LogWriter(g *gocui.Gui) io.Writer {
	return viewWriter{g: g, name: LOGGER}
}

func (w viewWriter) Write(p []byte) (int, error) {
	b := append([]byte(nil), p...)
	w.g.Update(func(g *gocui.Gui) error {
		v, err := g.View(w.name)
		if err != nil {
			// Not laid out yet, drop the line.
			return nil
		}
		_, err = v.Write(b)
		return err
	})
	return len(p), nil
}
