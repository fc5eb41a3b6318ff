package loop

import (
	"github.com/gdamore/tcell/v3"

	"github.com/zcode-editor/zcode/config"
)

// InputSource polls terminal input and turns it into Actions, coalescing
// bursts of resize and scroll events the way §4.8 step 3 requires ("drain
// until empty; collapse resize/scroll runs to their net effect") so a
// resize storm or a fast scroll wheel doesn't queue one reduce+render per
// physical event.
type InputSource struct {
	screen tcell.Screen
	keymap map[string]string
}

// NewInputSource wraps an already-initialized screen. The caller owns the
// screen's lifecycle (Init/Fini).
func NewInputSource(screen tcell.Screen, keymap map[string]string) *InputSource {
	return &InputSource{screen: screen, keymap: keymap}
}

// Poll blocks for at least one event, then drains any further events that
// are immediately available, returning the coalesced list of Actions in
// arrival order except for resize/scroll runs, which collapse to one
// Action each.
func (in *InputSource) Poll() []Action {
	first := in.screen.PollEvent()
	if first == nil {
		return nil
	}
	events := []tcell.Event{first}
	for in.screen.HasPendingEvent() {
		events = append(events, in.screen.PollEvent())
	}
	return in.coalesce(events)
}

func (in *InputSource) coalesce(events []tcell.Event) []Action {
	var actions []Action
	var pendingResize *ResizeAction
	var pendingScroll *MouseScrollAction

	flushResize := func() {
		if pendingResize != nil {
			actions = append(actions, *pendingResize)
			pendingResize = nil
		}
	}
	flushScroll := func() {
		if pendingScroll != nil {
			actions = append(actions, *pendingScroll)
			pendingScroll = nil
		}
	}

	for _, ev := range events {
		switch e := ev.(type) {
		case *tcell.EventResize:
			w, h := e.Size()
			pendingResize = &ResizeAction{Width: w, Height: h}
		case *tcell.EventKey:
			flushResize()
			flushScroll()
			actions = append(actions, in.translateKey(e))
		case *tcell.EventMouse:
			if delta := scrollDelta(e); delta != 0 {
				if pendingScroll == nil {
					pendingScroll = &MouseScrollAction{}
				}
				pendingScroll.DeltaLines += delta
				continue
			}
			flushResize()
			flushScroll()
			if a, ok := in.translateClick(e); ok {
				actions = append(actions, a)
			}
		}
	}
	flushResize()
	flushScroll()
	return actions
}

func scrollDelta(e *tcell.EventMouse) int {
	switch e.Buttons() {
	case tcell.WheelUp:
		return -3
	case tcell.WheelDown:
		return 3
	default:
		return 0
	}
}

func (in *InputSource) translateClick(e *tcell.EventMouse) (Action, bool) {
	if e.Buttons()&tcell.Button1 == 0 {
		return nil, false
	}
	col, row := e.Position()
	return MouseClickAction{Col: col, Row: row, Shift: e.Modifiers()&tcell.ModShift != 0}, true
}

// translateKey resolves the key chord against the active keymap; unbound
// printable runes become literal insertions instead of no-ops.
func (in *InputSource) translateKey(e *tcell.EventKey) Action {
	chord := chordString(e)
	if cmd, ok := config.Resolve(in.keymap, chord); ok {
		return KeyAction{Command: cmd}
	}
	if e.Key() == tcell.KeyRune && e.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) == 0 {
		return InsertTextAction{Text: string(e.Rune())}
	}
	if e.Key() == tcell.KeyEnter {
		return InsertTextAction{Text: "\n"}
	}
	if e.Key() == tcell.KeyTab {
		return InsertTextAction{Text: "\t"}
	}
	return KeyAction{} // unmapped control key; reducer treats zero-value Command as a no-op
}

// chordString renders a key event the same way config.DefaultKeymap keys
// its bindings, so a chord looked up here always matches one produced by
// that map's key literals.
func chordString(e *tcell.EventKey) string {
	var out string
	if e.Modifiers()&tcell.ModCtrl != 0 {
		out += "Ctrl+"
	}
	if e.Modifiers()&tcell.ModAlt != 0 {
		out += "Alt+"
	}
	if e.Modifiers()&tcell.ModShift != 0 {
		out += "Shift+"
	}
	if e.Key() == tcell.KeyRune {
		out += string(e.Rune())
		return out
	}
	if name, ok := tcell.KeyNames[e.Key()]; ok {
		out += name
		return out
	}
	return out
}
