package loop

import (
	"strconv"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/gdamore/tcell/v3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/zcode-editor/zcode/config"
	"github.com/zcode-editor/zcode/editor"
	"github.com/zcode-editor/zcode/rope"
)

// Renderer draws App state to the terminal. It consumes highlight tokens
// produced elsewhere (a chroma lexer run over each visible line) rather
// than computing them itself — syntax highlighting's tokenizer is a
// rendering-time concern, not a reducer concern, and the reducer never
// imports chroma.
type Renderer interface {
	Render(app *App, tokens map[int][]chroma.Token, theme map[string]colorful.Color)
}

// LineTokens lexes the visible line range of buf with lexer, returning one
// token slice per line, for a Renderer to consume. Nothing in this package
// calls it (ScreenRenderer lexes each drawn line itself in drawLine), and
// Reduce never does, matching §4.8's separation of the pure reducer from
// rendering.
func LineTokens(lexer chroma.Lexer, buf *editor.Buffer, firstLine, lastLine int) map[int][]chroma.Token {
	if lexer == nil || buf == nil {
		return nil
	}
	r := buf.Rope()
	out := make(map[int][]chroma.Token, lastLine-firstLine+1)
	for line := firstLine; line <= lastLine && line < r.LineCount(); line++ {
		if line < 0 {
			continue
		}
		it, err := lexer.Tokenise(nil, r.Line(line))
		if err != nil {
			continue
		}
		out[line] = it.Tokens()
	}
	return out
}

// ThemeColors resolves cfg's theme into a name-keyed color map for a
// Renderer, surfacing a parse failure as a fallback to the built-in theme
// rather than a crash — a corrupt settings.json theme block should degrade,
// not break startup.
func ThemeColors(cfg config.Config) map[string]colorful.Color {
	colors, err := cfg.Theme.Colors()
	if err != nil {
		colors, _ = config.DefaultTheme().Colors()
	}
	return colors
}

// ScreenRenderer draws directly to a tcell screen. Its Render takes only
// the App and lexes lines itself, so it does not implement the Renderer
// interface; main hands its Render method to the Runner as the render
// callback. It re-lexes only the visible line range each frame — cheap
// enough at terminal scale that caching tokens across frames isn't worth
// the invalidation bookkeeping.
type ScreenRenderer struct {
	screen tcell.Screen
}

// NewScreenRenderer wraps an already-initialized screen.
func NewScreenRenderer(screen tcell.Screen) *ScreenRenderer {
	return &ScreenRenderer{screen: screen}
}

// Render draws the active buffer's visible lines, the status bar, and any
// open prompt. It changes App only through App.FoldState, which creates
// or syncs the buffer's fold state.
func (sr *ScreenRenderer) Render(app *App) {
	sr.screen.Clear()
	theme := ThemeColors(app.Cfg)
	bg := theme["background"]
	fg := theme["foreground"]
	base := tcell.StyleDefault.Background(toTcell(bg)).Foreground(toTcell(fg))
	sr.screen.SetStyle(base)

	buf := app.ActiveBuffer()
	if buf == nil {
		sr.drawStatus(app, theme, base)
		sr.screen.Show()
		return
	}

	contentHeight := app.Height - 1
	fold := app.FoldState(buf)
	lexer := lexers.Match(buf.Path())
	if lexer == nil {
		lexer = lexers.Fallback
	}

	r := buf.Rope()
	visRow := 0
	for line := 0; line < r.LineCount() && visRow < contentHeight; line++ {
		if fold.IsLineHidden(line) {
			continue
		}
		sr.drawLine(visRow, r.Line(line), lexer, theme, base)
		visRow++
	}

	sr.drawStatus(app, theme, base)
	sr.screen.Show()
}

func (sr *ScreenRenderer) drawLine(row int, text string, lexer chroma.Lexer, theme map[string]colorful.Color, base tcell.Style) {
	col := 0
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		sr.drawPlain(row, text, base)
		return
	}
	for _, tok := range it.Tokens() {
		style := styleForToken(tok.Type, theme, base)
		for _, r := range tok.Value {
			sr.screen.SetContent(col, row, r, nil, style)
			col += runewidth.RuneWidth(r)
		}
	}
}

func (sr *ScreenRenderer) drawPlain(row int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		sr.screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

func (sr *ScreenRenderer) drawStatus(app *App, theme map[string]colorful.Color, base tcell.Style) {
	style := tcell.StyleDefault.Background(toTcell(theme["statusBarBackground"])).Foreground(toTcell(theme["statusBarForeground"]))
	msg := app.StatusMessage
	if app.Mode != ModeNormal {
		msg = modeLabel(app.Mode) + " " + app.PromptInput
	} else if buf := app.ActiveBuffer(); buf != nil {
		msg = msg + "  " + indentStatusLabel(buf.Rope())
	}
	col := 0
	for _, r := range msg {
		if col >= app.Width {
			break
		}
		sr.screen.SetContent(col, app.Height-1, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
	for ; col < app.Width; col++ {
		sr.screen.SetContent(col, app.Height-1, ' ', nil, style)
	}
}

// styleForToken maps a chroma token's category to a theme color, falling
// back to the base style for token types the theme doesn't distinguish —
// zcode ships one accent color per broad category rather than chroma's
// full type hierarchy.
func styleForToken(t chroma.TokenType, theme map[string]colorful.Color, base tcell.Style) tcell.Style {
	switch {
	case t.InCategory(chroma.Keyword):
		return base.Foreground(toTcell(theme["keyword"]))
	case t.InCategory(chroma.Comment):
		return base.Foreground(toTcell(theme["comment"]))
	case t.InCategory(chroma.LiteralString):
		return base.Foreground(toTcell(theme["string"]))
	case t.InCategory(chroma.LiteralNumber):
		return base.Foreground(toTcell(theme["number"]))
	default:
		return base
	}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// indentStatusLabel reports the buffer's dominant indent unit for the
// status bar, mirroring how most terminal editors surface tabs-vs-spaces.
func indentStatusLabel(r rope.Rope) string {
	indent := editor.DetectIndentStyle(r)
	if indent == "\t" {
		return "tabs"
	}
	return "spaces(" + strconv.Itoa(len(indent)) + ")"
}

func modeLabel(m Mode) string {
	switch m {
	case ModeFind:
		return "Find:"
	case ModeReplace:
		return "Replace:"
	case ModeGoToLine:
		return "Go to line:"
	case ModeCompletion:
		return "Completion"
	case ModeCommandPalette:
		return "Command:"
	default:
		return ""
	}
}
