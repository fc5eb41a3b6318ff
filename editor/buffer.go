package editor

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/rope"
	"github.com/zcode-editor/zcode/zerr"
)

// Range represents a byte range [Start, End) within buffer text.
type Range struct {
	Start, End int
}

// Buffer holds one open file's content as a rope, its edit history, and
// the metadata a language-server session needs to track it: a monotonic
// version counter bumped on every local or remote edit, and the language
// id used to select and initialize a server (§4.7).
type Buffer struct {
	path     string // absolute path, or "" if untitled
	language string

	history *HistoryDAG
	sel     Selection
	cursors *MultiCursor

	version   int // starts at 0, incremented on every applied edit
	savedRope rope.Rope
	crlf      bool // file was loaded with CRLF line endings; restored on save
}

// NewBuffer creates a new empty, untitled buffer.
func NewBuffer() *Buffer {
	empty := rope.New()
	return &Buffer{
		history: NewHistoryDAG(empty, DefaultCheckpointInterval),
		cursors: NewMultiCursor(),
	}
}

// Open reads the file at path into the buffer, replacing any existing
// content and resetting history. CRLF line endings are normalized to LF
// on load and restored on Save/SaveAs, so the rope and every byte offset
// downstream of it only ever deals with LF.
func (b *Buffer) Open(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return zerr.Wrap(zerr.UnreadableFile, path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return zerr.Wrap(zerr.UnreadableFile, path, err)
	}

	text := string(data)
	crlf := strings.Contains(text, "\r\n")
	if crlf {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	if !utf8.ValidString(text) {
		return zerr.New(zerr.UnreadableFile, path+": not valid UTF-8")
	}

	r := rope.NewString(text)
	b.path = absPath
	b.language = languageFromExtension(absPath)
	b.crlf = crlf
	b.history = NewHistoryDAG(r, DefaultCheckpointInterval)
	b.savedRope = r
	b.cursors = NewMultiCursor()
	b.sel = Selection{}
	b.version = 0
	return nil
}

// Save writes the current text to the stored path. Returns an error if the
// buffer has no path (untitled).
func (b *Buffer) Save() error {
	if b.path == "" {
		return zerr.New(zerr.UnreadableFile, "buffer has no path; use SaveAs")
	}
	return b.writeTo(b.path)
}

// SaveAs writes the current text to the given path and adopts it as the
// buffer's path.
func (b *Buffer) SaveAs(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return zerr.Wrap(zerr.UnreadableFile, path, err)
	}
	if err := b.writeTo(absPath); err != nil {
		return err
	}
	b.path = absPath
	if b.language == "" {
		b.language = languageFromExtension(absPath)
	}
	return nil
}

// Snapshot returns the data an effect handler needs to write this buffer
// to disk without touching Buffer state from a worker goroutine: the
// rope is an O(1) structural-share clone, safe to read concurrently with
// further edits on the UI thread.
func (b *Buffer) Snapshot() (path string, r rope.Rope, crlf bool) {
	return b.path, b.history.Rope(), b.crlf
}

// MarkSaved records r as the last-written content, called on the UI
// thread once a save effect completes successfully so Dirty reflects the
// disk state without the worker touching Buffer fields directly.
func (b *Buffer) MarkSaved(r rope.Rope) {
	b.savedRope = r
}

// WriteSnapshot writes r's text to path, applying CRLF restoration if
// crlf is set. It touches no Buffer state, so it is safe to call from a
// worker goroutine on a rope snapshot obtained via Snapshot.
func WriteSnapshot(path string, r rope.Rope, crlf bool) error {
	text := r.String()
	if crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return zerr.Wrap(zerr.DiskFull, path, err)
	}
	return nil
}

func (b *Buffer) writeTo(path string) error {
	text := b.Text()
	if b.crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return zerr.Wrap(zerr.DiskFull, path, err)
	}
	b.savedRope = b.history.Rope()
	return nil
}

// Path returns the absolute file path, or "" if the buffer is untitled.
func (b *Buffer) Path() string { return b.path }

// Language returns the language id used for LSP session lookup.
func (b *Buffer) Language() string { return b.language }

// SetLanguage overrides the detected language id.
func (b *Buffer) SetLanguage(lang string) { b.language = lang }

// URI returns the buffer's path as a file:// document URI, or "" if
// untitled.
func (b *Buffer) URI() lsp.DocumentURI {
	if b.path == "" {
		return ""
	}
	return lsp.DocumentURI("file://" + b.path)
}

// Version returns the monotonic edit version, bumped on every applied op.
func (b *Buffer) Version() int { return b.version }

// Rope returns the current content.
func (b *Buffer) Rope() rope.Rope { return b.history.Rope() }

// Text returns the current text content of the buffer.
func (b *Buffer) Text() string { return b.history.Rope().String() }

// Untitled reports whether the buffer has no associated file path.
func (b *Buffer) Untitled() bool { return b.path == "" }

// Title returns the base filename, or "untitled" if the buffer has no
// path.
func (b *Buffer) Title() string {
	if b.path == "" {
		return "untitled"
	}
	return filepath.Base(b.path)
}

// Dirty reports whether the buffer's text differs from the last
// saved/opened text.
func (b *Buffer) Dirty() bool {
	return b.history.Rope().String() != b.savedRope.String()
}

// Selection returns the primary selection.
func (b *Buffer) Selection() Selection { return b.sel }

// SetSelection replaces the primary selection.
func (b *Buffer) SetSelection(s Selection) { b.sel = s }

// SelectedText returns the text under the primary selection, or "" if the
// selection is empty.
func (b *Buffer) SelectedText() string {
	return b.sel.Text(b.Rope())
}

// Cursors exposes the multi-cursor set for editing commands that operate
// across all of them at once.
func (b *Buffer) Cursors() *MultiCursor { return b.cursors }

// History exposes the underlying DAG for undo/redo/checkout UI and for
// tests; editing commands should prefer ApplyLocalEdit over touching it
// directly.
func (b *Buffer) History() *HistoryDAG { return b.history }

// ApplyLocalEdit applies a single op originating from the user (as opposed
// to a language server), records it in history with the given cursor
// bookkeeping, advances the version counter, and updates the primary
// selection and every multi-cursor cursor to their post-edit positions.
func (b *Buffer) ApplyLocalEdit(op Op, cursorAfter Selection) error {
	before := b.sel
	newRope, err := applyForwardOp(b.history.Rope(), op)
	if err != nil {
		return err
	}
	if _, err := b.history.Apply(op, before, cursorAfter, newRope); err != nil {
		return err
	}
	b.version++
	b.sel = cursorAfter
	b.cursors.AdvanceAfter(op)
	return nil
}

// ApplyRemoteEdit applies an op that already carries an expected version
// (e.g. a workspace edit from a language server, or a checkout in a
// shared session); returns VersionMismatch if the buffer moved on since
// the caller last read it.
func (b *Buffer) ApplyRemoteEdit(op Op, expectedVersion int) error {
	if expectedVersion != b.version {
		return zerr.New(zerr.VersionMismatch, b.path)
	}
	newRope, err := applyForwardOp(b.history.Rope(), op)
	if err != nil {
		return err
	}
	if _, err := b.history.Apply(op, b.sel, b.sel, newRope); err != nil {
		return err
	}
	b.version++
	b.cursors.AdvanceAfter(op)
	return nil
}

// Undo reverses the most recent op. Returns true if an edit was undone.
func (b *Buffer) Undo() (bool, error) {
	_, cursor, ok, err := b.history.Undo()
	if err != nil || !ok {
		return ok, err
	}
	b.version++
	b.sel = cursor
	return true, nil
}

// Redo re-applies the most recently undone op. Returns true if an edit was
// redone.
func (b *Buffer) Redo() (bool, error) {
	_, cursor, ok, err := b.history.Redo()
	if err != nil || !ok {
		return ok, err
	}
	b.version++
	b.sel = cursor
	return true, nil
}

// Find returns every byte range where query appears as a substring.
func (b *Buffer) Find(query string) []Range {
	if query == "" {
		return nil
	}
	text := b.Text()
	var results []Range
	start := 0
	for {
		idx := strings.Index(text[start:], query)
		if idx < 0 {
			break
		}
		absIdx := start + idx
		results = append(results, Range{Start: absIdx, End: absIdx + len(query)})
		start = absIdx + len(query)
	}
	return results
}

// Replace applies a single-primitive Op replacing r's text with
// replacement.
func (b *Buffer) Replace(r Range, replacement string) error {
	old := string(b.history.Rope().Slice(r.Start, r.End))
	op := Op{Primitives: []Primitive{{Offset: r.Start, OldText: old, NewText: replacement}}}
	after := Selection{Anchor: r.Start + len(replacement), Cursor: r.Start + len(replacement)}
	return b.ApplyLocalEdit(op, after)
}

// ReplaceAll replaces every occurrence of query with replacement as a
// single composite (single undo step) op. Returns the number of
// replacements made.
func (b *Buffer) ReplaceAll(query, replacement string) (int, error) {
	ranges := b.Find(query)
	if len(ranges) == 0 {
		return 0, nil
	}
	prims := make([]Primitive, len(ranges))
	for i, r := range ranges {
		// ranges is ascending; primitives are stored descending (§4.5.2).
		prims[len(ranges)-1-i] = Primitive{Offset: r.Start, OldText: query, NewText: replacement}
	}
	op := Op{Primitives: prims}
	if err := b.ApplyLocalEdit(op, b.sel); err != nil {
		return 0, err
	}
	return len(ranges), nil
}

var extensionLanguages = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".js":   "javascript",
	".jsx":  "javascriptreact",
	".py":   "python",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".java": "java",
	".lua":  "lua",
	".json": "json",
}

func languageFromExtension(path string) string {
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return ""
}

// LanguageFromExtension is languageFromExtension exported for callers
// outside the package, such as the web bridge reporting a file's language
// before it has been opened into a Buffer.
func LanguageFromExtension(path string) string {
	return languageFromExtension(path)
}
