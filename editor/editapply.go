package editor

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/rivo/uniseg"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/rope"
	"github.com/zcode-editor/zcode/zerr"
)

// PositionEncoding names the unit a language server's line/column pairs are
// expressed in, negotiated per-session at initialize time (§4.7).
type PositionEncoding int

const (
	// UTF16 counts each Position.Character in UTF-16 code units — the LSP
	// default, and what most servers actually send.
	UTF16 PositionEncoding = iota
	// UTF8 counts Position.Character in bytes, one of the encodings a
	// server may advertise via general/positionEncodings.
	UTF8
	// Graphemes counts Position.Character in extended grapheme clusters,
	// zcode's own rendering unit; no server advertises this, but it is
	// how caret math elsewhere in the editor is done, and is exposed here
	// so editor-internal edits share the same conversion path as LSP
	// edits.
	Graphemes
)

// PositionToByte converts a Position on a rope into a byte offset under the
// given encoding, per the line's actual UTF-8 content. Positions past the
// end of a line clamp to the line's byte length; positions past the end of
// the document clamp to the document's byte length.
func PositionToByte(r rope.Rope, pos lsp.Position, enc PositionEncoding) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= r.LineCount() {
		return r.ByteLen()
	}
	lineStart := r.LineToByte(pos.Line)
	line := r.Line(pos.Line)
	if pos.Character <= 0 {
		return lineStart
	}
	switch enc {
	case UTF8:
		if pos.Character >= len(line) {
			return lineStart + len(line)
		}
		return lineStart + pos.Character
	case Graphemes:
		return lineStart + graphemeOffsetToByte(line, pos.Character)
	default: // UTF16
		return lineStart + utf16OffsetToByte(line, pos.Character)
	}
}

// utf16OffsetToByte walks line counting UTF-16 code units. A target that
// lands inside a surrogate pair (i.e. targeting the low half of an
// astral-plane rune) rounds down to the byte offset before that rune,
// since a byte offset strictly inside a 4-byte UTF-8 sequence is never
// valid.
func utf16OffsetToByte(line string, target int) int {
	units := 0
	for i, r := range line {
		if units >= target {
			return i
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		if units > target {
			return i // rounds down: target fell inside this rune's pair
		}
	}
	return len(line)
}

func graphemeOffsetToByte(line string, target int) int {
	count := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		if count == target {
			from, _ := g.Positions()
			return from
		}
		count++
	}
	return len(line)
}

// ByteToPosition is the inverse of PositionToByte, used to report cursor
// positions and diagnostics back to language servers in their negotiated
// encoding.
func ByteToPosition(r rope.Rope, byteOffset int, enc PositionEncoding) lsp.Position {
	if byteOffset < 0 {
		byteOffset = 0
	}
	if byteOffset > r.ByteLen() {
		byteOffset = r.ByteLen()
	}
	line := r.ByteToLine(byteOffset)
	lineStart := r.LineToByte(line)
	within := r.Slice(lineStart, byteOffset)
	var char int
	switch enc {
	case UTF8:
		char = len(within)
	case Graphemes:
		char = uniseg.GraphemeClusterCount(string(within))
	default:
		char = len(utf16.Encode([]rune(string(within))))
	}
	return lsp.Position{Line: line, Character: char}
}

// ResourceOp is a filesystem-affecting workspace change (create/rename/
// delete). go-lsp's WorkspaceEdit predates LSP's resource-operation
// additions, so this is a zcode-specific extension applied before any text
// edit in the same workspace edit, per §4.5.4.
type ResourceOp struct {
	Kind        ResourceOpKind
	URI         lsp.DocumentURI
	NewURI      lsp.DocumentURI // Rename only
	IgnoreIfExists bool
	Overwrite   bool
}

type ResourceOpKind int

const (
	ResourceCreate ResourceOpKind = iota
	ResourceRename
	ResourceDelete
)

// FileSystem is the narrow interface an edit-application engine needs to
// carry out resource operations; *editor.TabManager and tests both satisfy
// it against real or in-memory files.
type FileSystem interface {
	CreateFile(path string, overwrite, ignoreIfExists bool) error
	RenameFile(from, to string, overwrite, ignoreIfExists bool) error
	DeleteFile(path string) error
}

// DocumentTarget is one buffer's participation in a multi-document
// workspace edit: its current rope (for position conversion), the
// encoding its edits are expressed in, and the version the caller expects
// the buffer to be at.
type DocumentTarget struct {
	URI             lsp.DocumentURI
	Rope            rope.Rope
	Encoding        PositionEncoding
	ExpectedVersion int
	ActualVersion   int
}

// ApplyResult carries the composite op and resulting rope for one document
// in a workspace edit, so the caller can push it through that document's
// own HistoryDAG.
type ApplyResult struct {
	URI     lsp.DocumentURI
	NewRope rope.Rope
	Op      Op
}

// BuildDocumentOp converts one document's TextEdits into byte-space
// primitives, sorted descending by start byte (§4.5.2) so each primitive
// applies without needing to account for the ones after it, validates
// them for overlap and boundary safety, and returns the composite Op
// without mutating anything — callers apply it via HistoryDAG.Apply only
// after every document in the workspace edit has validated successfully,
// giving the whole workspace edit all-or-nothing atomicity.
func BuildDocumentOp(target DocumentTarget, edits []lsp.TextEdit) (Op, error) {
	if target.ExpectedVersion != 0 && target.ExpectedVersion != target.ActualVersion {
		return Op{}, zerr.New(zerr.VersionMismatch, string(target.URI))
	}

	type span struct {
		start, end int
		newText    string
	}
	spans := make([]span, 0, len(edits))
	for _, e := range edits {
		start := PositionToByte(target.Rope, e.Range.Start, target.Encoding)
		end := PositionToByte(target.Rope, e.Range.End, target.Encoding)
		if start > end {
			start, end = end, start
		}
		spans = append(spans, span{start: start, end: end, newText: e.NewText})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start > spans[j].start })

	for _, s := range spans {
		if err := ValidateBoundary(target.Rope, s.start); err != nil {
			return Op{}, err
		}
		if err := ValidateBoundary(target.Rope, s.end); err != nil {
			return Op{}, err
		}
	}

	for i := 0; i+1 < len(spans); i++ {
		if spans[i].start < spans[i+1].end {
			return Op{}, zerr.New(zerr.OverlappingEdits, string(target.URI))
		}
	}

	prims := make([]Primitive, 0, len(spans))
	for _, s := range spans {
		old := string(target.Rope.Slice(s.start, s.end))
		prims = append(prims, Primitive{Offset: s.start, OldText: old, NewText: s.newText})
	}
	if len(prims) == 0 {
		return Op{}, zerr.New(zerr.InvalidBoundary, "empty edit list")
	}
	return Op{Primitives: prims}, nil
}

// ApplyWorkspaceEdit validates every document's edits before mutating any
// of them (§4.5.4 atomicity), runs resource operations first, then returns
// one ApplyResult per changed document. Callers push each ApplyResult's Op
// through that document's HistoryDAG to make it undoable.
func ApplyWorkspaceEdit(fs FileSystem, resourceOps []ResourceOp, targets []DocumentTarget, editsByURI map[lsp.DocumentURI][]lsp.TextEdit) ([]ApplyResult, error) {
	ops := make(map[lsp.DocumentURI]Op, len(targets))
	byURI := make(map[lsp.DocumentURI]DocumentTarget, len(targets))
	for _, t := range targets {
		byURI[t.URI] = t
		edits, ok := editsByURI[t.URI]
		if !ok || len(edits) == 0 {
			continue
		}
		op, err := BuildDocumentOp(t, edits)
		if err != nil {
			return nil, err
		}
		ops[t.URI] = op
	}

	for _, rop := range resourceOps {
		var err error
		switch rop.Kind {
		case ResourceCreate:
			err = fs.CreateFile(uriToPath(rop.URI), rop.Overwrite, rop.IgnoreIfExists)
		case ResourceRename:
			err = fs.RenameFile(uriToPath(rop.URI), uriToPath(rop.NewURI), rop.Overwrite, rop.IgnoreIfExists)
		case ResourceDelete:
			err = fs.DeleteFile(uriToPath(rop.URI))
		}
		if err != nil {
			return nil, err
		}
	}

	results := make([]ApplyResult, 0, len(ops))
	for uri, op := range ops {
		target := byURI[uri]
		newRope, err := applyForwardOp(target.Rope, op)
		if err != nil {
			return nil, err
		}
		results = append(results, ApplyResult{URI: uri, NewRope: newRope, Op: op})
	}
	return results, nil
}

func uriToPath(uri lsp.DocumentURI) string {
	s := string(uri)
	if strings.HasPrefix(s, "file://") {
		return s[len("file://"):]
	}
	return s
}

// URIToPath is uriToPath exported for callers outside the package, such as
// the event loop turning a go-to-definition reply's URI into a path to open.
func URIToPath(uri lsp.DocumentURI) string {
	return uriToPath(uri)
}

// TranslateOffset maps a single byte offset through a set of primitives
// (in any order, as recorded on an Op) the same way caret positions
// survive an edit: offsets before every edit are untouched, offsets
// strictly inside a replaced span snap to the end of its replacement text,
// offsets at or after an edit's end shift by that edit's length delta (so
// an offset sitting exactly at a zero-width insertion ends up after the
// inserted text).
// Edits are walked in ascending offset order, each against the original
// (pre-edit) coordinate space, accumulating the shift contributed by
// earlier edits.
func TranslateOffset(offset int, prims []Primitive) int {
	ordered := make([]Primitive, len(prims))
	copy(ordered, prims)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Offset < ordered[j].Offset })

	delta := 0
	for _, p := range ordered {
		start := p.Offset
		end := p.Offset + len(p.OldText)
		switch {
		case offset < start:
			return offset + delta
		case offset < end:
			return start + delta + len(p.NewText)
		default:
			delta += len(p.NewText) - len(p.OldText)
		}
	}
	return offset + delta
}

// ValidateBoundary reports InvalidBoundary if byteOffset is out of range or
// does not land on a UTF-8 boundary within r, mirroring rope.Rope's own
// guard so BuildDocumentOp can pre-flight every edit endpoint before any
// document is touched.
func ValidateBoundary(r rope.Rope, byteOffset int) error {
	if byteOffset < 0 || byteOffset > r.ByteLen() {
		return zerr.New(zerr.InvalidBoundary, "offset out of range")
	}
	if byteOffset == 0 || byteOffset == r.ByteLen() {
		return nil
	}
	b := r.Slice(byteOffset, byteOffset+1)
	if len(b) == 1 && b[0]&0xC0 == 0x80 {
		return zerr.New(zerr.InvalidBoundary, "offset splits a UTF-8 sequence")
	}
	return nil
}
