package editor

import (
	"sort"
	"strings"

	"github.com/zcode-editor/zcode/rope"
)

// Cursor is one cursor with an optional selection. Offsets are byte
// offsets into the document, the same coordinate space rope.Rope and
// Selection use, so a Cursor converts to a Selection with no unit
// conversion.
type Cursor struct {
	Offset int
	Anchor int
}

// Selection views this cursor as a Selection.
func (c Cursor) Selection() Selection {
	return Selection{Anchor: c.Anchor, Cursor: c.Offset}
}

// MultiCursor stores a set of independent cursors and turns an edit
// applied "at every cursor" into a single composite Op, so multi-cursor
// typing is one undo step and goes through the same primitive-based
// application path as every other edit (editapply.go).
type MultiCursor struct {
	cursors []Cursor
}

// NewMultiCursor returns a single cursor at offset 0.
func NewMultiCursor() *MultiCursor {
	return &MultiCursor{cursors: []Cursor{{}}}
}

// Cursors returns the currently tracked cursors, ordered by offset.
func (mc *MultiCursor) Cursors() []Cursor {
	if mc == nil {
		return nil
	}
	out := make([]Cursor, len(mc.cursors))
	copy(out, mc.cursors)
	return out
}

// Primary returns the first cursor (the primary editing position).
func (mc *MultiCursor) Primary() Cursor {
	if mc == nil || len(mc.cursors) == 0 {
		return Cursor{}
	}
	return mc.cursors[0]
}

// Count reports how many cursors are active.
func (mc *MultiCursor) Count() int {
	if mc == nil {
		return 0
	}
	return len(mc.cursors)
}

// IsMulti reports whether more than one cursor exists.
func (mc *MultiCursor) IsMulti() bool {
	return mc.Count() > 1
}

// Reset keeps only the primary cursor.
func (mc *MultiCursor) Reset() {
	if mc == nil {
		return
	}
	if len(mc.cursors) == 0 {
		mc.cursors = []Cursor{{}}
		return
	}
	mc.cursors = mc.cursors[:1]
}

// SetPrimary replaces the primary cursor, keeping it first.
func (mc *MultiCursor) SetPrimary(offset, anchor int) {
	if mc == nil {
		return
	}
	if len(mc.cursors) == 0 {
		mc.cursors = []Cursor{{Offset: offset, Anchor: anchor}}
		return
	}
	mc.cursors[0] = Cursor{Offset: offset, Anchor: anchor}
}

// AddCursor appends a bare cursor (no selection) at the given byte offset.
func (mc *MultiCursor) AddCursor(offset int) {
	if mc == nil {
		return
	}
	mc.cursors = append(mc.cursors, Cursor{Offset: offset, Anchor: offset})
	mc.sortCursors()
}

// AddSelection appends a cursor with a selection spanning [start, end).
func (mc *MultiCursor) AddSelection(start, end int) {
	if mc == nil {
		return
	}
	mc.cursors = append(mc.cursors, Cursor{Offset: end, Anchor: start})
	mc.sortCursors()
}

func (mc *MultiCursor) sortCursors() {
	sort.Slice(mc.cursors, func(i, j int) bool {
		return minInt(mc.cursors[i].Offset, mc.cursors[i].Anchor) < minInt(mc.cursors[j].Offset, mc.cursors[j].Anchor)
	})
}

// AddNextOccurrence extends the cursor set with the next occurrence of the
// last cursor's selected text (the "add cursor at next occurrence"
// command, §C). Returns false if the last cursor has no selection or no
// further occurrence exists anywhere in the document.
func (mc *MultiCursor) AddNextOccurrence(r rope.Rope) bool {
	if mc == nil || len(mc.cursors) == 0 {
		return false
	}
	last := mc.cursors[len(mc.cursors)-1].Selection()
	if !last.Active() {
		return false
	}
	_, end := last.Ordered()
	full := r.String()
	query := last.Text(r)

	search := func(from int) int {
		for from <= len(full) {
			idx := strings.Index(full[from:], query)
			if idx < 0 {
				return -1
			}
			candidate := from + idx
			if !mc.hasRange(candidate, candidate+len(query)) {
				return candidate
			}
			from = candidate + len(query)
		}
		return -1
	}

	candidate := search(end)
	if candidate < 0 {
		candidate = search(0)
	}
	if candidate < 0 {
		return false
	}
	mc.AddSelection(candidate, candidate+len(query))
	return true
}

func (mc *MultiCursor) hasRange(start, end int) bool {
	for _, c := range mc.cursors {
		s, e := orderedByteRange(c.Offset, c.Anchor)
		if s == start && e == end {
			return true
		}
	}
	return false
}

// InsertOpAt builds the composite Op that inserts text at every cursor
// (replacing each cursor's selection, if any), in descending-offset order.
// It does not mutate r or the cursor set; call AdvanceAfter with the
// result once the op has been pushed through the document's HistoryDAG.
func (mc *MultiCursor) InsertOpAt(r rope.Rope, text string) Op {
	prims := make([]Primitive, 0, mc.Count())
	for _, c := range mc.Cursors() {
		start, end := orderedByteRange(c.Offset, c.Anchor)
		old := string(r.Slice(start, end))
		prims = append(prims, Primitive{Offset: start, OldText: old, NewText: text})
	}
	return descendingOp(prims)
}

// DeleteBackspaceOp builds the composite Op for a backspace at every
// cursor: each active selection is deleted; each bare cursor deletes the
// grapheme cluster (approximated here as one byte-boundary-respecting
// rune) immediately before it.
func (mc *MultiCursor) DeleteBackspaceOp(r rope.Rope) Op {
	prims := make([]Primitive, 0, mc.Count())
	for _, c := range mc.Cursors() {
		start, end := orderedByteRange(c.Offset, c.Anchor)
		if start == end {
			if start == 0 {
				continue
			}
			start = prevRuneStart(r, start)
		}
		old := string(r.Slice(start, end))
		prims = append(prims, Primitive{Offset: start, OldText: old})
	}
	return descendingOp(prims)
}

// DeleteForwardOp is DeleteBackspaceOp's mirror for the delete key.
func (mc *MultiCursor) DeleteForwardOp(r rope.Rope) Op {
	prims := make([]Primitive, 0, mc.Count())
	for _, c := range mc.Cursors() {
		start, end := orderedByteRange(c.Offset, c.Anchor)
		if start == end {
			if start >= r.ByteLen() {
				continue
			}
			end = nextRuneEnd(r, start)
		}
		old := string(r.Slice(start, end))
		prims = append(prims, Primitive{Offset: start, OldText: old})
	}
	return descendingOp(prims)
}

// AdvanceAfter moves every cursor through the primitives of an applied op,
// collapsing each to the offset TranslateOffset reports and clearing any
// selection, then re-sorts them (an edit can reorder cursors relative to
// each other when one selection was longer than another).
func (mc *MultiCursor) AdvanceAfter(op Op) {
	if mc == nil {
		return
	}
	for i, c := range mc.cursors {
		off := TranslateOffset(c.Offset, op.Primitives)
		mc.cursors[i] = Cursor{Offset: off, Anchor: off}
	}
	mc.sortCursors()
	mc.dedupe()
}

func (mc *MultiCursor) dedupe() {
	out := mc.cursors[:0]
	for _, c := range mc.cursors {
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	mc.cursors = out
}

// descendingOp sorts primitives by descending offset (the order
// BuildDocumentOp uses) and clamps out-of-range/duplicate spans, dropping
// any primitive fully contained in a preceding one so overlapping cursor
// selections never double-delete a byte range.
func descendingOp(prims []Primitive) Op {
	sort.Slice(prims, func(i, j int) bool { return prims[i].Offset > prims[j].Offset })
	out := prims[:0]
	lastStart := -1
	for _, p := range prims {
		end := p.Offset + len(p.OldText)
		if lastStart >= 0 && end > lastStart {
			continue // overlaps the previously kept (higher-offset) primitive
		}
		out = append(out, p)
		lastStart = p.Offset
	}
	return Op{Primitives: out}
}

func orderedByteRange(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}

func prevRuneStart(r rope.Rope, offset int) int {
	for offset > 0 {
		offset--
		if b := r.Slice(offset, offset+1); len(b) == 1 && b[0]&0xC0 != 0x80 {
			return offset
		}
	}
	return 0
}

func nextRuneEnd(r rope.Rope, offset int) int {
	n := r.ByteLen()
	for offset < n {
		offset++
		if offset == n {
			return offset
		}
		if b := r.Slice(offset, offset+1); len(b) == 1 && b[0]&0xC0 != 0x80 {
			return offset
		}
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
