// Package rope implements an immutable, value-oriented rope: an
// ordered sequence of UTF-8 bytes supporting O(log n) insert, delete, byte
// offset, and line index conversion, with O(1) clone via structural
// sharing. Rune-index conversion is linear in rope length (no per-leaf
// rune-count cache is maintained); callers on the hot path — the layout
// cache and edit-application engine — operate in byte offsets and only
// touch CharToByte/ByteToChar at LSP unit-conversion boundaries.
//
// The split/concat/rebalance shape follows the classic rope construction
// (leaves below a size threshold, Fibonacci-bounded rebalancing of
// internal nodes); this package adds the byte/char/line index conversions
// and UTF-8 boundary checks a text editor needs on top of that shape.
package rope

import (
	"strings"
	"unicode/utf8"

	"github.com/zcode-editor/zcode/zerr"
)

const (
	maxDepth    = 64
	maxLeafSize = 1024
)

// Rope is a persistent sequence of UTF-8 bytes. The zero value is the
// empty rope. Ropes are never mutated in place; every operation returns a
// new Rope, sharing unmodified subtrees with its inputs.
type Rope struct {
	// leaf content, only meaningful when left == nil
	content string
	length  int // byte length
	height  int

	// line bookkeeping, maintained incrementally like the byte length
	newlines int // number of '\n' bytes contained

	left, right *Rope
}

// New returns the empty rope.
func New() Rope { return Rope{} }

// NewString returns a rope containing the given text verbatim (no
// normalization). Panics are never raised; malformed UTF-8 is stored as-is
// so validation happens once at the API boundary (Buffer.Open / Insert).
func NewString(s string) Rope {
	return Rope{content: s, length: len(s), newlines: strings.Count(s, "\n")}
}

func (r Rope) isLeaf() bool { return r.left == nil }

// ByteLen returns the number of bytes in the rope.
func (r Rope) ByteLen() int { return r.length }

// String materializes the full contents. O(n).
func (r Rope) String() string {
	if r.length == 0 {
		return ""
	}
	if r.isLeaf() {
		return r.content
	}
	var b strings.Builder
	b.Grow(r.length)
	r.walk(func(leaf Rope) { b.WriteString(leaf.content) })
	return b.String()
}

func (r Rope) walk(f func(Rope)) {
	if r.length == 0 {
		return
	}
	if r.isLeaf() {
		f(r)
		return
	}
	r.left.walk(f)
	r.right.walk(f)
}

// Slice returns the bytes in [start, end).
func (r Rope) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > r.length {
		end = r.length
	}
	if start >= end {
		return nil
	}
	out := make([]byte, 0, end-start)
	r.sliceInto(&out, start, end)
	return out
}

func (r Rope) sliceInto(out *[]byte, start, end int) {
	if start >= end {
		return
	}
	if r.isLeaf() {
		*out = append(*out, r.content[start:end]...)
		return
	}
	ll := r.left.length
	if start < ll {
		r.left.sliceInto(out, start, min(end, ll))
	}
	if end > ll {
		r.right.sliceInto(out, max(start-ll, 0), end-ll)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (r Rope) concat(other Rope) Rope {
	switch {
	case r.length == 0:
		return other
	case other.length == 0:
		return r
	case r.length+other.length <= maxLeafSize && r.isLeaf() && other.isLeaf():
		return NewString(r.content + other.content)
	default:
		h := r.height
		if other.height > h {
			h = other.height
		}
		lc, rc := r, other
		return Rope{
			length:   r.length + other.length,
			newlines: r.newlines + other.newlines,
			height:   h + 1,
			left:     &lc,
			right:    &rc,
		}
	}
}

// Append returns a new rope with other's contents appended.
func (r Rope) Append(other Rope) Rope {
	return r.concat(other).rebalanceIfNeeded()
}

// Split returns two ropes: the bytes before at, and the bytes from at
// onward. Splitting inside a multi-byte UTF-8 sequence is the caller's
// responsibility to avoid; Split itself only operates on byte offsets.
func (r Rope) Split(at int) (Rope, Rope) {
	switch {
	case at <= 0:
		return Rope{}, r
	case at >= r.length:
		return r, Rope{}
	case r.isLeaf():
		return NewString(r.content[:at]), NewString(r.content[at:])
	case at < r.left.length:
		l, rr := r.left.Split(at)
		return l, rr.Append(*r.right)
	case at > r.left.length:
		l, rr := r.right.Split(at - r.left.length)
		return r.left.Append(l), rr
	default:
		return *r.left, *r.right
	}
}

func (r Rope) isBalanced() bool {
	switch {
	case r.isLeaf():
		return true
	case r.height >= len(fibonacci)-2:
		return false
	default:
		return fibonacci[r.height+2] <= r.length
	}
}

func (r Rope) rebalanceIfNeeded() Rope {
	if r.isBalanced() {
		return r
	}
	if r.isLeaf() || abs(r.left.height-r.right.height) < maxDepth {
		return r
	}
	return r.Rebalance()
}

// Rebalance returns an equivalent rope with a flatter structure.
func (r Rope) Rebalance() Rope {
	if r.isBalanced() {
		return r
	}
	var leaves []Rope
	r.walk(func(leaf Rope) { leaves = append(leaves, leaf) })
	if len(leaves) == 0 {
		return Rope{}
	}
	return merge(leaves, 0, len(leaves))
}

func merge(leaves []Rope, start, end int) Rope {
	switch end - start {
	case 1:
		return leaves[start]
	case 2:
		return leaves[start].concat(leaves[start+1])
	default:
		mid := start + (end-start)/2
		return merge(leaves, start, mid).concat(merge(leaves, mid, end))
	}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

var fibonacci []int

func init() {
	first, second := 0, 1
	for c := 0; c < maxDepth+3; c++ {
		var next int
		if c <= 1 {
			next = c
		} else {
			next = first + second
			first = second
			second = next
		}
		fibonacci = append(fibonacci, next)
	}
}

// validBoundary reports whether offset lands on a UTF-8 code point
// boundary (or at either end of the rope).
func (r Rope) validBoundary(offset int) bool {
	if offset <= 0 || offset >= r.length {
		return true
	}
	// A byte is a continuation byte iff its top two bits are 10.
	b := r.byteAt(offset)
	return b&0xC0 != 0x80
}

func (r Rope) byteAt(i int) byte {
	if r.isLeaf() {
		return r.content[i]
	}
	if i < r.left.length {
		return r.left.byteAt(i)
	}
	return r.right.byteAt(i - r.left.length)
}

// Insert returns a new rope with text inserted at byte_offset. Inserting at
// ByteLen() appends. Returns InvalidBoundary if byte_offset falls inside a
// multi-byte UTF-8 sequence already in the rope, or if text itself is not
// valid UTF-8.
func (r Rope) Insert(byteOffset int, text string) (Rope, error) {
	if byteOffset < 0 || byteOffset > r.length {
		return r, zerr.New(zerr.InvalidBoundary, "offset out of range")
	}
	if !r.validBoundary(byteOffset) {
		return r, zerr.New(zerr.InvalidBoundary, "offset splits a UTF-8 sequence")
	}
	if !utf8.ValidString(text) {
		return r, zerr.New(zerr.InvalidBoundary, "inserted text is not valid UTF-8")
	}
	if text == "" {
		return r, nil
	}
	left, right := r.Split(byteOffset)
	return left.Append(NewString(text)).Append(right), nil
}

// Delete returns a new rope with the byte range [start, end) removed.
// Deleting an empty range is a no-op. Returns InvalidBoundary if either
// endpoint splits a multi-byte UTF-8 sequence.
func (r Rope) Delete(start, end int) (Rope, error) {
	if start < 0 || end > r.length || start > end {
		return r, zerr.New(zerr.InvalidBoundary, "range out of bounds")
	}
	if start == end {
		return r, nil
	}
	if !r.validBoundary(start) || !r.validBoundary(end) {
		return r, zerr.New(zerr.InvalidBoundary, "range splits a UTF-8 sequence")
	}
	left, _ := r.Split(start)
	_, right := r.Split(end)
	return left.Append(right), nil
}

// LineCount returns the number of logical lines; an empty rope has 1 line,
// like any text ending without a trailing newline still counts its
// final (possibly empty) line.
func (r Rope) LineCount() int { return r.newlines + 1 }

// LineToByte returns the byte offset of the start of the given 0-based
// line. line 0 always maps to offset 0.
func (r Rope) LineToByte(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.length
	}
	off, remaining := r.lineToByte(line)
	if remaining > 0 {
		return r.length
	}
	return off
}

// lineToByte returns (byteOffset, remainingLinesNotFound).
func (r Rope) lineToByte(line int) (int, int) {
	if line == 0 {
		return 0, 0
	}
	if r.isLeaf() {
		idx := 0
		remaining := line
		for remaining > 0 {
			nl := strings.IndexByte(r.content[idx:], '\n')
			if nl < 0 {
				return len(r.content), remaining
			}
			idx += nl + 1
			remaining--
		}
		return idx, 0
	}
	if line <= r.left.newlines {
		return r.left.lineToByte(line)
	}
	off, rem := r.right.lineToByte(line - r.left.newlines)
	return r.left.length + off, rem
}

// ByteToLine returns the 0-based line containing the given byte offset.
func (r Rope) ByteToLine(byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= r.length {
		return r.newlines
	}
	return r.byteToLine(byteOffset)
}

func (r Rope) byteToLine(byteOffset int) int {
	if r.isLeaf() {
		return strings.Count(r.content[:byteOffset], "\n")
	}
	if byteOffset < r.left.length {
		return r.left.byteToLine(byteOffset)
	}
	return r.left.newlines + r.right.byteToLine(byteOffset-r.left.length)
}

// CharToByte converts a rune index to a byte offset.
func (r Rope) CharToByte(charIdx int) int {
	if charIdx <= 0 {
		return 0
	}
	s := r.String()
	n := 0
	for i := range s {
		if n == charIdx {
			return i
		}
		n++
	}
	return len(s)
}

// ByteToChar converts a byte offset to a rune index.
func (r Rope) ByteToChar(byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	s := r.String()
	if byteOffset >= len(s) {
		byteOffset = len(s)
	}
	return utf8.RuneCountInString(s[:byteOffset])
}

// Line returns the content of the given 0-based logical line, excluding
// its trailing newline.
func (r Rope) Line(line int) string {
	start := r.LineToByte(line)
	var end int
	if line+1 < r.LineCount() {
		end = r.LineToByte(line+1) - 1
	} else {
		end = r.length
	}
	if end < start {
		end = start
	}
	return string(r.Slice(start, end))
}
