package editor

import "github.com/zcode-editor/zcode/rope"

// Selection represents a text selection as two byte offsets into a rope.
// Anchor is where the selection started, Cursor is where it currently extends to.
type Selection struct {
	Anchor, Cursor int
}

// Active reports whether the selection covers a non-empty range.
func (s *Selection) Active() bool {
	return s.Anchor != s.Cursor
}

// Ordered returns the selection bounds in ascending order (start, end).
func (s *Selection) Ordered() (start, end int) {
	if s.Anchor <= s.Cursor {
		return s.Anchor, s.Cursor
	}
	return s.Cursor, s.Anchor
}

// Text extracts the selected text from r, clamping the range to the rope's
// bounds so a selection left stale by a shrinking edit never panics.
func (s *Selection) Text(r rope.Rope) string {
	start, end := s.Ordered()
	if start < 0 {
		start = 0
	}
	if end > r.ByteLen() {
		end = r.ByteLen()
	}
	if start >= end {
		return ""
	}
	return string(r.Slice(start, end))
}

// Clear collapses the selection so that Anchor equals Cursor.
func (s *Selection) Clear() {
	s.Anchor = s.Cursor
}

// SelectAll expands the selection to cover the entire rope.
func (s *Selection) SelectAll(r rope.Rope) {
	s.Anchor = 0
	s.Cursor = r.ByteLen()
}
