package editor

// InsertAtCursors inserts text at every cursor (replacing each cursor's
// selection, if any) as a single undoable composite op.
func (b *Buffer) InsertAtCursors(text string) error {
	op := b.cursors.InsertOpAt(b.Rope(), text)
	if len(op.Primitives) == 0 {
		return nil
	}
	primary := b.cursors.Primary()
	start, end := orderedByteRange(primary.Offset, primary.Anchor)
	after := start + len(text)
	if start != end {
		after = TranslateOffset(primary.Offset, op.Primitives)
	}
	return b.ApplyLocalEdit(op, Selection{Anchor: after, Cursor: after})
}

// DeleteBackspaceAtCursors deletes one rune before every bare cursor (or
// each active selection) as a single undoable composite op.
func (b *Buffer) DeleteBackspaceAtCursors() error {
	op := b.cursors.DeleteBackspaceOp(b.Rope())
	if len(op.Primitives) == 0 {
		return nil
	}
	after := TranslateOffset(b.cursors.Primary().Offset, op.Primitives)
	return b.ApplyLocalEdit(op, Selection{Anchor: after, Cursor: after})
}

// DeleteForwardAtCursors is DeleteBackspaceAtCursors's mirror for the
// delete key.
func (b *Buffer) DeleteForwardAtCursors() error {
	op := b.cursors.DeleteForwardOp(b.Rope())
	if len(op.Primitives) == 0 {
		return nil
	}
	after := TranslateOffset(b.cursors.Primary().Offset, op.Primitives)
	return b.ApplyLocalEdit(op, Selection{Anchor: after, Cursor: after})
}

// AddCursorAtNextOccurrence extends the buffer's cursor set to the next
// occurrence of the primary selection's text, the "add cursor" command
// bound to Ctrl+D by default (§C).
func (b *Buffer) AddCursorAtNextOccurrence() bool {
	return b.cursors.AddNextOccurrence(b.Rope())
}
