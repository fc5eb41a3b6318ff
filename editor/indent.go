package editor

import (
	"strings"

	"github.com/zcode-editor/zcode/rope"
)

// DetectIndentStyle looks at r's lines to determine whether tabs or spaces
// are used for indentation. Returns the indent unit string (e.g., "\t" or
// "    "). Defaults to "\t" if no indentation is found.
func DetectIndentStyle(r rope.Rope) string {
	tabCount := 0
	spaceCount := 0
	minSpaceWidth := 0

	for i := 0; i < r.LineCount(); i++ {
		line := r.Line(i)
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '\t':
			tabCount++
		case ' ':
			spaceCount++
			w := 0
			for _, ch := range line {
				if ch == ' ' {
					w++
				} else {
					break
				}
			}
			if w > 0 && (minSpaceWidth == 0 || w < minSpaceWidth) {
				minSpaceWidth = w
			}
		}
	}

	if spaceCount > tabCount && minSpaceWidth > 0 {
		return strings.Repeat(" ", minSpaceWidth)
	}
	return "\t"
}

// ComputeIndent returns the indentation string a new line inserted right
// after byteOffset should start with: it copies the enclosing line's
// leading whitespace and widens it by one unit if that line, trimmed of
// trailing whitespace, ends with an opening bracket or a colon.
func ComputeIndent(r rope.Rope, byteOffset int) string {
	line := r.Line(r.ByteToLine(byteOffset))

	indent := ""
	for _, ch := range line {
		if ch == ' ' || ch == '\t' {
			indent += string(ch)
		} else {
			break
		}
	}

	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) > 0 {
		last := trimmed[len(trimmed)-1]
		if last == '{' || last == '(' || last == '[' || last == ':' {
			if strings.Contains(indent, "\t") || indent == "" {
				indent += "\t"
			} else {
				indent += "    "
			}
		}
	}

	return indent
}
