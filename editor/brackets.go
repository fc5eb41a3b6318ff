package editor

import "github.com/zcode-editor/zcode/rope"

// bracketPairs maps each bracket byte to its matching partner.
var bracketPairs = map[byte]byte{
	'(': ')',
	')': '(',
	'{': '}',
	'}': '{',
	'[': ']',
	']': '[',
}

// openBrackets is the set of opening bracket bytes.
var openBrackets = map[byte]bool{
	'(': true,
	'{': true,
	'[': true,
}

// FindMatchingBracket finds the matching bracket for the bracket at the
// given byte offset into r. Returns the byte offset of the match and true,
// or 0 and false if no match is found or the position is not a bracket.
// Supports: () {} []
func FindMatchingBracket(r rope.Rope, pos int) (int, bool) {
	n := r.ByteLen()
	if pos < 0 || pos >= n {
		return 0, false
	}

	ch := r.Slice(pos, pos+1)
	if len(ch) != 1 {
		return 0, false
	}
	c := ch[0]
	partner, isBracket := bracketPairs[c]
	if !isBracket {
		return 0, false
	}

	if openBrackets[c] {
		// Scan forward for matching close bracket.
		depth := 1
		for i := pos + 1; i < n; i++ {
			b := r.Slice(i, i+1)[0]
			if b == c {
				depth++
			} else if b == partner {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	} else {
		// Scan backward for matching open bracket.
		depth := 1
		for i := pos - 1; i >= 0; i-- {
			b := r.Slice(i, i+1)[0]
			if b == c {
				depth++
			} else if b == partner {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}

	return 0, false
}
