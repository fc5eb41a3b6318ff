package editor

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/rivo/uniseg"

	"github.com/zcode-editor/zcode/rope"
)

// DefaultTabWidth is used when a LayoutCache is not given an explicit tab
// width.
const DefaultTabWidth = 4

// defaultLayoutCacheCapacity bounds the number of lines whose layout is
// held at once; least-recently-used lines are evicted first.
const defaultLayoutCacheCapacity = 4096

// cluster records one grapheme cluster's byte/char span and the display
// column immediately following it.
type cluster struct {
	byteStart, byteEnd int
	charStart, charEnd int
	col                int // display column after this cluster
	width              int // cell width of this cluster (1 or 2); for a tab, the cells up to the next tab stop
}

type lineLayout struct {
	clusters []cluster
	width    int // total display width of the line
}

// LayoutCache maps logical (line, char) positions to visual (row, column)
// positions under a configured tab width, tracking grapheme cluster
// boundaries so wide East-Asian and emoji glyphs occupy two cells.
//
// Entries are recomputed lazily on query and evicted least-recently-used
// once the cache holds more than its capacity's worth of lines, per the
// "bounded LRU over line number" contract.
type LayoutCache struct {
	tabWidth int
	capacity int
	lines    *orderedmap.OrderedMap[int, *lineLayout]
	source   func(line int) string
}

// NewLayoutCache creates a layout cache with the given tab width (or
// DefaultTabWidth if tabWidth <= 0) that fetches line content lazily via
// lineSource.
func NewLayoutCache(tabWidth int, lineSource func(line int) string) *LayoutCache {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return &LayoutCache{
		tabWidth: tabWidth,
		capacity: defaultLayoutCacheCapacity,
		lines:    orderedmap.New[int, *lineLayout](),
		source:   lineSource,
	}
}

// SetTabWidth updates the configured tab width and drops all cached
// layouts, since every visual column downstream of a tab is now stale.
func (lc *LayoutCache) SetTabWidth(width int) {
	if width <= 0 {
		width = DefaultTabWidth
	}
	if width == lc.tabWidth {
		return
	}
	lc.tabWidth = width
	lc.lines = orderedmap.New[int, *lineLayout]()
}

// Invalidate drops the cached layout for a single line, e.g. after an edit
// confined to that line.
func (lc *LayoutCache) Invalidate(line int) {
	lc.lines.Delete(line)
}

// InvalidateRange drops cached layouts for every line in [start, end], used
// when an edit crosses line boundaries.
func (lc *LayoutCache) InvalidateRange(start, end int) {
	for l := start; l <= end; l++ {
		lc.lines.Delete(l)
	}
}

func (lc *LayoutCache) get(line int) *lineLayout {
	if v, ok := lc.lines.Get(line); ok {
		// touch: move to most-recently-used position
		lc.lines.Delete(line)
		lc.lines.Set(line, v)
		return v
	}
	ll := lc.compute(lc.source(line))
	lc.lines.Set(line, ll)
	for lc.lines.Len() > lc.capacity {
		oldest := lc.lines.Oldest()
		if oldest == nil {
			break
		}
		lc.lines.Delete(oldest.Key)
	}
	return ll
}

func (lc *LayoutCache) compute(text string) *lineLayout {
	ll := &lineLayout{}
	col := 0
	charIdx := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		from, to := g.Positions()
		clusterStr := g.Str()
		var w int
		if len(runes) == 1 && runes[0] == '\t' {
			next := ((col / lc.tabWidth) + 1) * lc.tabWidth
			w = next - col
		} else {
			w = runewidth.StringWidth(clusterStr)
			if w < 1 {
				w = 1
			}
		}
		col += w
		nChars := len(runes)
		ll.clusters = append(ll.clusters, cluster{
			byteStart: from,
			byteEnd:   to,
			charStart: charIdx,
			charEnd:   charIdx + nChars,
			col:       col,
			width:     w,
		})
		charIdx += nChars
	}
	ll.width = col
	return ll
}

// VisualCol returns the display column of the char-th grapheme-aware
// position on the given line (i.e. the column before that cluster).
func (lc *LayoutCache) VisualCol(line, char int) int {
	ll := lc.get(line)
	col := 0
	for _, c := range ll.clusters {
		if c.charStart >= char {
			return col
		}
		col = c.col
	}
	return col
}

// CharAtCol returns the char index whose cluster contains the given
// display column. Clicks landing inside a wide glyph snap to its start
// (left edge).
func (lc *LayoutCache) CharAtCol(line, col int) int {
	ll := lc.get(line)
	for _, c := range ll.clusters {
		if col < c.col {
			return c.charStart
		}
	}
	if len(ll.clusters) == 0 {
		return 0
	}
	return ll.clusters[len(ll.clusters)-1].charEnd
}

// VisualColAtByte returns the display column of byteOffset within its own
// line of r, resolving the line's leading portion to a rune count for
// VisualCol the same way lc's other lookups do.
func VisualColAtByte(r rope.Rope, lc *LayoutCache, byteOffset int) int {
	line := r.ByteToLine(byteOffset)
	lineStart := r.LineToByte(line)
	content := r.Line(line)
	local := byteOffset - lineStart
	if local < 0 {
		local = 0
	}
	if local > len(content) {
		local = len(content)
	}
	char := utf8.RuneCountInString(content[:local])
	return lc.VisualCol(line, char)
}

// LineWidth returns the total display width of a line.
func (lc *LayoutCache) LineWidth(line int) int {
	return lc.get(line).width
}
