package assets

import (
	_ "image/png"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/nehe/engine/core"
)

type Glyph struct {
	Codepoint rune
	X, Y      int
	Width     int
	Height    int
	XOffset   int
	YOffset   int
	XAdvance  int
	Page      int
}

type kerningPair struct {
	first, second rune
}

/**
 * @brief A bitmap font: glyph rectangles on one or more atlas pages.
 */
type Font struct {
	Face       string
	Size       int
	LineHeight int
	Base       int
	AtlasW     int
	AtlasH     int
	// Pages holds the atlas image names, relative to the font's directory.
	Pages   []string
	glyphs  map[rune]Glyph
	kerning map[kerningPair]int
}

/**
 * @brief A glyph placed on screen. Src is in normalised atlas coordinates
 * with the origin at the top left, Dst in pixels.
 */
type Character struct {
	SrcX, SrcY, SrcW, SrcH float32
	DstX, DstY, DstW, DstH float32
}

// LoadFont reads an AngelCode BMFont descriptor through the index.
func LoadFont(index *Index, name string) (*Font, error) {
	path, err := index.Resolve(name)
	if err != nil {
		return nil, err
	}
	bf, err := bmfont.Load(path)
	if err != nil {
		return nil, &core.IOError{Path: name, Err: err}
	}
	d := bf.Descriptor

	f := &Font{
		Face:       d.Info.Face,
		Size:       int(d.Info.Size),
		LineHeight: int(d.Common.LineHeight),
		Base:       int(d.Common.Base),
		AtlasW:     int(d.Common.ScaleW),
		AtlasH:     int(d.Common.ScaleH),
		Pages:      make([]string, len(d.Pages)),
		glyphs:     make(map[rune]Glyph, len(d.Chars)),
		kerning:    make(map[kerningPair]int, len(d.Kerning)),
	}
	for _, p := range d.Pages {
		id := int(p.ID)
		if id < 0 || id >= len(f.Pages) {
			return nil, core.Fatalf("font '%s' has page %d of %d", name, id, len(f.Pages))
		}
		f.Pages[id] = p.File
	}
	for _, c := range d.Chars {
		f.glyphs[rune(c.ID)] = Glyph{
			Codepoint: rune(c.ID),
			X:         int(c.X),
			Y:         int(c.Y),
			Width:     int(c.Width),
			Height:    int(c.Height),
			XOffset:   int(c.XOffset),
			YOffset:   int(c.YOffset),
			XAdvance:  int(c.XAdvance),
			Page:      int(c.Page),
		}
	}
	for pair, k := range d.Kerning {
		f.kerning[kerningPair{rune(pair.First), rune(pair.Second)}] = int(k.Amount)
	}
	return f, nil
}

// GridFont describes an atlas of equally sized cells holding printable ASCII
// (0x20 to 0x7F) in row-major order, one set of 96 glyphs after another.
// Each glyph advances by advance pixels.
func GridFont(page string, atlasW, atlasH, columns, rows, sets, advance int) *Font {
	cellW, cellH := atlasW/columns, atlasH/rows
	f := &Font{
		Face:       page,
		Size:       cellH,
		LineHeight: cellH,
		Base:       cellH,
		AtlasW:     atlasW,
		AtlasH:     atlasH,
		Pages:      []string{page},
		glyphs:     make(map[rune]Glyph),
		kerning:    map[kerningPair]int{},
	}
	for set := 0; set < sets; set++ {
		for c := rune(0x20); c < 0x80; c++ {
			// Sets are 128 cells apart, matching the classic 16x16 sheets.
			idx := int(c-0x20) + set*128
			if idx >= columns*rows {
				break
			}
			f.glyphs[c+rune(set)*0x80] = Glyph{
				Codepoint: c,
				X:         (idx % columns) * cellW,
				Y:         (idx / columns) * cellH,
				Width:     cellW,
				Height:    cellH,
				XAdvance:  advance,
			}
		}
	}
	return f
}

// Glyph returns the glyph for r in the given set. Sets other than 0 only
// exist on grid fonts.
func (f *Font) Glyph(r rune, set int) (Glyph, bool) {
	g, ok := f.glyphs[r+rune(set)*0x80]
	return g, ok
}

// Layout places text with its pen starting at (x, y), appending to out.
// Characters the font lacks are skipped, and at most limit characters are
// placed in total.
func (f *Font) Layout(out []Character, x, y float32, text string, set, limit int) []Character {
	prev := rune(-1)
	for _, r := range text {
		if len(out) >= limit {
			break
		}
		g, ok := f.Glyph(r, set)
		if !ok {
			continue
		}
		if prev >= 0 {
			x += float32(f.kerning[kerningPair{prev, r}])
		}
		out = append(out, Character{
			SrcX: float32(g.X) / float32(f.AtlasW),
			SrcY: float32(g.Y) / float32(f.AtlasH),
			SrcW: float32(g.Width) / float32(f.AtlasW),
			SrcH: float32(g.Height) / float32(f.AtlasH),
			DstX: x + float32(g.XOffset),
			DstY: y + float32(g.YOffset),
			DstW: float32(g.Width),
			DstH: float32(g.Height),
		})
		x += float32(g.XAdvance)
		prev = r
	}
	return out
}

// Measure returns the advance of text in pixels.
func (f *Font) Measure(text string, set int) float32 {
	var w float32
	prev := rune(-1)
	for _, r := range text {
		g, ok := f.Glyph(r, set)
		if !ok {
			continue
		}
		if prev >= 0 {
			w += float32(f.kerning[kerningPair{prev, r}])
		}
		w += float32(g.XAdvance)
		prev = r
	}
	return w
}
