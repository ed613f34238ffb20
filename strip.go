package hostbridge

import (
	"strings"
)

// StripFlags selects which inline markup Strip removes.
type StripFlags int

const (
	// StripColors removes color sequences.
	StripColors StripFlags = 1
	// StripAttrs removes attribute codes: bold, beep, reset, reverse,
	// italics, and underline.
	StripAttrs StripFlags = 2
	// StripAll removes both.
	StripAll StripFlags = StripColors | StripAttrs
)

// Strip returns text with the selected inline markup removed. A color
// sequence is \x03 followed by up to two foreground digits and an optional
// comma plus up to two background digits. Strip is a pure function, safe
// from any goroutine.
func Strip(text string, flags StripFlags) string {
	var b strings.Builder
	b.Grow(len(text))

	var rcol, bgcol int
	for i := 0; i < len(text); i++ {
		c := text[i]
		if rcol > 0 && (isDigit(c) || (c == ',' && bgcol == 0 && i+1 < len(text) && isDigit(text[i+1]))) {
			if i+1 >= len(text) || text[i+1] != ',' {
				rcol--
			}
			if c == ',' {
				rcol = 2
				bgcol = 1
			}
			continue
		}
		rcol, bgcol = 0, 0
		switch c {
		case 0x03:
			if flags&StripColors == 0 {
				b.WriteByte(c)
				continue
			}
			rcol = 2
		case 0x02, 0x07, 0x0F, 0x16, 0x1D, 0x1F:
			if flags&StripAttrs == 0 {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
