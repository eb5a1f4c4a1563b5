package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character size
const (
	FontNormal = 0x00
	FontDouble = 0x11
)

// Paper widths in characters
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates a document for the given character width. Anything
// other than 48 falls back to the 58mm width of 32.
func NewDocument(charWidth int) *Document {
	if charWidth != Width80mm {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width returns the number of printable columns.
func (d *Document) Width() int {
	return d.width
}

// Init sends ESC @.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes one line, truncated to the paper width.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(truncate(s, d.width))
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints key on the left and value flush right. Long keys are
// shortened so the value is never pushed onto the next line.
func (d *Document) KeyValue(key, value string) *Document {
	d.buf.WriteString(columns(key, value, d.width))
	d.buf.WriteByte(LF)
	return d
}

// ItemLine prints "name" on one line and "qty x price ... total" below it,
// which keeps long medicine names readable on narrow paper.
func (d *Document) ItemLine(name string, qty int, unitPrice, total string) *Document {
	d.Text(name)
	d.buf.WriteString(columns(fmt.Sprintf("  %d x %s", qty, unitPrice), total, d.width))
	d.buf.WriteByte(LF)
	return d
}

// PartialCut sends GS V 1.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func columns(left, right string, width int) string {
	if len(right) >= width {
		return truncate(right, width)
	}
	maxLeft := width - len(right) - 1
	left = truncate(left, maxLeft)
	return left + strings.Repeat(" ", width-len(left)-len(right)) + right
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}
