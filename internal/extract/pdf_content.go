package extract

import (
	"strings"
)

// contentStreamText extracts the strings shown by Tj, TJ, ' and " in a PDF content
// stream. Text positioning operators that start a new line (Td, TD, T*, ', ") and
// the end of a text object insert line breaks; large negative TJ kerning inserts a space.
// Strings are read as single-byte text; fonts with custom encodings are not mapped.
func contentStreamText(data []byte) string {
	var (
		b        strings.Builder
		operands []pdfOperand
	)
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	lex := pdfLexer{data: data}
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok.pdfOperand)
			continue
		}
		switch tok.op {
		case "Tj":
			if s, ok := lastString(operands); ok {
				b.WriteString(s)
			}
		case "'", "\"":
			newline()
			if s, ok := lastString(operands); ok {
				b.WriteString(s)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].array != nil {
				for _, el := range operands[n-1].array {
					if el.isString {
						b.WriteString(el.str)
					} else if el.num < -200 {
						b.WriteByte(' ')
					}
				}
			}
		case "Td", "TD", "T*", "ET":
			newline()
		}
		operands = operands[:0]
	}
	return strings.TrimSpace(b.String())
}

func lastString(ops []pdfOperand) (string, bool) {
	if len(ops) == 0 || !ops[len(ops)-1].isString {
		return "", false
	}
	return ops[len(ops)-1].str, true
}

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokOperator
)

type pdfOperand struct {
	isString bool
	str      string
	num      float64
	array    []pdfOperand
}

type pdfToken struct {
	pdfOperand
	kind tokenKind
	op   string
}

type pdfLexer struct {
	data []byte
	pos  int
}

func isPDFWhitespace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *pdfLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isPDFWhitespace(c) {
			return
		}
		l.pos++
	}
}

func (l *pdfLexer) next() (pdfToken, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return pdfToken{}, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		l.pos++
		return pdfToken{pdfOperand: pdfOperand{isString: true, str: l.literalString()}}, true
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		l.pos += 2
		l.skipDict()
		return pdfToken{}, true
	case c == '<':
		l.pos++
		return pdfToken{pdfOperand: pdfOperand{isString: true, str: l.hexString()}}, true
	case c == '[':
		l.pos++
		var arr []pdfOperand
		for {
			l.skipSpace()
			if l.pos >= len(l.data) {
				break
			}
			if l.data[l.pos] == ']' {
				l.pos++
				break
			}
			tok, ok := l.next()
			if !ok {
				break
			}
			arr = append(arr, tok.pdfOperand)
		}
		if arr == nil {
			arr = []pdfOperand{}
		}
		return pdfToken{pdfOperand: pdfOperand{array: arr}}, true
	case c == '/':
		l.pos++
		l.word()
		return pdfToken{}, true
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		l.pos++
		return pdfToken{}, true
	}
	w := l.word()
	if num, ok := parsePDFNumber(w); ok {
		return pdfToken{pdfOperand: pdfOperand{num: num}}, true
	}
	if w == "BI" {
		l.skipInlineImage()
		return pdfToken{kind: tokOperator, op: "EI"}, true
	}
	return pdfToken{kind: tokOperator, op: w}, true
}

func (l *pdfLexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhitespace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func parsePDFNumber(w string) (float64, bool) {
	if w == "" {
		return 0, false
	}
	var (
		v, frac  float64
		neg, dot bool
		digits   bool
		scale    = 1.0
	)
	for i := 0; i < len(w); i++ {
		c := w[i]
		switch {
		case i == 0 && (c == '-' || c == '+'):
			neg = c == '-'
		case c == '.' && !dot:
			dot = true
		case c >= '0' && c <= '9':
			digits = true
			if dot {
				scale /= 10
				frac += float64(c-'0') * scale
			} else {
				v = v*10 + float64(c-'0')
			}
		default:
			return 0, false
		}
	}
	if !digits {
		return 0, false
	}
	v += frac
	if neg {
		v = -v
	}
	return v, true
}

// literalString reads a parenthesised string; the opening paren is already consumed.
func (l *pdfLexer) literalString() string {
	var b strings.Builder
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		case '\\':
			if l.pos >= len(l.data) {
				return b.String()
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; k++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					b.WriteByte(byte(v))
				} else {
					b.WriteByte(e)
				}
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hexString reads <...>; the opening bracket is already consumed. Two-byte strings
// starting with a UTF-16 byte order mark are decoded as UTF-16BE.
func (l *pdfLexer) hexString() string {
	var raw []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if half {
			raw = append(raw, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		raw = append(raw, hi<<4)
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		if s, err := decodeText(raw); err == nil {
			return s
		}
	}
	return string(raw)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (l *pdfLexer) skipDict() {
	depth := 1
	for l.pos+1 < len(l.data) && depth > 0 {
		switch {
		case l.data[l.pos] == '<' && l.data[l.pos+1] == '<':
			depth++
			l.pos += 2
		case l.data[l.pos] == '>' && l.data[l.pos+1] == '>':
			depth--
			l.pos += 2
		default:
			l.pos++
		}
	}
}

// skipInlineImage jumps past the binary payload of an inline image (BI ... ID ... EI).
func (l *pdfLexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' && isPDFWhitespace(l.data[l.pos-1]) &&
			(l.pos+2 == len(l.data) || isPDFWhitespace(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}
