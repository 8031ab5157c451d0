package extract

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Offsets into the Word 97-2003 File Information Block (FIB).
const (
	fibIdentOffset   = 0x0000
	fibFlagsOffset   = 0x000A
	fibCcpTextOffset = 0x004C
	fibFcClxOffset   = 0x01A2
	fibLcbClxOffset  = 0x01A6
	fibMinSize       = 0x01AA

	wordIdent = 0xA5EC

	fibFlagEncrypted  = 0x0100
	fibFlagWhichTable = 0x0200

	pcdCompressedBit = 0x40000000
	pcdSize          = 8
)

var errWordEncrypted = errors.New("document is encrypted")

// extractWordBinary reads the text of a binary .doc file. The document is an OLE2
// compound file whose WordDocument stream starts with the FIB; the FIB points at the
// piece table (CLX) in the 0Table or 1Table stream, and each piece names a run of
// characters stored either as Windows-1252 bytes or as UTF-16LE.
func extractWordBinary(ctx context.Context, content []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open compound file: %w", err)
	}
	streams := make(map[string][]byte, 3)
	for entry, err := doc.Next(); ; entry, err = doc.Next() {
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read compound file: %w", err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if isWordStream(entry.Name, entry.Path) {
			data, err := io.ReadAll(entry)
			if err != nil {
				return "", fmt.Errorf("read %s stream: %w", entry.Name, err)
			}
			streams[entry.Name] = data
		}
	}
	wordDoc, ok := streams["WordDocument"]
	if !ok {
		return "", errors.New("no WordDocument stream")
	}
	return wordText(wordDoc, streams["0Table"], streams["1Table"])
}

// isWordStream reports whether a compound-file entry is one of the main document's
// streams. Embedded objects under ObjectPool carry streams with the same names.
func isWordStream(name string, path []string) bool {
	if len(path) != 0 {
		return false
	}
	switch name {
	case "WordDocument", "0Table", "1Table":
		return true
	}
	return false
}

// wordText decodes the main document text given the raw WordDocument and table streams.
func wordText(wordDoc, table0, table1 []byte) (string, error) {
	if len(wordDoc) < fibMinSize {
		return "", fmt.Errorf("FIB truncated: %d bytes", len(wordDoc))
	}
	if ident := binary.LittleEndian.Uint16(wordDoc[fibIdentOffset:]); ident != wordIdent {
		return "", fmt.Errorf("not a Word document: ident 0x%04X", ident)
	}
	flags := binary.LittleEndian.Uint16(wordDoc[fibFlagsOffset:])
	if flags&fibFlagEncrypted != 0 {
		return "", errWordEncrypted
	}
	table := table0
	name := "0Table"
	if flags&fibFlagWhichTable != 0 {
		table, name = table1, "1Table"
	}
	if table == nil {
		return "", fmt.Errorf("no %s stream", name)
	}
	fcClx := binary.LittleEndian.Uint32(wordDoc[fibFcClxOffset:])
	lcbClx := binary.LittleEndian.Uint32(wordDoc[fibLcbClxOffset:])
	if lcbClx == 0 || uint64(fcClx)+uint64(lcbClx) > uint64(len(table)) {
		return "", fmt.Errorf("piece table out of range: fc=%d lcb=%d table=%d", fcClx, lcbClx, len(table))
	}
	pieces, err := parseClx(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}
	ccpText := binary.LittleEndian.Uint32(wordDoc[fibCcpTextOffset:])

	var raw strings.Builder
	for _, p := range pieces {
		if p.cpStart >= ccpText {
			break
		}
		end := p.cpEnd
		if end > ccpText {
			end = ccpText
		}
		s, err := p.decode(wordDoc, end-p.cpStart)
		if err != nil {
			return "", err
		}
		raw.WriteString(s)
	}
	return cleanWordText(raw.String()), nil
}

type wordPiece struct {
	cpStart, cpEnd uint32
	fc             uint32
	compressed     bool
}

func (p wordPiece) decode(wordDoc []byte, chars uint32) (string, error) {
	if p.compressed {
		start := uint64(p.fc)
		end := start + uint64(chars)
		if end > uint64(len(wordDoc)) {
			return "", fmt.Errorf("piece at %d overruns WordDocument stream", p.fc)
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(wordDoc[start:end])
		if err != nil {
			return "", fmt.Errorf("decode cp1252 piece: %w", err)
		}
		return string(out), nil
	}
	start := uint64(p.fc)
	end := start + 2*uint64(chars)
	if end > uint64(len(wordDoc)) {
		return "", fmt.Errorf("piece at %d overruns WordDocument stream", p.fc)
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(wordDoc[start:end])
	if err != nil {
		return "", fmt.Errorf("decode UTF-16 piece: %w", err)
	}
	return string(out), nil
}

// parseClx skips any Prc (property modifier) blocks and parses the Pcdt piece table.
func parseClx(clx []byte) ([]wordPiece, error) {
	for i := 0; i < len(clx); {
		switch clx[i] {
		case 0x01:
			if i+3 > len(clx) {
				return nil, errors.New("truncated Prc")
			}
			cb := int(binary.LittleEndian.Uint16(clx[i+1:]))
			i += 3 + cb
		case 0x02:
			if i+5 > len(clx) {
				return nil, errors.New("truncated Pcdt")
			}
			lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
			if i+5+lcb > len(clx) {
				return nil, errors.New("Pcdt overruns CLX")
			}
			return parsePlcPcd(clx[i+5 : i+5+lcb])
		default:
			return nil, fmt.Errorf("unexpected CLX block 0x%02X", clx[i])
		}
	}
	return nil, errors.New("CLX has no piece table")
}

func parsePlcPcd(plc []byte) ([]wordPiece, error) {
	if len(plc) < 4 || (len(plc)-4)%(4+pcdSize) != 0 {
		return nil, fmt.Errorf("malformed PlcPcd of %d bytes", len(plc))
	}
	n := (len(plc) - 4) / (4 + pcdSize)
	pcds := plc[4*(n+1):]
	pieces := make([]wordPiece, 0, n)
	for i := 0; i < n; i++ {
		cpStart := binary.LittleEndian.Uint32(plc[4*i:])
		cpEnd := binary.LittleEndian.Uint32(plc[4*(i+1):])
		if cpEnd < cpStart {
			return nil, fmt.Errorf("piece %d has negative length", i)
		}
		fc := binary.LittleEndian.Uint32(pcds[i*pcdSize+2:])
		p := wordPiece{cpStart: cpStart, cpEnd: cpEnd}
		if fc&pcdCompressedBit != 0 {
			p.compressed = true
			p.fc = (fc &^ pcdCompressedBit) / 2
		} else {
			p.fc = fc
		}
		pieces = append(pieces, p)
	}
	return pieces, nil
}

// cleanWordText maps Word's in-band control characters to plain text. Field codes
// (between 0x13 and 0x14) are dropped; field results (between 0x14 and 0x15) are kept.
func cleanWordText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	// Each entry is true while inside the code part of a (possibly nested) field.
	var fields []bool
	for _, r := range s {
		switch r {
		case 0x13:
			fields = append(fields, true)
			continue
		case 0x14:
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case 0x15:
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if len(fields) > 0 && fields[len(fields)-1] {
			continue
		}
		switch r {
		case '\r', 0x0B, 0x0C:
			b.WriteByte('\n')
		case 0x07:
			b.WriteByte('\t')
		case 0x1E:
			b.WriteByte('-')
		case 0x01, 0x08, 0x1F, 0x00:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
