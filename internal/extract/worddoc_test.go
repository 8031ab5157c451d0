package extract

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"unicode/utf16"
)

type testPiece struct {
	text       string
	compressed bool
	offset     int
}

// wordStreams builds a WordDocument stream and a 1Table stream holding a piece table
// for the given pieces.
func wordStreams(flags uint16, ccpText int, pieces ...testPiece) (wordDoc, table []byte) {
	wordDoc = make([]byte, 0x800)
	binary.LittleEndian.PutUint16(wordDoc[fibIdentOffset:], wordIdent)
	binary.LittleEndian.PutUint16(wordDoc[fibFlagsOffset:], flags)
	binary.LittleEndian.PutUint32(wordDoc[fibCcpTextOffset:], uint32(ccpText))

	cps := []uint32{0}
	var pcds []byte
	for _, p := range pieces {
		var fc uint32
		if p.compressed {
			copy(wordDoc[p.offset:], p.text)
			fc = uint32(p.offset*2) | pcdCompressedBit
		} else {
			for i, u := range utf16.Encode([]rune(p.text)) {
				binary.LittleEndian.PutUint16(wordDoc[p.offset+2*i:], u)
			}
			fc = uint32(p.offset)
		}
		cps = append(cps, cps[len(cps)-1]+uint32(len([]rune(p.text))))
		pcd := make([]byte, pcdSize)
		binary.LittleEndian.PutUint32(pcd[2:], fc)
		pcds = append(pcds, pcd...)
	}
	var plc []byte
	for _, cp := range cps {
		plc = binary.LittleEndian.AppendUint32(plc, cp)
	}
	plc = append(plc, pcds...)

	// A Prc block precedes the piece table to exercise skipping.
	clx := []byte{0x01, 0x02, 0x00, 0xAA, 0xBB, 0x02}
	clx = binary.LittleEndian.AppendUint32(clx, uint32(len(plc)))
	clx = append(clx, plc...)

	table = append(make([]byte, 16), clx...)
	binary.LittleEndian.PutUint32(wordDoc[fibFcClxOffset:], 16)
	binary.LittleEndian.PutUint32(wordDoc[fibLcbClxOffset:], uint32(len(clx)))
	return wordDoc, table
}

func TestWordText_pieces(t *testing.T) {
	wordDoc, table := wordStreams(fibFlagWhichTable, 18,
		testPiece{text: "Jane Doe\r", compressed: true, offset: 0x400},
		testPiece{text: "Engineer\r", offset: 0x500},
	)
	got, err := wordText(wordDoc, nil, table)
	if err != nil {
		t.Fatalf("wordText: %v", err)
	}
	if got != "Jane Doe\nEngineer\n" {
		t.Errorf("got %q", got)
	}
}

func TestWordText_cp1252(t *testing.T) {
	wordDoc, table := wordStreams(0, 5, testPiece{text: "caf\xe9\r", compressed: true, offset: 0x400})
	got, err := wordText(wordDoc, table, nil)
	if err != nil {
		t.Fatalf("wordText: %v", err)
	}
	if got != "café\n" {
		t.Errorf("got %q", got)
	}
}

func TestWordText_stopsAtMainDocument(t *testing.T) {
	wordDoc, table := wordStreams(fibFlagWhichTable, 9,
		testPiece{text: "Jane Doe\r", compressed: true, offset: 0x400},
		testPiece{text: "Footnote\r", compressed: true, offset: 0x500},
	)
	got, err := wordText(wordDoc, nil, table)
	if err != nil {
		t.Fatalf("wordText: %v", err)
	}
	if got != "Jane Doe\n" {
		t.Errorf("got %q", got)
	}
}

func TestWordText_errors(t *testing.T) {
	wordDoc, table := wordStreams(fibFlagEncrypted|fibFlagWhichTable, 4, testPiece{text: "text", compressed: true, offset: 0x400})
	if _, err := wordText(wordDoc, nil, table); !errors.Is(err, errWordEncrypted) {
		t.Errorf("encrypted: err = %v", err)
	}
	wordDoc, table = wordStreams(fibFlagWhichTable, 4, testPiece{text: "text", compressed: true, offset: 0x400})
	if _, err := wordText(wordDoc, table, nil); err == nil {
		t.Error("missing 1Table should fail")
	}
	if _, err := wordText(make([]byte, 16), nil, nil); err == nil {
		t.Error("truncated FIB should fail")
	}
	bad := make([]byte, fibMinSize)
	if _, err := wordText(bad, nil, nil); err == nil {
		t.Error("wrong ident should fail")
	}
}

func TestCleanWordText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Name\rRole\r", "Name\nRole\n"},
		{"A\x13 HYPERLINK \"https://x\" \x14Portfolio\x15B", "APortfolioB"},
		{"\x13 PAGE \x15end", "end"},
		{"cell\x07cell\x07", "cell\tcell\t"},
		{"co\x1Eop\x1Ferate", "co-operate"},
		{"pic\x01ture", "picture"},
	}
	for _, tt := range tests {
		if got := cleanWordText(tt.in); got != tt.want {
			t.Errorf("cleanWordText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractWordBinary_notCompoundFile(t *testing.T) {
	if _, err := extractWordBinary(context.Background(), []byte("{\\rtf1 plain}")); err == nil {
		t.Error("expected error for non-OLE content")
	}
}

func TestIsWordStream(t *testing.T) {
	tests := []struct {
		name string
		path []string
		want bool
	}{
		{"WordDocument", nil, true},
		{"0Table", nil, true},
		{"1Table", []string{}, true},
		{"Data", nil, false},
		{"WordDocument", []string{"ObjectPool", "_1234567890"}, false},
		{"1Table", []string{"ObjectPool", "_1234567890"}, false},
	}
	for _, tt := range tests {
		if got := isWordStream(tt.name, tt.path); got != tt.want {
			t.Errorf("isWordStream(%q, %v) = %v, want %v", tt.name, tt.path, got, tt.want)
		}
	}
}
