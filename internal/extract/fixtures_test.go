package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
)

const wordML = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// minimalDocx returns a .docx zip holding only word/document.xml with one paragraph.
func minimalDocx(text string) []byte {
	return docxFromBody("word/document.xml", false, `<w:p><w:r><w:t>`+text+`</w:t></w:r></w:p>`)
}

// minimalDocxWithContentTypes returns a .docx zip whose [Content_Types].xml points at docPath.
func minimalDocxWithContentTypes(text, docPath string) []byte {
	return docxFromBody(docPath, true, `<w:p><w:r><w:t>`+text+`</w:t></w:r></w:p>`)
}

func docxFromBody(docPath string, withContentTypes bool, body string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if withContentTypes {
		ct, _ := w.Create("[Content_Types].xml")
		_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/` + docPath + `" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	}
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(`<w:document ` + wordML + `><w:body>` + body + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

// minimalPDF builds a PDF with one page per entry, each showing its text in Helvetica.
// Object offsets in the xref table are computed so strict readers accept it.
func minimalPDF(pages ...string) []byte {
	n := len(pages)
	fontObj := 3 + 2*n
	var objs []string
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT\n/F1 24 Tf\n72 720 Td\n(%s) Tj\nET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

// blankJPEG encodes a plain white image.
func blankJPEG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
