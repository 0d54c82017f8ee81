package sources

import "testing"

func TestPDFTextRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a pdf"), []byte("%PDF-1.4\n%%EOF")} {
		if text, err := PDFText(data); err == nil {
			t.Errorf("PDFText(%q) = %q, want error", data, text)
		}
	}
}
