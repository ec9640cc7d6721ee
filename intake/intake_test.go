package intake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	pipe := New(Config{})

	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{"contract.pdf", nil, FormatPDF},
		{"contract.docx", nil, FormatDocx},
		{"contract.txt", nil, FormatTXT},
		{"contract.text", nil, FormatTXT},
		{"contract.md", nil, FormatMD},
		{"contract.markdown", nil, FormatMD},
		{"contract.html", nil, FormatHTML},
		{"contract.htm", nil, FormatHTML},
		// Extensionless payloads fall back to magic bytes.
		{"upload", []byte("%PDF-1.7 rest"), FormatPDF},
		{"upload", []byte("PK\x03\x04zipzip"), FormatDocx},
		{"upload", []byte("  <html><body>x</body></html>"), FormatHTML},
	}

	for _, tt := range tests {
		f, err := pipe.Detect(tt.name, tt.data)
		if err != nil {
			t.Errorf("Detect(%q): %v", tt.name, err)
			continue
		}
		if f != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.name, f, tt.format)
		}
	}
}

func TestDetectUnsupported(t *testing.T) {
	pipe := New(Config{})
	_, err := pipe.Detect("contract.xyz", []byte("plain bytes"))
	var unsupported *ErrUnsupportedFormat
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if unsupported.Ext != ".xyz" {
		t.Fatalf("expected ext .xyz, got %q", unsupported.Ext)
	}
}

func TestExtractBytesText(t *testing.T) {
	pipe := New(Config{})
	doc, err := pipe.ExtractBytes(context.Background(), []byte("Lease  Agreement\n\n  terms  "), "lease.txt")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatTXT {
		t.Fatalf("expected txt format, got %s", doc.Format)
	}
	if !strings.Contains(doc.RawText, "Lease Agreement") {
		t.Fatalf("expected normalized text, got %q", doc.RawText)
	}
	if doc.Hints.PageCount != 1 {
		t.Fatalf("expected page count 1, got %d", doc.Hints.PageCount)
	}
}

func TestExtractBytesEmpty(t *testing.T) {
	pipe := New(Config{})
	_, err := pipe.ExtractBytes(context.Background(), []byte("   \n\t  "), "blank.txt")
	var empty *ErrEmptyDocument
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestExtractBytesTooLarge(t *testing.T) {
	pipe := New(Config{MaxFileSize: 8})
	_, err := pipe.ExtractBytes(context.Background(), []byte("0123456789"), "big.txt")
	var tooLarge *ErrTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestExtractMarkdownSections(t *testing.T) {
	content := `# Master Services Agreement

This agreement governs the relationship.

## Payment Terms

Net 30 from invoice date.
`
	pipe := New(Config{})
	doc, err := pipe.ExtractBytes(context.Background(), []byte(content), "msa.md")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Master Services Agreement" {
		t.Fatalf("expected title from first heading, got %q", doc.Title)
	}

	headings, paragraphs := 0, 0
	for _, s := range doc.Hints.Sections {
		switch s.Type {
		case "heading":
			headings++
		case "paragraph":
			paragraphs++
		}
	}
	if headings != 2 || paragraphs != 2 {
		t.Fatalf("expected 2 headings and 2 paragraphs, got %d/%d", headings, paragraphs)
	}
}

func TestExtractHTML(t *testing.T) {
	content := `<html><head><title>Supply Contract</title>
<script>alert("stripped")</script></head>
<body><h1>Supply Contract</h1><p>Deliverables are due quarterly.</p></body></html>`

	pipe := New(Config{})
	doc, err := pipe.ExtractBytes(context.Background(), []byte(content), "supply.html")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Supply Contract" {
		t.Fatalf("expected title from <title>, got %q", doc.Title)
	}
	if !strings.Contains(doc.RawText, "Deliverables are due quarterly.") {
		t.Fatalf("expected body text, got %q", doc.RawText)
	}
	if strings.Contains(doc.RawText, "alert(") {
		t.Fatal("script content must be sanitized away")
	}
}

func TestExtractFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nda.txt")
	os.WriteFile(path, []byte("Mutual NDA between parties."), 0644)

	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "nda.txt" {
		t.Fatalf("expected base name, got %q", doc.Name)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`a\(b\)`, "a(b)"},
		{`a\\b`, `a\b`},
		{`\040`, " "},
	}
	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.in)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStreamText(t *testing.T) {
	stream := []byte("BT\n(Hello) Tj\n0 -14 Td\n[(World) -250 (Again)] TJ\nET")
	got := streamText(stream)
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "WorldAgain") {
		t.Fatalf("unexpected stream text: %q", got)
	}
}

func TestPrintableRatio(t *testing.T) {
	if r := printableRatio("clean text"); r != 1.0 {
		t.Fatalf("expected 1.0 for clean text, got %f", r)
	}
	garbled := "ok" + string(rune(0xE000)) + string(rune(0xFFFD))
	if r := printableRatio(garbled); r >= 1.0 {
		t.Fatalf("expected degraded ratio, got %f", r)
	}
}
