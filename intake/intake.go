// Package intake normalizes uploaded contract documents into a single text
// blob plus lightweight structural hints (section list, page count).
//
// Supported formats:
//   - .pdf   — PDF text extraction (pure Go, content-stream decoding)
//   - .docx  — Microsoft Word (archive/zip → word/document.xml)
//   - .txt   — Plain text (passthrough with whitespace normalization)
//   - .md    — Markdown (parsed with heading detection)
//   - .html  — HTML (sanitized, converted to markdown, then sectioned)
//
// Extraction is a pure transformation: no side effects, and structural hints
// degrade to empty rather than failing the call.
//
// Usage:
//
//	pipe := intake.New(intake.Config{})
//	doc, err := pipe.ExtractBytes(ctx, payload, "lease.pdf")
package intake

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Pipeline is the document intake engine.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg}
}

// Detect returns the document format for a payload, preferring the file
// extension and falling back to magic-byte sniffing for extensionless
// uploads (chat attachments often arrive without a usable name).
func (p *Pipeline) Detect(name string, data []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	if f, ok := sniff(data); ok {
		return f, nil
	}
	return "", &ErrUnsupportedFormat{Name: name, Ext: ext}
}

// sniff inspects magic bytes for formats that carry a signature.
func sniff(data []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return FormatPDF, true
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return FormatDocx, true
	case bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("<")):
		return FormatHTML, true
	}
	return "", false
}

// ExtractBytes parses a document payload and returns the normalized Document.
// This is the primary contract: uploads arrive as bytes from a transport.
func (p *Pipeline) ExtractBytes(ctx context.Context, data []byte, name string) (*Document, error) {
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, &ErrTooLarge{Name: name, Size: int64(len(data)), Max: p.cfg.MaxFileSize}
	}

	format, err := p.Detect(name, data)
	if err != nil {
		return nil, err
	}

	p.cfg.Logger.Debug("extracting document", "name", name, "format", format, "bytes", len(data))

	var (
		title     string
		sections  []Section
		pageCount int
		quality   *Quality
	)

	switch format {
	case FormatPDF:
		title, sections, pageCount, quality, err = extractPDF(data)
	case FormatDocx:
		title, sections, err = extractDocx(data)
	case FormatTXT:
		title, sections = extractText(data)
	case FormatMD:
		title, sections = extractMarkdown(string(data))
	case FormatHTML:
		title, sections, err = extractHTML(data)
	}
	if err != nil {
		return nil, err
	}
	if pageCount == 0 {
		pageCount = 1
	}

	raw := joinSections(sections)
	if strings.TrimSpace(raw) == "" {
		return nil, &ErrEmptyDocument{Name: name}
	}

	return &Document{
		Name:    name,
		Format:  format,
		Title:   title,
		RawText: raw,
		Hints: Hints{
			Sections:  sections,
			PageCount: pageCount,
			Quality:   quality,
		},
	}, nil
}

// Extract reads a document from disk and delegates to ExtractBytes.
func (p *Pipeline) Extract(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, &ErrTooLarge{Name: path, Size: info.Size(), Max: p.cfg.MaxFileSize}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ExtractBytes(ctx, data, filepath.Base(path))
}

// joinSections builds the raw text blob from sections.
func joinSections(sections []Section) string {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if s.Title != "" && s.Title != s.Text {
			sb.WriteString(s.Title)
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "txt", "md", "html"}
}
