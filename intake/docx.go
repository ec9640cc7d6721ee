package intake

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// extractDocx parses a .docx payload by reading word/document.xml from the
// ZIP archive. Heading paragraph styles become heading sections.
func extractDocx(data []byte) (string, []Section, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var (
		sections       []Section
		title          string
		currentText    strings.Builder
		inParagraph    bool
		paragraphStyle string
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				currentText.Reset()
				paragraphStyle = ""
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paragraphStyle = attr.Value
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local != "p" || !inParagraph {
				continue
			}
			inParagraph = false
			text := strings.TrimSpace(currentText.String())
			if text == "" {
				continue
			}

			if level := docxHeadingLevel(paragraphStyle); level > 0 {
				if title == "" {
					title = text
				}
				sections = append(sections, Section{
					Title: text,
					Level: level,
					Text:  text,
					Type:  "heading",
				})
			} else {
				sections = append(sections, Section{
					Text: text,
					Type: "paragraph",
				})
			}
		}
	}

	if title == "" && len(sections) > 0 {
		title = firstLine(sections[0].Text)
	}
	return title, sections, nil
}

// docxHeadingLevel maps Word paragraph styles to heading levels.
// Returns 0 for body paragraphs.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(style)
	switch {
	case strings.HasPrefix(s, "heading"), strings.HasPrefix(s, "titre"):
		digits := strings.TrimFunc(s, func(r rune) bool { return r < '0' || r > '9' })
		switch digits {
		case "1":
			return 1
		case "2":
			return 2
		case "3":
			return 3
		case "4":
			return 4
		case "5":
			return 5
		case "6":
			return 6
		}
		return 1
	case s == "title":
		return 1
	}
	return 0
}
