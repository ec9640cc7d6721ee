package intake

// Format identifies a supported contract document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatTXT  Format = "txt"
	FormatMD   Format = "md"
	FormatHTML Format = "html"
)

// Section is a structural unit detected in a contract document.
type Section struct {
	Title string `json:"title,omitempty"`
	Level int    `json:"level,omitempty"` // heading level 1-6, 0 for body
	Text  string `json:"text"`
	Type  string `json:"type"`           // heading, paragraph, page
	Page  int    `json:"page,omitempty"` // 1-based page number (PDF only)
}

// Quality captures best-effort metrics about PDF text extraction.
// Absent for non-PDF formats.
type Quality struct {
	CharsPerPage   float64 `json:"chars_per_page"`
	PrintableRatio float64 `json:"printable_ratio"`
}

// Hints carries lightweight structural metadata alongside the raw text.
// Hints are best-effort: an unstructured document yields empty sections,
// never an error.
type Hints struct {
	Sections  []Section `json:"sections"`
	PageCount int       `json:"page_count"`
	Quality   *Quality  `json:"quality,omitempty"`
}

// Document is the normalized result of extracting a contract document.
// Immutable once produced: agents receive it read-only.
type Document struct {
	Name    string `json:"name"`
	Format  Format `json:"format"`
	Title   string `json:"title,omitempty"`
	RawText string `json:"raw_text"`
	Hints   Hints  `json:"hints"`
}
