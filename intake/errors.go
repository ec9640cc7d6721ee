package intake

import "fmt"

// ErrEmptyDocument is returned when extraction succeeds structurally but
// yields no text. Fatal to the analysis run: there is nothing to analyze.
type ErrEmptyDocument struct {
	Name string
}

func (e *ErrEmptyDocument) Error() string {
	return fmt.Sprintf("intake: document yields no text: %s", e.Name)
}

// ErrUnsupportedFormat is returned when the payload cannot be matched to a
// supported document format.
type ErrUnsupportedFormat struct {
	Name string
	Ext  string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("intake: unsupported format %q (%s)", e.Ext, e.Name)
}

// ErrTooLarge is returned when the payload exceeds the configured size cap.
type ErrTooLarge struct {
	Name string
	Size int64
	Max  int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("intake: document too large: %d bytes (max %d, %s)", e.Size, e.Max, e.Name)
}
