package pipeline

import "strings"

// Attachment is one uploaded statement file (PDF or image).
type Attachment struct {
	MIMEType string
	Data     []byte
}

// StatementInput is what the user submitted for analysis. With a file, Text
// is extra context; without one, Text is the statement itself.
type StatementInput struct {
	Text string
	File *Attachment
}

// HasFile reports whether a non-empty attachment is present.
func (in StatementInput) HasFile() bool {
	return in.File != nil && len(in.File.Data) > 0
}

// IsEmpty reports whether there is nothing to analyze.
func (in StatementInput) IsEmpty() bool {
	return strings.TrimSpace(in.Text) == "" && !in.HasFile()
}
