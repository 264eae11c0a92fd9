package finance

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

// MaxDocumentSize bounds a supporting document, in bytes.
const MaxDocumentSize = 5 << 20

// ErrInvalidDocument rejects a supporting document with a missing name, an
// unaccepted content type or an oversized body.
var ErrInvalidDocument = errors.New("finance: invalid supporting document")

// Document is the supporting file attached to a collection or deposit. Content
// is optional; when present Size is its length. Content never appears in list
// or detail JSON and is served by the document endpoint instead.
type Document struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"`
}

// HasContent reports whether the bytes were uploaded along with the metadata.
func (d *Document) HasContent() bool {
	return d != nil && len(d.Content) > 0
}

func (d *Document) clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Content != nil {
		c.Content = append([]byte(nil), d.Content...)
	}
	return &c
}

var documentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// AcceptedDocumentType reports whether contentType is an image, a PDF or a
// Word document.
func AcceptedDocumentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/") || documentTypes[mt]
}

func validateDocument(d *Document) error {
	if d == nil {
		return nil
	}
	switch {
	case baseName(d.FileName) == "":
		return fmt.Errorf("%w: file name required", ErrInvalidDocument)
	case !AcceptedDocumentType(d.ContentType):
		return fmt.Errorf("%w: content type %q", ErrInvalidDocument, d.ContentType)
	case d.Size <= 0 || d.Size > MaxDocumentSize:
		return fmt.Errorf("%w: size must be 1-%d bytes", ErrInvalidDocument, MaxDocumentSize)
	case d.HasContent() && int64(len(d.Content)) != d.Size:
		return fmt.Errorf("%w: size %d does not match content", ErrInvalidDocument, d.Size)
	}
	return nil
}

// normalizeDocument trims the file name to its base and copies the content.
func normalizeDocument(d *Document) *Document {
	if d == nil {
		return nil
	}
	c := d.clone()
	c.FileName = baseName(c.FileName)
	return c
}

func baseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
