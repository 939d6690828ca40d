// Package upload holds the document upload allow-list.
package upload

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// AllowedExtensions are the file types accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"docx": {},
}

// Allowed reports whether filename carries an allowed extension (case-insensitive).
func Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// Validate returns domain.ErrInvalidFile for an empty or disallowed filename.
func Validate(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: no selected file", domain.ErrInvalidFile)
	}
	if !Allowed(filename) {
		return fmt.Errorf("%w: file type not allowed: %s", domain.ErrInvalidFile, filename)
	}
	return nil
}
