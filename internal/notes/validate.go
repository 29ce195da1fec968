package notes

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

// allowedExtensions are the upload types accepted client-side. The match
// is a case-insensitive suffix check only; the backend remains the
// authority on actual content validity.
var allowedExtensions = []string{".pdf", ".txt", ".srt"}

// sessionIDPattern is the canonical UUID textual shape (8-4-4-4-12 hex
// groups). Adopted session ids must match it before the resume action is
// allowed; no remote existence check is performed.
var sessionIDPattern = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ArtifactBaseName is the fixed base name for downloaded artifacts.
const ArtifactBaseName = "lecture-notes"

// ArtifactKind selects the download export format.
type ArtifactKind string

// Download artifact kinds.
const (
	ArtifactPDF      ArtifactKind = "pdf"
	ArtifactMarkdown ArtifactKind = "markdown"
)

// ValidAttachment reports whether the filename carries an accepted
// upload extension.
func ValidAttachment(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// AllowedExtensions returns the accepted upload extensions for display.
func AllowedExtensions() string {
	return strings.Join(allowedExtensions, ", ")
}

// ValidSessionID reports whether s has the canonical UUID shape.
func ValidSessionID(s string) bool {
	return sessionIDPattern.MatchString(s)
}

// ArtifactFilename returns the download filename for the given kind.
func ArtifactFilename(kind ArtifactKind) string {
	if kind == ArtifactPDF {
		return ArtifactBaseName + ".pdf"
	}
	return ArtifactBaseName + ".md"
}

// FormatFileSize renders a byte count for display ("1.2 MB").
func FormatFileSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// DisplayName shortens a path to its base name for display.
func DisplayName(path string) string {
	return filepath.Base(path)
}
