package media

import "strings"

const (
	uploadSegment     = "/upload/"
	attachmentSegment = "/upload/fl_attachment/"
)

// AttachmentURL rewrites an image URL so the host serves it as a file
// download, by inserting the attachment flag after the first /upload/
// path segment. Returns the input unchanged with ok=true when the flag
// is already present, and ok=false when the URL has no /upload/ segment
// at all (callers fall back to presigning).
func AttachmentURL(rawURL string) (string, bool) {
	if strings.Contains(rawURL, attachmentSegment) {
		return rawURL, true
	}

	idx := strings.Index(rawURL, uploadSegment)
	if idx < 0 {
		return rawURL, false
	}

	// Splice after the FIRST occurrence only. A second /upload/ in the
	// object key must stay untouched.
	return rawURL[:idx] + attachmentSegment + rawURL[idx+len(uploadSegment):], true
}
