// Package epub rewrites EPUB containers entry by entry.
package epub

import (
	"path"
	"strings"
	"unicode/utf8"
)

const (
	// MimetypeName must be the first entry of every EPUB, stored uncompressed.
	MimetypeName = "mimetype"
	// MimetypeContent is the body written for the mimetype entry.
	MimetypeContent = "application/epub+zip"
)

// PitchAccentCSS is appended to every stylesheet in the book.
const PitchAccentCSS = `
ruby.pitch_accent > rt {
    color: #c0c0c0;
}
ruby.pitch_flat > rt {
    color: #c0c0c0;
}
`

// Role is how the rewriter treats an entry.
type Role int

const (
	RoleOther Role = iota
	RoleMimetype
	RoleHTML
	RoleCSS
)

func (r Role) String() string {
	switch r {
	case RoleMimetype:
		return "mimetype"
	case RoleHTML:
		return "html"
	case RoleCSS:
		return "css"
	default:
		return "other"
	}
}

// Classify returns the role of a non-mimetype entry from its path.
// Navigation documents are left alone.
func Classify(name string) Role {
	switch {
	case (strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".xhtml")) && !strings.Contains(name, "nav"):
		return RoleHTML
	case strings.HasSuffix(name, ".css"):
		return RoleCSS
	default:
		return RoleOther
	}
}

// Entry is one file read from the input container.
type Entry struct {
	Path string
	Raw  []byte
	Role Role
}

// Content is either decoded UTF-8 text or opaque bytes.
type Content struct {
	Text    string
	Raw     []byte
	decoded bool
}

// Decode returns a text Content when raw is valid UTF-8, otherwise an
// opaque one holding raw.
func Decode(raw []byte) Content {
	if !utf8.Valid(raw) {
		return Content{Raw: raw}
	}
	return Content{Text: string(raw), Raw: raw, decoded: true}
}

// Decoded reports whether the content is text.
func (c Content) Decoded() bool {
	return c.decoded
}

// safePath reports whether an entry name stays inside the container root.
func safePath(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.ContainsRune(name, 0) {
		return false
	}
	if len(name) > 1 && name[1] == ':' {
		return false // drive letter
	}
	for _, part := range strings.Split(path.Clean(name), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
