package localsite

import (
	"fmt"
	"strings"
)

// The characters that are unsafe in file names on at least one filesystem we care
// about.  Everything else, spaces included, passes through untouched.
const unsafeFilenameChars = `\/:*?"<>|`

// sanitizeForFilename replaces filesystem-unsafe characters with underscores.
func sanitizeForFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}

// encodeFileURL percent-encodes a local file path for use in an href attribute.
// Like Python's urllib quote with its default safe set: everything outside
// unreserved characters gets encoded, except slashes, which separate path segments.
// url.PathEscape won't do here (it escapes the slashes we need to keep) and
// URL.EscapedPath leaves sub-delims like + and & alone, which browsers then
// misread in file:// links.
func encodeFileURL(path string) string {
	const upperhex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(path))

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~' || c == '/':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}

	return b.String()
}

// NameRegistry hands out unique, sanitized local file names within one scope (page
// names and attachment names get separate registries per space).  Confluence won't
// allow two pages with the same title in a space, but sanitization can still make
// distinct titles collide, so later claimants get a _1, _2, ... suffix before the
// extension.  Asking again for a title you've asked about before returns exactly the
// name assigned the first time.
type NameRegistry struct {
	assigned map[string]string   // title -> assigned file name
	used     map[string]struct{} // every name handed out so far
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		assigned: map[string]string{},
		used:     map[string]struct{}{},
	}
}

// AssignFile returns the local file name for title.  A non-empty explicitExtension
// (e.g. "html") is appended and never counts as part of the deduplicated base;
// otherwise whatever follows the title's last dot is treated as the extension.
func (r *NameRegistry) AssignFile(title string, explicitExtension string) string {
	return r.assign(title, explicitExtension, false)
}

// AssignFolder is AssignFile for directories, which never get an extension split off:
// a space named "v2.0" becomes folder "v2.0", not "v2" + ".0".
func (r *NameRegistry) AssignFolder(title string) string {
	return r.assign(title, "", true)
}

func (r *NameRegistry) assign(title string, explicitExtension string, isFolder bool) string {
	if name, ok := r.assigned[title]; ok {
		return name
	}

	base := sanitizeForFilename(title)
	extension := ""

	switch {
	case isFolder:
		// keep dots in the base
	case explicitExtension != "":
		extension = explicitExtension
	default:
		if i := strings.LastIndex(base, "."); i >= 0 {
			base, extension = base[:i], base[i+1:]
		}
	}

	if base == "" {
		// Even a nameless thing needs a file on disk.
		base = "untitled"
	}

	name := joinBaseExtension(base, extension)
	for counter := 1; ; counter++ {
		if _, taken := r.used[name]; !taken {
			break
		}
		name = joinBaseExtension(fmt.Sprintf("%s_%d", base, counter), extension)
	}

	r.used[name] = struct{}{}
	r.assigned[title] = name

	return name
}

func joinBaseExtension(base, extension string) string {
	if extension == "" {
		return base
	}
	return base + "." + extension
}
