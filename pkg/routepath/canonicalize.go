package routepath

import (
	"errors"
	"strings"
)

// Path is a canonical navigation path split into its parts.
type Path struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Query is the query string without the leading "?".
	Query string

	// Fragment is the fragment without the leading "#".
	Fragment string

	// Changed reports whether normalization rewrote the input path.
	Changed bool
}

// Segments returns the path split on "/". The root path has no segments.
func (p Path) Segments() []string {
	return Split(p.Path)
}

// String rebuilds the path with its query and fragment.
func (p Path) String() string {
	s := p.Path
	if p.Query != "" {
		s += "?" + p.Query
	}
	if p.Fragment != "" {
		s += "#" + p.Fragment
	}
	return s
}

// Canonicalization errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Canonicalize normalizes a navigation path:
//   - the query and fragment are split off and kept verbatim
//   - a missing leading slash is added
//   - repeated slashes collapse (/a//b -> /a/b)
//   - "." segments are dropped and ".." segments pop their parent
//   - a trailing slash is removed, except for the root
//
// Backslashes, NUL bytes, malformed percent escapes and ".." above the root
// are rejected.
func Canonicalize(input string) (Path, error) {
	if input == "" {
		return Path{Path: "/", Changed: true}, nil
	}

	rest, fragment, _ := strings.Cut(input, "#")
	path, query, _ := strings.Cut(rest, "?")

	if strings.Contains(path, "\\") {
		return Path{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Path{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Path{}, err
		}
	}

	original := path

	var out []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return Path{}, ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	path = "/" + strings.Join(out, "/")
	return Path{
		Path:     path,
		Query:    query,
		Fragment: fragment,
		Changed:  path != original,
	}, nil
}

// Raw splits input into path, query and fragment without normalizing or
// validating the path. Only a missing leading slash is added.
func Raw(input string) Path {
	rest, fragment, _ := strings.Cut(input, "#")
	path, query, _ := strings.Cut(rest, "?")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Path{Path: path, Query: query, Fragment: fragment}
}

// Split splits a path into its non-empty segments.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// IsAbsolute reports whether target is an in-app absolute path. Scheme-relative
// ("//host") and full URLs are not.
func IsAbsolute(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	return !strings.Contains(target, "://")
}

// validatePercentEscapes checks that every '%' starts a %XX hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
