package routepath

// ValidLiteral reports whether seg can be used as a literal route segment.
//
// Literal segments are compared byte for byte against request segments, so
// they may only hold RFC 3986 pchar characters. ':' and '*' are reserved for
// wildcard patterns and '%' escapes must be well formed.
func ValidLiteral(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_', c == '~':
		case c == '!', c == '$', c == '&', c == '\'', c == '(', c == ')',
			c == '+', c == ',', c == ';', c == '=', c == '@':
		case c == '%':
			if i+2 >= len(seg) || !isHexDigit(seg[i+1]) || !isHexDigit(seg[i+2]) {
				return false
			}
			i += 2
		default:
			return false
		}
	}
	return true
}
