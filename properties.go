package neogm

import "strings"

// Props is a readability helper for the one-or-many property arguments of the query
// builder: Props("name") and Props("name", "age") are both valid projections.
func Props(names ...string) []string {
	return names
}

// ValidProperties reports whether props can be rendered as a projection: it must hold at
// least one name and every name must be non-empty.
func ValidProperties(props []string) bool {
	if len(props) == 0 {
		return false
	}
	for _, p := range props {
		if p == "" {
			return false
		}
	}
	return true
}

// ParseProperties renders props as comma-separated variable.property tokens, preserving
// input order. The same rendering is used for RETURN and ORDER BY clauses.
func ParseProperties(props []string, variable string) string {
	tokens := make([]string, len(props))
	for i, p := range props {
		tokens[i] = variable + "." + quoteName(p)
	}
	return strings.Join(tokens, ", ")
}

// quoteName returns name unchanged when it is a plain identifier and backtick-quotes it
// otherwise, so labels, types and property names can never break out of the pattern.
func quoteName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
