package ctype

// reservedWords are Vesper keywords that collide with common C identifiers.
var reservedWords = map[string]string{
	"type": "type_",
	"in":   "in_",
	"from": "from_",
}

// EscapeName suffixes name with "_" if it collides with a Vesper reserved
// word, leaving every other identifier untouched.
func EscapeName(name string) string {
	if escaped, ok := reservedWords[name]; ok {
		return escaped
	}
	return name
}
