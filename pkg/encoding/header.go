// Package encoding provides text encoding utilities for fixed-size name fields in
// mesh file headers.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Windows1252ToUTF8 converts Windows-1252 encoded bytes to a UTF-8 string.
// Returns the original bytes as a string if conversion fails.
func Windows1252ToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// FixedStringToUTF8 converts a NUL-padded name field to a trimmed UTF-8 string.
// Fields that are not valid UTF-8 are read as Windows-1252, which is what most
// desktop exporters write.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	if utf8.Valid(data) {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(Windows1252ToUTF8(data))
}

// UTF8ToFixedString stores s in a NUL-padded field of the given size, cutting at a
// rune boundary when s is too long.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	n := 0
	for _, r := range s {
		l := utf8.RuneLen(r)
		if l < 0 || n+l > size {
			break
		}
		n += utf8.EncodeRune(result[n:], r)
	}
	return result
}
