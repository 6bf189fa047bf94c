// File: twconfig/jsliteral.go
package twconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

var errNoExport = errors.New("no exported object literal found")

// exportMarkers precede the object literal of a JS config module.
var exportMarkers = [][]byte{
	[]byte("module.exports"),
	[]byte("export default"),
}

// extractJSObject returns the exported object literal of a JS config module with
// comments and trailing commas removed. jsLiteralToJSON turns the result into
// JSON.
func extractJSObject(src []byte) ([]byte, error) {
	clean := stripJSComments(src)

	start := -1
	for _, marker := range exportMarkers {
		if idx := bytes.Index(clean, marker); idx >= 0 {
			if open := bytes.IndexByte(clean[idx:], '{'); open >= 0 {
				start = idx + open
				break
			}
		}
	}
	if start < 0 {
		return nil, errNoExport
	}

	end, err := matchBrace(clean, start)
	if err != nil {
		return nil, err
	}

	return stripTrailingCommas(clean[start : end+1]), nil
}

// stripJSComments removes // and /* */ comments outside string literals.
func stripJSComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	var quote byte

	for i := 0; i < len(src); i++ {
		c := src[i]

		if quote != 0 {
			out = append(out, c)
			if c == '\\' && i+1 < len(src) {
				i++
				out = append(out, src[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			out = append(out, c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				if src[i] == '\n' {
					out = append(out, '\n')
				}
				i++
			}
			i++ // land on the closing '/'
		default:
			out = append(out, c)
		}
	}

	return out
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(src []byte, open int) (int, error) {
	depth := 0
	var quote byte

	for i := open; i < len(src); i++ {
		c := src[i]

		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}

	return 0, fmt.Errorf("unbalanced braces in exported object literal")
}

// stripTrailingCommas drops commas directly followed by a closing bracket.
func stripTrailingCommas(src []byte) []byte {
	out := make([]byte, 0, len(src))
	var quote byte

	for i := 0; i < len(src); i++ {
		c := src[i]

		if quote != 0 {
			out = append(out, c)
			if c == '\\' && i+1 < len(src) {
				i++
				out = append(out, src[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
			out = append(out, c)
			continue
		case ',':
			j := i + 1
			for j < len(src) && isJSSpace(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				continue
			}
		}
		out = append(out, c)
	}

	return out
}

func isJSSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// jsLiteralToJSON rewrites a plain-data JS object literal as JSON. Bare and
// numeric keys are quoted, string literals are re-quoted with their escapes
// decoded and numbers are rewritten in JSON form. Function calls, variable
// references and template substitutions are rejected.
func jsLiteralToJSON(src []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(src) + len(src)/4)

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case isJSSpace(c):
			out.WriteByte(c)
			i++

		case c == '{' || c == '}' || c == '[' || c == ']' || c == ':' || c == ',':
			out.WriteByte(c)
			i++

		case c == '\'' || c == '"' || c == '`':
			s, next, err := readJSString(src, i)
			if err != nil {
				return nil, err
			}
			writeJSONString(&out, s)
			i = next

		case isJSIdentStart(c):
			j := i + 1
			for j < len(src) && isJSIdentPart(src[j]) {
				j++
			}
			word := string(src[i:j])

			switch {
			case followedByColon(src, j):
				writeJSONString(&out, word)
			case word == "true" || word == "false" || word == "null":
				out.WriteString(word)
			case word == "undefined":
				out.WriteString("null")
			default:
				return nil, fmt.Errorf("unsupported expression %q at offset %d: only plain data is allowed", word, i)
			}
			i = j

		case c == '-' || c == '+' || c == '.' || isDigit(c):
			j := i + 1
			for j < len(src) && isJSNumberPart(src, i, j) {
				j++
			}
			lit := string(src[i:j])

			if followedByColon(src, j) {
				writeJSONString(&out, lit)
			} else {
				num, err := jsNumber(lit)
				if err != nil {
					return nil, fmt.Errorf("invalid number %q at offset %d: %w", lit, i, err)
				}
				out.WriteString(num)
			}
			i = j

		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
		}
	}

	return out.Bytes(), nil
}

// readJSString decodes the string literal starting at src[start] and returns
// its value together with the index just past the closing quote.
func readJSString(src []byte, start int) (string, int, error) {
	quote := src[start]
	var sb strings.Builder

	for i := start + 1; i < len(src); i++ {
		c := src[i]

		switch {
		case c == quote:
			return sb.String(), i + 1, nil

		case c == '\n' && quote != '`':
			return "", 0, fmt.Errorf("unterminated string at offset %d", start)

		case c == '$' && quote == '`' && i+1 < len(src) && src[i+1] == '{':
			return "", 0, fmt.Errorf("template substitution at offset %d is not supported", i)

		case c == '\\':
			if i+1 >= len(src) {
				return "", 0, fmt.Errorf("unterminated string at offset %d", start)
			}
			next, err := decodeJSEscape(src, i+1, &sb)
			if err != nil {
				return "", 0, err
			}
			i = next - 1

		default:
			sb.WriteByte(c)
		}
	}

	return "", 0, fmt.Errorf("unterminated string at offset %d", start)
}

// decodeJSEscape writes the character escaped at src[i] (the byte after the
// backslash) and returns the index following the escape sequence.
func decodeJSEscape(src []byte, i int, sb *strings.Builder) (int, error) {
	switch c := src[i]; c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		if i+1 < len(src) && isDigit(src[i+1]) {
			return 0, fmt.Errorf("octal escape at offset %d is not supported", i-1)
		}
		sb.WriteByte(0)
	case '\r':
		// Line continuation
		if i+1 < len(src) && src[i+1] == '\n' {
			return i + 2, nil
		}
	case '\n':
	case 'x':
		if i+2 >= len(src) {
			return 0, fmt.Errorf("truncated \\x escape at offset %d", i-1)
		}
		v, err := strconv.ParseUint(string(src[i+1:i+3]), 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid \\x escape at offset %d", i-1)
		}
		sb.WriteRune(rune(v))
		return i + 3, nil
	case 'u':
		r, next, err := readUnicodeEscape(src, i)
		if err != nil {
			return 0, err
		}
		if utf16.IsSurrogate(r) && next+1 < len(src) && src[next] == '\\' && src[next+1] == 'u' {
			if low, after, err := readUnicodeEscape(src, next+1); err == nil {
				if pair := utf16.DecodeRune(r, low); pair != '\uFFFD' {
					sb.WriteRune(pair)
					return after, nil
				}
			}
		}
		sb.WriteRune(r)
		return next, nil
	default:
		// \', \", \\, \` and any other character stand for themselves
		sb.WriteByte(c)
	}
	return i + 1, nil
}

// readUnicodeEscape reads the code point of a \uXXXX or \u{X...} escape whose
// 'u' is at src[i].
func readUnicodeEscape(src []byte, i int) (rune, int, error) {
	if i+1 < len(src) && src[i+1] == '{' {
		end := bytes.IndexByte(src[i+2:], '}')
		if end < 0 {
			return 0, 0, fmt.Errorf("unterminated \\u{} escape at offset %d", i-1)
		}
		hex := string(src[i+2 : i+2+end])
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || v > 0x10FFFF {
			return 0, 0, fmt.Errorf("invalid \\u{} escape at offset %d", i-1)
		}
		return rune(v), i + 3 + end, nil
	}

	if i+4 >= len(src) {
		return 0, 0, fmt.Errorf("truncated \\u escape at offset %d", i-1)
	}
	v, err := strconv.ParseUint(string(src[i+1:i+5]), 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid \\u escape at offset %d", i-1)
	}
	return rune(v), i + 5, nil
}

// jsNumber rewrites a JS numeric literal as a JSON number. Hex, octal and
// binary integers become decimal. A decimal point stays so the value is read
// back as a float.
func jsNumber(lit string) (string, error) {
	body := strings.ReplaceAll(lit, "_", "")
	sign := ""
	switch {
	case strings.HasPrefix(body, "-"):
		sign, body = "-", body[1:]
	case strings.HasPrefix(body, "+"):
		body = body[1:]
	}
	if body == "" {
		return "", errors.New("missing digits")
	}

	if len(body) > 2 && body[0] == '0' && strings.ContainsRune("xXoObB", rune(body[1])) {
		v, err := strconv.ParseUint(body, 0, 64)
		if err != nil {
			return "", err
		}
		return sign + strconv.FormatUint(v, 10), nil
	}

	if strings.Trim(body, "0123456789.eE+-") != "" {
		return "", errors.New("not a number")
	}

	mantissa, exponent := body, ""
	if idx := strings.IndexAny(body, "eE"); idx >= 0 {
		mantissa, exponent = body[:idx], body[idx:]
	}
	if len(mantissa) > 1 && mantissa[0] == '0' && isDigit(mantissa[1]) {
		return "", errors.New("legacy octal literals are not supported")
	}
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}

	num := sign + mantissa + exponent
	if _, err := strconv.ParseFloat(num, 64); err != nil {
		return "", errors.New("not a number")
	}
	return num, nil
}

func writeJSONString(out *bytes.Buffer, s string) {
	// Marshalling a string cannot fail
	quoted, _ := json.Marshal(s)
	out.Write(quoted)
}

// followedByColon reports whether the next non-space byte from i is a colon,
// which makes the preceding token an object key.
func followedByColon(src []byte, i int) bool {
	for i < len(src) && isJSSpace(src[i]) {
		i++
	}
	return i < len(src) && src[i] == ':'
}

func isJSIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isJSIdentPart(c byte) bool {
	return isJSIdentStart(c) || isDigit(c)
}

// isJSNumberPart reports whether src[i] continues the numeric literal that
// starts at src[start]. A sign only continues one directly after a decimal
// exponent marker.
func isJSNumberPart(src []byte, start, i int) bool {
	c := src[i]
	if c == '+' || c == '-' {
		prev := src[i-1]
		return (prev == 'e' || prev == 'E') && !bytes.ContainsAny(src[start:i], "xX")
	}
	return isDigit(c) || c == '.' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
