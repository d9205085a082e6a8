package render

import (
	"encoding/json"
	"errors"
)

// parseLenient decodes template output into a mapping. Output that fails a
// strict decode is cleaned (raw control characters inside strings escaped,
// stray backslashes doubled, trailing commas dropped) and decoded again.
func parseLenient(name string, data []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}

	err := json.Unmarshal(sanitizeJSON(data), &out)
	if err == nil {
		return out, nil
	}

	perr := &JSONParseError{Template: name, Cause: err}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		perr.Offset = syn.Offset
	}
	return nil, perr
}

func sanitizeJSON(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/16)
	inString := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			switch {
			case c == '\\':
				if i+1 < len(data) && isEscapable(data[i+1]) {
					out = append(out, c, data[i+1])
					i++
				} else {
					out = append(out, '\\', '\\')
				}
			case c == '"':
				inString = false
				out = append(out, c)
			case c < 0x20:
				out = appendControl(out, c)
			default:
				out = append(out, c)
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case ',':
			if !closesNext(data[i+1:]) {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

func isEscapable(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

func appendControl(out []byte, c byte) []byte {
	switch c {
	case '\n':
		return append(out, '\\', 'n')
	case '\r':
		return append(out, '\\', 'r')
	case '\t':
		return append(out, '\\', 't')
	}
	const hex = "0123456789abcdef"
	return append(out, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
}

// closesNext reports whether the next non-space byte ends an object or array.
func closesNext(rest []byte) bool {
	for _, c := range rest {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}
