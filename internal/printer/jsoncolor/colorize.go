// Package jsoncolor pretty-prints JSON documents with ANSI syntax coloring
// for terminal output.
package jsoncolor

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes (Tokyo Night palette, matching internal/printer)
const (
	colorReset  = "\033[0m"
	colorKey    = "\033[38;2;122;162;247m" // #7aa2f7 (Tokyo Night blue)
	colorString = "\033[38;2;158;206;106m" // #9ece6a (Tokyo Night green)
	colorNumber = "\033[38;2;224;175;104m" // #e0af68 (Tokyo Night yellow)
	colorBool   = "\033[38;2;187;154;247m" // #bb9af7 (Tokyo Night magenta)
	colorNull   = "\033[38;2;86;95;137m"   // #565f89 (Tokyo Night comment)
)

// Enabled reports whether w is a terminal that can render ANSI colors.
// Anything that is not an *os.File (pipes in tests, captured buffers)
// gets plain output.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Colorize pretty-prints JSON bytes with syntax coloring.
// Falls back to the raw string on invalid JSON.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}

	var out strings.Builder
	raw := buf.String()

	i := 0
	for i < len(raw) {
		ch := raw[i]
		switch {
		case ch == '"':
			end := findStringEnd(raw, i)
			str := raw[i : end+1]

			// A string followed by a colon is an object key.
			rest := strings.TrimLeft(raw[end+1:], " \t")
			if len(rest) > 0 && rest[0] == ':' {
				paint(&out, colorKey, str)
			} else {
				paint(&out, colorString, str)
			}
			i = end + 1

		case ch >= '0' && ch <= '9' || ch == '-':
			end := i + 1
			for end < len(raw) && isNumberChar(raw[end]) {
				end++
			}
			paint(&out, colorNumber, raw[i:end])
			i = end

		case strings.HasPrefix(raw[i:], "true"):
			paint(&out, colorBool, "true")
			i += 4

		case strings.HasPrefix(raw[i:], "false"):
			paint(&out, colorBool, "false")
			i += 5

		case strings.HasPrefix(raw[i:], "null"):
			paint(&out, colorNull, "null")
			i += 4

		default:
			out.WriteByte(ch)
			i++
		}
	}

	return out.String()
}

func paint(out *strings.Builder, color, text string) {
	out.WriteString(color)
	out.WriteString(text)
	out.WriteString(colorReset)
}

func isNumberChar(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

// findStringEnd returns the index of the closing quote for a JSON string starting at pos.
func findStringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++ // skip escaped character
			continue
		}
		if s[i] == '"' {
			return i
		}
	}
	return len(s) - 1
}
