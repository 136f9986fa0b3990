package tui

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// quarantineSuffix mirrors remedy.QuarantineSuffix without the import.
const quarantineSuffix = ".INFECTED"

// Highlight colours a script for terminal display. Quarantined files are
// lexed by their original extension; MEL has no lexer and falls back to C,
// which shares its comment and string syntax.
func Highlight(code, filename string) string {
	filename = strings.TrimSuffix(filename, quarantineSuffix)
	lexer := lexers.Match(filename)
	if lexer == nil && strings.EqualFold(filepath.Ext(filename), ".mel") {
		lexer = lexers.Get("c")
	}
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
