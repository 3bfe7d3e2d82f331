package svgpath

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// PathLexer tokenizes the SVG path subset found in EasyEDA ARC and
// SOLIDREGION shapes
var PathLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Single letter drawing commands
	{Name: "Command", Pattern: `[MmLlHhVvAaZzCcQqSsTt]`},

	// Numbers, including forms like ".5", "-3", "1e-3"
	{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},

	// Separators
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})
