package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// MiniCLexer tokenizes miniC source. The rule set is small enough to be a
// flat table, unlike the teacher's stateful lexer with nested comment
// handling: miniC has no comments, no strings, and exactly one numeric
// literal form.
var MiniCLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `<=|>=|==|!=|[-+*/(){};,<>=]`},
})
