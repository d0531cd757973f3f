package busname

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes bus labels.
// Index ranges get their own state so that member names may contain dots
// while ".." still separates range bounds.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
		{Name: "LBracket", Pattern: `\[`, Action: lexer.Push("Range")},
		{Name: "Name", Pattern: `[^\s\[\]\{\}]+`},
	},
	"Range": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Dots", Pattern: `\.\.`},
		{Name: "RBracket", Pattern: `\]`, Action: lexer.Pop()},
	},
})
