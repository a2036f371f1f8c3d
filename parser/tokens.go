// Package parser groups lexed log tokens into syntax trees.
package parser

import "github.com/fwojciec/logcolor/rules"

// Token type and category names produced by LogRules.
const (
	TypeWhitespace     = "whitespace"
	TypeObjectArray    = "objectArrayPattern"
	TypeEllipsis       = "ellipsis"
	TypeSourceInfo     = "sourceInfo"
	TypeSourceInfoGrep = "sourceInfoGrep"
	TypeURL            = "url"
	TypeHTTPRequest    = "httpRequest"
	TypeHTTPMethod     = "httpMethod"
	TypeNumber         = "number"
	TypeBoolean        = "boolean"
	TypeNull           = "null"
	TypeUndefined      = "undefined"
	TypeNaN            = "nan"
	TypeInfinity       = "infinity"
	TypeLogLevel       = "logLevel"
	TypeIdentifier     = "identifier"
	TypeText           = "text"

	CategoryTimestamp    = "timestamp"
	CategoryQuotedString = "quotedString"
	CategoryIPAddress    = "ipAddress"
	CategorySymbol       = "symbol"

	TypeEquals = "symbol_equals"
	TypeColon  = "symbol_colon"
)

const zone = `(?:Z|[+-]\d{2}:?\d{2})?`

// LogRules returns the built-in token rules for common log formats. Entries
// are listed most specific first.
func LogRules() rules.Spec {
	return rules.Spec{
		rules.Token(TypeWhitespace, rules.PatternNode(`[ \t]+`)),
		rules.Token(TypeObjectArray, rules.PatternNode(`\[\s*Object\s+\.\.\.\s*\]`)),
		rules.Token(TypeEllipsis, rules.PatternNode(`\.\.\.`)),

		rules.Token(CategoryTimestamp, rules.Category(
			rules.Token("withRelativeTime", rules.PatternNode(`{date}[T ]{clock}`+zone+`\([^)]+\)`)),
			rules.Token("compact", rules.PatternNode(`\b\d{8}T?\d{4}(?:\d{2}(?:\.\d+)?)?`+zone)),
			rules.Token("iso8601", rules.PatternNode(`{date}[T ]{clock}`+zone)),
			rules.Token("date", rules.AnyOf(
				rules.Pattern{Source: `\d{4}-\d{2}-\d{2}`},
				rules.Pattern{Source: `\d{4}/\d{2}/\d{2}`},
			)),
			rules.Token("clock", rules.PatternNode(`\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?`)),
		)),

		rules.Token(CategoryQuotedString, rules.Category(
			rules.Token("double", rules.PatternNode(`"(?:[^\\"]|\\(?:[bfnrtv"\\/]|u[0-9a-fA-F]{4}|u\{[0-9a-fA-F]+\}|x[0-9a-fA-F]{2}|[0-7]{1,3}|.))*"`)),
			rules.Token("single", rules.PatternNode(`'(?:[^\\']|\\(?:[bfnrtv'\\/]|u[0-9a-fA-F]{4}|u\{[0-9a-fA-F]+\}|x[0-9a-fA-F]{2}|[0-7]{1,3}|.))*'`)),
		)),

		// [src/file.go:12] and [src/file.go:12:3]
		rules.Token(TypeSourceInfo, rules.PatternNode(`\[(?<filename>[^\]:]+):(?<lineNumber>\d+)(?::(?<columnNumber>\d+))?\]`)),
		// src/file.go:12: and src/file.go:12:3: as printed by grep
		rules.Token(TypeSourceInfoGrep, rules.PatternNode(`(?<filename>[^\s:"'=\[\](){}]+):(?<lineNumber>\d+)(?::(?<columnNumber>\d+))?:`)),
		rules.Token("filename", rules.Contextual()),
		rules.Token("lineNumber", rules.Contextual()),
		rules.Token("columnNumber", rules.Contextual()),

		rules.Token(CategoryIPAddress, rules.Category(
			rules.Token("v6", rules.Category(
				rules.Token("inBrackets", rules.AnyOf(
					rules.Pattern{Source: `\[(?:[0-9a-fA-F]{0,4}:){1,7}:?(?:[0-9a-fA-F]{0,4}:){0,6}[0-9a-fA-F]{0,4}\]`},
					rules.Pattern{Source: `\[::\]`},
				)),
				rules.Token("full", rules.PatternNode(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`)),
				rules.Token("compressed", rules.PatternNode(`\b(?:[0-9a-fA-F]{0,4}:){1,7}:(?:[0-9a-fA-F]{0,4}:){0,6}[0-9a-fA-F]{0,4}\b`)),
				rules.Token("loopback", rules.PatternNode(`::1\b`)),
				rules.Token("linkLocal", rules.PatternNode(`\bfe80:(?::[0-9a-fA-F]{0,4}){0,7}(?:%[a-zA-Z0-9._-]+)?\b`)),
				rules.Token("mappedV4", rules.PatternNode(`::ffff:{v4}\b`)),
			)),
			rules.Token("v4", rules.Category(
				rules.Token("standard", rules.PatternNode(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)),
			)),
		)),

		rules.Token(TypeURL, rules.PatternNode(`\bhttps?://[^\s\]}"')]+`)),
		rules.Token(TypeHTTPRequest, rules.PatternNode(`(?<method>{httpMethod}) (?<path>/[^\s\]}"')]*)`)),

		rules.Token(TypeNumber, rules.PatternNode(`-?(?:0|[1-9]\d*)(?:\.\d+)?(?:[eE][+-]?\d+)?(?![\w])`)),
		rules.Token(TypeBoolean, rules.PatternNode(`\b(?:true|false)\b`)),
		rules.Token(TypeNull, rules.PatternNode(`\bnull\b`)),
		rules.Token(TypeUndefined, rules.PatternNode(`\bundefined\b`)),
		rules.Token(TypeNaN, rules.PatternNode(`\bNaN\b`)),
		rules.Token(TypeInfinity, rules.PatternNode(`-?\bInfinity\b`)),
		rules.Token(TypeLogLevel, rules.PatternNode(`\b(?:DEBUG|INFO|WARN|WARNING|ERROR|FATAL|TRACE|debug|info|warn|warning|error|fatal|trace)\b`)),
		rules.Token(TypeHTTPMethod, rules.PatternNode(`\b(?:GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS|CONNECT|TRACE)\b`)),

		rules.Token(CategorySymbol, rules.Category(
			rules.Token("lBrace", rules.PatternNode(`\{`)),
			rules.Token("rBrace", rules.PatternNode(`\}`)),
			rules.Token("lBracket", rules.PatternNode(`\[`)),
			rules.Token("rBracket", rules.PatternNode(`\]`)),
			rules.Token("lParen", rules.PatternNode(`\(`)),
			rules.Token("rParen", rules.PatternNode(`\)`)),
			rules.Token("comma", rules.PatternNode(`,`)),
			rules.Token("colon", rules.PatternNode(`:`)),
			rules.Token("semicolon", rules.PatternNode(`;`)),
			rules.Token("equals", rules.PatternNode(`=`)),
			rules.Token("dash", rules.PatternNode(`-`)),
			rules.Token("dot", rules.PatternNode(`\.`)),
			rules.Token("slash", rules.PatternNode(`/`)),
			rules.Token("hash", rules.PatternNode(`#`)),
			rules.Token("pipe", rules.PatternNode(`\|`)),
		)),

		rules.Token(TypeIdentifier, rules.PatternNode(`[a-zA-Z_$][a-zA-Z0-9_$]*`)),
		rules.Token(TypeText, rules.PatternNode(`[^\s{}\[\]():,;="'\n]+`)),
	}
}
