package core

import "path/filepath"

// SpecifierKind classifies where a specifier literal appeared.
type SpecifierKind string

const (
	// KindDeclaration covers `import … from '…'`, `export … from '…'` and `import '…'`.
	KindDeclaration SpecifierKind = "declaration"
	// KindLiteral covers `require('…')` and `import('…')`.
	KindLiteral SpecifierKind = "literal"
)

// Specifier is one module specifier literal found in a source file.
type Specifier struct {
	Value  string        // text between the quotes, as written
	Offset int           // byte offset of Value's first byte
	Line   int           // 1-based
	Kind   SpecifierKind // declaration or literal
}

// End returns the byte offset just past Value.
func (s Specifier) End() int { return s.Offset + len(s.Value) }

// ParseSpecifiers returns every import/export/require specifier in src, in
// source order. Comments, string contents, template text, JSX text and
// regular expression literals are skipped, so text that only looks like an
// import is not reported. Template substitutions and JSX {…} expressions
// are read as code.
func ParseSpecifiers(src []byte) []Specifier {
	return parseSpecifiers(src, true)
}

// parseFile is ParseSpecifiers with JSX turned off for TypeScript files,
// where <T>x is a type assertion.
func parseFile(path string, src []byte) []Specifier {
	switch filepath.Ext(path) {
	case ".ts", ".mts", ".cts":
		return parseSpecifiers(src, false)
	}
	return parseSpecifiers(src, true)
}

func parseSpecifiers(src []byte, jsx bool) []Specifier {
	toks := tokenize(src, jsx)
	var out []Specifier
	pendingDecl := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokPunct:
			switch t.text {
			case ";", "(", "=":
				pendingDecl = false
			}
			continue
		case tokIdent:
		default:
			continue
		}
		if i > 0 && toks[i-1].kind == tokPunct && toks[i-1].text == "." {
			continue // member access: obj.require(…), import.meta
		}
		next := tokenAt(toks, i+1)
		switch t.text {
		case "require":
			if s, ok := callArgument(toks, i); ok {
				out = append(out, s.specifier(KindLiteral))
			}
		case "import":
			switch {
			case next.kind == tokPunct && next.text == "(":
				if s, ok := callArgument(toks, i); ok {
					out = append(out, s.specifier(KindLiteral))
				}
			case next.kind == tokString:
				out = append(out, next.specifier(KindDeclaration))
				i++
			case next.kind == tokPunct && next.text == ".":
			default:
				pendingDecl = true
			}
		case "export":
			pendingDecl = true
		case "from":
			if pendingDecl && next.kind == tokString {
				out = append(out, next.specifier(KindDeclaration))
				pendingDecl = false
				i++
			}
		}
	}
	return out
}

// callArgument matches `name ( 'x' )` starting at toks[i] == name.
func callArgument(toks []token, i int) (token, bool) {
	open, arg, closing := tokenAt(toks, i+1), tokenAt(toks, i+2), tokenAt(toks, i+3)
	if open.kind != tokPunct || open.text != "(" || arg.kind != tokString {
		return token{}, false
	}
	if closing.kind != tokPunct || (closing.text != ")" && closing.text != ",") {
		return token{}, false
	}
	return arg, true
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokPunct
	tokOther // numbers, template literals, regular expressions
)

type token struct {
	kind   tokKind
	text   string // identifier name, punctuation, or string contents
	offset int    // for strings, offset of the contents
	line   int
}

func (t token) specifier(kind SpecifierKind) Specifier {
	return Specifier{Value: t.text, Offset: t.offset, Line: t.line, Kind: kind}
}

func tokenAt(toks []token, i int) token {
	if i < len(toks) {
		return toks[i]
	}
	return token{kind: tokEOF}
}

type lexer struct {
	src       []byte
	pos       int
	line      int
	prev      token
	toks      []token
	jsx       bool
	templates []int // open brace depth of each enclosing template substitution
}

func tokenize(src []byte, jsx bool) []token {
	lx := &lexer{src: src, line: 1, prev: token{kind: tokEOF}, jsx: jsx}
	if len(src) > 1 && src[0] == '#' && src[1] == '!' {
		lx.skipLine()
	}
	for lx.scan() {
	}
	return lx.toks
}

func (lx *lexer) emit(t token) {
	lx.toks = append(lx.toks, t)
	lx.prev = t
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}
	return 0
}

// scan consumes one token (or one comment) and reports whether input remains.
func (lx *lexer) scan() bool {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return false
	}
	c := lx.src[lx.pos]
	switch {
	case c == '/' && lx.peek(1) == '/':
		lx.skipLine()
	case c == '/' && lx.peek(1) == '*':
		lx.skipBlockComment()
	case c == '\'' || c == '"':
		lx.scanString(c)
	case c == '`':
		lx.pos++
		lx.scanTemplate(lx.line)
	case c == '/' && lx.regexAllowed():
		line := lx.line
		lx.skipRegex()
		lx.emit(token{kind: tokOther, line: line})
	case isIdentStart(c):
		start := lx.pos
		for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
			lx.pos++
		}
		lx.emit(token{kind: tokIdent, text: string(lx.src[start:lx.pos]), offset: start, line: lx.line})
	case c >= '0' && c <= '9':
		for lx.pos < len(lx.src) && (isIdentPart(lx.src[lx.pos]) || lx.src[lx.pos] == '.') {
			lx.pos++
		}
		lx.emit(token{kind: tokOther, line: lx.line})
	case c == '<' && lx.jsx && lx.regexAllowed() && (isIdentStart(lx.peek(1)) || lx.peek(1) == '>'):
		if !lx.scanJSX() {
			lx.emit(token{kind: tokPunct, text: "<", offset: lx.pos, line: lx.line})
			lx.pos++
		}
	default:
		if n := len(lx.templates); n > 0 {
			switch {
			case c == '{':
				lx.templates[n-1]++
			case c == '}' && lx.templates[n-1] == 0:
				lx.templates = lx.templates[:n-1]
				lx.pos++
				lx.scanTemplate(lx.line)
				return true
			case c == '}':
				lx.templates[n-1]--
			}
		}
		lx.emit(token{kind: tokPunct, text: string(c), offset: lx.pos, line: lx.line})
		lx.pos++
	}
	return true
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\n':
			lx.line++
		case ' ', '\t', '\r', '\f', '\v':
		default:
			return
		}
		lx.pos++
	}
}

func (lx *lexer) skipLine() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

func (lx *lexer) skipBlockComment() {
	lx.pos += 2
	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '*' && lx.peek(1) == '/' {
			lx.pos += 2
			return
		}
		if lx.src[lx.pos] == '\n' {
			lx.line++
		}
		lx.pos++
	}
}

// scanString emits a string token. An unterminated string ends at the line break.
func (lx *lexer) scanString(quote byte) {
	line := lx.line
	lx.pos++
	start := lx.pos
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			if lx.peek(1) == '\n' {
				lx.line++
			}
			lx.pos += 2
			continue
		case '\n':
			lx.emit(token{kind: tokOther, line: line})
			return
		case quote:
			lx.emit(token{kind: tokString, text: string(lx.src[start:lx.pos]), offset: start, line: line})
			lx.pos++
			return
		}
		lx.pos++
	}
	lx.pos = len(lx.src)
	lx.emit(token{kind: tokOther, line: line})
}

// scanTemplate consumes template text up to the closing backtick or the
// next ${. A substitution is left to the main scanner and the template
// resumes at its closing brace.
func (lx *lexer) scanTemplate(line int) {
	for lx.pos < len(lx.src) {
		switch c := lx.src[lx.pos]; {
		case c == '\\':
			if lx.peek(1) == '\n' {
				lx.line++
			}
			lx.pos += 2
			continue
		case c == '`':
			lx.pos++
			lx.emit(token{kind: tokOther, line: line})
			return
		case c == '$' && lx.peek(1) == '{':
			lx.emit(token{kind: tokPunct, text: "${", offset: lx.pos, line: lx.line})
			lx.pos += 2
			lx.templates = append(lx.templates, 0)
			return
		case c == '\n':
			lx.line++
		}
		lx.pos++
	}
	lx.emit(token{kind: tokOther, line: line})
}

// scanJSX consumes a JSX element at '<'. Text and attribute values are
// skipped, {…} expressions are lexed as code. When no complete element
// follows it rewinds and reports false.
func (lx *lexer) scanJSX() bool {
	pos, line, ntoks, prev := lx.pos, lx.line, len(lx.toks), lx.prev
	if !lx.jsxElement() {
		lx.pos, lx.line, lx.toks, lx.prev = pos, line, lx.toks[:ntoks], prev
		return false
	}
	lx.emit(token{kind: tokOther, line: line})
	return true
}

// jsxElement consumes an opening tag and, unless it is self-closing, its
// children and closing tag.
func (lx *lexer) jsxElement() bool {
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '/' && lx.peek(1) == '>':
			lx.pos += 2
			return true
		case c == '>':
			lx.pos++
			return lx.jsxChildren()
		case c == '{':
			if !lx.jsxExpression() {
				return false
			}
			continue
		case c == '"' || c == '\'':
			if !lx.jsxAttribute(c) {
				return false
			}
			continue
		case c == '\n':
			lx.line++
		case isIdentPart(c), c == ' ', c == '\t', c == '\r', c == '.', c == ':', c == '-', c == '=':
		default:
			return false
		}
		lx.pos++
	}
	return false
}

func (lx *lexer) jsxAttribute(quote byte) bool {
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		switch c {
		case quote:
			return true
		case '\n':
			lx.line++
		}
	}
	return false
}

// jsxChildren consumes text, expressions and nested elements through the
// closing tag.
func (lx *lexer) jsxChildren() bool {
	for lx.pos < len(lx.src) {
		switch c := lx.src[lx.pos]; {
		case c == '<' && lx.peek(1) == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '>' {
				if lx.src[lx.pos] == '\n' {
					lx.line++
				}
				lx.pos++
			}
			if lx.pos == len(lx.src) {
				return false
			}
			lx.pos++
			return true
		case c == '<':
			if !lx.jsxElement() {
				return false
			}
		case c == '{':
			if !lx.jsxExpression() {
				return false
			}
		default:
			if c == '\n' {
				lx.line++
			}
			lx.pos++
		}
	}
	return false
}

// jsxExpression lexes the code between '{' and its matching '}'.
func (lx *lexer) jsxExpression() bool {
	templates := lx.templates
	lx.templates = nil
	defer func() { lx.templates = templates }()

	lx.emit(token{kind: tokPunct, text: "{", offset: lx.pos, line: lx.line})
	lx.pos++
	depth := 0
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.src) {
			return false
		}
		if len(lx.templates) == 0 {
			switch lx.src[lx.pos] {
			case '{':
				depth++
			case '}':
				if depth == 0 {
					lx.emit(token{kind: tokPunct, text: "}", offset: lx.pos, line: lx.line})
					lx.pos++
					return true
				}
				depth--
			}
		}
		lx.scan()
	}
}

// skipRegex consumes a regular expression literal and its flags.
func (lx *lexer) skipRegex() {
	lx.pos++
	inClass := false
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\':
			lx.pos += 2
			continue
		case c == '\n':
			return
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			lx.pos++
			for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
				lx.pos++
			}
			return
		}
		lx.pos++
	}
}

var regexPrecedingKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// regexAllowed decides whether a '/' starts a regular expression rather
// than a division, based on the previous token.
func (lx *lexer) regexAllowed() bool {
	switch lx.prev.kind {
	case tokEOF:
		return true
	case tokIdent:
		return regexPrecedingKeywords[lx.prev.text]
	case tokPunct:
		return lx.prev.text != ")" && lx.prev.text != "]"
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
