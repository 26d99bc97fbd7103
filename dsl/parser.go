package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:px)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root AST node of a dashboard file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'board' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is either the settings block or an area declaration.
type Section struct {
	Settings *SettingsSection `parser:"  @@"`
	Area     *AreaSection     `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Settings != nil:
		return "settings"
	case s.Area != nil:
		return s.Area.Kind
	default:
		return "unknown"
	}
}

// SettingsSection holds board-wide assignments.
type SettingsSection struct {
	Block *Block `parser:"'settings' @@"`
}

// AreaSection declares a wrapper, category or sidebar area.
type AreaSection struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Kind  string         `parser:"@( 'wrapper' | 'category' | 'sidebar' )"`
	ID    Identifier     `parser:"@( Ident | String )"`
	Block *Block         `parser:"@@"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | ',' | Newline )* )* '}'"`
}

// Statement inside a block: a nested item or a key/value assignment.
type Statement struct {
	Item       *ItemDecl   `parser:"  @@"`
	Assignment *Assignment `parser:"| @@"`
}

// ItemDecl declares an app or widget placed in the enclosing area.
type ItemDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Kind  string         `parser:"@( 'app' | 'widget' )"`
	ID    Identifier     `parser:"@( Ident | String )"`
	Block *Block         `parser:"Newline* @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Array  *ArrayValue    `parser:"| @@"`
	Object *InlineObject  `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// InlineObject captures `{ key: value }` inline maps.
type InlineObject struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ ( ';' | ',' | Newline )* )* '}'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Identifier accepts a bare identifier or a quoted string (for ids such as uuids).
type Identifier string

// Capture implements participle.Capture.
func (id *Identifier) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("identifier capture requires value")
	}
	raw := values[0]
	if len(raw) >= 2 && raw[0] == '"' {
		val, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		raw = val
	}
	*id = Identifier(raw)
	return nil
}

// Raw returns the value as written, without quotes for strings.
// Arrays and objects have no scalar form and yield "".
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
