package ast

// Word is one shell word or a part of a concatenated word.
type Word interface {
	word()
}

// Literal is unquoted text with no special characters.
type Literal struct {
	Value string
}

// Escaped is a single backslash-escaped character, without the backslash.
type Escaped struct {
	Value string
}

// SingleQuoted is the contents of a '...' string.
type SingleQuoted struct {
	Value string
}

// DoubleQuoted is a "..." string.
type DoubleQuoted struct {
	Parts []Word
}

// Concat is a word built from several adjacent parts.
type Concat struct {
	Parts []Word
}

// Param is a parameter expansion such as $HOME or ${HOME}.
type Param struct {
	Name string
}

// SubstKind distinguishes the kinds of substitution.
type SubstKind int

const (
	CommandSubst SubstKind = iota // $(...) or `...`
	ArithSubst                    // $((...))
	ProcessSubst                  // <(...) or >(...)
)

// Subst is a substitution; Source holds its text between the delimiters.
type Subst struct {
	Kind   SubstKind
	Source string
}

// Star is an unquoted '*'.
type Star struct{}

// Question is an unquoted '?'.
type Question struct{}

// SquareOpen is an unquoted '['.
type SquareOpen struct{}

// SquareClose is an unquoted ']'.
type SquareClose struct{}

// Tilde is an unquoted '~' at the start of a word.
type Tilde struct{}

// Colon is an unquoted ':' standing alone.
type Colon struct{}

func (*Literal) word()      {}
func (*Escaped) word()      {}
func (*SingleQuoted) word() {}
func (*DoubleQuoted) word() {}
func (*Concat) word()       {}
func (*Param) word()        {}
func (*Subst) word()        {}
func (*Star) word()         {}
func (*Question) word()     {}
func (*SquareOpen) word()   {}
func (*SquareClose) word()  {}
func (*Tilde) word()        {}
func (*Colon) word()        {}

// Lit is a helper to build a Literal word.
func Lit(value string) Word {
	return &Literal{Value: value}
}

// SimpleCommand builds a foreground command running argv with no redirects.
func SimpleCommand(argv ...string) Command {
	return &List{AndOr: AndOrList{First: &Single{Command: Call(argv...)}}}
}

// Call builds a Simple command from literal words.
func Call(argv ...string) *Simple {
	words := make([]Word, 0, len(argv))
	for _, arg := range argv {
		words = append(words, Lit(arg))
	}
	return &Simple{Words: words}
}
