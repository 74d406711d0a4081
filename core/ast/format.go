package ast

import (
	"strconv"
	"strings"
)

// Format renders commands as POSIX shell source, one top level command per
// line. Parsing the result yields commands whose words resolve to the same
// strings as those in cmds.
func Format(cmds []Command) string {
	var p printer
	p.commands(cmds)
	return p.String()
}

// FormatWord renders a single word.
func FormatWord(w Word) string {
	var p printer
	p.word(w)
	return p.String()
}

type printer struct {
	strings.Builder
}

func (p *printer) commands(cmds []Command) {
	for i, cmd := range cmds {
		if i > 0 {
			p.WriteByte('\n')
		}
		p.command(cmd)
	}
}

func (p *printer) command(cmd Command) {
	switch cmd := cmd.(type) {
	case *List:
		p.andOr(cmd.AndOr)
	case *Job:
		p.andOr(cmd.AndOr)
		p.WriteString(" &")
	}
}

func (p *printer) andOr(list AndOrList) {
	p.listable(list.First)
	for _, link := range list.Rest {
		p.WriteByte(' ')
		p.WriteString(link.Op.String())
		p.WriteByte(' ')
		p.listable(link.Command)
	}
}

func (p *printer) listable(l Listable) {
	switch l := l.(type) {
	case *Single:
		p.pipeable(l.Command)
	case *Pipe:
		if l.Negate {
			p.WriteString("! ")
		}
		for i, stage := range l.Commands {
			if i > 0 {
				p.WriteString(" | ")
			}
			p.pipeable(stage)
		}
	}
}

func (p *printer) pipeable(cmd Pipeable) {
	switch cmd := cmd.(type) {
	case *Simple:
		sep := ""
		for _, assign := range cmd.Assigns {
			p.WriteString(sep)
			p.WriteString(assign.Name)
			p.WriteByte('=')
			if assign.Value != nil {
				p.word(assign.Value)
			}
			sep = " "
		}
		for _, w := range cmd.Words {
			p.WriteString(sep)
			p.word(w)
			sep = " "
		}
		for _, r := range cmd.Redirects {
			p.WriteString(sep)
			p.redirect(r)
			sep = " "
		}
	case *Compound:
		p.compound(cmd.Kind)
		for _, r := range cmd.IO {
			p.WriteByte(' ')
			p.redirect(r)
		}
	case *FunctionDef:
		p.WriteString(cmd.Name)
		p.WriteString("() ")
		p.pipeable(cmd.Body)
	}
}

func (p *printer) block(open string, cmds []Command, close string) {
	p.WriteString(open)
	p.WriteByte('\n')
	p.commands(cmds)
	p.WriteByte('\n')
	p.WriteString(close)
}

func (p *printer) compound(kind CompoundKind) {
	switch kind := kind.(type) {
	case *Subshell:
		p.block("(", kind.Commands, ")")
	case *Brace:
		p.block("{", kind.Commands, "}")
	case *While:
		p.block("while", kind.Guard, "do")
		p.block("", kind.Body, "done")
	case *Until:
		p.block("until", kind.Guard, "do")
		p.block("", kind.Body, "done")
	case *If:
		for i, cond := range kind.Conditionals {
			if i == 0 {
				p.block("if", cond.Guard, "then")
			} else {
				p.block("elif", cond.Guard, "then")
			}
			p.block("", cond.Body, "")
		}
		if kind.Else != nil {
			p.block("else", kind.Else, "")
		}
		p.WriteString("fi")
	case *For:
		p.WriteString("for ")
		p.WriteString(kind.Var)
		if kind.Words != nil {
			p.WriteString(" in")
			for _, w := range kind.Words {
				p.WriteByte(' ')
				p.word(w)
			}
		}
		p.WriteString("\ndo\n")
		p.commands(kind.Body)
		p.WriteString("\ndone")
	case *Case:
		p.WriteString("case ")
		p.word(kind.Word)
		p.WriteString(" in\n")
		for _, arm := range kind.Arms {
			for i, pattern := range arm.Patterns {
				if i > 0 {
					p.WriteByte('|')
				}
				p.word(pattern)
			}
			p.block(")", arm.Body, ";;\n")
		}
		p.WriteString("esac")
	}
}

func (p *printer) redirect(r Redirect) {
	if r.FD != nil {
		p.WriteString(strconv.Itoa(*r.FD))
	}
	p.WriteString(r.Op.String())
	if r.Target != nil {
		p.word(r.Target)
	}
}

func (p *printer) word(w Word) {
	switch w := w.(type) {
	case *Literal:
		if isBareword(w.Value) {
			p.WriteString(w.Value)
		} else {
			p.WriteString(singleQuote(w.Value))
		}
	case *Escaped:
		if w.Value == "\n" {
			p.WriteString(singleQuote(w.Value))
		} else {
			p.WriteByte('\\')
			p.WriteString(w.Value)
		}
	case *SingleQuoted:
		p.WriteString(singleQuote(w.Value))
	case *DoubleQuoted:
		p.WriteByte('"')
		for _, part := range w.Parts {
			if lit, ok := part.(*Literal); ok {
				p.WriteString(dquoteEscaper.Replace(lit.Value))
				continue
			}
			p.word(part)
		}
		p.WriteByte('"')
	case *Concat:
		for _, part := range w.Parts {
			p.word(part)
		}
	case *Param:
		p.WriteString("${")
		p.WriteString(w.Name)
		p.WriteByte('}')
	case *Subst:
		switch w.Kind {
		case ArithSubst:
			p.WriteString("$((")
			p.WriteString(w.Source)
			p.WriteString("))")
		case ProcessSubst:
			p.WriteString("<(")
			p.WriteString(w.Source)
			p.WriteByte(')')
		default:
			p.WriteString("$(")
			p.WriteString(w.Source)
			p.WriteByte(')')
		}
	case *Star:
		p.WriteByte('*')
	case *Question:
		p.WriteByte('?')
	case *SquareOpen:
		p.WriteByte('[')
	case *SquareClose:
		p.WriteByte(']')
	case *Tilde:
		p.WriteByte('~')
	case *Colon:
		p.WriteByte(':')
	}
}

var dquoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// isBareword reports whether s survives unquoted as a single literal word.
func isBareword(s string) bool {
	if s == "" || s == ":" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./,+%@^:", r):
		default:
			return false
		}
	}
	return true
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
