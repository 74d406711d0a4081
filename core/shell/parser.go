// Package shell turns POSIX shell source into the command tree in core/ast.
package shell

// Defined by
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
// This package covers steps 2 and 3 of the shell's processing: breaking the
// input into tokens and parsing it into simple and compound commands.
// Expansion, redirection and execution are left to the engine, which decides
// which of the parsed constructs it supports.

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/josephlewis42/rush/core/ast"
	"mvdan.cc/sh/v3/syntax"
)

// Parse reads a whole shell program from r. The name is used in error
// messages.
func Parse(r io.Reader, name string) ([]ast.Command, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(r, name)
	if err != nil {
		return nil, err
	}
	return convertStmts(file.Stmts)
}

// ParseString parses a program held in a string.
func ParseString(src string) ([]ast.Command, error) {
	return Parse(strings.NewReader(src), "")
}

// IsIncomplete reports whether a Parse error could be fixed by reading more
// input, e.g. an unterminated quote or a trailing "&&".
func IsIncomplete(err error) bool {
	return syntax.IsIncomplete(err)
}

func syntaxErrorf(node syntax.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", node.Pos(), fmt.Sprintf(format, args...))
}

func convertStmts(stmts []*syntax.Stmt) ([]ast.Command, error) {
	cmds := make([]ast.Command, 0, len(stmts))
	for _, stmt := range stmts {
		if stmt.Coprocess {
			return nil, syntaxErrorf(stmt, "coprocesses are not supported")
		}

		list, err := andOrList(stmt)
		if err != nil {
			return nil, err
		}

		if stmt.Background {
			cmds = append(cmds, &ast.Job{AndOr: list})
		} else {
			cmds = append(cmds, &ast.List{AndOr: list})
		}
	}
	return cmds, nil
}

func isAndOr(stmt *syntax.Stmt) (*syntax.BinaryCmd, bool) {
	bin, ok := stmt.Cmd.(*syntax.BinaryCmd)
	if !ok || stmt.Negated || len(stmt.Redirs) > 0 {
		return nil, false
	}
	return bin, bin.Op == syntax.AndStmt || bin.Op == syntax.OrStmt
}

// andOrList flattens a tree of && and || statements in source order, which
// gives the same list regardless of how the tree associates.
func andOrList(stmt *syntax.Stmt) (ast.AndOrList, error) {
	bin, ok := isAndOr(stmt)
	if !ok {
		first, err := listable(stmt)
		return ast.AndOrList{First: first}, err
	}

	left, err := andOrList(bin.X)
	if err != nil {
		return left, err
	}
	right, err := andOrList(bin.Y)
	if err != nil {
		return left, err
	}

	op := ast.And
	if bin.Op == syntax.OrStmt {
		op = ast.Or
	}
	left.Rest = append(left.Rest, ast.AndOr{Op: op, Command: right.First})
	left.Rest = append(left.Rest, right.Rest...)
	return left, nil
}

func listable(stmt *syntax.Stmt) (ast.Listable, error) {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok {
		if bin.Op != syntax.Pipe {
			return nil, syntaxErrorf(stmt, "unsupported operator %q", bin.Op.String())
		}

		stages, err := pipeline(stmt)
		if err != nil {
			return nil, err
		}
		return &ast.Pipe{Negate: stmt.Negated, Commands: stages}, nil
	}

	cmd, err := pipeable(stmt)
	if err != nil {
		return nil, err
	}
	if stmt.Negated {
		return &ast.Pipe{Negate: true, Commands: []ast.Pipeable{cmd}}, nil
	}
	return &ast.Single{Command: cmd}, nil
}

func pipeline(stmt *syntax.Stmt) ([]ast.Pipeable, error) {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && bin.Op == syntax.Pipe && len(stmt.Redirs) == 0 {
		left, err := pipeline(bin.X)
		if err != nil {
			return nil, err
		}
		right, err := pipeline(bin.Y)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	}

	cmd, err := pipeable(stmt)
	if err != nil {
		return nil, err
	}
	return []ast.Pipeable{cmd}, nil
}

func pipeable(stmt *syntax.Stmt) (ast.Pipeable, error) {
	redirs, err := redirects(stmt.Redirs)
	if err != nil {
		return nil, err
	}

	switch cmd := stmt.Cmd.(type) {
	case nil:
		// Only redirects, e.g. "> file".
		return &ast.Simple{Redirects: redirs}, nil

	case *syntax.CallExpr:
		out := &ast.Simple{Redirects: redirs}
		for _, assign := range cmd.Assigns {
			converted, err := convertAssign(assign)
			if err != nil {
				return nil, err
			}
			out.Assigns = append(out.Assigns, converted)
		}
		out.Words, err = convertWords(cmd.Args)
		if err != nil {
			return nil, err
		}
		return out, nil

	case *syntax.Subshell:
		cmds, err := convertStmts(cmd.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Compound{Kind: &ast.Subshell{Commands: cmds}, IO: redirs}, nil

	case *syntax.Block:
		cmds, err := convertStmts(cmd.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Compound{Kind: &ast.Brace{Commands: cmds}, IO: redirs}, nil

	case *syntax.WhileClause:
		guardBody, err := convertGuardBody(cmd.Cond, cmd.Do)
		if err != nil {
			return nil, err
		}
		if cmd.Until {
			return &ast.Compound{Kind: &ast.Until{GuardBody: guardBody}, IO: redirs}, nil
		}
		return &ast.Compound{Kind: &ast.While{GuardBody: guardBody}, IO: redirs}, nil

	case *syntax.IfClause:
		kind, err := convertIf(cmd)
		if err != nil {
			return nil, err
		}
		return &ast.Compound{Kind: kind, IO: redirs}, nil

	case *syntax.ForClause:
		iter, ok := cmd.Loop.(*syntax.WordIter)
		if !ok || cmd.Select {
			return nil, syntaxErrorf(cmd, "only for-in loops are supported")
		}
		kind := &ast.For{Var: iter.Name.Value}
		if iter.InPos.IsValid() {
			kind.Words, err = convertWords(iter.Items)
			if err != nil {
				return nil, err
			}
			if kind.Words == nil {
				kind.Words = []ast.Word{}
			}
		}
		kind.Body, err = convertStmts(cmd.Do)
		if err != nil {
			return nil, err
		}
		return &ast.Compound{Kind: kind, IO: redirs}, nil

	case *syntax.CaseClause:
		kind := &ast.Case{}
		kind.Word, err = convertWord(cmd.Word)
		if err != nil {
			return nil, err
		}
		for _, item := range cmd.Items {
			var arm ast.CaseArm
			if arm.Patterns, err = convertWords(item.Patterns); err != nil {
				return nil, err
			}
			if arm.Body, err = convertStmts(item.Stmts); err != nil {
				return nil, err
			}
			kind.Arms = append(kind.Arms, arm)
		}
		return &ast.Compound{Kind: kind, IO: redirs}, nil

	case *syntax.FuncDecl:
		body, err := pipeable(cmd.Body)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDef{Name: cmd.Name.Value, Body: body}, nil

	default:
		return nil, syntaxErrorf(stmt, "unsupported command %T", cmd)
	}
}

func convertGuardBody(guard, body []*syntax.Stmt) (ast.GuardBody, error) {
	var out ast.GuardBody
	var err error
	if out.Guard, err = convertStmts(guard); err != nil {
		return out, err
	}
	out.Body, err = convertStmts(body)
	return out, err
}

func convertIf(clause *syntax.IfClause) (*ast.If, error) {
	out := &ast.If{}
	for c := clause; c != nil; c = c.Else {
		if len(c.Cond) == 0 {
			// A trailing "else" has no condition.
			body, err := convertStmts(c.Then)
			if err != nil {
				return nil, err
			}
			out.Else = body
			break
		}

		guardBody, err := convertGuardBody(c.Cond, c.Then)
		if err != nil {
			return nil, err
		}
		out.Conditionals = append(out.Conditionals, guardBody)
	}
	return out, nil
}

var redirectOps = map[syntax.RedirOperator]ast.RedirectOp{
	syntax.RdrIn:    ast.Read,
	syntax.RdrOut:   ast.Write,
	syntax.RdrInOut: ast.ReadWrite,
	syntax.AppOut:   ast.Append,
	syntax.ClbOut:   ast.Clobber,
	syntax.Hdoc:     ast.Heredoc,
	syntax.DashHdoc: ast.Heredoc,
	syntax.DplIn:    ast.DupRead,
	syntax.DplOut:   ast.DupWrite,
}

func redirects(redirs []*syntax.Redirect) ([]ast.Redirect, error) {
	var out []ast.Redirect
	for _, r := range redirs {
		op, ok := redirectOps[r.Op]
		if !ok {
			return nil, syntaxErrorf(r, "unsupported redirect %q", r.Op.String())
		}

		converted := ast.Redirect{Op: op}
		if r.N != nil {
			fd, err := strconv.Atoi(r.N.Value)
			if err != nil {
				return nil, syntaxErrorf(r, "bad file descriptor %q", r.N.Value)
			}
			converted.FD = &fd
		}

		if r.Word != nil {
			target, err := convertWord(r.Word)
			if err != nil {
				return nil, err
			}
			converted.Target = target
		}
		out = append(out, converted)
	}
	return out, nil
}

func convertAssign(assign *syntax.Assign) (ast.Assign, error) {
	if assign.Name == nil || assign.Array != nil || assign.Index != nil || assign.Append {
		return ast.Assign{}, syntaxErrorf(assign, "unsupported assignment")
	}

	out := ast.Assign{Name: assign.Name.Value, Value: ast.Lit("")}
	if assign.Value != nil {
		value, err := convertWord(assign.Value)
		if err != nil {
			return out, err
		}
		out.Value = value
	}
	return out, nil
}

func convertWords(words []*syntax.Word) ([]ast.Word, error) {
	var out []ast.Word
	for _, w := range words {
		converted, err := convertWord(w)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func convertWord(w *syntax.Word) (ast.Word, error) {
	if lit := w.Lit(); lit == ":" {
		return &ast.Colon{}, nil
	}

	var parts []ast.Word
	for i, part := range w.Parts {
		converted, err := convertWordPart(part, i == 0)
		if err != nil {
			return nil, err
		}
		parts = append(parts, converted...)
	}

	switch len(parts) {
	case 0:
		return ast.Lit(""), nil
	case 1:
		return parts[0], nil
	default:
		return &ast.Concat{Parts: parts}, nil
	}
}

func convertWordPart(part syntax.WordPart, first bool) ([]ast.Word, error) {
	switch part := part.(type) {
	case *syntax.Lit:
		return literalParts(part.Value, first), nil

	case *syntax.SglQuoted:
		if part.Dollar {
			return nil, syntaxErrorf(part, "unsupported $'...' string")
		}
		return []ast.Word{&ast.SingleQuoted{Value: part.Value}}, nil

	case *syntax.DblQuoted:
		out := &ast.DoubleQuoted{}
		for _, inner := range part.Parts {
			if lit, ok := inner.(*syntax.Lit); ok {
				out.Parts = append(out.Parts, ast.Lit(lit.Value))
				continue
			}
			converted, err := convertWordPart(inner, false)
			if err != nil {
				return nil, err
			}
			out.Parts = append(out.Parts, converted...)
		}
		return []ast.Word{out}, nil

	case *syntax.ParamExp:
		name := ""
		if part.Param != nil {
			name = part.Param.Value
		}
		return []ast.Word{&ast.Param{Name: name}}, nil

	case *syntax.CmdSubst:
		return []ast.Word{&ast.Subst{Kind: ast.CommandSubst, Source: innerSource(part)}}, nil

	case *syntax.ArithmExp:
		return []ast.Word{&ast.Subst{Kind: ast.ArithSubst, Source: innerSource(part)}}, nil

	case *syntax.ProcSubst:
		return []ast.Word{&ast.Subst{Kind: ast.ProcessSubst, Source: innerSource(part)}}, nil

	case *syntax.ExtGlob:
		return []ast.Word{&ast.Star{}}, nil

	default:
		return nil, syntaxErrorf(part, "unsupported word part %T", part)
	}
}

// literalParts splits unquoted text into plain runs, escapes and the
// characters that would trigger expansion.
func literalParts(value string, first bool) []ast.Word {
	var parts []ast.Word
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, ast.Lit(text.String()))
			text.Reset()
		}
	}
	add := func(w ast.Word) {
		flush()
		parts = append(parts, w)
	}

	runes := []rune(value)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\\' && i+1 < len(runes):
			i++
			if runes[i] == '\n' {
				continue // line continuation
			}
			add(&ast.Escaped{Value: string(runes[i])})
		case r == '*':
			add(&ast.Star{})
		case r == '?':
			add(&ast.Question{})
		case r == '[':
			add(&ast.SquareOpen{})
		case r == ']':
			add(&ast.SquareClose{})
		case r == '~' && i == 0 && first:
			add(&ast.Tilde{})
		default:
			text.WriteRune(r)
		}
	}
	flush()
	return parts
}

// innerSource prints a substitution and strips its delimiters.
func innerSource(part syntax.WordPart) string {
	var buf bytes.Buffer
	if err := syntax.NewPrinter().Print(&buf, part); err != nil {
		return ""
	}
	src := buf.String()
	for _, delims := range [][2]string{{"$((", "))"}, {"$(", ")"}, {"`", "`"}, {"<(", ")"}, {">(", ")"}} {
		if strings.HasPrefix(src, delims[0]) && strings.HasSuffix(src, delims[1]) {
			return strings.TrimSpace(src[len(delims[0]) : len(src)-len(delims[1])])
		}
	}
	return src
}
