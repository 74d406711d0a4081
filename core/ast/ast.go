// Package ast holds the command tree the engine executes.
//
// Every node family is a closed set: the marker methods are unexported so
// only the types in this package can satisfy the interfaces, and consumers
// can switch over them exhaustively.
package ast

// Command is a top level command: either a List or a Job.
type Command interface {
	command()
}

// List is a foreground top level command.
type List struct {
	AndOr AndOrList
}

// Job is a top level command that was terminated with '&'.
type Job struct {
	AndOr AndOrList
}

func (*List) command() {}
func (*Job) command()  {}

// Operator joins two listables in an AND-OR list.
type Operator int

const (
	// And runs the next command only if the previous one succeeded.
	And Operator = iota
	// Or runs the next command only if the previous one failed.
	Or
)

func (o Operator) String() string {
	switch o {
	case And:
		return "&&"
	case Or:
		return "||"
	default:
		return "?"
	}
}

// AndOrList is a chain of listables joined with && and ||.
type AndOrList struct {
	First Listable
	Rest  []AndOr
}

// AndOr is one (operator, command) link of an AndOrList.
type AndOr struct {
	Op      Operator
	Command Listable
}

// Listable is either a Pipe or a Single.
type Listable interface {
	listable()
}

// Pipe is a pipeline; Negate inverts the status of the last stage.
type Pipe struct {
	Negate   bool
	Commands []Pipeable
}

// Single is a command that is not part of a pipeline.
type Single struct {
	Command Pipeable
}

func (*Pipe) listable()   {}
func (*Single) listable() {}

// Pipeable is a Simple, Compound or FunctionDef command.
type Pipeable interface {
	pipeable()
}

// Simple is a command name with arguments, prefix assignments and redirects.
type Simple struct {
	Assigns   []Assign
	Words     []Word
	Redirects []Redirect
}

// Assign is a NAME=value prefix on a simple command.
type Assign struct {
	Name  string
	Value Word
}

// Compound is a compound command along with the redirects applied to it.
type Compound struct {
	Kind CompoundKind
	IO   []Redirect
}

// FunctionDef is a function declaration.
type FunctionDef struct {
	Name string
	Body Pipeable
}

func (*Simple) pipeable()      {}
func (*Compound) pipeable()    {}
func (*FunctionDef) pipeable() {}

// CompoundKind is the body of a Compound command.
type CompoundKind interface {
	compoundKind()
}

// Subshell is a parenthesized command sequence.
type Subshell struct {
	Commands []Command
}

// Brace is a { ...; } command group.
type Brace struct {
	Commands []Command
}

// While is a while loop.
type While struct {
	GuardBody
}

// Until is an until loop.
type Until struct {
	GuardBody
}

// If is an if/elif/else chain.
type If struct {
	Conditionals []GuardBody
	Else         []Command
}

// For is a for loop over Words; Words is nil when the loop has no "in" list.
type For struct {
	Var   string
	Words []Word
	Body  []Command
}

// Case is a case statement.
type Case struct {
	Word Word
	Arms []CaseArm
}

// GuardBody pairs a condition with the commands it guards.
type GuardBody struct {
	Guard []Command
	Body  []Command
}

// CaseArm is one pattern list and body of a Case.
type CaseArm struct {
	Patterns []Word
	Body     []Command
}

func (*Subshell) compoundKind() {}
func (*Brace) compoundKind()    {}
func (*While) compoundKind()    {}
func (*Until) compoundKind()    {}
func (*If) compoundKind()       {}
func (*For) compoundKind()      {}
func (*Case) compoundKind()     {}

// RedirectOp is the direction of a redirect.
type RedirectOp int

const (
	Read      RedirectOp = iota // <
	Write                       // >
	ReadWrite                   // <>
	Append                      // >>
	Clobber                     // >|
	Heredoc                     // <<
	DupRead                     // <&
	DupWrite                    // >&
)

var redirectOps = map[RedirectOp]string{
	Read:      "<",
	Write:     ">",
	ReadWrite: "<>",
	Append:    ">>",
	Clobber:   ">|",
	Heredoc:   "<<",
	DupRead:   "<&",
	DupWrite:  ">&",
}

func (op RedirectOp) String() string {
	if s, ok := redirectOps[op]; ok {
		return s
	}
	return "?"
}

// Redirect binds a file descriptor to a target.
type Redirect struct {
	Op RedirectOp
	// FD is the source descriptor, nil when the redirect didn't name one.
	FD     *int
	Target Word
}

// FD is a helper to build a Redirect.FD.
func FD(n int) *int {
	return &n
}
