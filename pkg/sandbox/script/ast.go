package script

// Program is a parsed fragment.
type Program struct {
	Body   []Stmt
	Source string
}

// Node is any AST node.
type Node interface {
	Position() Pos
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

type base struct{ pos Pos }

func (b base) Position() Pos { return b.pos }

type (
	NumberLit struct {
		base
		Value float64
	}
	StringLit struct {
		base
		Value string
	}
	TemplateLit struct {
		base
		Quasis []string
		Exprs  []Expr
	}
	BoolLit struct {
		base
		Value bool
	}
	RegExpLit struct {
		base
		Pattern string
		Flags   string
	}
	NullLit      struct{ base }
	UndefinedLit struct{ base }
	Ident        struct {
		base
		Name string
	}
	ArrayLit struct {
		base
		Elems []Expr
	}
	ObjectLit struct {
		base
		Props []Property
	}
	// Spread wraps an element of an array literal, object literal or call
	// argument list written as ...expr.
	Spread struct {
		base
		Arg Expr
	}
	Member struct {
		base
		Object   Expr
		Name     string
		Computed Expr
		Optional bool
	}
	CallExpr struct {
		base
		Callee   Expr
		Args     []Expr
		Optional bool
	}
	New struct {
		base
		Callee Expr
		Args   []Expr
	}
	Unary struct {
		base
		Op string
		X  Expr
	}
	Update struct {
		base
		Op     string
		Prefix bool
		Target Expr
	}
	Binary struct {
		base
		Op   string
		L, R Expr
	}
	Logical struct {
		base
		Op   string
		L, R Expr
	}
	Conditional struct {
		base
		Test, Then, Else Expr
	}
	Assign struct {
		base
		Op     string
		Target Expr
		Value  Expr
	}
	FuncLit struct {
		base
		Name     string
		Params   []Param
		Body     *Block
		ExprBody Expr
		Arrow    bool
	}
)

// Property is one entry of an object literal. Spread entries set Spread and
// leave the key fields empty.
type Property struct {
	Key      string
	Computed Expr
	Value    Expr
	Spread   Expr
}

// Param is a function parameter, optionally destructured or defaulted.
type Param struct {
	Target  Pattern
	Default Expr
	Rest    bool
}

// Pattern is a binding target: a plain name, an object pattern or an array
// pattern.
type Pattern struct {
	Name   string
	Object []PatternProp
	Array  []*Pattern
	Rest   string
	pos    Pos
}

// PatternProp binds Key of the source object to Target.
type PatternProp struct {
	Key     string
	Target  Pattern
	Default Expr
}

func (NumberLit) exprNode()    {}
func (StringLit) exprNode()    {}
func (TemplateLit) exprNode()  {}
func (BoolLit) exprNode()      {}
func (RegExpLit) exprNode()    {}
func (NullLit) exprNode()      {}
func (UndefinedLit) exprNode() {}
func (Ident) exprNode()        {}
func (ArrayLit) exprNode()     {}
func (ObjectLit) exprNode()    {}
func (Spread) exprNode()       {}
func (Member) exprNode()       {}
func (CallExpr) exprNode()     {}
func (New) exprNode()          {}
func (Unary) exprNode()        {}
func (Update) exprNode()       {}
func (Binary) exprNode()       {}
func (Logical) exprNode()      {}
func (Conditional) exprNode()  {}
func (Assign) exprNode()       {}
func (FuncLit) exprNode()      {}

type (
	VarDecl struct {
		base
		Kind  string
		Decls []Declarator
	}
	ExprStmt struct {
		base
		X Expr
	}
	Return struct {
		base
		Value Expr
	}
	Throw struct {
		base
		Value Expr
	}
	If struct {
		base
		Test Expr
		Then Stmt
		Else Stmt
	}
	Block struct {
		base
		Body []Stmt
	}
	For struct {
		base
		Init   Stmt
		Test   Expr
		Update Expr
		Body   Stmt
	}
	// ForEach covers for..of (Of true) and for..in.
	ForEach struct {
		base
		Kind   string
		Target Pattern
		Of     bool
		Iter   Expr
		Body   Stmt
	}
	While struct {
		base
		Test Expr
		Body Stmt
	}
	Break    struct{ base }
	Continue struct{ base }
	Try      struct {
		base
		Block   *Block
		Param   *Pattern
		Catch   *Block
		Finally *Block
	}
	FuncDecl struct {
		base
		Func *FuncLit
	}
	Empty struct{ base }
)

// Declarator is one binding of a declaration.
type Declarator struct {
	Target Pattern
	Init   Expr
}

func (VarDecl) stmtNode()  {}
func (ExprStmt) stmtNode() {}
func (Return) stmtNode()   {}
func (Throw) stmtNode()    {}
func (If) stmtNode()       {}
func (Block) stmtNode()    {}
func (For) stmtNode()      {}
func (ForEach) stmtNode()  {}
func (While) stmtNode()    {}
func (Break) stmtNode()    {}
func (Continue) stmtNode() {}
func (Try) stmtNode()      {}
func (FuncDecl) stmtNode() {}
func (Empty) stmtNode()    {}
