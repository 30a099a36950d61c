package script

// Env is a lexical scope. Lookups walk the parent chain; nothing is shared
// with the host except what was explicitly defined.
type Env struct {
	parent   *Env
	vars     map[string]*binding
	function bool
}

type binding struct {
	value    Value
	constant bool
}

// NewEnv returns a scope nested in parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]*binding)}
}

// Define binds name in this scope, replacing any previous binding.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = &binding{value: v}
}

// DefineConst binds name as a constant.
func (e *Env) DefineConst(name string, v Value) {
	e.vars[name] = &binding{value: v, constant: true}
}

// Lookup resolves name through the scope chain.
func (e *Env) Lookup(name string) (Value, bool) {
	b := e.resolve(name)
	if b == nil {
		return nil, false
	}
	return b.value, true
}

func (e *Env) resolve(name string) *binding {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			return b
		}
	}
	return nil
}

func (e *Env) functionScope() *Env {
	for scope := e; scope != nil; scope = scope.parent {
		if scope.function {
			return scope
		}
	}
	return e
}
