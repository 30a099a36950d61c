package script

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Limits bounds a single Run. Zero fields take the DefaultLimits value; a
// negative MaxSteps or MaxAllocBytes disables that budget.
//
// MaxAllocBytes caps the bytes charged for every string and array slot the
// program creates over the whole run. Charges are never refunded.
type Limits struct {
	MaxSteps      int
	MaxDepth      int
	MaxStringLen  int
	MaxArrayLen   int
	MaxAllocBytes int
}

// DefaultLimits are applied to zero-valued Limits fields.
var DefaultLimits = Limits{
	MaxSteps:      1_000_000,
	MaxDepth:      64,
	MaxStringLen:  1 << 20,
	MaxArrayLen:   1 << 16,
	MaxAllocBytes: 256 << 20,
}

// SlotSize is the allocation charge for one array element or object key.
const SlotSize = 16

func (l Limits) withDefaults() Limits {
	if l.MaxSteps == 0 {
		l.MaxSteps = DefaultLimits.MaxSteps
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultLimits.MaxDepth
	}
	if l.MaxStringLen <= 0 {
		l.MaxStringLen = DefaultLimits.MaxStringLen
	}
	if l.MaxArrayLen <= 0 {
		l.MaxArrayLen = DefaultLimits.MaxArrayLen
	}
	if l.MaxAllocBytes == 0 {
		l.MaxAllocBytes = DefaultLimits.MaxAllocBytes
	}
	return l
}

// Exception is an uncaught value thrown by the program, either explicitly
// with throw or by the interpreter on a runtime error.
type Exception struct {
	Value Value
	Pos   Pos
	// Runtime is set when the interpreter raised the error itself (for
	// example a TypeError), as opposed to a throw statement.
	Runtime bool
}

func (e *Exception) Error() string {
	return e.Message()
}

// Message renders the thrown value: "Name: message" for error objects,
// strings verbatim, other values as JSON.
func (e *Exception) Message() string {
	switch v := e.Value.(type) {
	case string:
		return v
	case *Object:
		if msg, ok := errorText(v); ok {
			return msg
		}
		if s, err := Stringify(v, ""); err == nil {
			return s
		}
	}
	return ToString(e.Value)
}

// LimitError reports that a Run exceeded one of its Limits.
type LimitError struct {
	Limit string
	Pos   Pos
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s exceeded at %s", e.Limit, e.Pos)
}

// ErrCanceled wraps context errors raised at a cancellation point.
var ErrCanceled = errors.New("script: execution canceled")

type canceled struct{ err error }

// TypeError returns an exception carrying a TypeError object.
func TypeError(format string, args ...any) error {
	return &Exception{Value: NewError("TypeError", fmt.Sprintf(format, args...)), Runtime: true}
}

// RangeError returns an exception carrying a RangeError object.
func RangeError(format string, args ...any) error {
	return &Exception{Value: NewError("RangeError", fmt.Sprintf(format, args...)), Runtime: true}
}

// Call is passed to native functions.
type Call struct {
	This Value
	Args []Value
	Pos  Pos
	in   *interp
}

// Arg returns argument i or undefined.
func (c *Call) Arg(i int) Value {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return nil
}

// Context returns the context of the running program.
func (c *Call) Context() context.Context { return c.in.ctx }

// Invoke calls fn (a script or native function) with args. Exceptions raised
// by fn are returned as *Exception errors; limit and cancellation failures
// keep unwinding the program.
func (c *Call) Invoke(fn Value, args ...Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			exc, ok := r.(*Exception)
			if !ok {
				panic(r)
			}
			result, err = nil, exc
		}
	}()
	return c.in.call(fn, nil, args, c.Pos, "callback"), nil
}

// CheckString enforces the string length limit for natives producing text
// and charges n bytes against the allocation budget.
func (c *Call) CheckString(n int) error {
	if n > c.in.limits.MaxStringLen {
		return RangeError("Invalid string length")
	}
	c.in.charge(n, c.Pos)
	return nil
}

// CheckArray enforces the array length limit for natives producing an array
// of n elements, added of which are new slots charged against the allocation
// budget.
func (c *Call) CheckArray(n, added int) error {
	if n > c.in.limits.MaxArrayLen {
		return RangeError("Invalid array length")
	}
	c.in.charge(added*SlotSize, c.Pos)
	return nil
}

// Charge adds n bytes to the allocation budget for natives building values
// other than strings and arrays. Exhausting it ends the run.
func (c *Call) Charge(n int) {
	c.in.charge(n, c.Pos)
}

// Text returns s after applying CheckString to it.
func (c *Call) Text(s string) (Value, error) {
	if err := c.CheckString(len(s)); err != nil {
		return nil, err
	}
	return s, nil
}

type interp struct {
	ctx       context.Context
	limits    Limits
	steps     int
	depth     int
	allocated int
}

type completion int

const (
	normal completion = iota
	returned
	broke
	continued
)

// Run evaluates prog with globals as the outermost scope. The program body
// behaves like a function body: a top-level return ends the run with that
// value. Uncaught throws surface as *Exception, exceeded bounds as
// *LimitError and cancellation as an error wrapping ErrCanceled and the
// context error.
func Run(ctx context.Context, prog *Program, globals *Env, limits Limits) (result Value, err error) {
	if prog == nil {
		return nil, errors.New("script: nil program")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if globals == nil {
		globals = NewEnv(nil)
	}
	in := &interp{ctx: ctx, limits: limits.withDefaults()}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			switch x := r.(type) {
			case *Exception:
				err = x
			case *LimitError:
				err = x
			case canceled:
				err = fmt.Errorf("%w: %w", ErrCanceled, x.err)
			default:
				err = fmt.Errorf("script: internal error: %v", r)
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	scope := NewEnv(globals)
	scope.function = true
	c, v := in.execStmts(prog.Body, scope)
	if c == returned {
		return v, nil
	}
	return nil, nil
}

func (in *interp) throw(pos Pos, name, format string, args ...any) {
	panic(&Exception{Value: NewError(name, fmt.Sprintf(format, args...)), Pos: pos, Runtime: true})
}

func (in *interp) raise(err error, pos Pos) {
	var exc *Exception
	if errors.As(err, &exc) {
		if exc.Pos == (Pos{}) {
			exc.Pos = pos
		}
		panic(exc)
	}
	in.throw(pos, "Error", "%s", err.Error())
}

// step is the cooperative cancellation point.
func (in *interp) step(pos Pos) {
	in.steps++
	if in.limits.MaxSteps > 0 && in.steps > in.limits.MaxSteps {
		panic(&LimitError{Limit: fmt.Sprintf("step budget of %d", in.limits.MaxSteps), Pos: pos})
	}
	if in.steps&255 == 0 {
		if err := in.ctx.Err(); err != nil {
			panic(canceled{err: err})
		}
	}
}

func (in *interp) checkString(n int, pos Pos) {
	if n > in.limits.MaxStringLen {
		in.throw(pos, "RangeError", "Invalid string length")
	}
	in.charge(n, pos)
}

func (in *interp) checkArray(n, added int, pos Pos) {
	if n > in.limits.MaxArrayLen {
		in.throw(pos, "RangeError", "Invalid array length")
	}
	in.charge(added*SlotSize, pos)
}

// charge adds n bytes to the run's allocation total. Exhausting the budget
// unwinds the whole program like the step budget does.
func (in *interp) charge(n int, pos Pos) {
	if n <= 0 || in.limits.MaxAllocBytes < 0 {
		return
	}
	in.allocated += n
	if in.allocated > in.limits.MaxAllocBytes {
		panic(&LimitError{Limit: fmt.Sprintf("allocation budget of %d bytes", in.limits.MaxAllocBytes), Pos: pos})
	}
}

// statements

func (in *interp) hoist(stmts []Stmt, env *Env) {
	for _, s := range stmts {
		if fd, ok := s.(*FuncDecl); ok {
			env.Define(fd.Func.Name, &Function{decl: fd.Func, env: env})
		}
	}
}

func (in *interp) execStmts(stmts []Stmt, env *Env) (completion, Value) {
	in.hoist(stmts, env)
	for _, s := range stmts {
		if c, v := in.exec(s, env); c != normal {
			return c, v
		}
	}
	return normal, nil
}

func (in *interp) exec(s Stmt, env *Env) (completion, Value) {
	in.step(s.Position())

	switch st := s.(type) {
	case *VarDecl:
		for _, d := range st.Decls {
			var v Value
			if d.Init != nil {
				v = in.eval(d.Init, env)
				if fn, ok := v.(*Function); ok && fn.decl.Name == "" && d.Target.Name != "" {
					named := *fn.decl
					named.Name = d.Target.Name
					v = &Function{decl: &named, env: fn.env}
				}
			}
			in.bind(d.Target, v, env, st.Kind)
		}
	case *ExprStmt:
		in.eval(st.X, env)
	case *Return:
		if st.Value == nil {
			return returned, nil
		}
		return returned, in.eval(st.Value, env)
	case *Throw:
		panic(&Exception{Value: in.eval(st.Value, env), Pos: st.pos})
	case *If:
		if Truthy(in.eval(st.Test, env)) {
			return in.exec(st.Then, env)
		}
		if st.Else != nil {
			return in.exec(st.Else, env)
		}
	case *Block:
		return in.execStmts(st.Body, NewEnv(env))
	case *For:
		return in.execFor(st, env)
	case *ForEach:
		return in.execForEach(st, env)
	case *While:
		for {
			in.step(st.pos)
			if !Truthy(in.eval(st.Test, env)) {
				break
			}
			c, v := in.exec(st.Body, env)
			if c == broke {
				break
			}
			if c == returned {
				return c, v
			}
		}
	case *Break:
		return broke, nil
	case *Continue:
		return continued, nil
	case *Try:
		return in.execTry(st, env)
	case *FuncDecl, *Empty:
	default:
		in.throw(s.Position(), "SyntaxError", "unsupported statement %T", s)
	}
	return normal, nil
}

func (in *interp) execFor(st *For, env *Env) (completion, Value) {
	loopEnv := NewEnv(env)
	if st.Init != nil {
		in.exec(st.Init, loopEnv)
	}
	for {
		in.step(st.pos)
		if st.Test != nil && !Truthy(in.eval(st.Test, loopEnv)) {
			return normal, nil
		}
		c, v := in.exec(st.Body, loopEnv)
		switch c {
		case broke:
			return normal, nil
		case returned:
			return c, v
		}
		if st.Update != nil {
			in.eval(st.Update, loopEnv)
		}
	}
}

func (in *interp) execForEach(st *ForEach, env *Env) (completion, Value) {
	iter := in.eval(st.Iter, env)

	var items []Value
	if st.Of {
		switch x := iter.(type) {
		case *Array:
			items = append(items, x.Elems...)
		case string:
			for _, r := range x {
				items = append(items, string(r))
			}
		default:
			in.throw(st.pos, "TypeError", "%s is not iterable", describeValue(iter))
		}
	} else {
		switch x := iter.(type) {
		case *Object:
			for _, k := range x.keys {
				items = append(items, k)
			}
		case *Array:
			for i := range x.Elems {
				items = append(items, strconv.Itoa(i))
			}
		case string:
			for i := range []rune(x) {
				items = append(items, strconv.Itoa(i))
			}
		case nil, nullValue:
		default:
			// numbers, booleans, functions: no enumerable keys
		}
	}

	for _, item := range items {
		in.step(st.pos)
		iterEnv := NewEnv(env)
		in.bind(st.Target, item, iterEnv, st.Kind)
		c, v := in.exec(st.Body, iterEnv)
		switch c {
		case broke:
			return normal, nil
		case returned:
			return c, v
		}
	}
	return normal, nil
}

func (in *interp) execTry(st *Try, env *Env) (completion, Value) {
	c, v, exc := in.tryBlock(st.Block, NewEnv(env))
	if exc != nil && st.Catch != nil {
		catchEnv := NewEnv(env)
		if st.Param != nil {
			in.bind(*st.Param, exc.Value, catchEnv, "let")
		}
		c, v, exc = in.tryBlock(st.Catch, catchEnv)
	}
	if st.Finally != nil {
		if fc, fv := in.execStmts(st.Finally.Body, NewEnv(env)); fc != normal {
			return fc, fv
		}
	}
	if exc != nil {
		panic(exc)
	}
	return c, v
}

func (in *interp) tryBlock(b *Block, env *Env) (c completion, v Value, exc *Exception) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Exception)
			if !ok {
				panic(r)
			}
			c, v, exc = normal, nil, e
		}
	}()
	c, v = in.execStmts(b.Body, env)
	return c, v, nil
}

// bind declares the names of a pattern. kind is "let", "const" or "var".
func (in *interp) bind(p Pattern, v Value, env *Env, kind string) {
	switch {
	case p.Name != "":
		in.declare(env, p.Name, v, kind, p.pos)
	case p.Object != nil:
		if IsNullish(v) {
			in.throw(p.pos, "TypeError", "Cannot destructure '%s' as it is %s.", ToString(v), ToString(v))
		}
		used := make(map[string]bool, len(p.Object))
		for _, prop := range p.Object {
			used[prop.Key] = true
			pv := in.getMember(v, prop.Key, p.pos)
			if pv == nil && prop.Default != nil {
				pv = in.eval(prop.Default, env)
			}
			in.bind(prop.Target, pv, env, kind)
		}
		if p.Rest != "" {
			rest := NewObject()
			if obj, ok := v.(*Object); ok {
				for _, k := range obj.keys {
					if !used[k] {
						rest.Set(k, obj.props[k])
					}
				}
			}
			in.declare(env, p.Rest, rest, kind, p.pos)
		}
	case p.Array != nil:
		var elems []Value
		switch x := v.(type) {
		case *Array:
			elems = x.Elems
		case string:
			for _, r := range x {
				elems = append(elems, string(r))
			}
		default:
			in.throw(p.pos, "TypeError", "%s is not iterable", describeValue(v))
		}
		for i, target := range p.Array {
			if target == nil {
				continue
			}
			var item Value
			if i < len(elems) {
				item = elems[i]
			}
			in.bind(*target, item, env, kind)
		}
		if p.Rest != "" {
			var rest []Value
			if len(p.Array) < len(elems) {
				rest = append(rest, elems[len(p.Array):]...)
			}
			in.charge(len(rest)*SlotSize, p.pos)
			in.declare(env, p.Rest, NewArray(rest...), kind, p.pos)
		}
	}
}

func (in *interp) declare(env *Env, name string, v Value, kind string, pos Pos) {
	switch kind {
	case "var":
		env.functionScope().Define(name, v)
	case "const":
		if _, exists := env.vars[name]; exists {
			in.throw(pos, "SyntaxError", "Identifier '%s' has already been declared", name)
		}
		env.DefineConst(name, v)
	default:
		if _, exists := env.vars[name]; exists {
			in.throw(pos, "SyntaxError", "Identifier '%s' has already been declared", name)
		}
		env.Define(name, v)
	}
}

// expressions

func (in *interp) eval(e Expr, env *Env) Value {
	switch x := e.(type) {
	case *NumberLit:
		return x.Value
	case *StringLit:
		return x.Value
	case *BoolLit:
		return x.Value
	case *NullLit:
		return Null
	case *RegExpLit:
		re, err := NewRegExp(x.Pattern, x.Flags)
		if err != nil {
			in.throw(x.pos, "SyntaxError", "%s", err.Error())
		}
		return re
	case *UndefinedLit:
		return nil
	case *TemplateLit:
		var sb strings.Builder
		for i, q := range x.Quasis {
			sb.WriteString(q)
			if i < len(x.Exprs) {
				sb.WriteString(ToString(in.eval(x.Exprs[i], env)))
			}
			if sb.Len() > in.limits.MaxStringLen {
				in.throw(x.pos, "RangeError", "Invalid string length")
			}
		}
		in.checkString(sb.Len(), x.pos)
		return sb.String()
	case *Ident:
		b := env.resolve(x.Name)
		if b == nil {
			in.throw(x.pos, "ReferenceError", "%s is not defined", x.Name)
		}
		return b.value
	case *ArrayLit:
		out := make([]Value, 0, len(x.Elems))
		for _, el := range x.Elems {
			if sp, ok := el.(*Spread); ok {
				out = append(out, in.spreadItems(in.eval(sp.Arg, env), sp.pos)...)
			} else {
				out = append(out, in.eval(el, env))
			}
			in.checkArray(len(out), 0, x.pos)
		}
		in.checkArray(len(out), len(out), x.pos)
		return NewArray(out...)
	case *ObjectLit:
		return in.objectLiteral(x, env)
	case *FuncLit:
		if x.Name == "" || x.Arrow {
			return &Function{decl: x, env: env}
		}
		// A named function expression sees its own name.
		scope := NewEnv(env)
		fn := &Function{decl: x, env: scope}
		scope.DefineConst(x.Name, fn)
		return fn
	case *Member, *CallExpr:
		v, _ := in.chain(e, env)
		return v
	case *New:
		return in.construct(x, env)
	case *Unary:
		return in.unary(x, env)
	case *Update:
		return in.update(x, env)
	case *Binary:
		return in.binary(x.Op, in.eval(x.L, env), in.eval(x.R, env), x.pos)
	case *Logical:
		left := in.eval(x.L, env)
		switch x.Op {
		case "&&":
			if !Truthy(left) {
				return left
			}
		case "||":
			if Truthy(left) {
				return left
			}
		case "??":
			if !IsNullish(left) {
				return left
			}
		}
		return in.eval(x.R, env)
	case *Conditional:
		if Truthy(in.eval(x.Test, env)) {
			return in.eval(x.Then, env)
		}
		return in.eval(x.Else, env)
	case *Assign:
		return in.assign(x, env)
	case *Spread:
		in.throw(x.pos, "SyntaxError", "unexpected spread")
	}
	in.throw(e.Position(), "SyntaxError", "unsupported expression %T", e)
	return nil
}

func (in *interp) spreadItems(v Value, pos Pos) []Value {
	switch x := v.(type) {
	case *Array:
		return x.Elems
	case string:
		var out []Value
		for _, r := range x {
			out = append(out, string(r))
		}
		in.charge(len(out)*SlotSize, pos)
		return out
	}
	in.throw(pos, "TypeError", "%s is not iterable", describeValue(v))
	return nil
}

func (in *interp) objectLiteral(x *ObjectLit, env *Env) Value {
	obj := NewObject()
	for _, prop := range x.Props {
		switch {
		case prop.Spread != nil:
			switch src := in.eval(prop.Spread, env).(type) {
			case *Object:
				in.charge(len(src.keys)*SlotSize, x.pos)
				for _, k := range src.keys {
					obj.Set(k, src.props[k])
				}
			case *Array:
				in.charge(len(src.Elems)*SlotSize, x.pos)
				for i, e := range src.Elems {
					obj.Set(strconv.Itoa(i), e)
				}
			case string:
				in.charge(len(src)*SlotSize, x.pos)
				for i, r := range []rune(src) {
					obj.Set(strconv.Itoa(i), string(r))
				}
			}
		case prop.Computed != nil:
			key := ToString(in.eval(prop.Computed, env))
			obj.Set(key, in.eval(prop.Value, env))
		default:
			obj.Set(prop.Key, in.eval(prop.Value, env))
		}
	}
	return obj
}

// chain evaluates member and call expressions. short reports that an
// optional link met a nullish value, which ends the whole chain with
// undefined.
func (in *interp) chain(e Expr, env *Env) (Value, bool) {
	switch x := e.(type) {
	case *Member:
		obj, short := in.chain(x.Object, env)
		if short || (x.Optional && IsNullish(obj)) {
			return nil, true
		}
		return in.getMember(obj, in.memberKey(x, env), x.pos), false
	case *CallExpr:
		var fn, this Value
		if m, ok := x.Callee.(*Member); ok {
			obj, short := in.chain(m.Object, env)
			if short || (m.Optional && IsNullish(obj)) {
				return nil, true
			}
			fn = in.getMember(obj, in.memberKey(m, env), m.pos)
			this = obj
		} else {
			var short bool
			fn, short = in.chain(x.Callee, env)
			if short {
				return nil, true
			}
		}
		if x.Optional && IsNullish(fn) {
			return nil, true
		}
		args := in.evalArgs(x.Args, env)
		return in.call(fn, this, args, x.pos, exprText(x.Callee)), false
	}
	return in.eval(e, env), false
}

func (in *interp) memberKey(m *Member, env *Env) string {
	if m.Computed != nil {
		return ToString(in.eval(m.Computed, env))
	}
	return m.Name
}

func (in *interp) evalArgs(args []Expr, env *Env) []Value {
	out := make([]Value, 0, len(args))
	for _, a := range args {
		if sp, ok := a.(*Spread); ok {
			out = append(out, in.spreadItems(in.eval(sp.Arg, env), sp.pos)...)
			continue
		}
		out = append(out, in.eval(a, env))
	}
	return out
}

func (in *interp) call(fn, this Value, args []Value, pos Pos, desc string) Value {
	switch f := fn.(type) {
	case *NativeFunc:
		if f.Fn == nil {
			in.throw(pos, "TypeError", "%s is not a function", desc)
		}
		in.depth++
		defer func() { in.depth-- }()
		if in.depth > in.limits.MaxDepth {
			in.throw(pos, "RangeError", "Maximum call stack size exceeded")
		}
		v, err := f.Fn(&Call{This: this, Args: args, Pos: pos, in: in})
		if err != nil {
			in.raise(err, pos)
		}
		return v
	case *Function:
		return in.callFunction(f, args, pos)
	}
	in.throw(pos, "TypeError", "%s is not a function", desc)
	return nil
}

func (in *interp) callFunction(f *Function, args []Value, pos Pos) Value {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.limits.MaxDepth {
		in.throw(pos, "RangeError", "Maximum call stack size exceeded")
	}
	in.step(pos)

	scope := NewEnv(f.env)
	scope.function = true
	for i, param := range f.decl.Params {
		if param.Rest {
			var rest []Value
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			in.charge(len(rest)*SlotSize, pos)
			in.bind(param.Target, NewArray(rest...), scope, "let")
			break
		}
		var v Value
		if i < len(args) {
			v = args[i]
		}
		if v == nil && param.Default != nil {
			v = in.eval(param.Default, scope)
		}
		in.bind(param.Target, v, scope, "let")
	}

	if f.decl.ExprBody != nil {
		return in.eval(f.decl.ExprBody, scope)
	}
	if c, v := in.execStmts(f.decl.Body.Body, scope); c == returned {
		return v
	}
	return nil
}

func (in *interp) construct(x *New, env *Env) Value {
	callee := in.eval(x.Callee, env)
	args := in.evalArgs(x.Args, env)
	f, ok := callee.(*NativeFunc)
	if !ok || f.Construct == nil {
		in.throw(x.pos, "TypeError", "%s is not a constructor", exprText(x.Callee))
	}
	v, err := f.Construct(&Call{Args: args, Pos: x.pos, in: in})
	if err != nil {
		in.raise(err, x.pos)
	}
	return v
}

func (in *interp) unary(x *Unary, env *Env) Value {
	switch x.Op {
	case "typeof":
		if id, ok := x.X.(*Ident); ok && env.resolve(id.Name) == nil {
			return "undefined"
		}
		return TypeOf(in.eval(x.X, env))
	case "delete":
		m, ok := x.X.(*Member)
		if !ok {
			return true
		}
		obj := in.eval(m.Object, env)
		key := in.memberKey(m, env)
		switch o := obj.(type) {
		case *Object:
			if o.frozen {
				in.throw(x.pos, "TypeError", "Cannot delete property '%s' of a frozen object", key)
			}
			o.Delete(key)
		case nil, nullValue:
			in.throw(x.pos, "TypeError", "Cannot convert undefined or null to object")
		}
		return true
	}

	v := in.eval(x.X, env)
	switch x.Op {
	case "!":
		return !Truthy(v)
	case "-":
		return -ToNumber(v)
	case "+":
		return ToNumber(v)
	}
	in.throw(x.pos, "SyntaxError", "unknown operator %s", x.Op)
	return nil
}

func (in *interp) update(x *Update, env *Env) Value {
	old := ToNumber(in.eval(x.Target, env))
	next := old + 1
	if x.Op == "--" {
		next = old - 1
	}
	in.store(x.Target, next, env, x.pos)
	if x.Prefix {
		return next
	}
	return old
}

func (in *interp) assign(x *Assign, env *Env) Value {
	var v Value
	switch x.Op {
	case "=":
		v = in.eval(x.Value, env)
		if fn, ok := v.(*Function); ok && fn.decl.Name == "" {
			if id, ok := x.Target.(*Ident); ok {
				named := *fn.decl
				named.Name = id.Name
				v = &Function{decl: &named, env: fn.env}
			}
		}
	case "??=":
		current := in.eval(x.Target, env)
		if !IsNullish(current) {
			return current
		}
		v = in.eval(x.Value, env)
	default:
		current := in.eval(x.Target, env)
		v = in.binary(strings.TrimSuffix(x.Op, "="), current, in.eval(x.Value, env), x.pos)
	}
	in.store(x.Target, v, env, x.pos)
	return v
}

func (in *interp) store(target Expr, v Value, env *Env, pos Pos) {
	switch t := target.(type) {
	case *Ident:
		b := env.resolve(t.Name)
		if b == nil {
			in.throw(t.pos, "ReferenceError", "%s is not defined", t.Name)
		}
		if b.constant {
			in.throw(t.pos, "TypeError", "Assignment to constant variable.")
		}
		b.value = v
	case *Member:
		obj := in.eval(t.Object, env)
		in.setMember(obj, in.memberKey(t, env), v, t.pos)
	default:
		in.throw(pos, "SyntaxError", "Invalid left-hand side in assignment")
	}
}

func isNumericPrimitive(v Value) bool {
	switch v.(type) {
	case nil, nullValue, bool, float64:
		return true
	}
	return false
}

func (in *interp) binary(op string, l, r Value, pos Pos) Value {
	switch op {
	case "+":
		if isNumericPrimitive(l) && isNumericPrimitive(r) {
			return ToNumber(l) + ToNumber(r)
		}
		ls, rs := ToString(l), ToString(r)
		in.checkString(len(ls)+len(rs), pos)
		return ls + rs
	case "-":
		return ToNumber(l) - ToNumber(r)
	case "*":
		return ToNumber(l) * ToNumber(r)
	case "/":
		return ToNumber(l) / ToNumber(r)
	case "%":
		return math.Mod(ToNumber(l), ToNumber(r))
	case "**":
		return math.Pow(ToNumber(l), ToNumber(r))
	case "===":
		return StrictEquals(l, r)
	case "!==":
		return !StrictEquals(l, r)
	case "==":
		return LooseEquals(l, r)
	case "!=":
		return !LooseEquals(l, r)
	case "<", ">", "<=", ">=":
		return compare(op, l, r)
	case "in":
		key := ToString(l)
		switch o := r.(type) {
		case *Object:
			_, ok := o.props[key]
			return ok
		case *Array:
			if key == "length" {
				return true
			}
			idx, ok := arrayIndex(key)
			return ok && idx < len(o.Elems)
		}
		in.throw(pos, "TypeError", "Cannot use 'in' operator to search for '%s' in %s", key, describeValue(r))
	}
	in.throw(pos, "SyntaxError", "unknown operator %s", op)
	return nil
}

func compare(op string, l, r Value) bool {
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		switch op {
		case "<":
			return ls < rs
		case ">":
			return ls > rs
		case "<=":
			return ls <= rs
		default:
			return ls >= rs
		}
	}
	a, b := ToNumber(l), ToNumber(r)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	default:
		return a >= b
	}
}

func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// exprText renders a callee for error messages.
func exprText(e Expr) string {
	switch x := e.(type) {
	case *Ident:
		return x.Name
	case *Member:
		if x.Computed != nil {
			return exprText(x.Object) + "[...]"
		}
		return exprText(x.Object) + "." + x.Name
	case *CallExpr:
		return exprText(x.Callee) + "(...)"
	case *FuncLit:
		return "function"
	}
	return "expression"
}

func describeValue(v Value) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case *Object:
		return "object"
	case *Array:
		return "array"
	}
	return ToString(v)
}
