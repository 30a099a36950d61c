package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func runSource(t *testing.T, src string, globals map[string]any) (any, error) {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	env := NewEnv(nil)
	for k, v := range globals {
		env.Define(k, FromGo(v))
	}
	v, err := Run(context.Background(), prog, env, Limits{})
	if err != nil {
		return nil, err
	}
	return ToGo(v), nil
}

func TestRunReturnsValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		want any
	}{
		{name: "arithmetic", src: "return 1 + 2 * 3 ** 2;", want: 19.0},
		{name: "string concat", src: "return 'a' + 1 + 2;", want: "a12"},
		{name: "template", src: "const n = 'x'; return `hi ${n}!${1 + 1}`;", want: "hi x!2"},
		{name: "object literal order", src: "return { b: 1, a: 2, ['c' + 'd']: 3 };", want: map[string]any{"b": 1.0, "a": 2.0, "cd": 3.0}},
		{name: "no return", src: "let x = 1;", want: nil},
		{name: "logical defaults", src: "const v = null; return v ?? (0 || 'fallback');", want: "fallback"},
		{name: "optional chaining", src: "const o = { a: null }; return o.a?.b.c;", want: nil},
		{name: "optional call", src: "const o = {}; return o.fn?.() ?? 'none';", want: "none"},
		{name: "closures", src: "function counter() { let n = 0; return () => ++n; } const c = counter(); c(); c(); return c();", want: 3.0},
		{name: "destructuring", src: "const { a, b: [x, , z] = [], ...rest } = { a: 1, b: [1, 2, 3], c: 4 }; return [a, x, z, rest];", want: []any{1.0, 1.0, 3.0, map[string]any{"c": 4.0}}},
		{name: "defaults and rest params", src: "const f = (a, b = 2, ...more) => a + b + more.length; return f(1) + f(1, 1, 9, 9);", want: 7.0},
		{name: "for of", src: "let s = 0; for (const v of [1, 2, 3]) { if (v === 2) continue; s += v; } return s;", want: 4.0},
		{name: "for in", src: "const keys = []; for (const k in { x: 1, y: 2 }) keys.push(k); return keys.join();", want: "x,y"},
		{name: "classic for with break", src: "let i; for (i = 0; i < 10; i++) { if (i == 4) break; } return i;", want: 4.0},
		{name: "while", src: "let n = 0; while (n < 5) n += 2; return n;", want: 6.0},
		{name: "array methods", src: "return [3, 1, 2].sort().map(x => x * 2).filter(x => x > 2).reduce((a, b) => a + b, 0);", want: 10.0},
		{name: "string methods", src: "return ' Hello '.trim().toUpperCase().split('L').join('-');", want: "HE--O"},
		{name: "regexp replace", src: "return 'a-b-c'.replace(/-(\\w)/g, '_$1');", want: "a_b_c"},
		{name: "typeof undeclared", src: "return typeof notDeclared;", want: "undefined"},
		{name: "try catch finally", src: "let log = []; try { throw new Err('x'); } catch (e) { log.push('caught'); } finally { log.push('done'); } return log;", want: []any{"caught", "done"}},
		{name: "named function expression", src: "const fact = function f(n) { return n <= 1 ? 1 : n * f(n - 1); }; return [1].map(function g(x) { return typeof g; }).concat(fact(4));", want: []any{"function", 24.0}},
		{name: "hoisted function", src: "return twice(4); function twice(n) { return n * 2; }", want: 8.0},
		{name: "spread", src: "const a = [1, 2]; const o = { ...{ k: 1 }, j: 2 }; return [...a, ...'hi', o.k + o.j];", want: []any{1.0, 2.0, "h", "i", 3.0}},
		{name: "loose equality", src: "return [1 == '1', null == undefined, 0 == false, '' === 0];", want: []any{true, true, true, false}},
		{name: "number formatting", src: "return [(1.005).toFixed(1), String(0.1 + 0.2), (255).toString(16)];", want: []any{"1.0", "0.30000000000000004", "ff"}},
		{name: "in operator", src: "return ['a' in { a: 1 }, 2 in [1, 2]];", want: []any{true, false}},
		{name: "delete", src: "const o = { a: 1, b: 2 }; delete o.a; return o;", want: map[string]any{"b": 2.0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			prog, err := Parse(tc.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			scope := NewEnv(nil)
			scope.Define("Err", &NativeFunc{Name: "Err", Construct: func(c *Call) (Value, error) {
				return NewError("Error", ToString(c.Arg(0))), nil
			}})
			scope.Define("String", &NativeFunc{Name: "String", Fn: func(c *Call) (Value, error) {
				return ToString(c.Arg(0)), nil
			}})
			got, err := Run(context.Background(), prog, scope, Limits{})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if diff := cmp.Diff(tc.want, ToGo(got)); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunGlobalsAreReadable(t *testing.T) {
	t.Parallel()

	got, err := runSource(t, "return values.name + ':' + name;", map[string]any{
		"values": map[string]any{"name": "A"},
		"name":   "A",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "A:A" {
		t.Fatalf("expected A:A, got %v", got)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		src     string
		message string
		runtime bool
	}{
		{name: "thrown string", src: "throw 'boom';", message: "boom"},
		{name: "thrown object", src: "throw { code: 1 };", message: `{"code":1}`},
		{name: "undefined name", src: "return missing + 1;", message: "ReferenceError: missing is not defined", runtime: true},
		{name: "read of undefined", src: "const o = {}; return o.a.b;", message: "TypeError: Cannot read properties of undefined (reading 'b')", runtime: true},
		{name: "const assignment", src: "const a = 1; a = 2;", message: "TypeError: Assignment to constant variable.", runtime: true},
		{name: "not a function", src: "const o = {}; o.run();", message: "TypeError: o.run is not a function", runtime: true},
		{name: "redeclaration", src: "let a = 1; let a = 2;", message: "SyntaxError: Identifier 'a' has already been declared", runtime: true},
		{name: "not a constructor", src: "const f = () => 1; new f();", message: "TypeError: f is not a constructor", runtime: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := runSource(t, tc.src, nil)
			var exc *Exception
			if !errors.As(err, &exc) {
				t.Fatalf("expected *Exception, got %v", err)
			}
			if exc.Message() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, exc.Message())
			}
			if exc.Runtime != tc.runtime {
				t.Fatalf("expected runtime=%v", tc.runtime)
			}
		})
	}
}

func TestRunFrozenObject(t *testing.T) {
	t.Parallel()

	frozen := NewObject()
	frozen.Set("k", "v")
	frozen.Freeze()

	prog, err := Parse("cfg.k = 'changed';")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	env := NewEnv(nil)
	env.Define("cfg", frozen)
	_, err = Run(context.Background(), prog, env, Limits{})
	var exc *Exception
	if !errors.As(err, &exc) {
		t.Fatalf("expected exception, got %v", err)
	}
	if v, _ := frozen.Get("k"); v != "v" {
		t.Fatalf("frozen object mutated: %v", v)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"return {",
		"const a;",
		"let = 5",
		"1 = 2;",
		"`unterminated",
		"'abc",
		"try { }",
	} {
		_, err := Parse(src)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Parse(%q): expected *SyntaxError, got %v", src, err)
		}
		if !strings.HasPrefix(se.Error(), "SyntaxError: ") {
			t.Fatalf("unexpected error text %q", se.Error())
		}
	}
}

func TestRunStepLimit(t *testing.T) {
	t.Parallel()

	prog, err := Parse("while (true) {}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Run(context.Background(), prog, nil, Limits{MaxSteps: 1000})
	var limit *LimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected *LimitError, got %v", err)
	}
}

func TestRunLimitIsNotCatchable(t *testing.T) {
	t.Parallel()

	prog, err := Parse("try { while (true) {} } catch (e) { return 'caught'; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Run(context.Background(), prog, nil, Limits{MaxSteps: 500})
	var limit *LimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected *LimitError, got %v", err)
	}
}

func TestRunRecursionDepth(t *testing.T) {
	t.Parallel()

	_, err := runSource(t, "function f(n) { return f(n + 1); } return f(0);", nil)
	var exc *Exception
	if !errors.As(err, &exc) {
		t.Fatalf("expected exception, got %v", err)
	}
	if !strings.Contains(exc.Message(), "Maximum call stack size exceeded") {
		t.Fatalf("unexpected message %q", exc.Message())
	}
}

func TestRunStringLimit(t *testing.T) {
	t.Parallel()

	prog, err := Parse("let s = 'x'; while (true) { s = s + s; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Run(context.Background(), prog, nil, Limits{MaxStringLen: 1024})
	var exc *Exception
	if !errors.As(err, &exc) || !strings.Contains(exc.Message(), "Invalid string length") {
		t.Fatalf("expected string length error, got %v", err)
	}
}

func TestRunAllocationBudget(t *testing.T) {
	t.Parallel()

	hoard := `let kept = [];
		for (let i = 0; i < 40; i++) { kept.push("x".repeat(100000) + i); }
		return kept.length;`

	cases := []struct {
		name    string
		src     string
		limits  Limits
		exceeds bool
	}{
		{name: "retained strings", src: hoard, limits: Limits{MaxAllocBytes: 4 << 20}, exceeds: true},
		{name: "caught by nothing", src: "try { " + hoard + " } catch (e) { return 'caught'; }", limits: Limits{MaxAllocBytes: 4 << 20}, exceeds: true},
		{name: "array slots", src: "let kept = []; for (let i = 0; i < 40; i++) { const a = []; a.length = 60000; kept.push(a); } return 1;", limits: Limits{MaxAllocBytes: 4 << 20}, exceeds: true},
		{name: "copied slices", src: "const big = [1]; big[59999] = 1; const kept = []; for (let i = 0; i < 40; i++) { kept.push(big.slice()); } return 1;", limits: Limits{MaxAllocBytes: 4 << 20}, exceeds: true},
		{name: "within budget", src: hoard, limits: Limits{MaxAllocBytes: 16 << 20}},
		{name: "budget disabled", src: hoard, limits: Limits{MaxAllocBytes: -1}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			prog, err := Parse(tc.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = Run(context.Background(), prog, nil, tc.limits)
			var limit *LimitError
			if got := errors.As(err, &limit); got != tc.exceeds {
				t.Fatalf("expected budget exceeded=%v, got %v", tc.exceeds, err)
			}
			if tc.exceeds && !strings.Contains(limit.Error(), "allocation budget") {
				t.Fatalf("unexpected limit %q", limit.Error())
			}
			if !tc.exceeds && err != nil {
				t.Fatalf("Run: %v", err)
			}
		})
	}
}

func TestRunCancellation(t *testing.T) {
	t.Parallel()

	prog, err := Parse("while (true) {}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = Run(ctx, prog, nil, Limits{MaxSteps: -1})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error in chain, got %v", err)
	}
}

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	v, err := ParseJSON(`{"z": 1, "a": [true, null, "s"], "m": {"k": 2.5}}`)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	got, err := Stringify(v, "")
	if err != nil {
		t.Fatalf("Stringify: %v", err)
	}
	want := `{"z":1,"a":[true,null,"s"],"m":{"k":2.5}}`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	indented, err := Stringify(v, "  ")
	if err != nil {
		t.Fatalf("Stringify: %v", err)
	}
	if !strings.Contains(indented, "\n  \"a\": [\n    true,") {
		t.Fatalf("unexpected indentation:\n%s", indented)
	}
}

func TestJSONErrors(t *testing.T) {
	t.Parallel()

	if _, err := ParseJSON(`{"a": }`); err == nil {
		t.Fatal("expected syntax error")
	}
	if _, err := ParseJSON(`{} extra`); err == nil {
		t.Fatal("expected trailing data error")
	}

	cyclic := NewObject()
	cyclic.Set("self", cyclic)
	if _, err := Stringify(cyclic, ""); err == nil {
		t.Fatal("expected circular structure error")
	}
}

func TestFromGoToGo(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"n":    3,
		"list": []any{"a", int64(2)},
		"when": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	got := ToGo(FromGo(in))
	want := map[string]any{
		"n":    3.0,
		"list": []any{"a", 2.0},
		"when": "2024-01-02T03:04:05.000Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("conversion mismatch (-want +got):\n%s", diff)
	}
}
