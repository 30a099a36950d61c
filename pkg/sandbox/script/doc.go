// Package script implements the small JavaScript-like language used for form
// submission handlers.
//
// Programs are parsed into an AST and evaluated by a tree-walking interpreter.
// There is no access to the host beyond the values and native functions the
// caller places in the global Env: no prototype chains, no reflection, no
// dynamic code evaluation. Evaluation is bounded by a step budget, a call
// depth limit, size limits on strings and arrays, and context cancellation.
//
// Supported syntax covers declarations (let, const, var, with object and
// array destructuring), functions and arrow functions, if/else, for, for..of,
// for..in, while, break, continue, return, throw, try/catch/finally, object
// and array literals with spread, template literals, optional chaining, the
// usual arithmetic, comparison and logical operators, typeof, delete and new
// for native constructors.
package script
