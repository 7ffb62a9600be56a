/*
Package kernel implements the compute kernel and function dispatch of
§4.7: the three kernel shapes (vector, aggregate, row), a Function
grouping same-arity kernels, a FunctionExecutor that binds a chosen
kernel to an exec Context, the built-in aggregates (sum, min, max,
count, avg), and the per-process Registry they are pre-populated into.
*/
package kernel
