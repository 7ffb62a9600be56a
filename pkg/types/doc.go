/*
Package types implements quilldb's tagged value model: the logical
type tags, the composite type descriptor, and logical_value_t itself
— the ownership-aware value that every column, kernel, and predicate in
the engine passes around.

# Arena discipline

Values are never allocated from the process heap directly. Every Value
that owns a heap payload (a string, or the child values of a LIST,
STRUCT, MAP, ARRAY or UNION) was produced through an *Arena, and Clone
must be given the arena it should copy into. A Value used after its
owning arena has gone out of scope is a bug in the caller, not in this
package — same discipline as the C++ memory_resource this is ported
from (see DESIGN.md).

# Promotion

Binary numeric operators promote their operands to a common type
before computing (PromoteType), matching standard C-family widening:
wider precision wins, signed beats unsigned at equal width, float beats
integer. Divide-by-zero on a numeric type yields a typed zero. None of
these functions returns an error: an invalid cast (CastAs) or a
non-numeric operand (Arithmetic) yields a null instead.
*/
package types
