package types

// PromoteType computes the common type two operands of a binary
// operator are cast to before the operator runs: wider precision wins,
// signed beats unsigned at equal width, float beats integer, and
// DECIMAL/HUGEINT are treated as their own width tier between BIGINT
// and DOUBLE. Chrono types promote to the finer-grained scale (more
// nanoseconds-per-unit loses, i.e. NS beats SEC).
func PromoteType(a, b LogicalType) LogicalType {
	if a == b {
		return a
	}
	if a == NA {
		return b
	}
	if b == NA {
		return a
	}
	if a.IsTemporal() && b.IsTemporal() {
		if temporalScaleNanos[a] < temporalScaleNanos[b] {
			return a
		}
		return b
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		// Non-numeric, non-equal types have no promotion: caller must
		// cast explicitly. Prefer the left operand's type as a
		// deterministic fallback.
		return a
	}
	if a.IsFloating() || b.IsFloating() {
		if rank(a) >= rank(b) && a.IsFloating() {
			return a
		}
		if b.IsFloating() {
			return b
		}
		return a
	}
	wa, wb := effectiveWidth(a), effectiveWidth(b)
	if wa != wb {
		if wa > wb {
			return a
		}
		return b
	}
	// Equal width: signed wins over unsigned.
	if a.IsSigned() && !b.IsSigned() {
		return a
	}
	if b.IsSigned() && !a.IsSigned() {
		return b
	}
	return a
}

// effectiveWidth ranks DECIMAL between BIGINT and DOUBLE.
func effectiveWidth(t LogicalType) int {
	if t == DECIMAL {
		return 64
	}
	return t.Width()
}

// rank orders FLOAT below DOUBLE for float/float promotion.
func rank(t LogicalType) int {
	if t == DOUBLE {
		return 2
	}
	if t == FLOAT {
		return 1
	}
	return 0
}
