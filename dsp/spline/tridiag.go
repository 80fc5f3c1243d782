package spline

// solveTridiag solves the symmetric tridiagonal system
//
//	| d0 e0          |   | u0 |   | r0 |
//	| e0 d1 e1       |   | u1 |   | r1 |
//	|    ..  ..  ..  | * | .. | = | .. |
//	|        e  dm-1 |   | um |   | rm |
//
// in place with the Thomas algorithm: rhs is overwritten with the solution and
// diag with the eliminated pivots. off has len(diag)-1 entries and is only
// read. The system must be diagonally dominant; no pivoting is done.
func solveTridiag(diag, off, rhs []float64) {
	m := len(diag)
	if m == 0 {
		return
	}

	for i := 1; i < m; i++ {
		w := off[i-1] / diag[i-1]
		diag[i] -= w * off[i-1]
		rhs[i] -= w * rhs[i-1]
	}

	rhs[m-1] /= diag[m-1]
	for i := m - 2; i >= 0; i-- {
		rhs[i] = (rhs[i] - off[i]*rhs[i+1]) / diag[i]
	}
}
