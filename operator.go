package alns

// Solution is the capability the engine requires from a caller-supplied
// solution type. The engine only ever reads the objective value and takes
// independent copies; everything else about the solution is opaque to it.
//
// Cost must be deterministic and side-effect free; lower is better.
// Copy must return a fully independent value: mutating the copy must never
// affect the original.
type Solution[S any] interface {
	Cost() float64
	Copy() S
}

// DestroyOperator removes or perturbs part of a solution's structure,
// in place. Operator correctness is the operator's own contract: the solver
// applies it unconditionally and performs no validation of the result.
type DestroyOperator[S Solution[S]] interface {
	Destroy(solution S)
}

// RepairOperator turns a (partially destroyed) solution back into a
// complete, evaluable one, in place.
type RepairOperator[S Solution[S]] interface {
	Repair(solution S)
}

// DestroyFunc adapts a plain function to the DestroyOperator interface.
type DestroyFunc[S Solution[S]] func(S)

// Destroy calls f(solution).
func (f DestroyFunc[S]) Destroy(solution S) { f(solution) }

// RepairFunc adapts a plain function to the RepairOperator interface.
type RepairFunc[S Solution[S]] func(S)

// Repair calls f(solution).
func (f RepairFunc[S]) Repair(solution S) { f(solution) }
