package expr

import "math"

// maxEvalDepth bounds recursive evaluation; parsed trees are already
// depth-limited by the parser, but the guard is kept independently so the
// evaluator stays total even if a Tree is constructed some other way.
const maxEvalDepth = 256

// divByZeroThreshold: division by a magnitude below this returns 0.0
// rather than inf/NaN, keeping evaluation total.
const divByZeroThreshold = 1e-20

// Eval evaluates t against params. An unbound parameter reference
// evaluates to 0.0 (documented, not an error); division by a value with
// magnitude below 1e-20 evaluates to 0.0. Evaluation past the recursion
// guard also yields 0.0, since a tree built through Parse can never
// actually reach it.
func Eval(t *Tree, params *ParamList) float64 {
	if t == nil || len(t.nodes) == 0 {
		return 0.0
	}
	return evalNode(t, t.root, params, 0)
}

func evalNode(t *Tree, h nodeHandle, params *ParamList, depth int) float64 {
	if depth > maxEvalDepth {
		return 0.0
	}

	n := t.at(h)
	switch n.Kind {
	case KindConstFloat:
		return n.ConstFloat
	case KindConstInt:
		return float64(n.ConstInt)
	case KindParamRef:
		if params != nil {
			if p, ok := params.Lookup(n.ParamName); ok {
				return p.Value
			}
		}
		return 0.0
	case KindUnaryCall:
		x := evalNode(t, n.Left, params, depth+1)
		return evalUnary(n.Func, x)
	case KindBinaryCall:
		a := evalNode(t, n.Left, params, depth+1)
		b := evalNode(t, n.Right, params, depth+1)
		return evalBinary(n.Func, a, b)
	}
	return 0.0
}

func evalUnary(fn funcKind, x float64) float64 {
	switch fn {
	case funcAbs:
		return math.Abs(x)
	case funcSqr:
		return x * x
	case funcSqrt:
		if x < 0 {
			return 0.0
		}
		return math.Sqrt(x)
	case funcExp:
		return math.Exp(x)
	case funcLn:
		if x <= 0 {
			return 0.0
		}
		return math.Log(x)
	case funcSin:
		return math.Sin(x)
	case funcSinh:
		return math.Sinh(x)
	case funcCos:
		return math.Cos(x)
	case funcCosh:
		return math.Cosh(x)
	case funcTan:
		return math.Tan(x)
	case funcTanh:
		return math.Tanh(x)
	}
	return 0.0
}

func evalBinary(fn funcKind, a, b float64) float64 {
	switch fn {
	case funcAdd:
		return a + b
	case funcSub:
		return a - b
	case funcMul:
		return a * b
	case funcDiv:
		if math.Abs(b) < divByZeroThreshold {
			return 0.0
		}
		return a / b
	case funcPow:
		return math.Pow(a, b)
	}
	return 0.0
}

// ReferencesParam reports whether t contains any reference to a parameter
// named internalName. The original source returned a sentinel error code
// to mean "yes" in one revision and a plain boolean in another; this
// settles on the boolean (SPEC_FULL.md §7.4).
func ReferencesParam(t *Tree, internalName string) bool {
	if t == nil || len(t.nodes) == 0 {
		return false
	}
	return referencesParamNode(t, t.root, internalName)
}

func referencesParamNode(t *Tree, h nodeHandle, internalName string) bool {
	n := t.at(h)
	switch n.Kind {
	case KindParamRef:
		return n.ParamName == internalName
	case KindUnaryCall:
		return referencesParamNode(t, n.Left, internalName)
	case KindBinaryCall:
		return referencesParamNode(t, n.Left, internalName) ||
			referencesParamNode(t, n.Right, internalName)
	}
	return false
}
