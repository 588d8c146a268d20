package expr

import (
	"math"
	"testing"

	"github.com/linkinparks/mfpga/mfpgaerr"
)

func TestParseAndEvalSimple(t *testing.T) {
	tree, err := Parse("+ 1 2")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := Eval(tree, nil); got != 3.0 {
		t.Errorf("Eval(+ 1 2) = %v, expected 3", got)
	}
}

func TestParseNestedWithParens(t *testing.T) {
	tree, err := Parse("* (- 1 cos 0) 2")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	// cos(0) = 1, so (1 - 1) * 2 = 0
	if got := Eval(tree, nil); math.Abs(got) > 1e-9 {
		t.Errorf("Eval = %v, expected ~0", got)
	}
}

func TestParamReference(t *testing.T) {
	params := &ParamList{}
	params.Add(&Param{DisplayName: "Gain", InternalName: "gain_db", Value: -6.0})

	tree, err := Parse("pow 10 (/ gain_db 20)")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	got := Eval(tree, params)
	want := 0.5011872336
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("Eval(pow 10 (/ gain_db 20)) = %v, expected ~%v", got, want)
	}
}

func TestUnboundParamEvaluatesToZero(t *testing.T) {
	tree, err := Parse("+ missing_param 5")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := Eval(tree, &ParamList{}); got != 5.0 {
		t.Errorf("Eval with unbound param = %v, expected 5", got)
	}
}

func TestDivisionNearZeroIsTotal(t *testing.T) {
	tree, err := Parse("/ 5 0")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := Eval(tree, nil); got != 0.0 {
		t.Errorf("Eval(/ 5 0) = %v, expected 0", got)
	}
}

func TestMalformedExpressionIsExprParseError(t *testing.T) {
	_, err := Parse("+ 1")
	if !mfpgaerr.Is(err, mfpgaerr.ExprParse) {
		t.Errorf("expected ExprParse error, got %v", err)
	}
}

func TestTrailingGarbageIsError(t *testing.T) {
	_, err := Parse("1 2")
	if !mfpgaerr.Is(err, mfpgaerr.ExprParse) {
		t.Errorf("expected ExprParse error, got %v", err)
	}
}

func TestUnmatchedParenIsError(t *testing.T) {
	_, err := Parse("(+ 1 2")
	if !mfpgaerr.Is(err, mfpgaerr.ExprParse) {
		t.Errorf("expected ExprParse error, got %v", err)
	}
}

func TestReferencesParam(t *testing.T) {
	tree, err := Parse("* 2 (+ gain_db offset)")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !ReferencesParam(tree, "gain_db") {
		t.Errorf("expected tree to reference gain_db")
	}
	if !ReferencesParam(tree, "offset") {
		t.Errorf("expected tree to reference offset")
	}
	if ReferencesParam(tree, "unrelated") {
		t.Errorf("did not expect tree to reference unrelated")
	}
}

func TestDeeplyNestedExpressionParsesAndEvaluates(t *testing.T) {
	// abs(abs(abs(...(1)))) nested 50 deep, well under the 256 guard.
	expr := "1"
	for i := 0; i < 50; i++ {
		expr = "abs " + expr
	}
	tree, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := Eval(tree, nil); got != 1.0 {
		t.Errorf("Eval deeply nested abs chain = %v, expected 1", got)
	}
}

func TestExcessiveNestingIsRejected(t *testing.T) {
	expr := "1"
	for i := 0; i < 300; i++ {
		expr = "abs " + expr
	}
	_, err := Parse(expr)
	if !mfpgaerr.Is(err, mfpgaerr.ExprParse) {
		t.Errorf("expected ExprParse error for excessive nesting, got %v", err)
	}
}
