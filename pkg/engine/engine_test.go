package engine

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine("sleeve")

	for _, src := range []string{"", "   \n\t  \n  "} {
		reqs, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if reqs == nil || len(reqs) != 0 {
			t.Errorf("Evaluate(%q) = %v, want an empty request list", src, reqs)
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	eng := NewEngine("sleeve")

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	reqs, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(reqs) != 0 {
		t.Errorf("expected no requests, got %v", reqs)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine("sleeve")

	reqs, evalErrs, err := eng.Evaluate("(sleeve :wall 2.5")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if reqs != nil {
		t.Fatal("expected nil requests on syntax error")
	}
	if len(evalErrs) == 0 || evalErrs[0].Message == "" {
		t.Fatalf("expected a populated eval error, got %v", evalErrs)
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine("sleeve")

	reqs, evalErrs, err := eng.Evaluate("(sleeve :wall undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if reqs != nil {
		t.Fatal("expected nil requests on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	if s := e.Error(); s != "line 5: something went wrong" {
		t.Errorf("Error() = %q", s)
	}
	e2 := EvalError{Message: "no location"}
	if s := e2.Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine("sleeve")

	for i := 0; i < 5; i++ {
		reqs, evalErrs, err := eng.Evaluate("(sleeve :wall 3)")
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if len(reqs) != 1 {
			t.Errorf("iteration %d: got %d requests, want 1", i, len(reqs))
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	// A channel that never sends stands in for a script that loops
	// forever.
	eng := &Engine{Timeout: 50 * time.Millisecond}
	eng.generation = 1
	ch := make(chan evalResult)

	done := make(chan error, 1)
	go func() {
		_, _, err := eng.wait(ch, 1)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "timed out after 50ms") {
			t.Errorf("expected timeout error, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not time out")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	eng := NewEngine("sleeve")
	eng.generation = 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{requests: []Request{{Family: "sleeve"}}}

	reqs, _, err := eng.wait(ch, 1)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Fatalf("expected superseded error, got: %v", err)
	}
	if reqs != nil {
		t.Errorf("stale requests returned: %v", reqs)
	}
}

func TestDefaultTimeout(t *testing.T) {
	if got := NewEngine().timeout(); got != EvalTimeout {
		t.Errorf("timeout() = %s, want %s", got, EvalTimeout)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: sleeve: :wall has no value",
			wantLine: 3,
			wantMsg:  ":wall has no value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
