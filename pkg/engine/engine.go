// Package engine evaluates .part scripts. It wraps zygomys in a sandboxed
// environment with one builtin per part family and produces the ordered
// list of build requests the script makes.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/sixbitdeep/3D-Models/pkg/param"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Request is one family build asked for by a script, with the overrides
// given as keyword arguments. Overrides are not checked against the
// family's defaults here.
type Request struct {
	Family    string
	Overrides param.Set
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use:
// every Evaluate runs in a fresh sandbox, and only the most recent call
// returns a result.
type Engine struct {
	// Timeout bounds one evaluation. Zero means EvalTimeout.
	Timeout time.Duration
	// Log receives one entry per evaluation. Nil logs nothing.
	Log *zap.Logger

	mu         sync.Mutex
	generation uint64
	families   []string
}

// NewEngine creates an Engine with one builtin per named family.
func NewEngine(families ...string) *Engine {
	return &Engine{families: append([]string(nil), families...), Log: zap.NewNop()}
}

// Families returns the builtin family names.
func (e *Engine) Families() []string { return append([]string(nil), e.families...) }

// Evaluate runs a script and returns its build requests in call order.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns requests + nil errors + nil error
//   - On parse/eval failure: returns nil requests + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) ([]Request, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		reqs, evalErrs, err := e.evaluate(source)
		ch <- evalResult{requests: reqs, errors: evalErrs, err: err}
	}()

	reqs, evalErrs, err := e.wait(ch, gen)
	if e.Log != nil {
		e.Log.Debug("evaluated",
			zap.Uint64("generation", gen),
			zap.Int("requests", len(reqs)),
			zap.Int("errors", len(evalErrs)),
			zap.Error(err),
		)
	}
	return reqs, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) ([]Request, []EvalError, error) {
	// Empty source is a valid program that requests nothing.
	if strings.TrimSpace(source) == "" {
		return []Request{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	reqs := []Request{}
	registerBuiltins(env, e.families, &reqs)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return reqs, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
