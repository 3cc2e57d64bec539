package engine

import (
	"fmt"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	requests []Request
	errors   []EvalError
	err      error
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return EvalTimeout
}

// current reports whether gen is still the latest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// wait returns the result of evaluation gen, or an error when it runs past
// the timeout or a newer evaluation started meanwhile. A timed-out
// evaluation keeps running; its result is dropped when it arrives.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) ([]Request, []EvalError, error) {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, fmt.Errorf("engine: evaluation superseded by newer request")
		}
		return res.requests, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("engine: evaluation timed out after %s", limit)
	}
}
