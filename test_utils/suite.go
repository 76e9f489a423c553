package test_utils

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type assertion struct {
	head                  *assertion
	id                    string
	description           string
	assertion             func()
	shouldAssert          bool
	next                  *assertion
	numRuns               int
	runMultipleInParallel bool
}

type Assertable interface {
	Concurrently(id string, description string, actions ...func()) Assertable
	Then(id string, assertionCase func()) Assertable
	Cases(cases ...*assertion) Assertable
	WithMultipleRuns(numRuns int, parallel bool) Assertable
	Do(t *testing.T)
}

func New(id string, assertionCase func()) *assertion {
	return NewWithDescription(id, "", assertionCase)
}

func NewWithDescription(id string, description string, assertionCase func()) *assertion {
	a := &assertion{
		id:           id,
		description:  description,
		assertion:    assertionCase,
		shouldAssert: true,
	}
	a.head = a
	return a
}

func NewGroup(id string, description string) Assertable {
	a := &assertion{
		id:          id,
		description: description,
	}
	a.head = a
	return a
}

func (a *assertion) WithMultipleRuns(numRuns int, parallel bool) Assertable {
	if numRuns < 0 {
		numRuns = 1
	}
	a.numRuns = numRuns
	a.runMultipleInParallel = parallel
	return a
}

// Concurrently runs every action on its own goroutine and re-panics any
// recovered panics once all of them finish.
func (a *assertion) Concurrently(id string, description string, actions ...func()) Assertable {
	actionFunc := func() {
		var wg sync.WaitGroup
		panics := make([]any, len(actions))
		var panicked int32
		for i, act := range actions {
			wg.Add(1)
			go func(action func(), i int) {
				defer wg.Done()
				defer func() {
					if recovered := recover(); recovered != nil {
						panics[i] = recovered
						atomic.StoreInt32(&panicked, 1)
					}
				}()
				action()
			}(act, i)
		}
		wg.Wait()
		if atomic.LoadInt32(&panicked) == 1 {
			panic(panics)
		}
	}
	a.next = &assertion{
		head:         a.head,
		id:           id,
		description:  description,
		assertion:    actionFunc,
		shouldAssert: false,
	}
	return a.next
}

func (a *assertion) Then(id string, assertionCase func()) Assertable {
	a.next = &assertion{
		head:         a.head,
		id:           id,
		assertion:    assertionCase,
		shouldAssert: true,
	}
	return a.next
}

func (a *assertion) Cases(cases ...*assertion) Assertable {
	curr := a
	for _, c := range cases {
		if c != nil {
			curr.next = c
			c.head = curr.head
			curr = c
		}
	}
	return curr
}

func (a *assertion) Do(t *testing.T) {
	startTime := time.Now()
	curr := a.head
	indent := 0
	for curr != nil {
		if curr.shouldAssert {
			t.Logf("%sRunning case %s%s\n", getIndentations(indent), curr.id, getDescription(curr))
		} else {
			t.Logf("%sRunning operation %s%s\n", getIndentations(indent), curr.id, getDescription(curr))
		}
		if curr.assertion != nil {
			if curr.shouldAssert {
				a.doAssertion(t, indent, curr)
			} else {
				curr.assertion()
			}
		} else {
			indent += 2
		}
		curr = curr.next
	}
	t.Log("All test finished, overall runtime: ", time.Since(startTime))
}

func (a *assertion) doAssertion(t *testing.T, indent int, node *assertion) {
	runner := func(indent int) bool {
		return doAssertCase(t, indent, node.id, node.assertion)
	}
	if node.numRuns == 0 {
		runner(indent)
		return
	}
	var succeeded int32
	var wg sync.WaitGroup
	inParallel := node.runMultipleInParallel
	runnerModeStr := "in series"
	if inParallel {
		runnerModeStr = "in parallel"
	}
	t.Logf("%sRun case [%s] %s %d times", getIndentations(indent), node.id, runnerModeStr, node.numRuns)
	for i := 0; i < node.numRuns; i++ {
		if inParallel {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if runner(indent + 4) {
					atomic.AddInt32(&succeeded, 1)
				}
			}()
		} else {
			if runner(indent + 4) {
				succeeded++
			}
		}
	}
	if inParallel {
		wg.Wait()
	}
	if node.numRuns > 1 {
		t.Logf("%sMultiple case success rate report: (%d/%d = %g)",
			getIndentations(indent),
			succeeded,
			node.numRuns,
			float64(succeeded)/float64(node.numRuns))
	}
}

func doAssertCase(t *testing.T, indent int, id string, assertionCase func()) (res bool) {
	res = true
	defer func() {
		if recovered := recover(); recovered != nil {
			res = false
			if isAssertionFailurePanic(recovered) {
				t.Errorf("%s❌ %s failed: %s\n", getIndentations(indent), id, recovered.(string))
			} else {
				t.Errorf("%s❌ %s panicked: %v\ncall stack:\n%s", getIndentations(indent), id, recovered, getCallers())
			}
			return
		}
		t.Logf("%s✅ %s passed\n", getIndentations(indent), id)
	}()
	assertionCase()
	return
}

func getIndentations(level int) string {
	if level == 0 {
		return ""
	}
	builder := strings.Builder{}
	for level > 0 {
		builder.WriteByte(' ')
		level--
	}
	return builder.String()
}

func getCallers() string {
	callers := ""
	for i := 0; true; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		callers = callers + fmt.Sprintf("%s%v:%v\n", getIndentations(i*2), file, line)
	}
	return callers
}

func getDescription(a *assertion) string {
	if a.description == "" {
		return ""
	}
	return "[" + a.description + "]"
}
