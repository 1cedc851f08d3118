package proc

import (
	"fmt"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Responses are matched by the full
// command line first and then by the longest registered prefix.
type Fake struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	Calls     [][]string
}

type fakeResponse struct {
	res Result
	err error
}

func NewFake() *Fake {
	return &Fake{responses: make(map[string]fakeResponse)}
}

// On registers the result for a command line prefix such as "task --version".
func (f *Fake) On(prefix string, res Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = fakeResponse{res: res}
	return f
}

// OnError makes a command line prefix fail to start.
func (f *Fake) OnError(prefix string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = fakeResponse{err: err}
	return f
}

func (f *Fake) Run(name string, args ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := append([]string{name}, args...)
	f.Calls = append(f.Calls, call)

	line := strings.Join(call, " ")
	best, found := "", false
	for prefix := range f.responses {
		if (line == prefix || strings.HasPrefix(line, prefix+" ")) && len(prefix) >= len(best) {
			best, found = prefix, true
		}
	}
	if !found {
		return Result{}, fmt.Errorf("run %s: executable file not found", name)
	}
	r := f.responses[best]
	return r.res, r.err
}

// CallCount returns how many calls started with prefix.
func (f *Fake) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		line := strings.Join(c, " ")
		if line == prefix || strings.HasPrefix(line, prefix+" ") {
			n++
		}
	}
	return n
}

// Last returns the most recent call, or nil.
func (f *Fake) Last() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	return f.Calls[len(f.Calls)-1]
}
