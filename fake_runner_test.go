package neogm

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type runCall struct {
	query  string
	params map[string]any
}

// fakeRunner records every query and replays results in order. Once the queued results
// are exhausted it returns empty results.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runCall
	results []*neo4j.EagerResult
	err     error
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runCall{query: query, params: params})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &neo4j.EagerResult{}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func (f *fakeRunner) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1].query
}

func (f *fakeRunner) lastParams() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1].params
}

// rows builds an EagerResult whose records all share keys.
func rows(keys []string, values ...[]any) *neo4j.EagerResult {
	res := &neo4j.EagerResult{Keys: keys}
	for _, v := range values {
		res.Records = append(res.Records, &neo4j.Record{Keys: keys, Values: v})
	}
	return res
}

func countRows(n int64) *neo4j.EagerResult {
	return rows([]string{"count"}, []any{n})
}

func rel(id int64, relType string, props map[string]any) neo4j.Relationship {
	return neo4j.Relationship{Id: id, StartId: 1, EndId: 2, Type: relType, Props: props}
}

func node(id int64, props map[string]any) neo4j.Node {
	return neo4j.Node{Id: id, Labels: []string{"Test"}, Props: props}
}
