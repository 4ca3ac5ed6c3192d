package query

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/vitaworks/vitaworks/modules/cv/compiler"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
)

// ExprExecutor evaluates a table node's ad-hoc query as an expr program
// over the row set, bound as `rows`. Queries filter, reshape or aggregate,
// e.g. `filter(rows, #.peer_reviewed == "yes")`. The program must yield a
// list of row maps.
type ExprExecutor struct {
	mu    sync.Mutex
	cache map[string]*vm.Program
}

func NewExprExecutor() *ExprExecutor {
	return &ExprExecutor{cache: make(map[string]*vm.Program)}
}

func (e *ExprExecutor) Execute(query string, rows []compiler.Row) (compiler.Result, error) {
	program, err := e.program(query)
	if err != nil {
		return compiler.Result{}, err
	}

	env := map[string]any{"rows": toEnvRows(rows)}
	out, err := expr.Run(program, env)
	if err != nil {
		return compiler.Result{}, errors.Wrap(err, "run query")
	}

	result, err := toResultRows(out)
	if err != nil {
		return compiler.Result{}, err
	}
	return compiler.Result{Success: true, Rows: result}, nil
}

func (e *ExprExecutor) program(query string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if program, ok := e.cache[query]; ok {
		return program, nil
	}
	program, err := expr.Compile(query)
	if err != nil {
		return nil, errors.Wrap(err, "compile query")
	}
	e.cache[query] = program
	return program, nil
}

func toEnvRows(rows []compiler.Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

func toResultRows(out any) ([]compiler.Row, error) {
	items, ok := out.([]any)
	if !ok {
		if typed, isTyped := out.([]map[string]any); isTyped {
			items = make([]any, len(typed))
			for i, m := range typed {
				items[i] = m
			}
		} else {
			return nil, errors.Errorf("query must yield a list of rows, got %T", out)
		}
	}

	rows := make([]compiler.Row, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("query row must be a map, got %T", item)
		}
		row := make(compiler.Row, len(m))
		for k, v := range m {
			row[k] = section.Stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
