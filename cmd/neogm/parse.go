package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saulfrancisco-ruizacevedo/go-neogm"
)

// parseValue turns a command-line literal into an int64, float64, bool, nil or string,
// in that order of preference. Quote a value ('42') to force a string.
func parseValue(s string) any {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if s == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseProps parses key=value pairs.
func parseProps(pairs []string) (map[string]any, error) {
	props := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q, want key=value", pair)
		}
		props[key] = parseValue(value)
	}
	return props, nil
}

// parseWhere parses field:op:value filters, op being an operator name without the
// leading $ (eq, gt, in, ...). Several filters are combined with AND. List values for
// in/nin are comma-separated.
func parseWhere(exprs []string) (*neogm.Where, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	filters := make([]*neogm.Where, 0, len(exprs))
	for _, expr := range exprs {
		parts := strings.SplitN(expr, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid filter %q, want field:op:value", expr)
		}
		op := neogm.Operator("$" + parts[1])

		var value any
		if op == neogm.OpIn || op == neogm.OpNin {
			items := strings.Split(parts[2], ",")
			list := make([]any, len(items))
			for i, item := range items {
				list[i] = parseValue(item)
			}
			value = list
		} else if op == neogm.OpContains || op == neogm.OpStartsWith || op == neogm.OpEndsWith {
			value = parts[2]
		} else {
			value = parseValue(parts[2])
		}

		w, err := neogm.NewWhere(parts[0], neogm.Cond{op: value})
		if err != nil {
			return nil, err
		}
		filters = append(filters, w)
	}

	if len(filters) == 1 {
		return filters[0], nil
	}
	return neogm.And(filters...), nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", what, s)
	}
	return id, nil
}

// splitProps splits a comma-separated property list, returning nil for "".
func splitProps(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
