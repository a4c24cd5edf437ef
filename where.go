package neogm

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Operator is a comparison operator understood by Where.
type Operator string

const (
	OpEq         Operator = "$eq"
	OpNe         Operator = "$ne"
	OpGt         Operator = "$gt"
	OpGte        Operator = "$gte"
	OpLt         Operator = "$lt"
	OpLte        Operator = "$lte"
	OpIn         Operator = "$in"
	OpNin        Operator = "$nin"
	OpContains   Operator = "$contains"
	OpStartsWith Operator = "$startsWith"
	OpEndsWith   Operator = "$endsWith"
)

// operatorOrder fixes the rendering order of several operators on the same field.
var operatorOrder = []Operator{
	OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNin, OpContains, OpStartsWith, OpEndsWith,
}

// Cond maps operators to the value each one compares against, e.g.
// Cond{OpGte: 2, OpLt: 10}.
type Cond map[Operator]any

// Filter is anything that renders a boolean Cypher fragment. *Where is the only
// implementation the facades accept.
type Filter interface {
	Clause() string
}

// defaultVariable is used when a Where is rendered before any builder has scoped it.
const defaultVariable = "n"

// Where is a predicate over a single property, or an AND/OR group of other Where values.
// It renders into a fragment suitable for a WHERE clause. The pattern variable is bound
// late through SetVariable, so the same filter can be scoped to the relation, the start
// node or the end node of a query.
type Where struct {
	field    string
	literals map[Operator]string

	logic    string
	children []*Where

	variable string
}

// NewWhere builds a predicate on field. Every operator in cond must be known and every
// value must be representable as a Cypher literal.
func NewWhere(field string, cond Cond) (*Where, error) {
	if field == "" {
		return nil, ErrEmptyField
	}
	if len(cond) == 0 {
		return nil, fmt.Errorf("%w: no operator given for field %q", ErrUnknownOperator, field)
	}

	literals := make(map[Operator]string, len(cond))
	for op, value := range cond {
		if !knownOperator(op) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
		}
		if err := checkOperand(op, value); err != nil {
			return nil, err
		}
		lit, err := literal(value)
		if err != nil {
			return nil, err
		}
		literals[op] = lit
	}

	return &Where{field: field, literals: literals}, nil
}

// MustWhere is like NewWhere but panics if the predicate is invalid.
func MustWhere(field string, cond Cond) *Where {
	w, err := NewWhere(field, cond)
	if err != nil {
		panic(err)
	}
	return w
}

// Eq is shorthand for NewWhere(field, Cond{OpEq: value}).
func Eq(field string, value any) (*Where, error) {
	return NewWhere(field, Cond{OpEq: value})
}

// And groups filters into a conjunction. Nil filters are skipped.
func And(filters ...*Where) *Where {
	return group("AND", filters)
}

// Or groups filters into a disjunction. Nil filters are skipped.
func Or(filters ...*Where) *Where {
	return group("OR", filters)
}

func group(logic string, filters []*Where) *Where {
	w := &Where{logic: logic}
	for _, f := range filters {
		if f != nil {
			w.children = append(w.children, f)
		}
	}
	return w
}

// SetVariable scopes the filter to a pattern variable such as r, n1 or n2.
func (w *Where) SetVariable(variable string) {
	w.variable = variable
}

// Variable returns the pattern variable the filter is scoped to.
func (w *Where) Variable() string {
	if w.variable == "" {
		return defaultVariable
	}
	return w.variable
}

// Clause renders the filter, e.g. "n1.name = 'Test1'". An empty group renders "".
func (w *Where) Clause() string {
	return w.render(w.Variable())
}

func (w *Where) String() string {
	return w.Clause()
}

func (w *Where) render(variable string) string {
	var terms []string
	if w.logic != "" {
		for _, child := range w.children {
			if c := child.render(variable); c != "" {
				terms = append(terms, c)
			}
		}
		return joinTerms(terms, w.logic)
	}

	prop := variable + "." + quoteName(w.field)
	for _, op := range operatorOrder {
		if lit, ok := w.literals[op]; ok {
			terms = append(terms, comparison(op, prop, lit))
		}
	}
	return joinTerms(terms, "AND")
}

func joinTerms(terms []string, logic string) string {
	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	default:
		return "(" + strings.Join(terms, " "+logic+" ") + ")"
	}
}

func comparison(op Operator, prop, lit string) string {
	switch op {
	case OpEq:
		if lit == "null" {
			return prop + " IS NULL"
		}
		return prop + " = " + lit
	case OpNe:
		if lit == "null" {
			return prop + " IS NOT NULL"
		}
		return prop + " <> " + lit
	case OpGt:
		return prop + " > " + lit
	case OpGte:
		return prop + " >= " + lit
	case OpLt:
		return prop + " < " + lit
	case OpLte:
		return prop + " <= " + lit
	case OpIn:
		return prop + " IN " + lit
	case OpNin:
		return "NOT " + prop + " IN " + lit
	case OpContains:
		return prop + " CONTAINS " + lit
	case OpStartsWith:
		return prop + " STARTS WITH " + lit
	case OpEndsWith:
		return prop + " ENDS WITH " + lit
	}
	return ""
}

func knownOperator(op Operator) bool {
	for _, known := range operatorOrder {
		if op == known {
			return true
		}
	}
	return false
}

func checkOperand(op Operator, value any) error {
	switch op {
	case OpIn, OpNin:
		if !isList(value) {
			return fmt.Errorf("%w: %s needs a list, got %T", ErrUnsupportedValue, op, value)
		}
	case OpContains, OpStartsWith, OpEndsWith:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s needs a string, got %T", ErrUnsupportedValue, op, value)
		}
	}
	return nil
}

func isList(value any) bool {
	if value == nil {
		return false
	}
	if _, ok := value.([]byte); ok {
		return false
	}
	k := reflect.TypeOf(value).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// literal renders value as a Cypher literal.
func literal(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return quoteString(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	}

	if isList(value) {
		rv := reflect.ValueOf(value)
		items := make([]string, rv.Len())
		for i := range items {
			item, err := literal(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			items[i] = item
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	}

	return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
