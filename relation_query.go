package neogm

import (
	"strconv"
	"strings"
)

// Pattern variables bound by every relation query.
const (
	RelationVar  = "r"
	StartNodeVar = "n1"
	EndNodeVar   = "n2"
)

// NoID leaves a node id constraint unset when passed to StartNode or EndNode.
const NoID int64 = -1

// Direction is the sort direction of an ORDER BY clause.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// NodeSelection picks which endpoint(s) a node projection query returns.
type NodeSelection int

const (
	SelectStart NodeSelection = iota
	SelectEnd
	SelectBoth
)

type ordering struct {
	direction Direction
	relation  []string
	start     []string
	end       []string
}

// RelationQuery accumulates the constraints of a query over the pattern
// (n1)-[r]->(n2) and renders it as Cypher.
//
// Setters never fail: an argument that cannot be used (an empty type or label, a negative
// id or limit, an empty projection) is ignored and the previous state is kept. Callers that
// need strict validation go through Relations, which checks its arguments first.
//
// A RelationQuery is not safe for concurrent use. Rendering has no side effects, so the same
// value can be rendered any number of times.
type RelationQuery struct {
	relType string

	startID    int64
	startLabel string
	endID      int64
	endLabel   string

	relationWhere *Where
	startWhere    *Where
	endWhere      *Where

	order *ordering
	limit int

	returnRelation []string
	returnStart    []string
	returnEnd      []string
}

// NewRelationQuery returns an empty query matching every relation.
func NewRelationQuery() *RelationQuery {
	return &RelationQuery{startID: NoID, endID: NoID, limit: -1}
}

// Type restricts the relation type.
func (q *RelationQuery) Type(relType string) *RelationQuery {
	if relType != "" {
		q.relType = relType
	}
	return q
}

// StartNode restricts the start node by internal id and/or label. Pass NoID or "" to
// leave either constraint untouched.
func (q *RelationQuery) StartNode(id int64, label string) *RelationQuery {
	if id >= 0 {
		q.startID = id
	}
	if label != "" {
		q.startLabel = label
	}
	return q
}

// EndNode restricts the end node by internal id and/or label. Pass NoID or "" to
// leave either constraint untouched.
func (q *RelationQuery) EndNode(id int64, label string) *RelationQuery {
	if id >= 0 {
		q.endID = id
	}
	if label != "" {
		q.endLabel = label
	}
	return q
}

// StartNodeWhere filters on start node properties. A nil filter clears the constraint.
func (q *RelationQuery) StartNodeWhere(w *Where) *RelationQuery {
	q.startWhere = scope(w, StartNodeVar)
	return q
}

// EndNodeWhere filters on end node properties. A nil filter clears the constraint.
func (q *RelationQuery) EndNodeWhere(w *Where) *RelationQuery {
	q.endWhere = scope(w, EndNodeVar)
	return q
}

// RelationWhere filters on relation properties. A nil filter clears the constraint.
func (q *RelationQuery) RelationWhere(w *Where) *RelationQuery {
	q.relationWhere = scope(w, RelationVar)
	return q
}

func scope(w *Where, variable string) *Where {
	if w != nil {
		w.SetVariable(variable)
	}
	return w
}

// Limit caps the number of returned rows.
func (q *RelationQuery) Limit(n int) *RelationQuery {
	if n >= 0 {
		q.limit = n
	}
	return q
}

// AscOrderBy sorts ascending by relation, start node and end node properties, in that
// order. It replaces any earlier ordering.
func (q *RelationQuery) AscOrderBy(relation, start, end []string) *RelationQuery {
	return q.orderBy(Asc, relation, start, end)
}

// DescOrderBy sorts descending by relation, start node and end node properties, in that
// order. It replaces any earlier ordering.
func (q *RelationQuery) DescOrderBy(relation, start, end []string) *RelationQuery {
	return q.orderBy(Desc, relation, start, end)
}

func (q *RelationQuery) orderBy(dir Direction, relation, start, end []string) *RelationQuery {
	o := &ordering{
		direction: dir,
		relation:  validOrNil(relation),
		start:     validOrNil(start),
		end:       validOrNil(end),
	}
	if o.relation == nil && o.start == nil && o.end == nil {
		return q
	}
	q.order = o
	return q
}

func validOrNil(props []string) []string {
	if !ValidProperties(props) {
		return nil
	}
	return append([]string(nil), props...)
}

// ReturnStartNode projects the given start node properties instead of the whole node.
func (q *RelationQuery) ReturnStartNode(props ...string) *RelationQuery {
	if ValidProperties(props) {
		q.returnStart = append([]string(nil), props...)
	}
	return q
}

// ReturnEndNode projects the given end node properties instead of the whole node.
func (q *RelationQuery) ReturnEndNode(props ...string) *RelationQuery {
	if ValidProperties(props) {
		q.returnEnd = append([]string(nil), props...)
	}
	return q
}

// ReturnRelation projects the given relation properties instead of the whole relation.
func (q *RelationQuery) ReturnRelation(props ...string) *RelationQuery {
	if ValidProperties(props) {
		q.returnRelation = append([]string(nil), props...)
	}
	return q
}

// MatchClause renders MATCH p=(n1:Label)-[r:TYPE]->(n2:Label). Unset labels and type are
// left out.
func (q *RelationQuery) MatchClause() string {
	var b strings.Builder
	b.WriteString("MATCH p=(")
	b.WriteString(StartNodeVar)
	writeLabel(&b, q.startLabel)
	b.WriteString(")-[")
	b.WriteString(RelationVar)
	writeLabel(&b, q.relType)
	b.WriteString("]->(")
	b.WriteString(EndNodeVar)
	writeLabel(&b, q.endLabel)
	b.WriteString(")")
	return b.String()
}

func writeLabel(b *strings.Builder, label string) {
	if label != "" {
		b.WriteString(":")
		b.WriteString(quoteName(label))
	}
}

// WhereClause renders the WHERE clause, or "" when the query has no condition. Terms are
// emitted as start id, end id, relation filter, start filter, end filter.
func (q *RelationQuery) WhereClause() string {
	var terms []string
	if q.startID >= 0 {
		terms = append(terms, "ID("+StartNodeVar+") = "+strconv.FormatInt(q.startID, 10))
	}
	if q.endID >= 0 {
		terms = append(terms, "ID("+EndNodeVar+") = "+strconv.FormatInt(q.endID, 10))
	}
	for _, w := range []*Where{q.relationWhere, q.startWhere, q.endWhere} {
		if w == nil {
			continue
		}
		if c := w.Clause(); c != "" {
			terms = append(terms, c)
		}
	}
	if len(terms) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(terms, " AND ")
}

// ReturnClause renders the relation projection, followed by both endpoint projections
// when populated is set.
func (q *RelationQuery) ReturnClause(populated bool) string {
	parts := []string{projection(q.returnRelation, RelationVar)}
	if populated {
		parts = append(parts,
			projection(q.returnStart, StartNodeVar),
			projection(q.returnEnd, EndNodeVar))
	}
	return "RETURN " + strings.Join(parts, ", ")
}

// NodeReturnClause renders a projection of one or both endpoints only.
func (q *RelationQuery) NodeReturnClause(sel NodeSelection, distinct bool) string {
	var parts []string
	if sel == SelectStart || sel == SelectBoth {
		parts = append(parts, projection(q.returnStart, StartNodeVar))
	}
	if sel == SelectEnd || sel == SelectBoth {
		parts = append(parts, projection(q.returnEnd, EndNodeVar))
	}
	prefix := "RETURN "
	if distinct {
		prefix += "DISTINCT "
	}
	return prefix + strings.Join(parts, ", ")
}

func projection(props []string, variable string) string {
	if props == nil {
		return variable
	}
	return ParseProperties(props, variable)
}

// OrderByClause renders ORDER BY with relation, start and end properties followed by the
// shared direction, or "" when no ordering is set.
func (q *RelationQuery) OrderByClause() string {
	if q.order == nil {
		return ""
	}
	var parts []string
	if q.order.relation != nil {
		parts = append(parts, ParseProperties(q.order.relation, RelationVar))
	}
	if q.order.start != nil {
		parts = append(parts, ParseProperties(q.order.start, StartNodeVar))
	}
	if q.order.end != nil {
		parts = append(parts, ParseProperties(q.order.end, EndNodeVar))
	}
	return "ORDER BY " + strings.Join(parts, ", ") + " " + string(q.order.direction)
}

// LimitClause renders LIMIT n, or "" when no limit is set.
func (q *RelationQuery) LimitClause() string {
	if q.limit < 0 {
		return ""
	}
	return "LIMIT " + strconv.Itoa(q.limit)
}

// Cypher renders the query returning relations only.
func (q *RelationQuery) Cypher() string {
	return joinClauses(q.MatchClause(), q.WhereClause(), q.ReturnClause(false), q.OrderByClause(), q.LimitClause())
}

// PopulatedCypher renders the query returning relations with both endpoints.
func (q *RelationQuery) PopulatedCypher() string {
	return joinClauses(q.MatchClause(), q.WhereClause(), q.ReturnClause(true), q.OrderByClause(), q.LimitClause())
}

// NodesCypher renders the query returning the selected endpoint(s) only.
func (q *RelationQuery) NodesCypher(sel NodeSelection, distinct bool) string {
	return joinClauses(q.MatchClause(), q.WhereClause(), q.NodeReturnClause(sel, distinct), q.OrderByClause(), q.LimitClause())
}

// CountCypher renders the query counting matched relations. Projections, ordering and
// limit do not apply.
func (q *RelationQuery) CountCypher() string {
	return joinClauses(q.MatchClause(), q.WhereClause(), "RETURN COUNT("+RelationVar+") AS count")
}

// UpdateCypher renders the query merging the map parameter param into every matched
// relation and returning the updated relations.
func (q *RelationQuery) UpdateCypher(param string) string {
	return joinClauses(q.MatchClause(), q.WhereClause(), "SET "+RelationVar+" += $"+param, q.ReturnClause(false))
}

// DeleteCypher renders the query deleting every matched relation and returning how many
// were deleted.
func (q *RelationQuery) DeleteCypher() string {
	return joinClauses(q.MatchClause(), q.WhereClause(), "DELETE "+RelationVar, "RETURN COUNT("+RelationVar+") AS count")
}

func joinClauses(clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
