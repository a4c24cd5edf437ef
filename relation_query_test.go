package neogm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fullQuery sets every constraint the builder supports.
func fullQuery() *RelationQuery {
	return NewRelationQuery().
		Type("relatedto").
		StartNode(1, "Test").
		EndNode(2, "Test").
		RelationWhere(MustWhere("value", Cond{OpGt: 2})).
		StartNodeWhere(MustWhere("name", Cond{OpEq: "Test1"})).
		EndNodeWhere(MustWhere("name", Cond{OpNe: "x"})).
		AscOrderBy(Props("value"), Props("name"), nil).
		Limit(10)
}

const (
	fullMatch = "MATCH p=(n1:Test)-[r:relatedto]->(n2:Test)"
	fullWhere = "WHERE ID(n1) = 1 AND ID(n2) = 2 AND r.value > 2 AND n1.name = 'Test1' AND n2.name <> 'x'"
)

func TestRelationQuery_Empty(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery()
	assert.Equal(t, "MATCH p=(n1)-[r]->(n2)", q.MatchClause())
	assert.Empty(t, q.WhereClause())
	assert.Empty(t, q.OrderByClause())
	assert.Empty(t, q.LimitClause())
	assert.Equal(t, "MATCH p=(n1)-[r]->(n2) RETURN r", q.Cypher())
	assert.Equal(t, "MATCH p=(n1)-[r]->(n2) RETURN r, n1, n2", q.PopulatedCypher())
	assert.Equal(t, "MATCH p=(n1)-[r]->(n2) RETURN COUNT(r) AS count", q.CountCypher())
}

func TestRelationQuery_Full(t *testing.T) {
	t.Parallel()

	q := fullQuery()
	assert.Equal(t, fullMatch, q.MatchClause())
	assert.Equal(t, fullWhere, q.WhereClause())
	assert.Equal(t, "ORDER BY r.value, n1.name ASC", q.OrderByClause())
	assert.Equal(t, "LIMIT 10", q.LimitClause())

	assert.Equal(t,
		fullMatch+" "+fullWhere+" RETURN r ORDER BY r.value, n1.name ASC LIMIT 10",
		q.Cypher())
	assert.Equal(t,
		fullMatch+" "+fullWhere+" RETURN r, n1, n2 ORDER BY r.value, n1.name ASC LIMIT 10",
		q.PopulatedCypher())
	assert.Equal(t,
		fullMatch+" "+fullWhere+" RETURN COUNT(r) AS count",
		q.CountCypher())
}

func TestRelationQuery_RenderIsRepeatable(t *testing.T) {
	t.Parallel()

	q := fullQuery()
	first := q.Cypher()
	assert.Equal(t, first, q.Cypher())

	q.Limit(3)
	assert.Equal(t, fullMatch+" "+fullWhere+" RETURN r ORDER BY r.value, n1.name ASC LIMIT 3", q.Cypher())
}

func TestRelationQuery_MatchClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    *RelationQuery
		want string
	}{
		{"type only", NewRelationQuery().Type("KNOWS"), "MATCH p=(n1)-[r:KNOWS]->(n2)"},
		{"start label", NewRelationQuery().StartNode(NoID, "User"), "MATCH p=(n1:User)-[r]->(n2)"},
		{"end label", NewRelationQuery().EndNode(NoID, "Post"), "MATCH p=(n1)-[r]->(n2:Post)"},
		{"quoted type", NewRelationQuery().Type("KNOWS WELL"), "MATCH p=(n1)-[r:`KNOWS WELL`]->(n2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.MatchClause())
		})
	}
}

func TestRelationQuery_WhereClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    *RelationQuery
		want string
	}{
		{"start id", NewRelationQuery().StartNode(0, ""), "WHERE ID(n1) = 0"},
		{"end id", NewRelationQuery().EndNode(9, ""), "WHERE ID(n2) = 9"},
		{"relation filter", NewRelationQuery().RelationWhere(MustWhere("w", Cond{OpEq: 1})), "WHERE r.w = 1"},
		{"end filter", NewRelationQuery().EndNodeWhere(MustWhere("w", Cond{OpEq: 1})), "WHERE n2.w = 1"},
		{
			"filters follow ids",
			NewRelationQuery().
				EndNodeWhere(MustWhere("c", Cond{OpEq: 3})).
				StartNodeWhere(MustWhere("b", Cond{OpEq: 2})).
				RelationWhere(MustWhere("a", Cond{OpEq: 1})).
				EndNode(5, "").
				StartNode(4, ""),
			"WHERE ID(n1) = 4 AND ID(n2) = 5 AND r.a = 1 AND n1.b = 2 AND n2.c = 3",
		},
		{"empty group skipped", NewRelationQuery().RelationWhere(And()), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.WhereClause())
		})
	}
}

func TestRelationQuery_WhereStampsVariable(t *testing.T) {
	t.Parallel()

	w := MustWhere("name", Cond{OpEq: "Test1"})

	NewRelationQuery().StartNodeWhere(w)
	assert.Equal(t, StartNodeVar, w.Variable())

	NewRelationQuery().EndNodeWhere(w)
	assert.Equal(t, EndNodeVar, w.Variable())

	NewRelationQuery().RelationWhere(w)
	assert.Equal(t, RelationVar, w.Variable())
}

func TestRelationQuery_NilWhereClears(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery().
		RelationWhere(MustWhere("a", Cond{OpEq: 1})).
		StartNodeWhere(MustWhere("b", Cond{OpEq: 1})).
		EndNodeWhere(MustWhere("c", Cond{OpEq: 1}))

	q.RelationWhere(nil).StartNodeWhere(nil).EndNodeWhere(nil)
	assert.Empty(t, q.WhereClause())
}

func TestRelationQuery_InvalidSettersAreIgnored(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery().
		Type("relatedto").
		StartNode(1, "Test").
		EndNode(2, "Test").
		Limit(5).
		DescOrderBy(Props("value"), nil, nil).
		ReturnRelation("value")
	want := q.Cypher()

	q.Type("").
		StartNode(-3, "").
		EndNode(NoID, "").
		Limit(-1).
		AscOrderBy(nil, []string{}, Props("")).
		ReturnRelation().
		ReturnRelation("value", "").
		ReturnStartNode().
		ReturnEndNode("")

	assert.Equal(t, want, q.Cypher())
	assert.Equal(t,
		"MATCH p=(n1:Test)-[r:relatedto]->(n2:Test) WHERE ID(n1) = 1 AND ID(n2) = 2 RETURN r.value ORDER BY r.value DESC LIMIT 5",
		q.Cypher())
}

func TestRelationQuery_EndpointArgumentsAreIndependent(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery().StartNode(1, "").StartNode(NoID, "User")
	assert.Equal(t, "MATCH p=(n1:User)-[r]->(n2) WHERE ID(n1) = 1 RETURN r", q.Cypher())

	q.EndNode(4, "").EndNode(NoID, "Post").EndNode(7, "")
	assert.Equal(t, "MATCH p=(n1:User)-[r]->(n2:Post) WHERE ID(n1) = 1 AND ID(n2) = 7 RETURN r", q.Cypher())
}

func TestRelationQuery_OrderBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    *RelationQuery
		want string
	}{
		{"desc relation", NewRelationQuery().DescOrderBy(Props("value"), nil, nil), "ORDER BY r.value DESC"},
		{"asc all", NewRelationQuery().AscOrderBy(Props("a", "b"), Props("c"), Props("d")), "ORDER BY r.a, r.b, n1.c, n2.d ASC"},
		{"end only", NewRelationQuery().AscOrderBy(nil, nil, Props("d")), "ORDER BY n2.d ASC"},
		{"invalid list dropped", NewRelationQuery().DescOrderBy(Props(""), Props("c"), nil), "ORDER BY n1.c DESC"},
		{
			"later call replaces earlier",
			NewRelationQuery().AscOrderBy(Props("a"), Props("b"), nil).DescOrderBy(nil, nil, Props("z")),
			"ORDER BY n2.z DESC",
		},
		{
			"ignored call keeps earlier",
			NewRelationQuery().AscOrderBy(Props("a"), nil, nil).DescOrderBy(nil, nil, nil),
			"ORDER BY r.a ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.OrderByClause())
		})
	}
}

func TestRelationQuery_OrderByCopiesInput(t *testing.T) {
	t.Parallel()

	props := Props("a")
	q := NewRelationQuery().AscOrderBy(props, nil, nil)
	props[0] = "b"
	assert.Equal(t, "ORDER BY r.a ASC", q.OrderByClause())
}

func TestRelationQuery_Limit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LIMIT 0", NewRelationQuery().Limit(0).LimitClause())
	assert.Equal(t, "LIMIT 25", NewRelationQuery().Limit(25).LimitClause())
}

func TestRelationQuery_ReturnClause(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery()
	assert.Equal(t, "RETURN r", q.ReturnClause(false))
	assert.Equal(t, "RETURN r, n1, n2", q.ReturnClause(true))

	q.ReturnRelation("value").ReturnStartNode("name", "value")
	assert.Equal(t, "RETURN r.value", q.ReturnClause(false))
	assert.Equal(t, "RETURN r.value, n1.name, n1.value, n2", q.ReturnClause(true))

	q.ReturnEndNode("name")
	assert.Equal(t, "RETURN r.value, n1.name, n1.value, n2.name", q.ReturnClause(true))
}

func TestRelationQuery_NodeReturnClause(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery()
	assert.Equal(t, "RETURN n1", q.NodeReturnClause(SelectStart, false))
	assert.Equal(t, "RETURN n2", q.NodeReturnClause(SelectEnd, false))
	assert.Equal(t, "RETURN n1, n2", q.NodeReturnClause(SelectBoth, false))
	assert.Equal(t, "RETURN DISTINCT n1", q.NodeReturnClause(SelectStart, true))

	q.ReturnEndNode("name")
	assert.Equal(t, "RETURN DISTINCT n1, n2.name", q.NodeReturnClause(SelectBoth, true))
}

func TestRelationQuery_NodesCypher(t *testing.T) {
	t.Parallel()

	q := fullQuery()
	assert.Equal(t,
		fullMatch+" "+fullWhere+" RETURN DISTINCT n1, n2 ORDER BY r.value, n1.name ASC LIMIT 10",
		q.NodesCypher(SelectBoth, true))
	assert.Equal(t,
		"MATCH p=(n1)-[r:KNOWS]->(n2) RETURN n2 LIMIT 1",
		NewRelationQuery().Type("KNOWS").Limit(1).NodesCypher(SelectEnd, false))
}

func TestRelationQuery_CountIgnoresProjectionOrderLimit(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery().
		Type("KNOWS").
		ReturnRelation("since").
		DescOrderBy(Props("since"), nil, nil).
		Limit(3)
	assert.Equal(t, "MATCH p=(n1)-[r:KNOWS]->(n2) RETURN COUNT(r) AS count", q.CountCypher())
}

func TestRelationQuery_WriteShapes(t *testing.T) {
	t.Parallel()

	q := NewRelationQuery().Type("KNOWS").StartNode(1, "").EndNode(2, "")
	assert.Equal(t,
		"MATCH p=(n1)-[r:KNOWS]->(n2) WHERE ID(n1) = 1 AND ID(n2) = 2 SET r += $props RETURN r",
		q.UpdateCypher("props"))
	assert.Equal(t,
		"MATCH p=(n1)-[r:KNOWS]->(n2) WHERE ID(n1) = 1 AND ID(n2) = 2 DELETE r RETURN COUNT(r) AS count",
		q.DeleteCypher())
}
