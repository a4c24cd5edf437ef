package neogm

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personNode(id int64, props map[string]any) neo4j.Node {
	return neo4j.Node{Id: id, Labels: []string{"taggedPerson"}, Props: props}
}

func TestRepository_FindByID(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []*neo4j.EagerResult{
		rows([]string{"n"}, []any{personNode(11, map[string]any{
			"personId": "p1",
			"name":     "Ada",
			"age":      int64(36),
		})}),
	}}
	repo, err := NewRepository[taggedPerson](runner)
	require.NoError(t, err)

	got, err := repo.FindByID(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, &taggedPerson{ID: "p1", Name: "Ada", Age: 36}, got)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.lastQuery(), "taggedPerson")
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository[taggedPerson](&fakeRunner{})
	require.NoError(t, err)

	_, err = repo.FindByID(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_FindByIDNotUnique(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []*neo4j.EagerResult{
		rows([]string{"n"}, []any{personNode(1, nil)}, []any{personNode(2, nil)}),
	}}
	repo, err := NewRepository[taggedPerson](runner)
	require.NoError(t, err)

	_, err = repo.FindByID(t.Context(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 taggedPerson record but found 2")
}

func TestRepository_NodeID(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []*neo4j.EagerResult{
		rows([]string{"n"}, []any{personNode(42, map[string]any{"personId": "p1"})}),
	}}
	repo, err := NewRepository[taggedPerson](runner)
	require.NoError(t, err)

	id, err := repo.NodeID(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = repo.NodeID(t.Context(), "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, NoID, id)
}

func TestRepository_FindAll(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []*neo4j.EagerResult{
		rows([]string{"n"},
			[]any{personNode(1, map[string]any{"personId": "p1", "name": "Ada"})},
			[]any{personNode(2, map[string]any{"personId": "p2", "name": nil})},
		),
	}}
	repo, err := NewRepository[taggedPerson](runner)
	require.NoError(t, err)

	got, err := repo.FindAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []*taggedPerson{{ID: "p1", Name: "Ada"}, {ID: "p2"}}, got)
}

func TestRepository_FindByPropertyNeedsName(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	repo, err := NewRepository[taggedPerson](runner)
	require.NoError(t, err)

	_, err = repo.FindByProperty(t.Context(), "", "x")
	assert.ErrorIs(t, err, ErrMissingProperty)
	assert.Empty(t, runner.calls)
}

func TestRepository_TypeMismatch(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []*neo4j.EagerResult{
		rows([]string{"n"}, []any{personNode(1, map[string]any{"personId": "p1", "age": "old"})}),
	}}
	repo, err := NewRepository[taggedPerson](runner)
	require.NoError(t, err)

	_, err = repo.FindByID(t.Context(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property age")
}

func TestRepository_SaveAndDeleteRunOneQuery(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	repo, err := NewRepository[labeledThing](runner)
	require.NoError(t, err)
	assert.Equal(t, "Thing", repo.Label())

	require.NoError(t, repo.Save(t.Context(), &labeledThing{Key: "k"}))
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.lastQuery(), "Thing")

	require.NoError(t, repo.Delete(t.Context(), "k"))
	assert.Len(t, runner.calls, 2)
}

func TestRepository_InvalidTags(t *testing.T) {
	t.Parallel()

	_, err := NewRepository[noPK](&fakeRunner{})
	assert.Error(t, err)
}
