package neogm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"
)

// Repository maps the struct type T to nodes through its `crud` tags and addresses them
// by primary key. Use NodeID to obtain the internal id that Relations works with.
type Repository[T any] struct {
	runner DBRunner
	meta   *entityMetadata
	logger *zap.Logger
}

// NewRepository reads the `crud` tags of T and returns a repository running its queries
// through runner.
//
// Parameters:
//   - runner: The DBRunner every lookup, save and delete of T goes through.
//
// Returns:
//
//	The repository, or the tag parsing error when T has no primary key or an unknown
//	tag component.
func NewRepository[T any](runner DBRunner) (*Repository[T], error) {
	meta, err := parseTags[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{runner: runner, meta: meta, logger: zap.NewNop()}, nil
}

// Label returns the node label T is stored under.
func (r *Repository[T]) Label() string {
	return r.meta.Label
}

// Save creates the node of entity or updates it, keyed on the primary key.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	val := reflect.ValueOf(entity).Elem()
	mergeProps := map[string]interface{}{r.meta.PKProp: val.FieldByName(r.meta.PKField).Interface()}

	setProps := make(map[string]interface{})
	for fieldName, propName := range r.meta.Mappings {
		if fieldName != r.meta.PKField {
			setProps[NodeVar+"."+propName] = val.FieldByName(fieldName).Interface()
		}
	}

	qb := gocypher.NewQueryBuilder().Merge(gocypher.N(NodeVar, r.meta.Label).WithProperties(mergeProps))
	if len(setProps) > 0 {
		qb = qb.Set(setProps)
	}
	query, params, err := qb.Return(NodeVar).Build()
	if err != nil {
		return fmt.Errorf("could not build save query: %w", err)
	}
	if _, err := r.runner.Run(ctx, query, params); err != nil {
		return err
	}
	r.logger.Debug("entity saved", zap.String("label", r.meta.Label))
	return nil
}

// FindByID returns the entity with primary key id, or ErrNotFound.
func (r *Repository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	node, err := r.findNode(ctx, id)
	if err != nil {
		return nil, err
	}
	entity := new(T)
	if err := mapNodeToStruct(node, entity, r.meta); err != nil {
		return nil, err
	}
	return entity, nil
}

// NodeID returns the internal id of the node holding the entity with primary key id.
func (r *Repository[T]) NodeID(ctx context.Context, id interface{}) (int64, error) {
	node, err := r.findNode(ctx, id)
	if err != nil {
		return NoID, err
	}
	return node.Id, nil
}

// FindAll returns every entity stored under T's label.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	return r.find(ctx, nil)
}

// FindByProperty returns every entity whose property prop equals value.
func (r *Repository[T]) FindByProperty(ctx context.Context, prop string, value interface{}) ([]*T, error) {
	if prop == "" {
		return nil, ErrMissingProperty
	}
	return r.find(ctx, map[string]interface{}{prop: value})
}

// Delete removes the entity with primary key id together with its relations.
func (r *Repository[T]) Delete(ctx context.Context, id interface{}) error {
	props := map[string]interface{}{r.meta.PKProp: id}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N(NodeVar, r.meta.Label).WithProperties(props)).
		DetachDelete(NodeVar).
		Build()
	if err != nil {
		return fmt.Errorf("could not build delete query: %w", err)
	}
	_, err = r.runner.Run(ctx, query, params)
	return err
}

func (r *Repository[T]) findNode(ctx context.Context, id interface{}) (neo4j.Node, error) {
	props := map[string]interface{}{r.meta.PKProp: id}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N(NodeVar, r.meta.Label).WithProperties(props)).
		Return(NodeVar).
		Build()
	if err != nil {
		return neo4j.Node{}, fmt.Errorf("could not build lookup query: %w", err)
	}

	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return neo4j.Node{}, err
	}
	switch n := len(result.Records); {
	case n == 0:
		return neo4j.Node{}, ErrNotFound
	case n > 1:
		// A primary key lookup must be unique.
		return neo4j.Node{}, fmt.Errorf("expected 1 %s record but found %d", r.meta.Label, n)
	}
	return nodeFrom(result.Records[0], NodeVar)
}

// find returns the entities whose properties equal props; nil props matches every node
// under T's label.
func (r *Repository[T]) find(ctx context.Context, props map[string]interface{}) ([]*T, error) {
	qb := gocypher.NewQueryBuilder()
	if props == nil {
		qb = qb.Match(gocypher.N(NodeVar, r.meta.Label))
	} else {
		qb = qb.Match(gocypher.N(NodeVar, r.meta.Label).WithProperties(props))
	}
	query, params, err := qb.Return(NodeVar).Build()
	if err != nil {
		return nil, fmt.Errorf("could not build find query: %w", err)
	}
	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	entities := make([]*T, 0, len(result.Records))
	for _, row := range result.Records {
		node, err := nodeFrom(row, NodeVar)
		if err != nil {
			return nil, err
		}
		entity := new(T)
		if err := mapNodeToStruct(node, entity, r.meta); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func nodeFrom(row *neo4j.Record, variable string) (neo4j.Node, error) {
	value, ok := row.Get(variable)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("could not find return value '%s' in query result", variable)
	}
	node, ok := value.(neo4j.Node)
	if !ok {
		return neo4j.Node{}, fmt.Errorf("return value '%s' is not a node", variable)
	}
	return node, nil
}

// mapNodeToStruct populates the tagged fields of entity from the node properties.
// Numeric properties are converted to the field type (Neo4j returns every integer as int64).
func mapNodeToStruct(node neo4j.Node, entity any, meta *entityMetadata) error {
	val := reflect.ValueOf(entity).Elem()

	for fieldName, propName := range meta.Mappings {
		field := val.FieldByName(fieldName)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		propValue, ok := node.Props[propName]
		if !ok || propValue == nil {
			continue
		}

		pv := reflect.ValueOf(propValue)
		switch {
		case pv.Type().AssignableTo(field.Type()):
			field.Set(pv)
		case pv.Type().ConvertibleTo(field.Type()) && pv.Kind() != reflect.String && field.Kind() != reflect.String:
			field.Set(pv.Convert(field.Type()))
		default:
			return fmt.Errorf("property %s: cannot assign %T to field %s of type %s", propName, propValue, fieldName, field.Type())
		}
	}
	return nil
}
