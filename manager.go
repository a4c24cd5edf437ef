package neogm

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/go-neogm/models"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"
)

// PersistenceManager is the entry point of the OGM. It owns the shared DBRunner and
// logger and hands out the node, relation and entity facades built on them.
type PersistenceManager struct {
	runner DBRunner
	logger *zap.Logger

	relations *Relations
	nodes     *Nodes

	// metaCache maps reflect.Type to its parsed *entityMetadata.
	metaCache sync.Map
}

// ManagerOption configures a PersistenceManager.
type ManagerOption func(*PersistenceManager)

// WithLogger sets the logger shared by every facade of the manager.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(pm *PersistenceManager) {
		if logger != nil {
			pm.logger = logger
		}
	}
}

// NewPersistenceManager wires the facades to runner. Without WithLogger nothing is logged.
func NewPersistenceManager(runner DBRunner, opts ...ManagerOption) *PersistenceManager {
	pm := &PersistenceManager{runner: runner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(pm)
	}
	pm.relations = NewRelations(runner, pm.logger.Named("relations"))
	pm.nodes = NewNodes(runner, pm.logger.Named("nodes"))
	return pm
}

// Relations returns the relation facade.
func (pm *PersistenceManager) Relations() *Relations {
	return pm.relations
}

// Nodes returns the node facade.
func (pm *PersistenceManager) Nodes() *Nodes {
	return pm.nodes
}

// RepositoryFor returns a Repository for T sharing the runner and logger of pm.
func RepositoryFor[T any](pm *PersistenceManager) (*Repository[T], error) {
	repo, err := NewRepository[T](pm.runner)
	if err != nil {
		return nil, err
	}
	repo.logger = pm.logger.Named("repository").With(zap.String("label", repo.meta.Label))
	return repo, nil
}

// CreateRelation creates a relation of type relType from fromEntity to toEntity, two
// tagged entities already saved through a Repository. It returns ErrNotFound when either
// entity has no node.
func (pm *PersistenceManager) CreateRelation(ctx context.Context, fromEntity any, toEntity any, relType string, relProps map[string]interface{}) error {
	if relType == "" {
		return ErrMissingRelationType
	}
	fromMeta, fromPK, err := pm.getEntityMetaAndPK(fromEntity)
	if err != nil {
		return err
	}
	toMeta, toPK, err := pm.getEntityMetaAndPK(toEntity)
	if err != nil {
		return err
	}

	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N(StartNodeVar, fromMeta.Label).WithProperties(map[string]interface{}{fromMeta.PKProp: fromPK})).
		Match(gocypher.N(EndNodeVar, toMeta.Label).WithProperties(map[string]interface{}{toMeta.PKProp: toPK})).
		Create(
			gocypher.N(StartNodeVar, ""),
			gocypher.R(RelationVar, relType).To().WithProperties(propsOrEmpty(relProps)),
			gocypher.N(EndNodeVar, ""),
		).
		Return(RelationVar).
		Build()
	if err != nil {
		return fmt.Errorf("could not build relation query: %w", err)
	}

	result, err := pm.runner.Run(ctx, query, params)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return ErrNotFound
	}
	pm.logger.Debug("entity relation created",
		zap.String("type", relType),
		zap.String("from", fromMeta.Label),
		zap.String("to", toMeta.Label))
	return nil
}

// getEntityMetaAndPK returns the cached metadata of an entity and its primary key value.
func (pm *PersistenceManager) getEntityMetaAndPK(entity any) (*entityMetadata, any, error) {
	val := reflect.ValueOf(entity)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, nil, fmt.Errorf("entity must be a non-nil pointer")
	}
	typ := val.Elem().Type()

	var meta *entityMetadata
	if cached, ok := pm.metaCache.Load(typ); ok {
		meta = cached.(*entityMetadata)
	} else {
		parsed, err := parseTagsFromType(typ)
		if err != nil {
			return nil, nil, err
		}
		actual, _ := pm.metaCache.LoadOrStore(typ, parsed)
		meta = actual.(*entityMetadata)
	}

	return meta, val.Elem().FieldByName(meta.PKField).Interface(), nil
}

// FindGraph runs the populated variant of q and collects the matched relations and their
// endpoints into a graph, each node and edge appearing once however many rows return it.
// No match yields an empty graph.
func (pm *PersistenceManager) FindGraph(ctx context.Context, q *RelationQuery) (*models.GraphResult, error) {
	if q == nil {
		return nil, ErrNilQuery
	}

	result, err := pm.runner.Run(ctx, q.PopulatedCypher(), nil)
	if err != nil {
		return nil, err
	}

	graph := &models.GraphResult{
		Nodes: make([]*models.GraphNode, 0),
		Edges: make([]*models.Edge, 0),
	}
	seenNodes := make(map[int64]bool)
	seenEdges := make(map[int64]bool)

	for _, record := range result.Records {
		for _, value := range record.Values {
			switch v := value.(type) {
			case neo4j.Node:
				if !seenNodes[v.Id] {
					graph.Nodes = append(graph.Nodes, &models.GraphNode{
						ID:         v.Id,
						Labels:     v.Labels,
						Properties: v.Props,
					})
					seenNodes[v.Id] = true
				}

			case neo4j.Relationship:
				if !seenEdges[v.Id] {
					graph.Edges = append(graph.Edges, &models.Edge{
						ID:         v.Id,
						Source:     v.StartId,
						Target:     v.EndId,
						Type:       v.Type,
						Properties: v.Props,
					})
					seenEdges[v.Id] = true
				}
			}
		}
	}

	pm.logger.Debug("graph loaded", zap.Int("nodes", len(graph.Nodes)), zap.Int("edges", len(graph.Edges)))
	return graph, nil
}
