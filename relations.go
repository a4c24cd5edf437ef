package neogm

import (
	"context"

	"go.uber.org/zap"
)

// Relations exposes the relation verbs of the OGM. Every verb validates its arguments
// before touching the database, builds a RelationQuery, runs exactly one query through the
// DBRunner and maps the rows to flattened records.
//
// Relations holds no per-call state and is safe for concurrent use when its DBRunner is.
type Relations struct {
	runner DBRunner
	logger *zap.Logger
}

// NewRelations creates the relation facade. A nil logger disables logging.
func NewRelations(runner DBRunner, logger *zap.Logger) *Relations {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relations{runner: runner, logger: logger}
}

// Relate creates a relation of type relType from startID to endID with the initial
// properties props.
//
// Returns:
//
//	The created relation record, ErrNotFound if either node does not exist, a validation
//	error, or the driver error.
func (rs *Relations) Relate(ctx context.Context, startID, endID int64, relType string, props map[string]any) (Record, error) {
	if err := validateEndpoints(startID, endID, relType); err != nil {
		return nil, err
	}

	query := "MATCH (" + StartNodeVar + "), (" + EndNodeVar + ")" +
		" WHERE ID(" + StartNodeVar + ") = $start AND ID(" + EndNodeVar + ") = $end" +
		" CREATE (" + StartNodeVar + ")-[" + RelationVar + ":" + quoteName(relType) + " $props]->(" + EndNodeVar + ")" +
		" RETURN " + RelationVar
	params := map[string]any{"start": startID, "end": endID, "props": propsOrEmpty(props)}

	records, err := rs.runRelations(ctx, query, params, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	rs.logger.Debug("relation created",
		zap.Int64("id", records[0].ID()),
		zap.String("type", relType),
		zap.Int64("start", startID),
		zap.Int64("end", endID))
	return records[0], nil
}

// Update merges props into the relation with internal id relID. Its type and endpoints
// never change.
func (rs *Relations) Update(ctx context.Context, relID int64, props map[string]any) (Record, error) {
	if relID < 0 {
		return nil, ErrInvalidRelationID
	}

	query := "MATCH ()-[" + RelationVar + "]->() WHERE ID(" + RelationVar + ") = $id" +
		" SET " + RelationVar + " += $props RETURN " + RelationVar
	records, err := rs.runRelations(ctx, query, map[string]any{"id": relID, "props": propsOrEmpty(props)}, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// UpdateMany merges props into every relation of type relType between startID and endID
// matching filter, and returns the matched relations. filter must be nil or a *Where.
func (rs *Relations) UpdateMany(ctx context.Context, startID, endID int64, relType string, props map[string]any, filter Filter) ([]Record, error) {
	q, err := relationQueryFor(startID, endID, relType, filter)
	if err != nil {
		return nil, err
	}
	return rs.runRelations(ctx, q.UpdateCypher("props"), map[string]any{"props": propsOrEmpty(props)}, false)
}

// Find returns the relations of type relType between startID and endID matching filter.
// No match yields an empty slice.
func (rs *Relations) Find(ctx context.Context, startID, endID int64, relType string, filter Filter) ([]Record, error) {
	q, err := relationQueryFor(startID, endID, relType, filter)
	if err != nil {
		return nil, err
	}
	return rs.Query(ctx, q)
}

// FindPopulated is Find with each record also holding its "start" and "end" node records.
func (rs *Relations) FindPopulated(ctx context.Context, startID, endID int64, relType string, filter Filter) ([]Record, error) {
	q, err := relationQueryFor(startID, endID, relType, filter)
	if err != nil {
		return nil, err
	}
	return rs.QueryPopulated(ctx, q)
}

// Count returns how many relations Find would return for the same arguments.
func (rs *Relations) Count(ctx context.Context, startID, endID int64, relType string, filter Filter) (int64, error) {
	q, err := relationQueryFor(startID, endID, relType, filter)
	if err != nil {
		return 0, err
	}
	return rs.QueryCount(ctx, q)
}

// Exists reports whether Count would be greater than zero. It fetches at most one row.
func (rs *Relations) Exists(ctx context.Context, startID, endID int64, relType string, filter Filter) (bool, error) {
	q, err := relationQueryFor(startID, endID, relType, filter)
	if err != nil {
		return false, err
	}
	records, err := rs.QueryNodes(ctx, q.Limit(1), SelectStart, false)
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// DeleteRelation deletes the relation with internal id relID. It returns ErrNotFound when
// no such relation exists.
func (rs *Relations) DeleteRelation(ctx context.Context, relID int64) error {
	if relID < 0 {
		return ErrInvalidRelationID
	}

	query := "MATCH ()-[" + RelationVar + "]->() WHERE ID(" + RelationVar + ") = $id" +
		" DELETE " + RelationVar + " RETURN COUNT(" + RelationVar + ") AS count"
	result, err := rs.runner.Run(ctx, query, map[string]any{"id": relID})
	if err != nil {
		return err
	}
	n, err := countFrom(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany deletes every relation of type relType between startID and endID matching
// filter and returns how many were deleted. filter must be nil or a *Where.
func (rs *Relations) DeleteMany(ctx context.Context, startID, endID int64, relType string, filter Filter) (int64, error) {
	q, err := relationQueryFor(startID, endID, relType, filter)
	if err != nil {
		return 0, err
	}
	result, err := rs.runner.Run(ctx, q.DeleteCypher(), nil)
	if err != nil {
		return 0, err
	}
	return countFrom(result)
}

// Query runs a caller-built query and returns the matched relations.
func (rs *Relations) Query(ctx context.Context, q *RelationQuery) ([]Record, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	return rs.runRelations(ctx, q.Cypher(), nil, false)
}

// QueryPopulated runs a caller-built query and returns the matched relations with their
// endpoints.
func (rs *Relations) QueryPopulated(ctx context.Context, q *RelationQuery) ([]Record, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	return rs.runRelations(ctx, q.PopulatedCypher(), nil, true)
}

// QueryNodes runs a caller-built query projecting only the selected endpoint(s).
func (rs *Relations) QueryNodes(ctx context.Context, q *RelationQuery, sel NodeSelection, distinct bool) ([]Record, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	result, err := rs.runner.Run(ctx, q.NodesCypher(sel, distinct), nil)
	if err != nil {
		return nil, err
	}
	return mapNodeRows(result, sel)
}

// QueryCount runs the count variant of a caller-built query.
func (rs *Relations) QueryCount(ctx context.Context, q *RelationQuery) (int64, error) {
	if q == nil {
		return 0, ErrNilQuery
	}
	result, err := rs.runner.Run(ctx, q.CountCypher(), nil)
	if err != nil {
		return 0, err
	}
	return countFrom(result)
}

func (rs *Relations) runRelations(ctx context.Context, query string, params map[string]any, populated bool) ([]Record, error) {
	result, err := rs.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return mapRelationRows(result, populated)
}

func validateEndpoints(startID, endID int64, relType string) error {
	if startID < 0 || endID < 0 {
		return ErrInvalidNodeID
	}
	if relType == "" {
		return ErrMissingRelationType
	}
	return nil
}

// relationQueryFor validates the common verb arguments and builds the matching query.
func relationQueryFor(startID, endID int64, relType string, filter Filter) (*RelationQuery, error) {
	if err := validateEndpoints(startID, endID, relType); err != nil {
		return nil, err
	}
	w, err := whereOf(filter)
	if err != nil {
		return nil, err
	}
	return NewRelationQuery().
		StartNode(startID, "").
		EndNode(endID, "").
		Type(relType).
		RelationWhere(w), nil
}

// whereOf accepts a nil filter, a nil *Where or a *Where. Any other Filter is rejected:
// only *Where can be scoped to a pattern variable.
func whereOf(filter Filter) (*Where, error) {
	if filter == nil {
		return nil, nil
	}
	w, ok := filter.(*Where)
	if !ok {
		return nil, ErrInvalidFilter
	}
	return w, nil
}

func propsOrEmpty(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
