package neogm

import (
	"context"

	"go.uber.org/zap"
)

// NodeVar is the pattern variable bound by node queries.
const NodeVar = "n"

// Nodes offers CRUD helpers for nodes addressed by their internal id. It complements
// Repository, which addresses nodes by a struct-tagged primary key.
type Nodes struct {
	runner DBRunner
	logger *zap.Logger
}

// NewNodes creates the node facade. A nil logger disables logging.
func NewNodes(runner DBRunner, logger *zap.Logger) *Nodes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nodes{runner: runner, logger: logger}
}

// Create creates a node with the given label and properties.
func (ns *Nodes) Create(ctx context.Context, label string, props map[string]any) (Record, error) {
	if label == "" {
		return nil, ErrMissingLabel
	}
	query := "CREATE (" + NodeVar + ":" + quoteName(label) + " $props) RETURN " + NodeVar
	rec, err := ns.one(ctx, query, map[string]any{"props": propsOrEmpty(props)})
	if err != nil {
		return nil, err
	}
	ns.logger.Debug("node created", zap.String("label", label), zap.Int64("id", rec.ID()))
	return rec, nil
}

// FindByID returns the node with internal id id, or ErrNotFound.
func (ns *Nodes) FindByID(ctx context.Context, id int64) (Record, error) {
	if id < 0 {
		return nil, ErrInvalidNodeID
	}
	query := "MATCH (" + NodeVar + ") WHERE ID(" + NodeVar + ") = $id RETURN " + NodeVar
	return ns.one(ctx, query, map[string]any{"id": id})
}

// Find returns the nodes carrying label (any node when label is empty) that match filter.
// filter must be nil or a *Where.
func (ns *Nodes) Find(ctx context.Context, label string, filter Filter) ([]Record, error) {
	w, err := whereOf(filter)
	if err != nil {
		return nil, err
	}

	query := "MATCH (" + NodeVar
	if label != "" {
		query += ":" + quoteName(label)
	}
	query += ")"
	if w != nil {
		w.SetVariable(NodeVar)
		if c := w.Clause(); c != "" {
			query += " WHERE " + c
		}
	}
	query += " RETURN " + NodeVar

	result, err := ns.runner.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	return mapNodeRecords(result, NodeVar)
}

// Update merges props into the node with internal id id.
func (ns *Nodes) Update(ctx context.Context, id int64, props map[string]any) (Record, error) {
	if id < 0 {
		return nil, ErrInvalidNodeID
	}
	query := "MATCH (" + NodeVar + ") WHERE ID(" + NodeVar + ") = $id SET " + NodeVar + " += $props RETURN " + NodeVar
	return ns.one(ctx, query, map[string]any{"id": id, "props": propsOrEmpty(props)})
}

// Delete removes the node with internal id id together with its relations.
func (ns *Nodes) Delete(ctx context.Context, id int64) error {
	if id < 0 {
		return ErrInvalidNodeID
	}
	query := "MATCH (" + NodeVar + ") WHERE ID(" + NodeVar + ") = $id DETACH DELETE " + NodeVar +
		" RETURN COUNT(" + NodeVar + ") AS count"
	result, err := ns.runner.Run(ctx, query, map[string]any{"id": id})
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

// CreateIndex creates a range index on label(property) unless it already exists.
func (ns *Nodes) CreateIndex(ctx context.Context, label, property string) error {
	if label == "" {
		return ErrMissingLabel
	}
	if property == "" {
		return ErrMissingProperty
	}
	query := "CREATE INDEX IF NOT EXISTS FOR (" + NodeVar + ":" + quoteName(label) + ") ON (" +
		ParseProperties([]string{property}, NodeVar) + ")"
	if _, err := ns.runner.Run(ctx, query, nil); err != nil {
		return err
	}
	ns.logger.Info("index ensured", zap.String("label", label), zap.String("property", property))
	return nil
}

func (ns *Nodes) one(ctx context.Context, query string, params map[string]any) (Record, error) {
	result, err := ns.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := mapNodeRecords(result, NodeVar)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}
