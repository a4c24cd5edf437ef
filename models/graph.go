// Package models holds the serializable graph view returned by PersistenceManager.FindGraph.
// It is shaped for graph visualization clients (D3.js, Cytoscape.js) that expect a flat
// list of nodes and a flat list of edges.
package models

// GraphNode is a node of a graph result.
type GraphNode struct {
	// ID is the internal Neo4j id of the node.
	ID int64 `json:"id"`

	Labels []string `json:"labels"`

	Properties map[string]interface{} `json:"properties"`
}

// Edge is a directed relation between two nodes of a graph result.
type Edge struct {
	// ID is the internal Neo4j id of the relation.
	ID int64 `json:"id"`

	// Source and Target are the internal ids of the start and end nodes.
	Source int64 `json:"source"`
	Target int64 `json:"target"`

	// Type is the relation type (e.g., "WROTE", "FOLLOWS").
	Type string `json:"type"`

	Properties map[string]interface{} `json:"properties"`
}

// GraphResult is the de-duplicated set of nodes and edges of a query.
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}

// Empty reports whether the result holds neither nodes nor edges.
func (g *GraphResult) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}
