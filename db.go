// Package neogm is an object-graph-mapping layer over Neo4j. It offers node and relation
// CRUD helpers and a fluent relation query builder that renders Cypher, runs it through the
// official Neo4j Go driver and maps the results back into flattened records.
package neogm

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jExecutor is the DBRunner backed by the official Neo4j Go driver. The driver owns
// connection pooling and is safe for concurrent use, so a single executor is shared by
// the whole process.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string

	logger *zap.Logger
}

// ExecutorOption configures a Neo4jExecutor.
type ExecutorOption func(*Neo4jExecutor)

// WithExecutorLogger sets the logger used to trace executed queries.
func WithExecutorLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Neo4jExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// It creates the driver with the provided credentials but does not open a connection;
// call Verify for that.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username: The username for authentication. An empty username disables authentication.
//   - password: The password for authentication.
//   - dbName: The name of the database to connect to (e.g., "neo4j").
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(uri, username, password, dbName string, opts ...ExecutorOption) (*Neo4jExecutor, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}

	e := &Neo4jExecutor{Driver: driver, DBName: dbName, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Connect creates an executor from cfg and verifies connectivity, closing the driver
// again if the database cannot be reached.
func Connect(ctx context.Context, cfg Neo4jConfig, opts ...ExecutorOption) (*Neo4jExecutor, error) {
	e, err := NewNeo4jExecutor(cfg.URI, cfg.Username, cfg.Password, cfg.Database, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.Verify(ctx); err != nil {
		_ = e.Driver.Close(ctx)
		return nil, fmt.Errorf("could not connect to Neo4j at %s: %w", cfg.URI, err)
	}
	e.logger.Info("connected to neo4j", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))
	return e, nil
}

// Verify checks the connectivity to the Neo4j database.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver and every pooled connection.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	if err := e.Driver.Close(ctx); err != nil {
		return fmt.Errorf("could not close Neo4j driver: %w", err)
	}
	return nil
}

// Run executes a Cypher query using ExecuteQuery, which handles session and transaction
// management automatically. It is suitable for both read and write operations.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query string to execute.
//   - params: A map of parameters to be used in the query.
//
// Returns:
//
//	An EagerResult containing all buffered records from the query, or an error if
//	the execution fails.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	start := time.Now()
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer, // Buffers all results in memory before returning.
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		e.logger.Error("query failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	e.logger.Debug("query executed",
		zap.String("query", query),
		zap.Int("records", len(result.Records)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
