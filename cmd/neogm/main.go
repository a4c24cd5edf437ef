// Command neogm runs relation queries against Neo4j from the shell and prints the
// resulting records as JSON.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/saulfrancisco-ruizacevedo/go-neogm"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "neogm",
		Usage: "Create, query and delete Neo4j relations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML config file",
				Value: neogm.DefaultConfigFile,
			},
			&cli.StringFlag{
				Name:    "uri",
				Usage:   "Neo4j connection URI",
				Sources: cli.EnvVars(neogm.EnvNeo4jURI),
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "Neo4j username",
				Sources: cli.EnvVars(neogm.EnvNeo4jUser),
			},
			&cli.StringFlag{
				Name:    "pass",
				Usage:   "Neo4j password",
				Sources: cli.EnvVars(neogm.EnvNeo4jPassword),
			},
			&cli.StringFlag{
				Name:    "database",
				Usage:   "Neo4j database name",
				Sources: cli.EnvVars(neogm.EnvNeo4jDatabase),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log every executed query",
			},
		},
		Commands: []*cli.Command{
			relateCommand(),
			findCommand(),
			countCommand(),
			existsCommand(),
			updateCommand(),
			deleteCommand(),
			deleteManyCommand(),
			cypherCommand(),
		},
	}
}
