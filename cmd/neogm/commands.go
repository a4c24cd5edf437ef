package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/saulfrancisco-ruizacevedo/go-neogm"
)

func propFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "prop",
		Usage: "Relation property as key=value (repeatable)",
	}
}

func whereFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "where",
		Usage: "Relation filter as field:op:value, e.g. value:gt:2 (repeatable, ANDed)",
	}
}

// endpointArgs reads the <start> <end> <type> arguments shared by the relation commands.
func endpointArgs(cmd *cli.Command) (int64, int64, string, error) {
	if cmd.Args().Len() < 3 {
		return 0, 0, "", fmt.Errorf("usage: neogm %s <start-id> <end-id> <type>", cmd.Name)
	}
	start, err := parseID(cmd.Args().Get(0), "start id")
	if err != nil {
		return 0, 0, "", err
	}
	end, err := parseID(cmd.Args().Get(1), "end id")
	if err != nil {
		return 0, 0, "", err
	}
	return start, end, cmd.Args().Get(2), nil
}

// withRelations parses the endpoint arguments and the --where filter, connects, and runs fn.
func withRelations(ctx context.Context, cmd *cli.Command, fn func(rs *neogm.Relations, start, end int64, relType string, filter *neogm.Where) error) error {
	start, end, relType, err := endpointArgs(cmd)
	if err != nil {
		return err
	}
	filter, err := parseWhere(cmd.StringSlice("where"))
	if err != nil {
		return err
	}

	pm, cleanup, err := openManager(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(pm.Relations(), start, end, relType, filter)
}

func relateCommand() *cli.Command {
	return &cli.Command{
		Name:      "relate",
		Usage:     "Create a relation between two nodes",
		ArgsUsage: "<start-id> <end-id> <type>",
		Flags:     []cli.Flag{propFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			props, err := parseProps(cmd.StringSlice("prop"))
			if err != nil {
				return err
			}
			return withRelations(ctx, cmd, func(rs *neogm.Relations, start, end int64, relType string, _ *neogm.Where) error {
				rec, err := rs.Relate(ctx, start, end, relType, props)
				if err != nil {
					return err
				}
				return printJSON(cmd, rec)
			})
		},
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "List the relations of a type between two nodes",
		ArgsUsage: "<start-id> <end-id> <type>",
		Flags: []cli.Flag{
			whereFlag(),
			&cli.BoolFlag{Name: "populated", Usage: "Include the start and end nodes"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRelations(ctx, cmd, func(rs *neogm.Relations, start, end int64, relType string, filter *neogm.Where) error {
				find := rs.Find
				if cmd.Bool("populated") {
					find = rs.FindPopulated
				}
				records, err := find(ctx, start, end, relType, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, records)
			})
		},
	}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Count the relations of a type between two nodes",
		ArgsUsage: "<start-id> <end-id> <type>",
		Flags:     []cli.Flag{whereFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRelations(ctx, cmd, func(rs *neogm.Relations, start, end int64, relType string, filter *neogm.Where) error {
				n, err := rs.Count(ctx, start, end, relType, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]int64{neogm.KeyCount: n})
			})
		},
	}
}

func existsCommand() *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "Tell whether a relation of a type links two nodes",
		ArgsUsage: "<start-id> <end-id> <type>",
		Flags:     []cli.Flag{whereFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRelations(ctx, cmd, func(rs *neogm.Relations, start, end int64, relType string, filter *neogm.Where) error {
				ok, err := rs.Exists(ctx, start, end, relType, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]bool{"exists": ok})
			})
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Merge properties into a relation",
		ArgsUsage: "<relation-id>",
		Flags:     []cli.Flag{propFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: neogm update <relation-id> --prop key=value")
			}
			id, err := parseID(cmd.Args().Get(0), "relation id")
			if err != nil {
				return err
			}
			props, err := parseProps(cmd.StringSlice("prop"))
			if err != nil {
				return err
			}

			pm, cleanup, err := openManager(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := pm.Relations().Update(ctx, id, props)
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a relation by id",
		ArgsUsage: "<relation-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: neogm delete <relation-id>")
			}
			id, err := parseID(cmd.Args().Get(0), "relation id")
			if err != nil {
				return err
			}

			pm, cleanup, err := openManager(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return pm.Relations().DeleteRelation(ctx, id)
		},
	}
}

func deleteManyCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete-many",
		Usage:     "Delete the relations of a type between two nodes",
		ArgsUsage: "<start-id> <end-id> <type>",
		Flags:     []cli.Flag{whereFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRelations(ctx, cmd, func(rs *neogm.Relations, start, end int64, relType string, filter *neogm.Where) error {
				n, err := rs.DeleteMany(ctx, start, end, relType, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]int64{"deleted": n})
			})
		},
	}
}

// cypherCommand renders a relation query without connecting to the database.
func cypherCommand() *cli.Command {
	return &cli.Command{
		Name:  "cypher",
		Usage: "Print the Cypher of a relation query without running it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "Relation type"},
			&cli.StringFlag{Name: "start", Usage: "Start node id"},
			&cli.StringFlag{Name: "end", Usage: "End node id"},
			&cli.StringFlag{Name: "start-label", Usage: "Start node label"},
			&cli.StringFlag{Name: "end-label", Usage: "End node label"},
			whereFlag(),
			&cli.StringFlag{Name: "asc", Usage: "Comma-separated relation properties to sort ascending"},
			&cli.StringFlag{Name: "desc", Usage: "Comma-separated relation properties to sort descending"},
			&cli.StringFlag{Name: "limit", Usage: "Maximum number of rows"},
			&cli.StringFlag{Name: "shape", Usage: "relations, populated, nodes or count", Value: "relations"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			switch shape := cmd.String("shape"); shape {
			case "relations":
				fmt.Fprintln(cmd.Root().Writer, q.Cypher())
			case "populated":
				fmt.Fprintln(cmd.Root().Writer, q.PopulatedCypher())
			case "nodes":
				fmt.Fprintln(cmd.Root().Writer, q.NodesCypher(neogm.SelectBoth, true))
			case "count":
				fmt.Fprintln(cmd.Root().Writer, q.CountCypher())
			default:
				return fmt.Errorf("unknown shape %q", shape)
			}
			return nil
		},
	}
}

func queryFromFlags(cmd *cli.Command) (*neogm.RelationQuery, error) {
	q := neogm.NewRelationQuery().Type(cmd.String("type"))

	for _, endpoint := range []struct {
		idFlag, labelFlag string
		set               func(int64, string) *neogm.RelationQuery
	}{
		{"start", "start-label", q.StartNode},
		{"end", "end-label", q.EndNode},
	} {
		id := neogm.NoID
		if cmd.IsSet(endpoint.idFlag) {
			parsed, err := parseID(cmd.String(endpoint.idFlag), endpoint.idFlag+" id")
			if err != nil {
				return nil, err
			}
			id = parsed
		}
		endpoint.set(id, cmd.String(endpoint.labelFlag))
	}

	filter, err := parseWhere(cmd.StringSlice("where"))
	if err != nil {
		return nil, err
	}
	q.RelationWhere(filter)

	if cmd.IsSet("asc") {
		q.AscOrderBy(splitProps(cmd.String("asc")), nil, nil)
	}
	if cmd.IsSet("desc") {
		q.DescOrderBy(splitProps(cmd.String("desc")), nil, nil)
	}
	if cmd.IsSet("limit") {
		n, err := parseID(cmd.String("limit"), "limit")
		if err != nil {
			return nil, err
		}
		q.Limit(int(n))
	}
	return q, nil
}
