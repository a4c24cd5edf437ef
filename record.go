package neogm

import (
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record is a flattened graph element: the internal id under "id", the relation type
// under "type" for relations, and every property merged at the top level. Populated
// relation records also carry the endpoint records under "start" and "end".
type Record map[string]any

// Keys used in flattened records.
const (
	KeyID    = "id"
	KeyType  = "type"
	KeyStart = "start"
	KeyEnd   = "end"
	KeyCount = "count"
)

// ID returns the internal id of the record, or -1 when it has none.
func (r Record) ID() int64 {
	if id, ok := r[KeyID].(int64); ok {
		return id
	}
	return -1
}

func relationRecord(rel neo4j.Relationship) Record {
	rec := make(Record, len(rel.Props)+2)
	for k, v := range rel.Props {
		rec[k] = v
	}
	rec[KeyID] = rel.Id
	rec[KeyType] = rel.Type
	return rec
}

func nodeRecord(node neo4j.Node) Record {
	rec := make(Record, len(node.Props)+1)
	for k, v := range node.Props {
		rec[k] = v
	}
	rec[KeyID] = node.Id
	return rec
}

// recordFor extracts the element bound to variable from a row. Whole elements are
// flattened; projected columns such as "r.value" are regrouped under their variable.
func recordFor(row *neo4j.Record, variable string) (Record, bool) {
	if value, ok := row.Get(variable); ok {
		switch v := value.(type) {
		case neo4j.Relationship:
			return relationRecord(v), true
		case neo4j.Node:
			return nodeRecord(v), true
		case map[string]any:
			rec := make(Record, len(v))
			for k, val := range v {
				rec[k] = val
			}
			return rec, true
		}
		return nil, false
	}

	prefix := variable + "."
	var rec Record
	for i, key := range row.Keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if rec == nil {
			rec = make(Record)
		}
		rec[unquoteName(strings.TrimPrefix(key, prefix))] = row.Values[i]
	}
	return rec, rec != nil
}

func unquoteName(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "`") && strings.HasSuffix(name, "`") {
		return strings.ReplaceAll(name[1:len(name)-1], "``", "`")
	}
	return name
}

func mapRelationRows(result *neo4j.EagerResult, populated bool) ([]Record, error) {
	records := make([]Record, 0, len(result.Records))
	for _, row := range result.Records {
		rec, ok := recordFor(row, RelationVar)
		if !ok {
			return nil, fmt.Errorf("could not find return value '%s' in query result", RelationVar)
		}
		if populated {
			if start, ok := recordFor(row, StartNodeVar); ok {
				rec[KeyStart] = start
			}
			if end, ok := recordFor(row, EndNodeVar); ok {
				rec[KeyEnd] = end
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// mapNodeRows maps node projection rows. A single selected endpoint maps straight to its
// node record; SelectBoth yields records holding "start" and "end".
func mapNodeRows(result *neo4j.EagerResult, sel NodeSelection) ([]Record, error) {
	records := make([]Record, 0, len(result.Records))
	for _, row := range result.Records {
		var rec Record
		var ok bool
		switch sel {
		case SelectStart:
			rec, ok = recordFor(row, StartNodeVar)
		case SelectEnd:
			rec, ok = recordFor(row, EndNodeVar)
		default:
			start, okStart := recordFor(row, StartNodeVar)
			end, okEnd := recordFor(row, EndNodeVar)
			rec, ok = Record{KeyStart: start, KeyEnd: end}, okStart && okEnd
		}
		if !ok {
			return nil, fmt.Errorf("query result does not hold the selected node(s)")
		}
		records = append(records, rec)
	}
	return records, nil
}

func mapNodeRecords(result *neo4j.EagerResult, variable string) ([]Record, error) {
	records := make([]Record, 0, len(result.Records))
	for _, row := range result.Records {
		rec, ok := recordFor(row, variable)
		if !ok {
			return nil, fmt.Errorf("could not find return value '%s' in query result", variable)
		}
		records = append(records, rec)
	}
	return records, nil
}

// countFrom reads the "count" column of the first row. An empty result counts as zero.
func countFrom(result *neo4j.EagerResult) (int64, error) {
	if len(result.Records) == 0 {
		return 0, nil
	}
	value, ok := result.Records[0].Get(KeyCount)
	if !ok {
		return 0, fmt.Errorf("could not find return value '%s' in query result", KeyCount)
	}
	n, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("return value '%s' is %T, not an integer", KeyCount, value)
	}
	return n, nil
}
