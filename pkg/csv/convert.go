package csv

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// NodeToRecords converts an AST node to a slice of string records.
//
// For CSV, this converts:
//   - *ast.ArrayDataNode (file) → [][]string (slice of records)
//   - *ast.ArrayDataNode (record) → a single-record [][]string
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\n")
//	records, _ := csv.NodeToRecords(node)
//	// records is [][]string{{"name","age"}, {"Alice","30"}}
func NodeToRecords(node ast.SchemaNode) ([][]string, error) {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("expected *ast.ArrayDataNode, got %T", node)
	}
	elements := arr.Elements()
	if len(elements) == 0 {
		return [][]string{}, nil
	}
	if _, isRecord := elements[0].(*ast.LiteralNode); isRecord {
		fields, err := recordFields(arr)
		if err != nil {
			return nil, err
		}
		return [][]string{fields}, nil
	}

	records := make([][]string, len(elements))
	for i, elem := range elements {
		rec, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("record %d: expected *ast.ArrayDataNode, got %T", i, elem)
		}
		fields, err := recordFields(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records[i] = fields
	}
	return records, nil
}

// RecordsToNode converts a slice of string records to an AST node.
//
// Example:
//
//	records := [][]string{
//	    {"name", "age"},
//	    {"Alice", "30"},
//	}
//	node := csv.RecordsToNode(records)
func RecordsToNode(records [][]string) *ast.ArrayDataNode {
	pos := ast.ZeroPosition()
	nodes := make([]ast.SchemaNode, len(records))
	for i, record := range records {
		fields := make([]ast.SchemaNode, len(record))
		for j, field := range record {
			fields[j] = ast.NewLiteralNode(field, pos)
		}
		nodes[i] = ast.NewArrayDataNode(fields, pos)
	}
	return ast.NewArrayDataNode(nodes, pos)
}
