package csv

import (
	"bytes"
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Render converts an AST node to CSV bytes.
//
// The node should be the result of Parse() or ParseReader().
// Returns CSV bytes following RFC 4180 format.
//
// Rendering handles:
//   - Automatic quoting of fields containing commas, quotes, or newlines
//   - Proper escaping of quotes (doubled)
//   - Preservation of empty fields
//   - Consistent line endings (LF)
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\nBob,25\n")
//	bytes, _ := csv.Render(node)
//	// bytes: name,age\nAlice,30\nBob,25\n
func Render(node ast.SchemaNode) ([]byte, error) {
	return RenderWithOptions(node, DefaultWriterOptions())
}

// RenderWithOptions converts an AST node to bytes using the given writer
// options. A file node renders one line per record; a record node renders
// a single line.
func RenderWithOptions(node ast.SchemaNode, opts WriterOptions) ([]byte, error) {
	if node == nil {
		return []byte{}, nil
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f := newFieldFormat(opts)

	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("unsupported node type for CSV rendering: %T", node)
	}

	var buf bytes.Buffer
	elements := arr.Elements()
	if len(elements) == 0 {
		return buf.Bytes(), nil
	}

	// Check if this is a file (array of arrays) or a record (array of literals)
	if _, isRecord := elements[0].(*ast.LiteralNode); isRecord {
		fields, err := recordFields(arr)
		if err != nil {
			return nil, err
		}
		if err := f.writeRecord(&buf, fields); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	for i, elem := range elements {
		rec, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("record %d: unexpected element type in array: %T", i, elem)
		}
		fields, err := recordFields(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := f.writeRecord(&buf, fields); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// recordFields extracts the field values of a record node. Non-string
// literals are formatted with %v.
func recordFields(rec *ast.ArrayDataNode) ([]string, error) {
	fields := make([]string, 0, rec.Len())
	for _, elem := range rec.Elements() {
		lit, ok := elem.(*ast.LiteralNode)
		if !ok {
			return nil, fmt.Errorf("unexpected field type: %T", elem)
		}
		switch v := lit.Value().(type) {
		case string:
			fields = append(fields, v)
		case nil:
			fields = append(fields, "")
		default:
			fields = append(fields, fmt.Sprintf("%v", v))
		}
	}
	return fields, nil
}
