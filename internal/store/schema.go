package store

import (
	"fmt"
	"strings"
)

// LogicalType is the type tag stored for each column of an artifact.
type LogicalType uint8

const (
	TypeString LogicalType = iota + 1
	TypeUint64
)

func (t LogicalType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeUint64:
		return "uint64"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Field describes one column.
type Field struct {
	Name     string
	Type     LogicalType
	Nullable bool
}

func (f Field) String() string {
	if f.Nullable {
		return f.Name + ": optional " + f.Type.String()
	}
	return f.Name + ": " + f.Type.String()
}

// Schema is the ordered list of columns in an artifact.
type Schema []Field

// Column names of the file index. File Size holds a byte count.
const (
	ColumnFileName    = "File Name"
	ColumnFileSize    = "File Size"
	ColumnContentType = "Content Type"
)

// FileSchema is the only schema the index is written with and accepted on read.
var FileSchema = Schema{
	{Name: ColumnFileName, Type: TypeString},
	{Name: ColumnFileSize, Type: TypeUint64},
	{Name: ColumnContentType, Type: TypeString, Nullable: true},
}

// Equal reports whether both schemas have the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
