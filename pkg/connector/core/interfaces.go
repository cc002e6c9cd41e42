// Package core defines the connector contracts shared by sources,
// destinations and the pipeline that drives them.
package core

import (
	"context"

	"github.com/go-gota/gota/dataframe"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Schema represents the data schema of a loaded table
type Schema struct {
	Name   string
	Fields []Field
}

// Field represents a field in the schema
type Field struct {
	Name     string
	Type     FieldType
	Position int
	Label    bool
}

// FieldType represents the data type of a field
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeFloat  FieldType = "float"
	FieldTypeBool   FieldType = "bool"
)

// LabelField returns the field flagged as the class label, if any
func (s *Schema) LabelField() (Field, bool) {
	for _, f := range s.Fields {
		if f.Label {
			return f, true
		}
	}
	return Field{}, false
}

// Source is the interface that all source connectors must implement.
// Load reads the whole input into memory and releases the underlying
// handle before returning.
type Source interface {
	Load(ctx context.Context) (dataframe.DataFrame, error)
	Discover(df dataframe.DataFrame) (*Schema, error)
}

// Destination is the interface that all destination connectors must
// implement. Write either fully replaces the target or leaves it untouched.
type Destination interface {
	Write(ctx context.Context, df dataframe.DataFrame) error
}
