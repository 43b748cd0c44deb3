package schema

import (
	"fmt"
	"strings"
)

// Type is the semantic type tag declared for a configuration item.
// The set is closed: every checker variant corresponds to exactly one Type.
type Type string

const (
	TypeString              Type = "string"
	TypeBool                Type = "bool"
	TypeInt                 Type = "int"
	TypeFloat               Type = "float"
	TypeDatetime            Type = "datetime"
	TypeDirectory           Type = "directory"
	TypeCriticalDirectory   Type = "criticaldirectory"
	TypeFilename            Type = "filename"
	TypeCriticalFilename    Type = "criticalfilename"
	TypeURL                 Type = "url"
	TypeDatetimeOrderedPair Type = "datetime_ordered_pair"
)

// Types lists every supported type in a stable order.
var Types = []Type{
	TypeString,
	TypeBool,
	TypeInt,
	TypeFloat,
	TypeDatetime,
	TypeDirectory,
	TypeCriticalDirectory,
	TypeFilename,
	TypeCriticalFilename,
	TypeURL,
	TypeDatetimeOrderedPair,
}

// Name returns the human-readable name of the type (e.g., "string", "int").
func (t Type) Name() string { return string(t) }

// Valid reports whether t is one of the supported types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Numeric reports whether bounds apply to the type.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Path reports whether values of the type are resolved against the
// configuration's own location.
func (t Type) Path() bool {
	switch t {
	case TypeDirectory, TypeCriticalDirectory, TypeFilename, TypeCriticalFilename:
		return true
	}
	return false
}

// Critical reports whether an empty value without a default is a failure
// for a path type.
func (t Type) Critical() bool {
	return t == TypeCriticalDirectory || t == TypeCriticalFilename
}

var aliases = map[string]Type{
	"str":                   TypeString,
	"string":                TypeString,
	"bool":                  TypeBool,
	"boolean":               TypeBool,
	"int":                   TypeInt,
	"integer":               TypeInt,
	"float":                 TypeFloat,
	"double":                TypeFloat,
	"datetime":              TypeDatetime,
	"date":                  TypeDatetime,
	"directory":             TypeDirectory,
	"dir":                   TypeDirectory,
	"criticaldirectory":     TypeCriticalDirectory,
	"critical_directory":    TypeCriticalDirectory,
	"filename":              TypeFilename,
	"file":                  TypeFilename,
	"criticalfilename":      TypeCriticalFilename,
	"critical_filename":     TypeCriticalFilename,
	"url":                   TypeURL,
	"datetime_ordered_pair": TypeDatetimeOrderedPair,
	"datetimeorderedpair":   TypeDatetimeOrderedPair,
}

// ParseType converts a type name to a Type.
// A name wrapped in brackets ("[int]", "[datetime]") declares a list-capable item,
// reported through the second return value.
func ParseType(typeStr string) (Type, bool, error) {
	name := strings.ToLower(strings.TrimSpace(typeStr))

	list := false
	if len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']' {
		list = true
		name = strings.TrimSpace(name[1 : len(name)-1])
	}

	t, ok := aliases[name]
	if !ok {
		return "", false, fmt.Errorf("unsupported type: %s", typeStr)
	}
	return t, list, nil
}
