// Package schema holds the master definition of a configuration: one Entry per
// (section, item) declaring the expected type, default, bounds, list allowance,
// allowed values and ordered-pair relationship.
//
// Schemas are built in code or loaded from YAML, TOML or JSON documents:
//
//	basic:
//	  num_users: int
//	  fraction:
//	    type: float
//	    min: 0
//	    max: 1
//	  tags: "[string]"
//	  start_date: datetime_ordered_pair
//	  end_date: datetime_ordered_pair
//
//	master, err := schema.Load("master.yaml")
//
// A Master is immutable once loaded and safe for concurrent reads. Lookup
// returns ErrUnknownItem for an undeclared (section, item).
package schema
