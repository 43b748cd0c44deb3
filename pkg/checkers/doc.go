/*
Package checkers validates and type-casts raw configuration values against
their schema entry.

A checker is built per (section, item) with New, which picks the variant from
the declared schema.Type:

	chk, err := checkers.New(store, master, "basic", "num_users")
	if err != nil {
		// the item is not declared in the schema
	}
	res, err := chk.Check(ctx)
	if err != nil {
		// the store failed
	}
	if !res.Valid() {
		fmt.Println(res.Err())
	}

# Values

The raw value is normalized into an ordered list of scalars first. A list
item accepts a sequence or wraps a single value; a scalar item rejects
sequences with a KindStructure issue. Every scalar is then cast on its own
and Result.Issues holds one entry per scalar, nil when it passed.

An empty value (nil or blank string) resolves to the declared default,
cast with the same rules. Without a default the outcome depends on the type:
strings and filenames have no value, directories resolve to "temp" next to
the configuration, everything else fails with KindMissing.

# Write-back

Check never modifies the store. When every scalar passes, Result.Update
carries the normalized value (lower-cased strings, wrapped lists, resolved
paths, defaults) and the caller applies it with Update.Apply.

# Ordered pairs

A datetime_ordered_pair item is a datetime that must be strictly before
(start role) or strictly after (end role) its paired item in the same
section. The check is skipped while the partner is unset.
*/
package checkers
