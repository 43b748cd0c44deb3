/*
Package inicheck validates and type-casts flat section/item configuration
values against a declarative master schema.

Each schema entry declares the expected type of an item (string, bool, int,
float, datetime, directory, filename, url or datetime_ordered_pair), an
optional default, optional numeric bounds, whether the item may hold a list,
an optional set of allowed values and, for ordered pairs, its partner item.

# Concept

The checkers (package checkers) are the core: one variant per type, each
casting raw values to typed ones and reporting one verdict per scalar. They
read the raw configuration through the ports.ConfigStore port, so the same
validation runs over a file loaded in memory, a Redis-backed store shared by
replicas, or a test fixture.

A Session ties a schema to a store and runs a whole-configuration pass.

# Usage

	master, err := schema.Load("master.yaml")
	if err != nil {
		log.Fatal(err)
	}
	store, err := file.Load("config.ini")
	if err != nil {
		log.Fatal(err)
	}

	sess, err := inicheck.New(master, store, inicheck.WithWriteBack(true))
	if err != nil {
		log.Fatal(err)
	}

	report, err := sess.Check(ctx)
	if err != nil {
		log.Fatal(err) // the store failed
	}
	for _, iss := range report.Issues() {
		fmt.Println(iss)
	}

Single items are checked with Session.Checker or checkers.New directly.
*/
package inicheck
