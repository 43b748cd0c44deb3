package inicheck_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/pkg/adapters/memory"
	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
)

// ExampleSession_Check validates an in-memory configuration and writes the
// normalized values back to the store.
func ExampleSession_Check() {
	minUsers := 1.0
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "num_users", Type: schema.TypeInt, Min: &minUsers},
		schema.Entry{Section: "basic", Item: "username", Type: schema.TypeString},
	)
	store := memory.NewStore("", ports.Section{Name: "basic", Items: []ports.Item{
		{Name: "num_users", Value: "0"},
		{Name: "username", Value: "Bob"},
	}})

	sess, err := inicheck.New(master, store, inicheck.WithWriteBack(true))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	report, err := sess.Check(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, item := range report.Summary().Items {
		fmt.Printf("%s.%s valid=%v\n", item.Section, item.Item, item.Valid)
	}

	username, _, _ := store.Get(ctx, "basic", "username")
	fmt.Println(username)
	// Output:
	// basic.num_users valid=false
	// basic.username valid=true
	// bob
}

// ExampleSession_Cast reads the typed configuration without validating it.
func ExampleSession_Cast() {
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "num_users", Type: schema.TypeInt},
	)
	store := memory.NewStore("", ports.Section{Name: "basic", Items: []ports.Item{
		{Name: "num_users", Value: "2"},
	}})

	sess, err := inicheck.New(master, store)
	if err != nil {
		log.Fatal(err)
	}
	sections, err := sess.Cast(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	n, _ := sections[0].Get("num_users")
	fmt.Printf("%T %v\n", n, n)
	// Output: int64 2
}
