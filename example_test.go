package nody_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/nody"
	"github.com/aretw0/nody/pkg/dsl"
)

// questStore builds a root graph that runs the "quest" sub graph and then
// waits at Done.
func questStore() (*dsl.Builder, *dsl.Builder) {
	root := dsl.New("main").Name("Main")
	root.Start("start").Go("quest")
	root.SubGraph("quest", "quest").Name("Quest").Go("done")
	root.General("done").Name("Done")

	quest := dsl.New("quest").Name("Quest").AsSubGraph()
	quest.Enter("enter").Go("fight")
	quest.General("fight").Name("Fight").Go("exit")
	quest.Exit("exit")
	return root, quest
}

// ExampleNew demonstrates driving a compiled graph with an in-memory store.
func ExampleNew() {
	store, err := dsl.BuildStore(questStore())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	c, err := nody.New(ctx, store, "main")
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	// The first tick activates the Start node, which passes through into the quest.
	if err := c.Tick(0); err != nil {
		log.Fatal(err)
	}
	for _, n := range c.Status().Path {
		fmt.Println("active:", n.Name)
	}

	// Finishing the fight leaves the sub graph through its Exit node.
	if err := c.Advance(0); err != nil {
		log.Fatal(err)
	}
	active, _ := c.Status().Active()
	fmt.Println("active:", active.Name)

	// Output:
	// active: Quest
	// active: Fight
	// active: Done
}
