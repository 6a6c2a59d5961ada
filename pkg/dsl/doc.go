/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Nody graphs.

It allows developers to define graphs using a type-safe, fluent builder pattern instead of
relying on external YAML or JSON files. This is particularly useful for dynamic graph
generation, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/nody/pkg/dsl"
	)

	func main() {
		menu := dsl.New("menu")

		menu.Start("start").Go("pick")

		menu.General("pick").
			Name("Pick a page").
			BranchInto("settings", "back", "from_pick")

		menu.SwitchBack("back", "from_pick").
			Go("settings").
			Return("from_pick", "pick")

		menu.General("settings").Go("back")

		// BuildStore returns a memory store usable as a ports.GraphLoader
		store, err := dsl.BuildStore(menu)
		// ... pass store to nody.New(...)
	}

Edges are resolved by name when Build is called, so nodes may be referenced
before they are declared.
*/
package dsl
