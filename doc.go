/*
Package nody is a node-graph traversal engine.

A graph is a set of typed nodes joined by connections between their sockets.
The engine keeps an active node per graph and walks the graph as nodes are
entered: pass-through nodes (Start, Enter, Exit, SubGraph, SwitchBack) forward
control immediately, General nodes hold it until the host advances them.

# Concept

The host owns time and input. It ticks a controller every frame and tells it
when a waiting node is done; the engine answers which nodes are active and
emits lifecycle events. SubGraph nodes run a child graph and resume when it
reaches an Exit node. SwitchBack nodes remember which source led to a shared
target and route back to it.

# Usage

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/aretw0/nody"
	)

	func main() {
		ctx := context.Background()

		// Compile ./graphs/main.yaml (and its sub graphs) into a controller
		c, err := nody.Open(ctx, "./graphs", "main")
		if err != nil {
			log.Fatal(err)
		}
		defer c.Close()

		// The first tick activates the Start node
		if err := c.Tick(16 * time.Millisecond); err != nil {
			log.Fatal(err)
		}
		if n, ok := c.Status().Active(); ok {
			log.Println("waiting at", n.Name)
		}

		// Continue through output 0 of the waiting node
		if err := c.Advance(0); err != nil {
			log.Fatal(err)
		}
	}
*/
package nody
