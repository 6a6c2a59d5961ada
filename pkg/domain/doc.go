/*
Package domain contains the core domain models shared by every Nody package.

It defines the vocabulary of the traversal engine (node types, socket directions and
connection policies), the serialized graph document consumed by loaders, the lifecycle
events emitted while a graph is traversed, and the sentinel errors. This package is kept
pure and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - NodeType: the behaviour tag of a node (Start, Enter, Exit, SubGraph, SwitchBack, General).
  - GraphDocument: the loadable description of a graph (nodes, sockets, connections).
  - LifecycleHooks: callbacks the host registers to observe activations and wiring changes.
*/
package domain
