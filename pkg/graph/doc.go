/*
Package graph implements the Nody traversal engine: graphs, nodes, sockets and
connections, and the algorithm that walks a single active path through them.

# Traversal

A Graph holds at most one active node. SetActiveNode deactivates the current node,
records the new one and runs the variant enter behaviour of the node type. Pass-through
variants (Start, Enter, Exit, SubGraph, SwitchBack) immediately request another
activation; General nodes stay active until the host advances them, usually from a
tick handler through Continue.

Requests produced while a traversal is running are queued on the root of the live graph
tree and drained in order by the outermost call, so OnExit of the outgoing node always
completes before OnEnter of the incoming one and chains never grow the call stack.
A drain is capped (see WithMaxHops); exceeding the cap aborts it and reports a
*LoopError.

# Sub graphs

A SubGraph node hands control to its child graph: the child is linked to the parent
(Parent, ParentNode), becomes the parent's ActiveSubGraph, and its Enter node is
activated. Reaching an Exit node unlinks the child in the same drain and continues from
the SubGraph node's output in the parent.

The package is not safe for concurrent use.
*/
package graph
