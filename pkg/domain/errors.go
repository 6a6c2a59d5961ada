package domain

import "errors"

// ErrNodeNotFound is returned when an id or name lookup finds no node.
var ErrNodeNotFound = errors.New("node not found")

// ErrNodeNotInGraph is returned when a node is used with a graph that does not own it.
var ErrNodeNotInGraph = errors.New("node does not belong to graph")

// ErrNodeNotDeletable is returned when removing a structural node (Start, Enter, Exit).
var ErrNodeNotDeletable = errors.New("node is not deletable")

// ErrSingletonNode is returned when adding a second Start or Enter node.
var ErrSingletonNode = errors.New("graph already has a node of this type")

// ErrNodeTypeNotAllowed is returned when a node type does not fit the graph kind
// (e.g. an Exit node in a root graph) or the type is unknown.
var ErrNodeTypeNotAllowed = errors.New("node type not allowed in graph")

// ErrSocketDirection is returned when connecting sockets with the wrong directions.
var ErrSocketDirection = errors.New("connection must go from an output to an input socket")

// ErrSocketNotFound is returned when a socket id cannot be resolved.
var ErrSocketNotFound = errors.New("socket not found")

// ErrEmptyGraph is returned when a graph has no nodes.
var ErrEmptyGraph = errors.New("graph has no nodes")

// ErrNoEntryNode is returned when a graph has no Start (root) or Enter (sub graph) node.
var ErrNoEntryNode = errors.New("graph has no entry node")

// ErrTraversalLoop is returned when a pass-through chain exceeds the activation budget.
var ErrTraversalLoop = errors.New("traversal loop detected")

// ErrUnresolvedSubGraph is returned when a SubGraph node references no usable graph.
var ErrUnresolvedSubGraph = errors.New("unresolved sub graph reference")

// ErrRecursiveSubGraph is returned when a graph document references itself through sub graphs.
var ErrRecursiveSubGraph = errors.New("recursive sub graph reference")

// ErrGraphNotFound is returned by loaders when a graph document does not exist.
var ErrGraphNotFound = errors.New("graph not found")

// ErrControllerDisabled is returned when driving a controller that failed initialization.
var ErrControllerDisabled = errors.New("controller is disabled")

// ErrDuplicateController is returned when registering a controller name twice.
var ErrDuplicateController = errors.New("controller name already registered")
