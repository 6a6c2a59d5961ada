package validator

import (
	"errors"
	"fmt"
)

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError represents a single structural finding on a graph or node.
type ValidationError struct {
	GraphID   string   `json:"graph_id"`
	GraphName string   `json:"graph_name,omitempty"`
	NodeID    string   `json:"node_id,omitempty"`
	NodeName  string   `json:"node_name,omitempty"`
	Severity  Severity `json:"severity"`
	Reason    string   `json:"reason"`
	// Err is the sentinel behind the finding, if any.
	Err error `json:"-"`
}

func (e *ValidationError) Error() string {
	where := fmt.Sprintf("graph %q", e.GraphName)
	if e.NodeID != "" {
		where += fmt.Sprintf(" node %q", nameOrID(e.NodeName, e.NodeID))
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

func nameOrID(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
