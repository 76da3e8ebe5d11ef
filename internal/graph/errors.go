package graph

import (
	"errors"
	"fmt"
)

// Configuration and path-finding errors.
var (
	// ErrDisconnected means some alive node cannot be reached from a source.
	// It is an expected outcome once the network fragments.
	ErrDisconnected = errors.New("graph: alive subgraph is disconnected")

	// ErrSelfLoop rejects a description where a node lists itself.
	ErrSelfLoop = errors.New("graph: node lists itself as neighbor")

	// ErrNodeOutOfRange rejects ids outside the node universe.
	ErrNodeOutOfRange = errors.New("graph: node id out of range")

	// ErrDuplicateNode rejects a description that allocates an id twice.
	ErrDuplicateNode = errors.New("graph: duplicate node id")

	// ErrNotPermutation rejects a relabelling that drops or repeats an id.
	ErrNotPermutation = errors.New("graph: relabelling is not a permutation")

	// ErrEmptyDesc rejects a description without nodes.
	ErrEmptyDesc = errors.New("graph: description has no nodes")
)

// DescError carries the offending ids of a rejected description.
type DescError struct {
	Node     uint32
	Neighbor uint32
	Err      error
}

func (e *DescError) Error() string {
	if errors.Is(e.Err, ErrDuplicateNode) {
		return fmt.Sprintf("%v: %d", e.Err, e.Node)
	}
	return fmt.Sprintf("%v: node %d, neighbor %d", e.Err, e.Node, e.Neighbor)
}

func (e *DescError) Unwrap() error { return e.Err }

// PathError records which source failed to reach every alive node.
type PathError struct {
	Source  Node
	Reached int
	Alive   int
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %v reached %d of %d alive nodes", ErrDisconnected, e.Source, e.Reached, e.Alive)
}

func (e *PathError) Unwrap() error { return ErrDisconnected }
