package ui

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AaronQLF/dashTemplate/errors"
)

// Node is one element of the retained UI tree a renderer diffs and draws.
type Node struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// Node kinds used by the dashboard surface.
const (
	KindContainer = "container"
	KindMatrix    = "matrix"
	KindButton    = "button"
	KindText      = "text"
)

// Builder constructs a UI tree with an explicit container stack: opening a
// container makes it the parent of everything added until it is closed.
// There is no implicit nesting; every OpenContainer is paired with a Close
// and Build fails on unbalanced trees.
type Builder struct {
	root  *Node
	stack []*Node
}

// NewBuilder starts a tree with a root container.
func NewBuilder() *Builder {
	root := &Node{
		ID:   uuid.New().String(),
		Kind: KindContainer,
	}
	return &Builder{
		root:  root,
		stack: []*Node{root},
	}
}

// Add appends a node to the currently open container and returns it. An
// empty ID is filled in.
func (b *Builder) Add(n *Node) *Node {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	parent := b.stack[len(b.stack)-1]
	parent.Children = append(parent.Children, n)
	return n
}

// OpenContainer adds a container node and makes it the target for
// subsequent adds until Close.
func (b *Builder) OpenContainer(id string) *Node {
	n := b.Add(&Node{ID: id, Kind: KindContainer})
	b.stack = append(b.stack, n)
	return n
}

// Close pops the current container. Closing the root is an error.
func (b *Builder) Close() error {
	if len(b.stack) <= 1 {
		return errors.WrapInvalid(
			fmt.Errorf("no open container to close"),
			"ui", "Builder.Close", "pop container")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// Depth reports how many containers are currently open, the root included.
func (b *Builder) Depth() int { return len(b.stack) }

// Build returns the finished tree. Every opened container must be closed.
func (b *Builder) Build() (*Node, error) {
	if len(b.stack) != 1 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%d container(s) left open", len(b.stack)-1),
			"ui", "Builder.Build", "finish tree")
	}
	return b.root, nil
}

// MatrixNode builds the node for a matrix element: the matrix body plus its
// expand-all and collapse-all buttons, wired by element ID to the events a
// Binder understands.
func MatrixNode(elementID string) *Node {
	return &Node{
		ID:   elementID,
		Kind: KindMatrix,
		Children: []*Node{
			{
				ID:    elementID + ":expand_all",
				Kind:  KindButton,
				Attrs: map[string]any{"label": "expand all", "event": EventExpandAll},
			},
			{
				ID:    elementID + ":collapse_all",
				Kind:  KindButton,
				Attrs: map[string]any{"label": "collapse all", "event": EventCollapseAll},
			},
		},
	}
}
