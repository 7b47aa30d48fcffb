package domain

import "fmt"

// Portfolio is the opaque tree payload of a document: a named root node plus
// a flat key/value attribute map. The engine moves it as a unit and enforces
// only tree-shape invariants, never position semantics.
type Portfolio struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Root       *Node             `json:"root"`
}

// Node is one element of the portfolio tree. Every non-root node has exactly
// one parent within the same envelope; children and position references keep
// their insertion order.
type Node struct {
	UniqueID  UniqueID   `json:"unique_id,omitempty"`
	Name      string     `json:"name"`
	Positions []ObjectID `json:"positions,omitempty"`
	Children  []*Node    `json:"children,omitempty"`
}

// NewPortfolio creates a portfolio with a root node of the given name.
func NewPortfolio(name string) *Portfolio {
	return &Portfolio{
		Name:       name,
		Attributes: make(map[string]string),
		Root:       &Node{Name: name},
	}
}

// NewNode creates a leaf node.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddChild appends a child node, preserving order.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// AddPosition appends a position reference, preserving order.
func (n *Node) AddPosition(positionID ObjectID) {
	n.Positions = append(n.Positions, positionID)
}

// Size returns the number of nodes in the subtree rooted at n, inclusive.
func (n *Node) Size() int {
	count := 1
	for _, child := range n.Children {
		count += child.Size()
	}
	return count
}

// FindNode returns the node with the given ObjectID within the subtree, or
// nil when absent. The version part of node ids is ignored.
func (n *Node) FindNode(oid ObjectID) *Node {
	if n.UniqueID.ObjectID == oid {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindNode(oid); found != nil {
			return found
		}
	}
	return nil
}

// Validate checks the payload invariants: a named root must exist, no node
// may be reachable twice (shared subtrees would mean two parents), and no
// node may list the same position reference twice.
func (p *Portfolio) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: portfolio payload is required", ErrInvalidArgument)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: portfolio name is required", ErrInvalidArgument)
	}
	if p.Root == nil {
		return fmt.Errorf("%w: portfolio root node is required", ErrInvalidArgument)
	}
	seen := make(map[*Node]bool)
	return p.Root.validate(seen)
}

func (n *Node) validate(seen map[*Node]bool) error {
	if n.Name == "" {
		return fmt.Errorf("%w: node name is required", ErrInvalidArgument)
	}
	if seen[n] {
		return fmt.Errorf("%w: node %q appears more than once in the tree", ErrInvalidArgument, n.Name)
	}
	seen[n] = true

	positions := make(map[ObjectID]bool, len(n.Positions))
	for _, pos := range n.Positions {
		if positions[pos] {
			return fmt.Errorf("%w: duplicate position reference %s on node %q", ErrInvalidArgument, pos, n.Name)
		}
		positions[pos] = true
	}

	for _, child := range n.Children {
		if child == nil {
			return fmt.Errorf("%w: nil child on node %q", ErrInvalidArgument, n.Name)
		}
		if err := child.validate(seen); err != nil {
			return err
		}
	}
	return nil
}
