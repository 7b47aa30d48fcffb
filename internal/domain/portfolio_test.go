package domain

import (
	"errors"
	"testing"
)

func validPortfolio() *Portfolio {
	p := NewPortfolio("Test")
	p.Root.Name = "Root"
	child := NewNode("Child")
	child.AddPosition(ObjectID{Scheme: "Pos", Value: "1001"})
	p.Root.AddChild(child)
	return p
}

func TestPortfolioValidate(t *testing.T) {
	if err := validPortfolio().Validate(); err != nil {
		t.Fatalf("expected valid portfolio, got %v", err)
	}

	shared := NewNode("Shared")
	sharedTwice := validPortfolio()
	sharedTwice.Root.AddChild(shared)
	sharedTwice.Root.Children[0].AddChild(shared)

	duplicatePositions := validPortfolio()
	duplicatePositions.Root.Children[0].AddPosition(ObjectID{Scheme: "Pos", Value: "1001"})

	unnamedNode := validPortfolio()
	unnamedNode.Root.Children[0].Name = ""

	nilChild := validPortfolio()
	nilChild.Root.Children = append(nilChild.Root.Children, nil)

	tests := []struct {
		name string
		p    *Portfolio
	}{
		{name: "nil portfolio", p: nil},
		{name: "missing name", p: &Portfolio{Root: NewNode("Root")}},
		{name: "missing root", p: &Portfolio{Name: "NoRoot"}},
		{name: "node reachable twice", p: sharedTwice},
		{name: "duplicate position references", p: duplicatePositions},
		{name: "unnamed node", p: unnamedNode},
		{name: "nil child", p: nilChild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestNodeSize(t *testing.T) {
	p := validPortfolio()
	if got := p.Root.Size(); got != 2 {
		t.Errorf("expected size 2, got %d", got)
	}
	p.Root.Children[0].AddChild(NewNode("Grandchild"))
	if got := p.Root.Size(); got != 3 {
		t.Errorf("expected size 3, got %d", got)
	}
}

func TestFindNode(t *testing.T) {
	p := validPortfolio()
	childOID := ObjectID{Scheme: "Node", Value: "child-1"}
	p.Root.UniqueID = UniqueID{ObjectID: ObjectID{Scheme: "Node", Value: "root-1"}, Version: "0"}
	p.Root.Children[0].UniqueID = UniqueID{ObjectID: childOID, Version: "0"}

	found := p.Root.FindNode(childOID)
	if found == nil || found.Name != "Child" {
		t.Fatalf("expected to find child node, got %+v", found)
	}
	if p.Root.FindNode(ObjectID{Scheme: "Node", Value: "missing"}) != nil {
		t.Errorf("expected nil for unknown node id")
	}
}
