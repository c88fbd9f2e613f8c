package filter

import "github.com/syssam/analytiq/sqlop"

// Condition is a single leaf predicate: a column compared against a value
// (or a pair/sequence of values, depending on the operator) with the
// conjunction that joins it to its preceding sibling.
type Condition struct {
	Column      string
	Operator    sqlop.Operator
	Value       any
	Conjunction sqlop.Conjunction
}

// Node is the tagged variant at the heart of the filter tree: either a
// leaf [Condition] or an internal [Group]. Exactly one of Cond or Grp is
// non-nil.
type Node struct {
	Cond *Condition
	Grp  *Group
}

// IsLeaf reports whether the node is a leaf condition.
func (n Node) IsLeaf() bool { return n.Cond != nil }

// IsGroup reports whether the node is an internal group.
func (n Node) IsGroup() bool { return n.Grp != nil }

// LeafNode wraps a Condition as a Node.
func LeafNode(c Condition) Node { return Node{Cond: &c} }

// GroupNode wraps a Group as a Node.
func GroupNode(g Group) Node { return Node{Grp: &g} }

// Group is an internal node combining its children with a single
// operator (AND or OR). Groups nest arbitrarily; cycles are impossible by
// construction since a Group only ever holds child values, never a
// reference back to an ancestor.
type Group struct {
	Operator sqlop.Conjunction
	Children []Node
}
