package cluster

import (
	"github.com/matzehuels/dendro/pkg/errors"
)

// None marks a missing child or parent.
const None = -1

// Node is one entry of the tree arena. Leaves have Left == Right == None,
// Distance 0 and a single member (their original matrix index).
//
// Members must not be modified; it is shared with the tree.
type Node struct {
	ID       int
	Left     int
	Right    int
	Distance float64
	Members  []int
}

// IsLeaf reports whether n wraps a single original item.
func (n Node) IsLeaf() bool { return n.Left == None }

// Size returns the number of original items under n.
func (n Node) Size() int { return len(n.Members) }

// Tree is a binary merge tree stored as an arena. IDs 0..n-1 are the leaves
// (leaf i wraps original index i); IDs n..2n-2 are internal nodes in merge
// order, so the root is always the last node.
//
// A Tree is built once by [Run] or [Build] and is read-only afterwards.
type Tree struct {
	leaves int
	nodes  []Node
	parent []int
}

func newTree(n int) *Tree {
	t := &Tree{
		leaves: n,
		nodes:  make([]Node, n, 2*n-1),
		parent: make([]int, n, 2*n-1),
	}
	for i := 0; i < n; i++ {
		t.nodes[i] = Node{ID: i, Left: None, Right: None, Members: []int{i}}
		t.parent[i] = None
	}
	return t
}

// merge appends an internal node joining left and right and returns its ID.
func (t *Tree) merge(left, right int, distance float64) int {
	id := len(t.nodes)
	lm, rm := t.nodes[left].Members, t.nodes[right].Members
	members := make([]int, 0, len(lm)+len(rm))
	members = append(members, lm...)
	members = append(members, rm...)

	t.nodes = append(t.nodes, Node{ID: id, Left: left, Right: right, Distance: distance, Members: members})
	t.parent = append(t.parent, None)
	t.parent[left] = id
	t.parent[right] = id
	return id
}

// Build reconstructs a tree of n leaves from its merge history. Each merge
// must reference nodes that already exist and have not been merged yet.
func Build(n int, merges []Merge) (*Tree, error) {
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree needs at least one leaf")
	}
	if len(merges) != n-1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d leaves need %d merges, got %d", n, n-1, len(merges))
	}
	t := newTree(n)
	for i, m := range merges {
		for _, child := range []int{m.Left, m.Right} {
			if child < 0 || child >= len(t.nodes) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "merge %d references unknown node %d", i, child)
			}
			if t.parent[child] != None {
				return nil, errors.New(errors.ErrCodeInvalidInput, "merge %d reuses node %d", i, child)
			}
		}
		if m.Left == m.Right {
			return nil, errors.New(errors.ErrCodeInvalidInput, "merge %d joins node %d with itself", i, m.Left)
		}
		t.merge(m.Left, m.Right, m.Distance)
	}
	return t, nil
}

// Leaves returns the number of original items.
func (t *Tree) Leaves() int { return t.leaves }

// Len returns the total number of nodes (2n-1).
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the ID of the root node.
func (t *Tree) Root() int { return len(t.nodes) - 1 }

// Node returns the node with the given ID.
func (t *Tree) Node(id int) Node { return t.nodes[id] }

// Has reports whether id names a node of t.
func (t *Tree) Has(id int) bool { return id >= 0 && id < len(t.nodes) }

// Parent returns the ID of id's parent, or None for the root.
func (t *Tree) Parent(id int) int { return t.parent[id] }

// Members returns a copy of the original indices under id.
func (t *Tree) Members(id int) []int {
	return append([]int(nil), t.nodes[id].Members...)
}

// Internal returns the IDs of all internal nodes in merge order.
func (t *Tree) Internal() []int {
	ids := make([]int, 0, t.leaves-1)
	for id := t.leaves; id < len(t.nodes); id++ {
		ids = append(ids, id)
	}
	return ids
}

// MaxDistance returns the root's merge distance, which bounds every other
// distance in a tree built with a supported linkage.
func (t *Tree) MaxDistance() float64 { return t.nodes[t.Root()].Distance }

// Order returns the leaf order of a depth-first, left-before-right traversal.
func (t *Tree) Order() []int {
	order := make([]int, 0, t.leaves)
	stack := []int{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[id]
		if n.IsLeaf() {
			order = append(order, id)
			continue
		}
		stack = append(stack, n.Right, n.Left)
	}
	return order
}

// Validate checks the structural invariants of the arena: n leaves and n-1
// internal nodes, children created before their parent, every node except the
// root merged exactly once, and cached members equal to the children's.
func (t *Tree) Validate() error {
	n := t.leaves
	if len(t.nodes) != 2*n-1 {
		return errors.New(errors.ErrCodeInternal, "tree has %d nodes, want %d", len(t.nodes), 2*n-1)
	}
	for id, node := range t.nodes {
		if node.ID != id {
			return errors.New(errors.ErrCodeInternal, "node %d carries ID %d", id, node.ID)
		}
		if id < n {
			if !node.IsLeaf() || len(node.Members) != 1 || node.Members[0] != id {
				return errors.New(errors.ErrCodeInternal, "leaf %d is malformed", id)
			}
			continue
		}
		if node.Left >= id || node.Right >= id || node.Left < 0 || node.Right < 0 {
			return errors.New(errors.ErrCodeInternal, "node %d has children %d, %d", id, node.Left, node.Right)
		}
		if want := len(t.nodes[node.Left].Members) + len(t.nodes[node.Right].Members); len(node.Members) != want {
			return errors.New(errors.ErrCodeInternal, "node %d has %d members, want %d", id, len(node.Members), want)
		}
	}
	for id := range t.nodes {
		if id != t.Root() && t.parent[id] == None {
			return errors.New(errors.ErrCodeInternal, "node %d is never merged", id)
		}
	}
	return nil
}

// IsMonotone reports whether every parent distance is at least each child's.
// Trees built with single, complete or average linkage always are.
func (t *Tree) IsMonotone() bool {
	for _, node := range t.nodes[t.leaves:] {
		if node.Distance < t.nodes[node.Left].Distance || node.Distance < t.nodes[node.Right].Distance {
			return false
		}
	}
	return true
}
