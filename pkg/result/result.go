package result

import (
	"slices"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// =============================================================================
// Result - Clustering Output Serialization
// =============================================================================

// Result is the canonical serialization format of a clustering run.
// Used for JSON files, API responses and caching.
//
// The format is designed for round-trip fidelity: a Result written by
// [FromCluster] converts back to an equivalent [cluster.Tree] with
// [Result.ClusterTree].
type Result struct {
	Labels     []string        `json:"labels" bson:"labels"`
	Linkage    string          `json:"linkage" bson:"linkage"`
	Similarity bool            `json:"similarity" bson:"similarity"`
	Order      []int           `json:"order" bson:"order"`
	Tree       *Node           `json:"tree" bson:"tree"`
	Merges     []cluster.Merge `json:"merges,omitempty" bson:"merges,omitempty"`
}

// =============================================================================
// Node - Recursive Tree Form
// =============================================================================

// Node is the recursive form of a tree node. Leaves have nil children,
// distance 0 and exactly one index.
type Node struct {
	Indices  []int   `json:"indices" bson:"indices"`
	Left     *Node   `json:"left" bson:"left"`
	Right    *Node   `json:"right" bson:"right"`
	Distance float64 `json:"distance" bson:"distance"`
}

// IsLeaf returns true if n has no children.
func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// =============================================================================
// cluster ↔ Result Conversion
// =============================================================================

// FromCluster converts a clustering run to its serialization format.
func FromCluster(res *cluster.Result, labels []string, opts cluster.Options) Result {
	return Result{
		Labels:     slices.Clone(labels),
		Linkage:    opts.Linkage.String(),
		Similarity: opts.Similarity,
		Order:      slices.Clone(res.Order),
		Tree:       FromTree(res.Tree),
		Merges:     slices.Clone(res.Merges),
	}
}

// FromTree converts an arena tree to its recursive form.
func FromTree(t *cluster.Tree) *Node {
	nodes := make([]*Node, t.Len())
	for id := 0; id < t.Len(); id++ {
		cn := t.Node(id)
		n := &Node{Indices: t.Members(id), Distance: cn.Distance}
		if !cn.IsLeaf() {
			n.Left, n.Right = nodes[cn.Left], nodes[cn.Right]
		}
		nodes[id] = n
	}
	return nodes[t.Root()]
}

// Options returns the clustering options recorded in r.
func (r Result) Options() (cluster.Options, error) {
	l, err := cluster.ParseLinkage(r.Linkage)
	if err != nil {
		return cluster.Options{}, err
	}
	return cluster.Options{Linkage: l, Similarity: r.Similarity}, nil
}

// ClusterTree rebuilds the arena tree. The merge history is used when
// present; otherwise internal nodes are numbered by ascending distance,
// children first, which reproduces the original numbering unless merge
// distances tie.
func (r Result) ClusterTree() (*cluster.Tree, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	n := len(r.Order)
	if len(r.Merges) == n-1 {
		return cluster.Build(n, r.Merges)
	}
	return cluster.Build(n, mergesFromNode(r.Tree, n))
}

// Cluster rebuilds a full clustering result.
func (r Result) Cluster() (*cluster.Result, error) {
	t, err := r.ClusterTree()
	if err != nil {
		return nil, err
	}
	return &cluster.Result{Tree: t, Order: t.Order(), Merges: cluster.MergesOf(t)}, nil
}

// Validate checks that the labels, order and tree describe the same items.
func (r Result) Validate() error {
	n := len(r.Order)
	if n == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "result has an empty order")
	}
	if err := matrix.ValidatePermutation(r.Order, n); err != nil {
		return err
	}
	if r.Labels != nil && len(r.Labels) != n {
		return errors.New(errors.ErrCodeInvalidInput, "result has %d labels for %d items", len(r.Labels), n)
	}
	if r.Tree == nil {
		return errors.New(errors.ErrCodeInvalidInput, "result has no tree")
	}
	leaves := 0
	if err := validateNode(r.Tree, n, &leaves); err != nil {
		return err
	}
	if leaves != n {
		return errors.New(errors.ErrCodeInvalidInput, "tree has %d leaves, want %d", leaves, n)
	}
	if err := matrix.ValidatePermutation(r.Tree.Indices, n); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "tree root indices")
	}
	return nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func validateNode(nd *Node, n int, leaves *int) error {
	if nd.IsLeaf() {
		if len(nd.Indices) != 1 || nd.Indices[0] < 0 || nd.Indices[0] >= n {
			return errors.New(errors.ErrCodeInvalidInput, "leaf has indices %v", nd.Indices)
		}
		*leaves++
		return nil
	}
	if nd.Left == nil || nd.Right == nil {
		return errors.New(errors.ErrCodeInvalidInput, "internal node %v has a single child", nd.Indices)
	}
	if err := validateNode(nd.Left, n, leaves); err != nil {
		return err
	}
	if err := validateNode(nd.Right, n, leaves); err != nil {
		return err
	}
	want := append(slices.Clone(nd.Left.Indices), nd.Right.Indices...)
	if !slices.Equal(nd.Indices, want) {
		return errors.New(errors.ErrCodeInvalidInput, "node indices %v do not match children %v", nd.Indices, want)
	}
	return nil
}

// pending is an internal node waiting for an arena ID; post is its
// post-order rank.
type pending struct {
	node *Node
	post int
}

// mergesFromNode numbers the internal nodes of a validated tree and returns
// their merge history.
func mergesFromNode(root *Node, n int) []cluster.Merge {
	var internal []pending
	var walk func(*Node)
	walk = func(nd *Node) {
		if nd.IsLeaf() {
			return
		}
		walk(nd.Left)
		walk(nd.Right)
		internal = append(internal, pending{nd, len(internal)})
	}
	walk(root)

	byDistance := slices.Clone(internal)
	slices.SortStableFunc(byDistance, func(a, b pending) int {
		switch {
		case a.node.Distance < b.node.Distance:
			return -1
		case a.node.Distance > b.node.Distance:
			return 1
		}
		return a.post - b.post
	})
	// Non-monotone trees keep post-order, which always numbers children first.
	if childrenFirst(byDistance) {
		internal = byDistance
	}

	ids := make(map[*Node]int, len(internal))
	idOf := func(nd *Node) int {
		if nd.IsLeaf() {
			return nd.Indices[0]
		}
		return ids[nd]
	}
	merges := make([]cluster.Merge, len(internal))
	for i, p := range internal {
		id := n + i
		ids[p.node] = id
		merges[i] = cluster.Merge{
			Step:     i + 1,
			Node:     id,
			Left:     idOf(p.node.Left),
			Right:    idOf(p.node.Right),
			Distance: p.node.Distance,
		}
	}
	return merges
}

func childrenFirst(seq []pending) bool {
	seen := make(map[*Node]bool, len(seq))
	for _, p := range seq {
		for _, c := range []*Node{p.node.Left, p.node.Right} {
			if !c.IsLeaf() && !seen[c] {
				return false
			}
		}
		seen[p.node] = true
	}
	return true
}
