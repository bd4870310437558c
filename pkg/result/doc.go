// Package result provides the serialization format of clustering runs.
//
// This package defines the canonical wire format for dendro's cluster trees,
// used for JSON files, API responses and caching.
//
// # Format
//
// A result records the leaf order and the tree in recursive form. Leaves
// carry a single index, no children and distance 0:
//
//	{
//	  "labels": ["A", "B", "C"],
//	  "linkage": "average",
//	  "similarity": false,
//	  "order": [2, 0, 1],
//	  "tree": {
//	    "indices": [2, 0, 1],
//	    "left":  {"indices": [2], "left": null, "right": null, "distance": 0},
//	    "right": {"indices": [0, 1], "left": {...}, "right": {...}, "distance": 1},
//	    "distance": 4
//	  },
//	  "merges": [{"step": 1, "node": 3, "left": 0, "right": 1, "distance": 1, ...}]
//	}
//
// # Converting Between Types
//
//	serialized := result.FromCluster(res, labels, opts)   // engine → wire
//	res, err := serialized.Cluster()                     // wire → engine
//
// Common operations:
//
//	r, _ := result.ReadFile("tree.json")
//	result.WriteFile(r, "copy.json")
//	data, _ := result.Marshal(r)
package result
