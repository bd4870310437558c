// Package io reads and writes labelled matrices.
//
// # Formats
//
// CSV carries the labels twice: in the header after a corner cell, and as
// the first field of every row. Only the header labels are used.
//
//	label,A,B,C
//	A,0,1,2
//	B,1,0,6
//	C,2,6,0
//
// JSON carries them once:
//
//	{"labels": ["A", "B", "C"], "matrix": [[0, 1, 2], [1, 0, 6], [2, 6, 0]]}
//
// Whether the values are distances or similarities is not part of either
// format; callers say so when clustering.
//
// # Sources
//
// [Loader] accepts a file path or an http(s) URL. The format comes from the
// extension when there is one and is sniffed from the content otherwise.
// Parse failures carry PARSE_ERROR; a missing file carries FILE_NOT_FOUND.
//
// Readers only decode. Shape and value checks happen in [matrix.New] and
// [matrix.Matrix.ValidateDistances].
package io
