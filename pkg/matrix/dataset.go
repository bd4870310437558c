package matrix

// Kind tells whether matrix values are distances or similarities.
type Kind string

const (
	KindDistance   Kind = "distance"
	KindSimilarity Kind = "similarity"
)

// Dataset is the transport form of a labelled square matrix, as produced by
// the CSV and JSON readers and accepted by the HTTP API:
//
//	{"labels": ["A", "B"], "matrix": [[0, 1], [1, 0]]}
type Dataset struct {
	Labels []string    `json:"labels" yaml:"labels"`
	Matrix [][]float64 `json:"matrix" yaml:"matrix"`
}

// Build validates d and returns it as a Matrix.
func (d Dataset) Build() (*Matrix, error) {
	return New(d.Labels, d.Matrix)
}
