package cache

// Keyer derives cache keys for each pipeline stage. Keys from one stage
// embed the content hash produced by the previous one, so a changed matrix
// invalidates everything downstream.
type Keyer interface {
	HTTPKey(namespace, key string) string
	ClusterKey(matrixHash string, opts ClusterKeyOpts) string
	LayoutKey(resultHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ClusterKeyOpts holds the clustering options that change a result.
type ClusterKeyOpts struct {
	Linkage    string `json:"linkage"`
	Similarity bool   `json:"similarity"`
}

// LayoutKeyOpts holds the layout options that change a dendrogram.
type LayoutKeyOpts struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Orientation string  `json:"orientation"`
	Noun        string  `json:"noun,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Precision   int     `json:"precision,omitempty"`
	// Similarity switches branch titles from distances to similarities.
	Similarity  bool    `json:"similarity,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Scheme      string  `json:"scheme,omitempty"`
	ScaleMax    float64 `json:"scale_max,omitempty"`
	Title       string  `json:"title,omitempty"`
	Heatmap     bool    `json:"heatmap"`
	Legend      bool    `json:"legend,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Selected    []int   `json:"selected,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) ClusterKey(matrixHash string, opts ClusterKeyOpts) string {
	return hashKey("cluster", matrixHash, opts)
}

func (DefaultKeyer) LayoutKey(resultHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", resultHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
