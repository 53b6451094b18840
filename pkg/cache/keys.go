package cache

// Key prefixes.
const (
	prefixTree     = "tree"
	prefixLayout   = "layout"
	prefixArtifact = "artifact"
)

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always give equal keys.
type Keyer interface {
	// TreeKey identifies a parsed tree document by the hash of its bytes.
	TreeKey(docHash string) string

	// LayoutKey identifies a settled layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one exported artifact of a document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds everything that changes which nodes are visible and
// where they sit.
type LayoutKeyOpts struct {
	ConfigHash  string `json:"config"`
	ExpandDepth int    `json:"expand_depth"`
	ExpandAll   bool   `json:"expand_all,omitempty"`
	CollapseAll bool   `json:"collapse_all,omitempty"`
	Search      string `json:"search,omitempty"`

	// State distinguishes interactive states of one document, such as a
	// server instance revision.
	State string `json:"state,omitempty"`
}

// ArtifactKeyOpts extends LayoutKeyOpts with the export settings.
type ArtifactKeyOpts struct {
	LayoutKeyOpts
	Format string `json:"format"`
	Fit    string `json:"fit,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey returns "tree:<docHash>".
func (DefaultKeyer) TreeKey(docHash string) string {
	return prefixTree + ":" + docHash
}

// LayoutKey returns "layout:<sha256(docHash, opts)>".
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey(prefixLayout, docHash, opts)
}

// ArtifactKey returns "artifact:<sha256(docHash, opts)>".
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, docHash, opts)
}

var _ Keyer = DefaultKeyer{}
