package curated

// Descriptor names one curated endpoint. The lookup service and the local
// file both produce this shape; the pipeline never special-cases any of
// them.
type Descriptor struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Type string `json:"type" yaml:"type"`
}
