package entities

// ElementRecord represents one DOM node of interest on the page
type ElementRecord struct {
	Tag               string            `json:"tag"`
	ID                string            `json:"id,omitempty"`
	Name              string            `json:"name,omitempty"`
	Type              string            `json:"type,omitempty"`
	Placeholder       string            `json:"placeholder,omitempty"`
	Value             string            `json:"value,omitempty"`
	Text              string            `json:"text"`
	Attrs             map[string]string `json:"attrs"`
	Clickable         bool              `json:"clickable"`
	Depth             int               `json:"depth"`
	ParentText        string            `json:"parent_text,omitempty"`
	PreferredLocators []string          `json:"preferred_locators"`
}

// IdentityKey - returns the key used for stagnation fingerprints: id, name, or text
func (e ElementRecord) IdentityKey() string {
	switch {
	case e.ID != "":
		return e.ID
	case e.Name != "":
		return e.Name
	default:
		return e.Text
	}
}

// DOMNode is the raw, unclassified view of one element as walked in the page.
// Err is set when the walk failed inside this subtree.
type DOMNode struct {
	Tag        string            `json:"tag"`
	Attrs      map[string]string `json:"attrs"`
	DirectText string            `json:"directText"`
	FullText   string            `json:"fullText"`
	Clickable  bool              `json:"clickable"`
	Children   []*DOMNode        `json:"children"`
	Err        string            `json:"error,omitempty"`
}
