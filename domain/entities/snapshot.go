package entities

// PageSnapshot contains the elements visible on the current page at capture time
type PageSnapshot struct {
	URL      string          `json:"url"`
	Elements []ElementRecord `json:"elements"`
}
