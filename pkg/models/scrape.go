package models

// ScrapedPage is the content extracted from an application page. All
// fields are best-effort; FullText is always set when the fetch
// succeeded.
type ScrapedPage struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	FullText     string `json:"full_text,omitempty"`
	URL          string `json:"url"`
}
