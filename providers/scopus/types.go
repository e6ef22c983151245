package scopus

// SearchResponse ist die Top-Level-Struktur der Scopus Search-API-Antwort.
type SearchResponse struct {
	SearchResults struct {
		TotalResults string  `json:"opensearch:totalResults"`
		Entry        []Entry `json:"entry"`
	} `json:"search-results"`
}

// Entry repräsentiert eine einzelne Publikation in der API-Antwort.
type Entry struct {
	Title              string        `json:"dc:title"`
	CoverDate          string        `json:"prism:coverDate"`
	PublicationName    string        `json:"prism:publicationName"`
	SubtypeDescription string        `json:"subtypeDescription"`
	DOI                string        `json:"prism:doi"`
	Affiliations       []Affiliation `json:"affiliation"`
}

// Affiliation repräsentiert eine Filiation eines Eintrags.
type Affiliation struct {
	Name    string `json:"affilname"`
	City    string `json:"affiliation-city"`
	Country string `json:"affiliation-country"`
}
