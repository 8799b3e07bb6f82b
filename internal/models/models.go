package models

// Source describes one configured news site. It is loaded from config and never
// mutated by the pipeline.
type Source struct {
	ID                     string   `yaml:"id" json:"id"`
	Name                   string   `yaml:"name" json:"name"`
	URL                    string   `yaml:"url" json:"url"`
	ArticleURLPattern      string   `yaml:"article_url_pattern" json:"articleUrlPattern,omitempty"`
	ExcludeURLPatterns     []string `yaml:"exclude_url_patterns" json:"excludeUrlPatterns,omitempty"`
	ListPageURLPattern     string   `yaml:"list_page_url_pattern" json:"listPageUrlPattern,omitempty"`
	ListPageTemplate       string   `yaml:"list_page_template" json:"listPageTemplate,omitempty"`
	LinkContainerSelectors []string `yaml:"link_container_selectors" json:"linkContainerSelectors,omitempty"`
	LinkSelector           string   `yaml:"link_selector" json:"linkSelector,omitempty"`
	MaxItems               int      `yaml:"max_items" json:"maxItems,omitempty"`
	AllowInsecureTLS       bool     `yaml:"allow_insecure_tls" json:"allowInsecureTls,omitempty"`
	RespectRobots          bool     `yaml:"respect_robots" json:"respectRobots,omitempty"`
}

// Item is one scraped and summarized article.
type Item struct {
	ID         string `json:"id"`
	SourceID   string `json:"sourceId"`
	SourceName string `json:"sourceName"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Summary    string `json:"summary"`
	FetchedAt  string `json:"fetchedAt"`
}

type SourceError struct {
	SourceID string `json:"sourceId"`
	Message  string `json:"message"`
}

// SourceOutcome is everything a single source contributed to a run.
type SourceOutcome struct {
	Items  []Item
	Errors []SourceError
}

type AggregationResult struct {
	Items    []Item        `json:"items"`
	Errors   []SourceError `json:"errors"`
	LastSync string        `json:"lastSync"`
}

// PageWindow selects the list-page range crawled in one run. A nil *PageWindow
// means the default run.
type PageWindow struct {
	Offset int `json:"listPageOffset"`
	Limit  int `json:"listPageLimit"`
}

type ExtractedArticle struct {
	Title string
	Date  string
	Text  string
}
