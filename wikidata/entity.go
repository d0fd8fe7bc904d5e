package wikidata

import (
	"strconv"

	"github.com/andreiashu/gazetteer"
)

// Entity is a Wikidata search hit, stored as-is in the lookup caches.
type Entity struct {
	ID          string                 `json:"id"`
	Label       string                 `json:"label,omitempty"`
	Description string                 `json:"description,omitempty"`
	ConceptURI  string                 `json:"concepturi,omitempty"`
	URL         string                 `json:"url,omitempty"`
	Title       string                 `json:"title,omitempty"`
	PageID      int64                  `json:"pageid,omitempty"`
	Repository  string                 `json:"repository,omitempty"`
	Aliases     []string               `json:"aliases,omitempty"`
	Match       string                 `json:"match,omitempty"`
	Coordinates *gazetteer.Coordinates `json:"coordinates,omitempty"`
}

// Fields returns the entity as place fields. Empty values are left out, as is
// a title that merely repeats the id.
func (e Entity) Fields() []gazetteer.Field {
	var out []gazetteer.Field
	add := func(name string, v string) {
		if v != "" {
			out = append(out, gazetteer.F(name, v))
		}
	}
	add("id", e.ID)
	add("label", e.Label)
	add("description", e.Description)
	add("concepturi", e.ConceptURI)
	add("url", e.URL)
	if e.Title != e.ID {
		add("title", e.Title)
	}
	if e.PageID != 0 {
		add("pageid", strconv.FormatInt(e.PageID, 10))
	}
	add("repository", e.Repository)
	if len(e.Aliases) > 0 {
		out = append(out, gazetteer.F("aliases", e.Aliases))
	}
	add("match", e.Match)
	if e.Coordinates != nil {
		out = append(out, gazetteer.F("coordinates", *e.Coordinates))
	}
	return out
}

// Names returns the label followed by the aliases.
func (e Entity) Names() []string {
	out := make([]string, 0, 1+len(e.Aliases))
	if e.Label != "" {
		out = append(out, e.Label)
	}
	return append(out, e.Aliases...)
}
