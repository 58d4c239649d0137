package reconciler

import "github.com/shelfmark/refsync/pkg/papers"

// Projection partitions the properties derived for one paper. The
// partition is what makes updates safe: only SourceOwned keys are ever
// patched onto an existing record, so human edits to any other column
// survive every run.
type Projection struct {
	// SourceOwned holds the properties the sync owns and overwrites.
	SourceOwned papers.Properties

	// TargetDefaults holds properties seeded once at creation and never
	// written again.
	TargetDefaults papers.Properties
}

// CreateProperties returns the full property set for a new record.
func (p Projection) CreateProperties() papers.Properties {
	return p.TargetDefaults.Merge(p.SourceOwned)
}

// Mapper derives target properties from a paper.
type Mapper interface {
	Project(paper papers.Paper) Projection
}

// fieldMapper is the default Mapper.
type fieldMapper struct {
	defaults papers.Properties
}

// NewMapper creates a Mapper with the given creation-time defaults.
// Defaults colliding with a source-owned key are dropped.
func NewMapper(defaults papers.Properties) Mapper {
	return &fieldMapper{defaults: defaults.Clone()}
}

// sourceOwned lists the property names the sync owns.
var sourceOwned = map[string]struct{}{
	papers.PropTitle:       {},
	papers.PropAuthors:     {},
	papers.PropLink:        {},
	papers.PropPublishedAt: {},
	papers.PropZoteroURL:   {},
	papers.PropZoteroKey:   {},
}

// Project implements Mapper.
func (m *fieldMapper) Project(paper papers.Paper) Projection {
	owned := papers.Properties{
		papers.PropTitle:     papers.Title(paper.Title),
		papers.PropAuthors:   papers.RichText(paper.AuthorsLine()),
		papers.PropZoteroKey: papers.RichText(paper.Key),
	}
	if paper.Link != "" {
		owned[papers.PropLink] = papers.URL(paper.Link)
	}
	if paper.PublishedAt != "" {
		owned[papers.PropPublishedAt] = papers.Date(paper.PublishedAt)
	}
	if paper.SourceURL != "" {
		owned[papers.PropZoteroURL] = papers.URL(paper.SourceURL)
	}

	defaults := papers.Properties{}
	for name, prop := range m.defaults {
		if _, collides := sourceOwned[name]; collides {
			continue
		}
		defaults[name] = prop
	}

	return Projection{SourceOwned: owned, TargetDefaults: defaults}
}
