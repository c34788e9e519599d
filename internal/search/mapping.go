package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// mappingVersion must change whenever buildIndexMapping does; a mismatch
// on open forces a rebuild from the store.
const mappingVersion = "1"

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = en.AnalyzerName
	name.Store = true
	name.IncludeTermVectors = true
	doc.AddFieldMappingsAt("name", name)

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = en.AnalyzerName
	desc.Store = false
	doc.AddFieldMappingsAt("description", desc)

	// Genre and publisher names are proper nouns; no stemming.
	for _, field := range []string{"genre", "publisher"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = simple.Name
		fm.Store = true
		doc.AddFieldMappingsAt(field, fm)
	}

	for _, field := range []string{"genre_exact", "publisher_exact"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = false
		doc.AddFieldMappingsAt(field, fm)
	}

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	doc.AddFieldMappingsAt("release_year", year)

	im.AddDocumentMapping("_default", doc)
	return im
}
