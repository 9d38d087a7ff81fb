// Package testutil builds the small indexes and spellers shared by package tests.
package testutil

import (
	"github.com/bastiangx/termserve/pkg/index"
	"github.com/bastiangx/termserve/pkg/spell"
)

// Fields are the fields of the fixture index. "tags" never holds a term.
var Fields = []index.FieldDef{
	{Name: "title", Analyzer: "lowercase"},
	{Name: "body", Analyzer: "lowercase"},
	{Name: "tags"},
}

// Query is misspelled in every word; Speller corrects all of them.
const Query = "quiK brwn fx running"

// Ranked is the full result for Query over Index: summed frequencies brown 9, fox 8, quick 5,
// run 4, brawn 3, quirk 3.
var Ranked = []string{"brown", "fox", "quick", "run", "brawn", "quirk"}

// TitleRanked is the result for Query restricted to the title field: fox 8, quick 5, brown 4,
// run 4, quirk 1.
var TitleRanked = []string{"fox", "quick", "brown", "run", "quirk"}

// Speller corrects the words of Query.
func Speller() spell.Static {
	return spell.Static{
		"quik":    {"quick", "quirk"},
		"brwn":    {"brown", "brawn"},
		"fx":      {"fox"},
		"running": {"run"},
	}
}

// Index builds the two segment fixture index. Terms are spread over both segments and both
// text fields so frequencies only reach their totals when everything is summed.
func Index() *index.MemIndex {
	schema, err := index.NewSchema(Fields...)
	if err != nil {
		panic(err)
	}
	idx := index.NewMemIndex(schema)

	first := idx.NewSegment()
	first.AddTerm("title", "brown", docs(1, 4)...)
	first.AddTerm("title", "fox", docs(1, 8)...)
	first.AddTerm("title", "quick", docs(1, 5)...)
	first.AddTerm("title", "lazy", docs(1, 6)...)
	first.AddTerm("body", "brown", docs(10, 2)...)
	first.AddTerm("body", "brawn", docs(10, 3)...)
	first.AddTerm("body", "dog", docs(10, 7)...)

	second := idx.NewSegment()
	second.AddTerm("title", "run", docs(20, 4)...)
	second.AddTerm("title", "quirk", docs(20, 1)...)
	second.AddTerm("body", "brown", docs(30, 3)...)
	second.AddTerm("body", "quirk", docs(30, 2)...)
	second.AddTerm("body", "jumps", docs(30, 2)...)

	return idx
}

// Opener serves Index under the handle "main".
func Opener() index.MemOpener {
	return index.MemOpener{"main": Index()}
}

// docs returns n consecutive document ids starting at first.
func docs(first, n uint32) []uint32 {
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = first + uint32(i)
	}
	return ids
}
