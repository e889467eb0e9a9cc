package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindColumnMismatches(t *testing.T) {
	m := findColumnMismatches("projects",
		[]string{"id", "title", "legacy_slug"},
		[]string{"id", "title", "category"},
	)

	assert.Equal(t, "projects", m.Table)
	assert.Equal(t, []string{"legacy_slug"}, m.UnmappedColumns)
	assert.Equal(t, []string{"category"}, m.MissingColumns)
}

func TestSplitAndJoinTags(t *testing.T) {
	assert.Equal(t, []string{"Go", "PostgreSQL", "chi"}, SplitTags(" Go, PostgreSQL,, chi ,"))
	assert.Empty(t, SplitTags(""))
	assert.Equal(t, "Go, chi", JoinTags([]string{"Go", " ", "chi "}))

	p := Project{Technologies: "Go,htmx"}
	assert.Equal(t, []string{"Go", "htmx"}, p.TechnologyList())
}
