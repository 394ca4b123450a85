// Package views derives read-only projections of a note list for display:
// search and keyword filtering, grouping by project and the keyword lists
// shown next to the notes. Nothing here mutates its input.
package views

import (
	"slices"
	"strings"

	"github.com/RndUsr76/Notish/internal/client/models"
	"github.com/RndUsr76/Notish/internal/client/tags"
)

// Mode selects how notes are laid out.
type Mode int

const (
	ModeList Mode = iota
	ModeProject
)

func (m Mode) String() string {
	if m == ModeProject {
		return "project"
	}
	return "list"
}

// Filter is the UI filter state. Zero value shows every note.
type Filter struct {
	Search  string
	Keyword string
}

// Group is the notes of one project, in source order.
type Group struct {
	Project string
	Notes   []models.Note
}

// Search keeps notes whose text contains query, ignoring case. An empty
// query keeps everything.
func Search(list []models.Note, query string) []models.Note {
	if query == "" {
		return slices.Clone(list)
	}
	q := strings.ToLower(query)
	out := make([]models.Note, 0, len(list))
	for _, n := range list {
		if strings.Contains(strings.ToLower(n.TextContent), q) {
			out = append(out, n)
		}
	}
	return out
}

// ByKeyword keeps notes tagged with keyword. The keyword may carry a leading
// '#' and any casing. An empty keyword keeps everything.
func ByKeyword(list []models.Note, keyword string) []models.Note {
	k := tags.Normalize(keyword)
	if k == "" {
		return slices.Clone(list)
	}
	out := make([]models.Note, 0, len(list))
	for _, n := range list {
		if slices.ContainsFunc(n.Tags, func(t string) bool { return strings.EqualFold(t, k) }) {
			out = append(out, n)
		}
	}
	return out
}

// Apply runs the search and keyword filters.
func (f Filter) Apply(list []models.Note) []models.Note {
	return ByKeyword(Search(list, f.Search), f.Keyword)
}

// GroupByProject partitions list by project, sorted by project name. Notes
// without a project go to models.DefaultProject.
func GroupByProject(list []models.Note) []Group {
	index := map[string]int{}
	var groups []Group
	for _, n := range list {
		p := n.ProjectOrDefault()
		i, ok := index[p]
		if !ok {
			i = len(groups)
			index[p] = i
			groups = append(groups, Group{Project: p})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}
	slices.SortStableFunc(groups, func(a, b Group) int { return strings.Compare(a.Project, b.Project) })
	return groups
}

// Title is the first non-blank line of the note text, or "Untitled".
func Title(n models.Note) string {
	for line := range strings.Lines(n.TextContent) {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return "Untitled"
}

// PreviewLength is the longest preview Preview returns, in runes.
const PreviewLength = 60

// Preview is the text after the first line, folded into one line and cut to
// PreviewLength runes. It is empty when the note has a single line.
func Preview(n models.Note) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(n.TextContent), "\n")
	if rest == "" {
		return ""
	}
	p := strings.ReplaceAll(strings.ReplaceAll(rest, "\r", ""), "\n", " ")
	if r := []rune(p); len(r) > PreviewLength {
		p = string(r[:PreviewLength])
	}
	return p
}
