// Package tags derives keyword tags from note text.
//
// A tag is a '#' followed by one or more word characters or hyphens. Tags are
// case-folded and stored without the leading '#'.
package tags

import (
	"regexp"
	"slices"
	"strings"
)

var hashtagRe = regexp.MustCompile(`#([\w-]+)`)

// Extract returns the distinct lowercase hashtags found in text, sorted.
// Text without hashtags yields an empty, non-nil slice.
func Extract(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	slices.Sort(out)
	return out
}

// Normalize turns user input such as "#Work" into the stored form "work".
func Normalize(keyword string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(keyword), "#"))
}

// Complete reports whether word, typed without a '#', names a known keyword
// and returns its hashtag form. The typed casing is kept.
func Complete(word string, known []string) (string, bool) {
	if word == "" || strings.HasPrefix(word, "#") {
		return "", false
	}
	lower := strings.ToLower(word)
	if !slices.Contains(known, lower) {
		return "", false
	}
	return "#" + word, true
}

// Autotag applies Complete to every word of line that is followed by a space,
// the way the editor rewrites a word when the space key is pressed. The last
// word is left alone unless the line ends with a space.
func Autotag(line string, known []string) string {
	if len(known) == 0 || line == "" {
		return line
	}

	var b strings.Builder
	b.Grow(len(line) + 8)

	start := -1
	for i, r := range line {
		if r == ' ' {
			if start >= 0 {
				word := line[start:i]
				if tagged, ok := Complete(word, known); ok {
					word = tagged
				}
				b.WriteString(word)
				start = -1
			}
			b.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		b.WriteString(line[start:])
	}

	return b.String()
}
