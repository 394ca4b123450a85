package notes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RndUsr76/Notish/internal/client/models"
)

func encodeContent(content json.RawMessage) string {
	if len(content) == 0 {
		return "{}"
	}
	return string(content)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw []byte) ([]string, error) {
	tags := []string{}
	if len(raw) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// setClause collects "column = placeholder" pairs for a partial UPDATE.
type setClause struct {
	columns []string
	args    []any
	mark    func(n int) string
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.columns = append(s.columns, column+" = "+s.mark(len(s.args)))
}

func (s *setClause) String() string {
	return strings.Join(s.columns, ", ")
}

// patchClause turns a NotePatch into a SET clause. updated_at is always set.
func patchClause(patch models.NotePatch, mark func(int) string, updatedAt any) (*setClause, error) {
	set := &setClause{mark: mark}

	if patch.Content != nil {
		set.add("content", encodeContent(*patch.Content))
	}
	if patch.TextContent != nil {
		set.add("text_content", *patch.TextContent)
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		set.add("tags", tags)
	}
	if patch.Project != nil {
		set.add("project", models.NormalizeProject(*patch.Project))
	}
	set.add("updated_at", updatedAt)

	return set, nil
}
