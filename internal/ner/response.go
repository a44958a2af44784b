package ner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// entitySchemaJSON constrains the JSON object the LLM backends must return.
const entitySchemaJSON = `{
  "type": "object",
  "required": ["entities"],
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "text"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "text":  {"type": "string"}
        }
      }
    }
  }
}`

var entitySchema = jsonschema.MustCompileString("entities.schema.json", entitySchemaJSON)

// entityPrompt is shared by the LLM backends. The source text is appended last.
const entityPrompt = `You are a named-entity recognizer for identity documents such as PAN cards and Aadhar cards.
Find every PERSON entity (a person's name) and every DATE entity in the text below.

Rules:
1. Return ONLY a JSON object of the form {"entities": [{"label": "PERSON" | "DATE", "text": "..."}]}.
2. "text" must be copied exactly as it appears in the source, without correcting spelling or case.
3. List entities in the order they appear in the text. Include repeated mentions.
4. If nothing is found, return {"entities": []}.

Text:
"""
%s
"""`

func buildEntityPrompt(text string) string {
	return fmt.Sprintf(entityPrompt, text)
}

type llmEntities struct {
	Entities []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"entities"`
}

// parseEntityResponse turns raw LLM output into located entities over source.
// Entities whose text cannot be found in source are dropped.
func parseEntityResponse(raw, source string) ([]Entity, error) {
	jsonStr := stripCodeFences(raw)
	if candidate, ok := extractFirstJSON(jsonStr); ok {
		jsonStr = candidate
	}
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var doc any
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := entitySchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var parsed llmEntities
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	loc := newLocator(source)
	entities := make([]Entity, 0, len(parsed.Entities))
	for _, e := range parsed.Entities {
		label := strings.ToUpper(strings.TrimSpace(e.Label))
		if label != LabelPerson && label != LabelDate {
			continue
		}
		start, end, ok := loc.find(e.Text)
		if !ok {
			continue
		}
		entities = append(entities, Entity{Label: label, Text: source[start:end], Start: start})
	}
	sortByPosition(entities)
	return entities, nil
}

func sortByPosition(entities []Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})
}

// locator finds mentions in the source text. Repeated mentions of the same
// text resolve to successive occurrences.
type locator struct {
	source string
	next   map[string]int
}

func newLocator(source string) *locator {
	return &locator{source: source, next: make(map[string]int)}
}

func (l *locator) find(mention string) (int, int, bool) {
	mention = strings.TrimSpace(mention)
	if mention == "" {
		return 0, 0, false
	}
	from := l.next[mention]
	if from > len(l.source) {
		return 0, 0, false
	}

	start, end := -1, -1
	if re := whitespaceTolerant(mention); re != nil {
		// LLMs often collapse line breaks inside a name into single spaces
		if m := re.FindStringIndex(l.source[from:]); m != nil {
			start, end = from+m[0], from+m[1]
		}
	} else if idx := strings.Index(l.source[from:], mention); idx >= 0 {
		start, end = from+idx, from+idx+len(mention)
	}
	if start < 0 {
		return 0, 0, false
	}
	l.next[mention] = end
	return start, end, true
}

func whitespaceTolerant(mention string) *regexp.Regexp {
	words := strings.Fields(mention)
	if len(words) < 2 {
		return nil
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(strings.Join(words, `\s+`))
	if err != nil {
		return nil
	}
	return re
}

// stripCodeFences removes surrounding Markdown code fences like ```json ... ```.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		// drop a language tag such as "json" on the fence line
		if i := strings.IndexByte(s, '\n'); i != -1 {
			first := strings.TrimSpace(s[:i])
			if len(first) > 0 && len(first) < 20 && !strings.ContainsAny(first, "{[") {
				s = s[i+1:]
			}
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// extractFirstJSON attempts to extract the first balanced JSON object.
func extractFirstJSON(s string) (string, bool) {
	start := -1
	depth := 0
	inString, escaped := false, false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
