package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"resume-parser/internal/resumes"
)

var requiredSections = []string{"skills", "experience", "education", "projects"}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(raw string) string {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```JSON") {
		clean = strings.TrimPrefix(clean, "```JSON")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// ParseDetails validates a model completion and converts it to Details.
// All four sections must be present as arrays. Unknown keys are ignored and
// missing entry fields become empty strings.
func ParseDetails(raw string) (resumes.Details, error) {
	clean := StripFences(raw)
	if clean == "" {
		return resumes.Details{}, parseErr(errors.New("empty completion"))
	}
	if !json.Valid([]byte(clean)) {
		return resumes.Details{}, parseErr(errors.New("completion is not valid JSON"))
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &top); err != nil {
		return resumes.Details{}, schemaErr("top-level value must be an object")
	}

	sections := make(map[string][]json.RawMessage, len(requiredSections))
	for _, key := range requiredSections {
		value, ok := top[key]
		if !ok {
			return resumes.Details{}, schemaErr("missing key %q", key)
		}
		var items []json.RawMessage
		if jsonKind(value) != '[' || json.Unmarshal(value, &items) != nil {
			return resumes.Details{}, schemaErr("%q must be an array", key)
		}
		sections[key] = items
	}

	var d resumes.Details
	var err error
	if d.Skills, err = parseSkills(sections["skills"]); err != nil {
		return resumes.Details{}, err
	}
	d.Experience = make([]resumes.Experience, 0, len(sections["experience"]))
	for i, item := range sections["experience"] {
		f, err := entryFields(item, "experience", i, "company", "role", "duration", "description")
		if err != nil {
			return resumes.Details{}, err
		}
		d.Experience = append(d.Experience, resumes.Experience{
			Company:     f["company"],
			Role:        f["role"],
			Duration:    f["duration"],
			Description: f["description"],
		})
	}
	d.Education = make([]resumes.Education, 0, len(sections["education"]))
	for i, item := range sections["education"] {
		f, err := entryFields(item, "education", i, "school", "degree", "field", "year")
		if err != nil {
			return resumes.Details{}, err
		}
		d.Education = append(d.Education, resumes.Education{
			School: f["school"],
			Degree: f["degree"],
			Field:  f["field"],
			Year:   f["year"],
		})
	}
	d.Projects = make([]resumes.Project, 0, len(sections["projects"]))
	for i, item := range sections["projects"] {
		f, err := entryFields(item, "projects", i, "name", "technologies", "description")
		if err != nil {
			return resumes.Details{}, err
		}
		d.Projects = append(d.Projects, resumes.Project{
			Name:         f["name"],
			Technologies: f["technologies"],
			Description:  f["description"],
		})
	}
	return d, nil
}

func parseSkills(items []json.RawMessage) ([]string, error) {
	skills := make([]string, 0, len(items))
	for i, item := range items {
		text, ok := scalarText(item)
		if !ok || jsonKind(item) == 'n' {
			return nil, schemaErr("skills[%d] must be a string", i)
		}
		if text = strings.TrimSpace(text); text != "" {
			skills = append(skills, text)
		}
	}
	return skills, nil
}

func entryFields(item json.RawMessage, section string, index int, keys ...string) (map[string]string, error) {
	var obj map[string]json.RawMessage
	if jsonKind(item) != '{' || json.Unmarshal(item, &obj) != nil {
		return nil, schemaErr("%s[%d] must be an object", section, index)
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok := obj[key]
		if !ok {
			out[key] = ""
			continue
		}
		text, ok := fieldText(value)
		if !ok {
			return nil, schemaErr("%s[%d].%s must be a string", section, index, key)
		}
		out[key] = strings.TrimSpace(text)
	}
	return out, nil
}

// fieldText accepts scalars and arrays of scalars, which are joined with ", ".
func fieldText(value json.RawMessage) (string, bool) {
	if jsonKind(value) != '[' {
		return scalarText(value)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return "", false
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		text, ok := scalarText(item)
		if !ok {
			return "", false
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", "), true
}

// scalarText renders a JSON string, number or null as text.
func scalarText(value json.RawMessage) (string, bool) {
	switch jsonKind(value) {
	case '"':
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", false
		}
		return s, true
	case 'n':
		return "", true
	case '0':
		return string(bytes.TrimSpace(value)), true
	default:
		return "", false
	}
}

// jsonKind returns '{', '[', '"', 'n' (null), 'b' (bool) or '0' (number).
func jsonKind(value json.RawMessage) byte {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return 0
	}
	switch c := trimmed[0]; {
	case c == '{' || c == '[' || c == '"' || c == 'n':
		return c
	case c == 't' || c == 'f':
		return 'b'
	case c == '-' || (c >= '0' && c <= '9'):
		return '0'
	}
	return 0
}
