package llm

import "strings"

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// DefaultMaxInputChars bounds the resume text sent to the model.
const DefaultMaxInputChars = 24000

const systemPrompt = "You are a resume parsing assistant. Extract structured information from resumes and return only valid JSON with no additional formatting or text."

const userPromptTemplate = `Extract the following information from this resume text and return ONLY valid JSON with no additional text or explanation.

The JSON must have exactly this structure:
{
  "skills": ["skill1", "skill2"],
  "experience": [
    {"company": "Company Name", "role": "Job Title", "duration": "Start Date - End Date", "description": "Brief description of responsibilities"}
  ],
  "education": [
    {"school": "School Name", "degree": "Degree Type", "field": "Field of Study", "year": "Graduation Year"}
  ],
  "projects": [
    {"name": "Project Name", "technologies": "Technologies used", "description": "Project description"}
  ]
}

Rules:
- Extract ALL skills mentioned (technical skills, tools, frameworks, languages, etc.)
- For experience, include all job positions with company, role, duration, and key responsibilities
- For education, include all degrees, certifications, and relevant coursework
- For projects, include personal projects, academic projects, or notable work
- All values inside entries must be strings
- If a section has no information, return an empty array
- Return ONLY the JSON object, no markdown formatting, no explanations

Resume text:
`

// BuildMessages returns the chat messages for structuring resume text.
// The output depends only on text.
func BuildMessages(text string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPromptTemplate + text},
	}
}

// Truncate cuts text to at most maxRunes runes. It reports whether text was cut.
// A non-positive maxRunes disables the limit.
func Truncate(text string, maxRunes int) (string, bool) {
	text = strings.TrimSpace(text)
	if maxRunes <= 0 {
		return text, false
	}
	count := 0
	for i := range text {
		if count == maxRunes {
			return text[:i], true
		}
		count++
	}
	return text, false
}
