package resumes

import "time"

// Resume is an uploaded resume file owned by a user.
type Resume struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FileURL   string    `json:"file_url"`
	FileName  string    `json:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Experience is one job entry.
type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Education is one school entry.
type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Field  string `json:"field"`
	Year   string `json:"year"`
}

// Project is one project entry.
type Project struct {
	Name         string `json:"name"`
	Technologies string `json:"technologies"`
	Description  string `json:"description"`
}

// Details holds the structured fields parsed from a resume.
type Details struct {
	ID         string       `json:"id"`
	ResumeID   string       `json:"resume_id"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Projects   []Project    `json:"projects"`
	ParsedAt   time.Time    `json:"parsed_at"`
}

// ResumeWithDetails pairs a resume with its parsed details, if any.
type ResumeWithDetails struct {
	Resume  Resume   `json:"resume"`
	Details *Details `json:"details"`
}

// Normalize replaces nil sections with empty slices so they encode as [].
func (d Details) Normalize() Details {
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	return d
}
