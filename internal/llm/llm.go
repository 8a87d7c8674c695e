package llm

import (
	"context"

	"resume-parser/internal/resumes"
)

// Structurer turns raw resume text into structured details.
type Structurer interface {
	Structure(ctx context.Context, text string) (resumes.Details, error)
}

// StructurerFunc adapts a function to Structurer.
type StructurerFunc func(ctx context.Context, text string) (resumes.Details, error)

// Structure calls f.
func (f StructurerFunc) Structure(ctx context.Context, text string) (resumes.Details, error) {
	return f(ctx, text)
}
