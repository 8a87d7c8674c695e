package analyses

import (
	"context"
	"time"

	"resume-parser/internal/extract"
	"resume-parser/internal/llm"
	"resume-parser/internal/resumes"
	"resume-parser/internal/shared/metrics"
	"resume-parser/internal/shared/telemetry"
)

// Pipeline steps, in order.
const (
	StepAuthorize = "authorize"
	StepDownload  = "download"
	StepExtract   = "extract"
	StepStructure = "structure"
	StepSave      = "save"
)

// Store is the slice of the storage client the pipeline uses.
type Store interface {
	GetResume(ctx context.Context, resumeID, userID string) (resumes.Resume, error)
	DownloadFile(ctx context.Context, fileURL string) ([]byte, error)
	SaveDetails(ctx context.Context, resumeID string, d resumes.Details) (resumes.Details, error)
}

// ExtractFunc pulls plain text out of a document.
type ExtractFunc func(ctx context.Context, data []byte) (string, error)

// Processor runs the analyze pipeline: authorize, download, extract,
// structure, save.
type Processor struct {
	Store      Store
	Extract    ExtractFunc
	Structurer llm.Structurer
}

// NewProcessor constructs a Processor using the PDF extractor.
func NewProcessor(store Store, structurer llm.Structurer) *Processor {
	return &Processor{
		Store:      store,
		Extract:    extract.Extract,
		Structurer: structurer,
	}
}

// Analyze parses the resume at fileURL and stores its details. Errors from
// each step are returned as-is; nothing is written unless every earlier step
// succeeded.
func (p *Processor) Analyze(ctx context.Context, resumeID, fileURL, userID string) (resumes.Details, error) {
	run := pipelineRun{
		ctx:      ctx,
		resumeID: resumeID,
		userID:   userID,
		started:  time.Now(),
	}
	metrics.IncAnalyzeStarted()
	run.log(StepAuthorize, "analysis.start", nil)

	if _, err := p.Store.GetResume(ctx, resumeID, userID); err != nil {
		return resumes.Details{}, run.fail(StepAuthorize, err)
	}

	run.log(StepDownload, "analysis.step", nil)
	data, err := p.Store.DownloadFile(ctx, fileURL)
	if err != nil {
		return resumes.Details{}, run.fail(StepDownload, err)
	}

	run.log(StepExtract, "analysis.step", map[string]any{"bytes": len(data)})
	text, err := p.Extract(ctx, data)
	if err != nil {
		return resumes.Details{}, run.fail(StepExtract, err)
	}

	run.log(StepStructure, "analysis.step", map[string]any{"text_chars": len([]rune(text))})
	details, err := p.Structurer.Structure(ctx, text)
	if err != nil {
		return resumes.Details{}, run.fail(StepStructure, err)
	}

	run.log(StepSave, "analysis.step", map[string]any{
		"skills":     len(details.Skills),
		"experience": len(details.Experience),
		"education":  len(details.Education),
		"projects":   len(details.Projects),
	})
	saved, err := p.Store.SaveDetails(ctx, resumeID, details)
	if err != nil {
		return resumes.Details{}, run.fail(StepSave, err)
	}

	elapsed := run.elapsedMs()
	metrics.IncAnalyzeCompleted()
	metrics.ObserveAnalyzeDurationMs(elapsed)
	run.log(StepSave, "analysis.complete", map[string]any{
		"details_id":  saved.ID,
		"duration_ms": elapsed,
	})
	return saved, nil
}

type pipelineRun struct {
	ctx      context.Context
	resumeID string
	userID   string
	started  time.Time
}

func (r pipelineRun) fields(step string, extra map[string]any) map[string]any {
	fields := map[string]any{
		"request_id": requestIDFromContext(r.ctx),
		"resume_id":  r.resumeID,
		"user_id":    r.userID,
		"step":       step,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

func (r pipelineRun) log(step, msg string, extra map[string]any) {
	telemetry.Info(msg, r.fields(step, extra))
}

func (r pipelineRun) fail(step string, err error) error {
	elapsed := r.elapsedMs()
	metrics.IncAnalyzeFailed(step)
	metrics.ObserveAnalyzeDurationMs(elapsed)
	telemetry.Error("analysis.failed", r.fields(step, map[string]any{
		"error":       err.Error(),
		"duration_ms": elapsed,
	}))
	return err
}

func (r pipelineRun) elapsedMs() float64 {
	return float64(time.Since(r.started).Microseconds()) / 1000.0
}
