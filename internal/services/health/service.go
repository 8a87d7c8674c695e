package health

import "time"

// Status is the body served by the health endpoint.
type Status struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Service encapsulates health-related checks.
type Service struct {
	now func() time.Time
}

// NewService constructs a health service. A nil now uses time.Now.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}

// Status reports liveness with the current time in RFC 3339.
func (s *Service) Status() Status {
	return Status{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}
}
