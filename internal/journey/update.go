package journey

import (
	"time"

	"github.com/validately/orchestrator/internal/scoring"
)

// Update is a partial change returned by a phase handler. Nil fields are
// untouched; Apply merges into a copied snapshot, never in place.
type Update struct {
	Phase *Phase
	Tier  *Tier

	CustomModules *[]string

	AppendQA        *QA
	PendingQuestion *string
	Title           *string
	Context         *Context
	Quality         *scoring.QualityProfile

	ResearchCache         *string
	ComprehensiveResearch *string
	Directive             *StrategicDirective

	ViabilityBundle *ScoreBundle
	GoNoGoBundle    *ScoreBundle

	Modules map[string]map[string]any

	FreeReport  map[string]any
	FinalReport map[string]any

	Error *ErrorInfo
}

// Apply merges the update into a copy of s and stamps UpdatedAt. The
// receiver is never modified; slices and maps are re-allocated so the merged
// snapshot shares no mutable state with either input.
func (u Update) Apply(s Snapshot, now time.Time) Snapshot {
	out := s
	out.Interview = append([]QA(nil), s.Interview...)
	out.CustomModules = append([]string(nil), s.CustomModules...)
	out.Modules = copyModules(s.Modules)

	if u.Phase != nil {
		out.Phase = *u.Phase
	}
	if u.Tier != nil {
		out.Tier = *u.Tier
	}
	if u.CustomModules != nil {
		out.CustomModules = append([]string(nil), (*u.CustomModules)...)
	}
	if u.AppendQA != nil {
		out.Interview = append(out.Interview, *u.AppendQA)
	}
	if u.PendingQuestion != nil {
		out.PendingQuestion = *u.PendingQuestion
	}
	if u.Title != nil {
		out.Title = *u.Title
	}
	if u.Context != nil {
		out.Context = *u.Context
	}
	if u.Quality != nil {
		q := *u.Quality
		out.Quality = &q
	}
	if u.ResearchCache != nil {
		out.ResearchCache = *u.ResearchCache
	}
	if u.ComprehensiveResearch != nil {
		out.ComprehensiveResearch = *u.ComprehensiveResearch
	}
	if u.Directive != nil {
		d := *u.Directive
		out.Directive = &d
	}
	if u.ViabilityBundle != nil {
		b := cloneBundle(*u.ViabilityBundle)
		out.ViabilityBundle = &b
	}
	if u.GoNoGoBundle != nil {
		b := cloneBundle(*u.GoNoGoBundle)
		out.GoNoGoBundle = &b
	}
	for name, payload := range u.Modules {
		if out.Modules == nil {
			out.Modules = make(map[string]map[string]any)
		}
		out.Modules[name] = copyPayload(payload)
	}
	if u.FreeReport != nil {
		out.FreeReport = copyPayload(u.FreeReport)
	}
	if u.FinalReport != nil {
		out.FinalReport = copyPayload(u.FinalReport)
	}
	if u.Error != nil {
		out.Error = *u.Error
	}

	out.UpdatedAt = now
	return out
}

func copyModules(m map[string]map[string]any) map[string]map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]map[string]any, len(m))
	for k, v := range m {
		out[k] = copyPayload(v)
	}
	return out
}

func copyPayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func cloneBundle(b ScoreBundle) ScoreBundle {
	out := ScoreBundle{Score: b.Score}
	if b.Breakdown != nil {
		out.Breakdown = make(map[string]scoring.DimensionScore, len(b.Breakdown))
		for k, v := range b.Breakdown {
			out.Breakdown[k] = v
		}
	}
	if b.Research != nil {
		out.Research = make(map[string]string, len(b.Research))
		for k, v := range b.Research {
			out.Research[k] = v
		}
	}
	return out
}

func phasePtr(p Phase) *Phase { return &p }

// WithPhase is a convenience for the common phase-only transition.
func WithPhase(p Phase) Update { return Update{Phase: phasePtr(p)} }
