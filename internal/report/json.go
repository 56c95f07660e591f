package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
)

// SessionExport is the top-level JSON export of one exchange.
type SessionExport struct {
	SessionID    string                   `json:"sessionId,omitempty"`
	ExportedAt   string                   `json:"exportedAt"`
	Comparison   *orchestrator.Comparison `json:"comparison"`
	SummaryDelta []DeltaSpan              `json:"summaryDelta"`
	Consolidated *opinion.Consolidated    `json:"consolidated,omitempty"`
	Goals        []Goal                   `json:"goals,omitempty"`
}

// Export builds a SessionExport. merged may be nil when the user has not
// chosen yet.
func Export(sessionID string, c *orchestrator.Comparison, merged *opinion.Consolidated, now time.Time) (*SessionExport, error) {
	if c == nil {
		return nil, opinion.Errorf(opinion.KindNotReady, "nothing to export yet")
	}
	out := &SessionExport{
		SessionID:    sessionID,
		ExportedAt:   now.UTC().Format(time.RFC3339),
		Comparison:   c,
		SummaryDelta: SummaryDelta(c.A.Summary, c.B.Summary),
		Consolidated: merged,
	}
	if merged != nil {
		out.Goals = Goals(*merged)
	}
	return out, nil
}

// JSON encodes the export with indentation.
func (e *SessionExport) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}
