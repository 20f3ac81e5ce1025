package machina

import (
	"time"

	"github.com/google/uuid"
)

// SuggestedPart is one replacement part recommended on a report.
// Parts are replaced wholesale on every report update; rows carry no
// stable identity across edits.
type SuggestedPart struct {
	ID          uuid.UUID `json:"id"`
	ReportID    uuid.UUID `json:"reportId"`
	PartNumber  string    `json:"partNumber"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
}
