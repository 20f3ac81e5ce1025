package machina

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Photo represents an image evidencing a component's condition.
// Filename is the storage key's final path segment; it is what edit
// payloads reference when deciding which photos to retain.
type Photo struct {
	ID           uuid.UUID `json:"id"`
	ComponentID  uuid.UUID `json:"componentId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PhotoUpload is one new image file submitted alongside a report edit.
// ComponentIndex ties the file to a position in the edit payload's
// component list, since new components have no id yet.
type PhotoUpload struct {
	ComponentIndex int
	OriginalName   string
	ContentType    string
	Size           int64
	Content        io.Reader
}
