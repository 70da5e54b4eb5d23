package models

import "time"

// UploadedFileInfo mirrors a server-held file. The client keeps metadata
// only; content lives with the file service.
type UploadedFileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}
