package dto

import "io"

// UploadRequest carries one file to store
type UploadRequest struct {
	UserID   *uint     `json:"-"`
	Filename string    `json:"-"`
	Content  io.Reader `json:"-"`
}

// UploadResponse describes a stored file
type UploadResponse struct {
	FileURL      string  `json:"file_url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	MediaType    string  `json:"media_type"`
	MimeType     string  `json:"mime_type"`
	SizeBytes    int64   `json:"size_bytes"`
}

// UploadFailure records one failed file in a batch upload
type UploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadBatchResponse reports per-file outcomes of a batch upload
type UploadBatchResponse struct {
	Uploaded []UploadResponse `json:"uploaded"`
	Failures []UploadFailure  `json:"failures,omitempty"`
}

// DeleteUploadRequest removes a stored file
type DeleteUploadRequest struct {
	UserID  *uint  `json:"-"`
	FileURL string `json:"file_url" validate:"required,max=500"`
}

// DeleteUploadResponse confirms which file was removed
type DeleteUploadResponse struct {
	FileURL string `json:"file_url"`
}
