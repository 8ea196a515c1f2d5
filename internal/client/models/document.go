package models

// DocumentRecord is one entry of the user's document list.
type DocumentRecord struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	UploadedAt string `json:"uploaded_at"`
	Path       string `json:"path"`
}

// DocStatus is the on-demand processing status of one document. It lives
// only in memory.
type DocStatus struct {
	Status  string
	Error   string
	Loading bool
}

// UploadStatus is the state of one file in a batch upload.
type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadSucceeded UploadStatus = "succeeded"
	UploadFailed    UploadStatus = "failed"
)

// UploadTask reports the outcome of one file in a batch upload.
type UploadTask struct {
	FileName string
	Status   UploadStatus
	Error    string
}

// StagedFile is a local file selected for upload but not yet sent.
type StagedFile struct {
	Name        string
	Path        string
	Size        int64
	ContentType string
}
