package domain

// FileKind classifies an uploaded shopping list
type FileKind string

const (
	FileKindImage FileKind = "image"
	FileKindPDF   FileKind = "pdf"
)

// FileInfo describes the uploaded file as the server saw it
type FileInfo struct {
	FileName string   `json:"fileName"`
	MimeType string   `json:"mimeType"`
	Type     FileKind `json:"type"`
}

// UploadResult is the outcome of reading text off an uploaded shopping list
type UploadResult struct {
	RawText      string   `json:"rawText"`
	CleanedLines []string `json:"cleanedLines"`
	Message      string   `json:"message"`
	IsDemoData   bool     `json:"isDemoData"`
	ItemCount    int      `json:"itemCount"`
	FileInfo     FileInfo `json:"fileInfo"`
}
