package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

// Syllabus uploads are archived as-is; the formats accepted mirror what
// course owners typically export.
var AllowedSyllabusExtensions = []string{".pdf", ".docx", ".txt"}
