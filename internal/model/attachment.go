package model

// Attachment is a row in the attachments table. FilePath names the backing
// file inside the private attachment directory and is the sole authority
// for locating it.
type Attachment struct {
	ID       int64  `json:"id"`
	NoteID   int64  `json:"note_id"`
	FileType string `json:"file_type"`
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// AttachmentFromRow builds an Attachment from a projected result row.
func AttachmentFromRow(row map[string]any) Attachment {
	return Attachment{
		ID:       asInt64(row["_id"]),
		NoteID:   asInt64(row["note_id"]),
		FileType: asString(row["file_type"]),
		FilePath: asString(row["file_path"]),
		FileName: asString(row["file_name"]),
		FileSize: asInt64(row["file_size"]),
	}
}
