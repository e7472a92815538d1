package dto

import "time"

// ExportRequest selects the report slice and format.
type ExportRequest struct {
	Population string `form:"population" json:"population"`
	From       string `form:"from" json:"from"`
	To         string `form:"to" json:"to"`
	Format     string `form:"format" json:"format"`
}

// ExportResult points at a generated report file.
type ExportResult struct {
	FileName      string    `json:"file_name"`
	Format        string    `json:"format"`
	RowCount      int       `json:"row_count"`
	DownloadToken string    `json:"download_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}
