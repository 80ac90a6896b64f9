package dto

// SheetsExportResponse reports a Google Sheets export
type SheetsExportResponse struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Range         string `json:"range"`
	Rows          int    `json:"rows"`
}
