package models

import "time"

// VerificationStatus is derived from the current verification result.
type VerificationStatus string

const (
	StatusNone     VerificationStatus = ""
	StatusVerified VerificationStatus = "verified"
	StatusInvalid  VerificationStatus = "invalid"
)

// VerificationResult is the outcome of one verification call. Results are
// passed around by value and never modified after creation.
type VerificationResult struct {
	SerialNumber string       `json:"serial_number"`
	IsValid      bool         `json:"is_valid"`
	Certificate  *Certificate `json:"certificate,omitempty"`
	Error        string       `json:"error,omitempty"`
	ScannedAt    time.Time    `json:"scanned_at"`
}

// Status maps the result onto verified/invalid.
func (r VerificationResult) Status() VerificationStatus {
	if r.IsValid {
		return StatusVerified
	}
	return StatusInvalid
}

// ScanStats is the server-side aggregate of scans. The field names follow the
// camelCase keys the stats endpoint uses.
type ScanStats struct {
	TotalScans    int64 `json:"totalScans"`
	VerifiedScans int64 `json:"verifiedScans"`
	InvalidScans  int64 `json:"invalidScans"`
	TodayScans    int64 `json:"todayScans"`
}
