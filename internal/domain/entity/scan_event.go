package entity

import "time"

// ScanEvent registro inmutable de un escaneo. Solo se inserta.
type ScanEvent struct {
	ID       string
	BoxID    string
	UserID   string
	Mode     ScanMode
	ScanTime time.Time
}
