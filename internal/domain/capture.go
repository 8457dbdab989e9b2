package domain

import (
	"net/url"
	"time"
)

type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Display describes one logical screen. Index 0 is the primary display.
type Display struct {
	Index          int     `json:"index"`
	ID             string  `json:"id"`
	Bounds         Bounds  `json:"bounds"`
	ScaleFactor    float64 `json:"scaleFactor"`
	Primary        bool    `json:"primary"`
	NativeScreenID string  `json:"nativeScreenId,omitempty"`
}

type WindowContext struct {
	AppName     string `json:"appName"`
	WindowTitle string `json:"windowTitle"`
	URL         string `json:"url,omitempty"`
}

type ActivityLog struct {
	Screenshot  []byte
	AppName     string
	WindowTitle string
	Domain      string
	Timestamp   time.Time
}

// NewActivityLog builds the upload payload for one capture. window may be nil.
func NewActivityLog(screenshot []byte, window *WindowContext, at time.Time) ActivityLog {
	log := ActivityLog{Screenshot: screenshot, Timestamp: at}
	if window != nil {
		log.AppName = window.AppName
		log.WindowTitle = window.WindowTitle
		log.Domain = DomainFromURL(window.URL)
	}
	return log
}

// DomainFromURL returns the hostname of raw, or "" when raw is not an absolute URL.
func DomainFromURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return parsed.Hostname()
}
