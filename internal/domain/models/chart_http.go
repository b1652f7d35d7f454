package models

// Requests for chart HTTP endpoints.

type ScanRequest struct {
	Identifier string `json:"identifier" query:"identifier" validate:"required,max=128"`
}

type TimeframeRequest struct {
	Seconds int64 `json:"seconds" query:"seconds" default:"60" validate:"gte=1,lte=86400"`
}

type ChartImageRequest struct {
	Width  int `query:"width" default:"960" validate:"gte=16,lte=4096"`
	Height int `query:"height" default:"480" validate:"gte=16,lte=4096"`
}
