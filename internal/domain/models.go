package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// CampaignStatus is the lifecycle label the workflow engine reports for a campaign.
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
)

// Campaign is a job-application campaign as reported by the getCampaigns webhook.
// It is created by an external workflow and never mutated locally.
type Campaign struct {
	Name       string         `json:"name"`
	Status     CampaignStatus `json:"status"`
	Applied    int            `json:"applied"`
	Responses  int            `json:"responses"`
	Interviews int            `json:"interviews"`
	Progress   float64        `json:"progress"`
}

// ProgressPercent returns the campaign progress clamped to 0..100.
func (c Campaign) ProgressPercent() int {
	switch {
	case c.Progress < 0:
		return 0
	case c.Progress > 100:
		return 100
	}
	return int(c.Progress)
}

// Application is a single submitted job application.
type Application struct {
	JobTitle    string    `json:"jobTitle"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	AppliedDate Timestamp `json:"appliedDate"`
	Status      string    `json:"status"`
}

// Timestamp is a point in time as workflows report it: an RFC 3339 string, a
// bare date, a date-time without zone, or epoch milliseconds. Null, empty and
// unrecognized strings decode to the zero time instead of failing the record.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		var ms json.Number
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		return t.fromMillis(ms.String())
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = parseTimestamp(s)
	return nil
}

func (t *Timestamp) fromMillis(s string) error {
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// DashboardStats is the aggregate computed by the getStats webhook.
type DashboardStats struct {
	TotalApplications int     `json:"totalApplications"`
	ActiveCampaigns   int     `json:"activeCampaigns"`
	ResponseRate      float64 `json:"responseRate"`
	Interviews        int     `json:"interviews"`
}

// JobSearchResult is the findJobs response. Only Count is interpreted.
type JobSearchResult struct {
	Count int `json:"count"`
}

// CreateCampaignRequest is the createCampaign webhook payload.
type CreateCampaignRequest struct {
	CampaignName string   `json:"campaignName"`
	JobTitle     string   `json:"jobTitle"`
	Platforms    []string `json:"platforms"`
}

// UploadResumeRequest is the uploadResume webhook payload. FileData holds the
// base64 encoding of the file bytes.
type UploadResumeRequest struct {
	Filename string `json:"filename"`
	FileData string `json:"fileData"`
	FileType string `json:"fileType"`
}

// FindJobsRequest is the findJobs webhook payload.
type FindJobsRequest struct {
	JobTitle  string   `json:"jobTitle"`
	Location  string   `json:"location"`
	Platforms []string `json:"platforms"`
}
