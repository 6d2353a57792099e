package actions

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/applydash/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateCampaignInput is the create-campaign form.
type CreateCampaignInput struct {
	CampaignName string   `validate:"required"`
	JobTitle     string   `validate:"required"`
	Platforms    []string `validate:"required,min=1,dive,required"`
}

// FindJobsInput is the find-jobs form.
type FindJobsInput struct {
	JobTitle  string   `validate:"required"`
	Location  string   `validate:"required"`
	Platforms []string `validate:"required,min=1,dive,required"`
}

// UploadResumeInput is a selected resume file. ContentType may be empty, in
// which case it is detected from the content.
type UploadResumeInput struct {
	Filename    string `validate:"required"`
	Data        []byte `validate:"required,min=1"`
	ContentType string
}

// File is an uploaded file as received from a form or read from disk.
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// Request is a raw action invocation: the action id plus the submitted form.
type Request struct {
	Action domain.Action
	Fields map[string]string
	File   *File
}

func (r Request) field(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// SplitPlatforms turns "linkedin, indeed,,glassdoor" into its non-empty entries.
func SplitPlatforms(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
