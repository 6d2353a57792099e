// Package actions runs the user-initiated dashboard operations: creating a
// campaign, uploading a resume, searching for jobs and opening settings.
package actions

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/middleware"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Invoker calls a named webhook and decodes its JSON response into out.
type Invoker interface {
	Do(ctx context.Context, key domain.EndpointKey, method string, payload any, out any) error
}

// CampaignRefresher reloads the campaigns region.
type CampaignRefresher interface {
	RefreshCampaigns(ctx context.Context) error
}

// EndpointLister exposes the resolved endpoint table.
type EndpointLister interface {
	Snapshot() []config.Endpoint
}

// Result describes what an action did.
type Result struct {
	Action  domain.Action
	Message string
	// Count is the number of jobs found by find-jobs.
	Count int
	// Settings is the endpoint table, set by open-settings.
	Settings []config.Endpoint
}

// Service executes actions. Webhook failures are notified by the invoker;
// Service only notifies successes.
type Service struct {
	invoker   Invoker
	notifier  notify.Notifier
	refresher CampaignRefresher
	endpoints EndpointLister
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTracer records a span per action.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService creates a Service. refresher may be nil when nothing is displayed.
func NewService(invoker Invoker, notifier notify.Notifier, refresher CampaignRefresher, endpoints EndpointLister, opts ...Option) *Service {
	s := &Service{
		invoker:   invoker,
		notifier:  notifier,
		refresher: refresher,
		endpoints: endpoints,
		tracer:    tracing.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute converts a raw request into the action's input and runs it.
// A missing field yields ErrActionAborted before anything is sent.
func (s *Service) Execute(ctx context.Context, req Request) (res Result, err error) {
	ctx, span := s.tracer.Start(ctx, "action."+string(req.Action), trace.WithAttributes(
		attribute.String("action.id", string(req.Action)),
	))
	defer func() {
		if err != nil && !errors.Is(err, domain.ErrActionAborted) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "action failed")
		}
		span.End()
	}()

	switch req.Action {
	case domain.ActionCreateCampaign:
		return s.CreateCampaign(ctx, CreateCampaignInput{
			CampaignName: req.field("campaignName"),
			JobTitle:     req.field("jobTitle"),
			Platforms:    SplitPlatforms(req.field("platforms")),
		})
	case domain.ActionFindJobs:
		return s.FindJobs(ctx, FindJobsInput{
			JobTitle:  req.field("jobTitle"),
			Location:  req.field("location"),
			Platforms: SplitPlatforms(req.field("platforms")),
		})
	case domain.ActionUploadResume:
		if req.File == nil {
			return Result{}, domain.ErrActionAborted
		}
		return s.UploadResume(ctx, UploadResumeInput{
			Filename:    req.File.Name,
			Data:        req.File.Data,
			ContentType: req.File.ContentType,
		})
	case domain.ActionOpenSettings:
		return s.OpenSettings(ctx), nil
	}
	return Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, req.Action)
}

// CreateCampaign asks the workflow engine to create a campaign, then reloads
// the campaigns region.
func (s *Service) CreateCampaign(ctx context.Context, in CreateCampaignInput) (Result, error) {
	if err := check(in); err != nil {
		return Result{}, err
	}
	var ack any
	err := s.invoker.Do(ctx, domain.EndpointCreateCampaign, http.MethodPost, domain.CreateCampaignRequest{
		CampaignName: in.CampaignName,
		JobTitle:     in.JobTitle,
		Platforms:    in.Platforms,
	}, &ack)
	if err != nil {
		return Result{}, err
	}

	res := Result{Action: domain.ActionCreateCampaign, Message: "Campaign created successfully!"}
	s.notifier.Notify(ctx, notify.LevelSuccess, res.Message)

	if s.refresher != nil {
		if err := s.refresher.RefreshCampaigns(ctx); err != nil {
			middleware.FromContext(ctx).Error("Campaign refresh after create failed", "error", err)
		}
	}
	return res, nil
}

// UploadResume sends the file base64-encoded to the workflow engine.
func (s *Service) UploadResume(ctx context.Context, in UploadResumeInput) (Result, error) {
	if err := check(in); err != nil {
		return Result{}, err
	}
	fileType := in.ContentType
	if fileType == "" || fileType == "application/octet-stream" {
		fileType = mimetype.Detect(in.Data).String()
	}

	var ack any
	err := s.invoker.Do(ctx, domain.EndpointUploadResume, http.MethodPost, domain.UploadResumeRequest{
		Filename: in.Filename,
		FileData: base64.StdEncoding.EncodeToString(in.Data),
		FileType: fileType,
	}, &ack)
	if err != nil {
		return Result{}, err
	}

	res := Result{Action: domain.ActionUploadResume, Message: "Resume uploaded successfully!"}
	s.notifier.Notify(ctx, notify.LevelSuccess, res.Message)
	return res, nil
}

// FindJobs starts a job search and reports how many jobs were found.
func (s *Service) FindJobs(ctx context.Context, in FindJobsInput) (Result, error) {
	if err := check(in); err != nil {
		return Result{}, err
	}
	var found domain.JobSearchResult
	err := s.invoker.Do(ctx, domain.EndpointFindJobs, http.MethodPost, domain.FindJobsRequest{
		JobTitle:  in.JobTitle,
		Location:  in.Location,
		Platforms: in.Platforms,
	}, &found)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Action:  domain.ActionFindJobs,
		Message: fmt.Sprintf("Found %d jobs", found.Count),
		Count:   found.Count,
	}
	s.notifier.Notify(ctx, notify.LevelSuccess, res.Message)
	return res, nil
}

// OpenSettings returns the endpoint table. It sends nothing.
func (s *Service) OpenSettings(context.Context) Result {
	return Result{
		Action:   domain.ActionOpenSettings,
		Settings: s.endpoints.Snapshot(),
	}
}

// check maps validation failures to ErrActionAborted, naming the first empty field.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w (%s)", domain.ErrActionAborted, verrs[0].Field())
	}
	return fmt.Errorf("%w: %v", domain.ErrActionAborted, err)
}
