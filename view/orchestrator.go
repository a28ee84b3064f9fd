package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seo-optimizer/reportview/analysis"
)

const (
	// MsgAnalysisFailed is shown for transport failures, non-2xx statuses and
	// unreadable responses alike.
	MsgAnalysisFailed = "An error occurred while analyzing the website. Please try again."
	MsgEmptyURL       = "Please enter a website URL."
)

// Outcome is how a submission ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeAppError       Outcome = "app_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeStatusError    Outcome = "status_error"
	OutcomeDecodeError    Outcome = "decode_error"
	OutcomeSuperseded     Outcome = "superseded"
	OutcomeCancelled      Outcome = "cancelled"
	OutcomeInvalidInput   Outcome = "invalid_input"
)

// Analyzer submits a URL to the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, target string, useAI bool) (*analysis.Result, error)
}

// Tracker hands out request tokens so that only the newest submission of a
// session may update it.
type Tracker interface {
	Begin(ctx context.Context, session string) (string, error)
	IsCurrent(ctx context.Context, session, token string) (bool, error)
	Forget(ctx context.Context, session string) error
}

// Recorder receives submission outcomes for statistics and metrics.
type Recorder interface {
	RecordOutcome(outcome string, elapsed time.Duration)
	RecordSectionError(section string)
}

// Recorders fans out to several recorders.
type Recorders []Recorder

func (rs Recorders) RecordOutcome(outcome string, elapsed time.Duration) {
	for _, r := range rs {
		r.RecordOutcome(outcome, elapsed)
	}
}

func (rs Recorders) RecordSectionError(section string) {
	for _, r := range rs {
		r.RecordSectionError(section)
	}
}

// Submission is what the analysis form posts.
type Submission struct {
	URL   string
	UseAI bool
}

// Orchestrator runs one submission against a ReportView: loading state,
// the analyzer call, banners, gauges and the report.
type Orchestrator struct {
	analyzer Analyzer
	tracker  Tracker
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrchestrator wires the submission flow. tracker and recorder may be nil.
func NewOrchestrator(analyzer Analyzer, tracker Tracker, recorder Recorder, logger *zap.Logger) *Orchestrator {
	if recorder == nil {
		recorder = Recorders(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		analyzer: analyzer,
		tracker:  tracker,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeURL trims the input and defaults a missing scheme to https.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return u
}

// Submit analyzes sub.URL and updates v with the outcome. A newer submission
// on the same view cancels this one, and its outcome is OutcomeSuperseded.
func (o *Orchestrator) Submit(ctx context.Context, v *ReportView, sub Submission) Outcome {
	start := o.now()
	v.touch(start)

	target := NormalizeURL(sub.URL)
	if target == "" {
		v.Notify(MsgEmptyURL, start)
		o.recorder.RecordOutcome(string(OutcomeInvalidInput), 0)
		return OutcomeInvalidInput
	}

	v.submitting.Lock()
	token := o.beginToken(ctx, v.ID())
	reqCtx, cancel := context.WithCancel(ctx)
	v.begin(token, target, sub.UseAI, cancel)
	v.submitting.Unlock()
	defer cancel()

	log := o.logger.With(zap.String("session", v.ID()), zap.String("url", target), zap.Bool("use_ai", sub.UseAI))
	log.Debug("submitting analysis")

	res, err := o.analyzer.Analyze(reqCtx, target, sub.UseAI)
	elapsed := o.now().Sub(start)

	if !o.stillCurrent(ctx, v, token) {
		// another replica took the session over; stop showing our spinner
		v.apply(token, func() {})
		log.Info("discarding superseded analysis", zap.Duration("elapsed", elapsed))
		o.recorder.RecordOutcome(string(OutcomeSuperseded), elapsed)
		return OutcomeSuperseded
	}

	outcome := o.finish(v, token, res, err)
	switch outcome {
	case OutcomeSuccess:
		log.Info("analysis rendered", zap.Duration("elapsed", elapsed))
	case OutcomeAppError:
		log.Warn("analyzer rejected url", zap.String("error", res.Error))
	case OutcomeCancelled, OutcomeSuperseded:
		log.Info("analysis cancelled", zap.Duration("elapsed", elapsed))
	default:
		log.Error("analysis failed", zap.String("outcome", string(outcome)), zap.Error(err))
	}
	o.recorder.RecordOutcome(string(outcome), elapsed)
	return outcome
}

func (o *Orchestrator) finish(v *ReportView, token string, res *analysis.Result, err error) Outcome {
	now := o.now()
	var outcome Outcome

	applied := v.apply(token, func() {
		switch {
		case err != nil && errors.Is(err, context.Canceled):
			outcome = OutcomeCancelled
		case err != nil:
			outcome = failureOutcome(err)
			v.banners.Push(MsgAnalysisFailed, now)
		case res.Failed():
			outcome = OutcomeAppError
			v.present(res, now)
		default:
			outcome = OutcomeSuccess
			v.present(res, now)
		}
	})
	if !applied {
		return OutcomeSuperseded
	}

	if outcome == OutcomeSuccess {
		for _, s := range []struct {
			name string
			err  string
		}{
			{"ux", res.UX.Error},
			{"seo", res.SEO.Error},
			{"performance", res.Performance.Error},
		} {
			if s.err != "" {
				o.recorder.RecordSectionError(s.name)
			}
		}
	}
	return outcome
}

func failureOutcome(err error) Outcome {
	var reqErr *analysis.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Kind {
		case analysis.KindStatus:
			return OutcomeStatusError
		case analysis.KindDecode:
			return OutcomeDecodeError
		}
	}
	return OutcomeTransportError
}

func (o *Orchestrator) beginToken(ctx context.Context, session string) string {
	if o.tracker != nil {
		token, err := o.tracker.Begin(ctx, session)
		if err == nil {
			return token
		}
		o.logger.Warn("submission tracker unavailable", zap.String("session", session), zap.Error(err))
	}
	return uuid.NewString()
}

func (o *Orchestrator) stillCurrent(ctx context.Context, v *ReportView, token string) bool {
	if !v.isCurrent(token) {
		return false
	}
	if o.tracker == nil {
		return true
	}
	ok, err := o.tracker.IsCurrent(context.WithoutCancel(ctx), v.ID(), token)
	if err != nil {
		o.logger.Warn("submission tracker unavailable", zap.String("session", v.ID()), zap.Error(err))
		return true
	}
	return ok
}
