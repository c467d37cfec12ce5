package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SubmissionOptions describes one bound form submission.
type SubmissionOptions struct {
	// Form is the form name (import, confirm_import, export, export_action)
	Form string

	// Resource is the admin resource the form belongs to
	Resource string

	// Valid reports whether the form validated
	Valid bool

	// Format is the resolved format name, empty when none resolved
	Format string

	// Streaming is set for export submissions asking for large dataset export
	Streaming bool

	// ErrorFields lists the fields carrying errors
	ErrorFields []string
}

// SubmissionTracker records form submissions using OpenTelemetry metrics.
// All methods are safe on a nil tracker.
type SubmissionTracker struct {
	submissions metric.Int64Counter
	errors      metric.Int64Counter
	uploadSize  metric.Int64Histogram
}

// NewSubmissionTracker creates a new SubmissionTracker with the provided meter.
func NewSubmissionTracker(meter metric.Meter) (*SubmissionTracker, error) {
	st := &SubmissionTracker{}

	var err error

	st.submissions, err = meter.Int64Counter(
		"porter.form.submissions",
		metric.WithDescription("Number of bound form submissions"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	st.errors, err = meter.Int64Counter(
		"porter.form.errors",
		metric.WithDescription("Validation errors by form and field"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	st.uploadSize, err = meter.Int64Histogram(
		"porter.upload.size",
		metric.WithDescription("Size of staged import uploads"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return st, nil
}

// RecordSubmission records a submission and one error per failing field.
func (st *SubmissionTracker) RecordSubmission(ctx context.Context, opts SubmissionOptions) {
	if st == nil {
		return
	}

	result := "valid"
	if !opts.Valid {
		result = "invalid"
	}
	attrs := []attribute.KeyValue{
		AttrForm.String(opts.Form),
		AttrResource.String(opts.Resource),
		AttrResult.String(result),
	}
	if opts.Format != "" {
		attrs = append(attrs, AttrFormat.String(opts.Format))
	}
	if opts.Form == "export" {
		attrs = append(attrs, AttrStreaming.Bool(opts.Streaming))
	}
	st.submissions.Add(ctx, 1, metric.WithAttributes(attrs...))

	for _, field := range opts.ErrorFields {
		st.errors.Add(ctx, 1, metric.WithAttributes(
			AttrForm.String(opts.Form),
			AttrResource.String(opts.Resource),
			AttrField.String(field),
		))
	}
}

// RecordUpload records the size of a staged upload.
func (st *SubmissionTracker) RecordUpload(ctx context.Context, resource, format string, size int64) {
	if st == nil {
		return
	}
	st.uploadSize.Record(ctx, size, metric.WithAttributes(
		AttrResource.String(resource),
		AttrFormat.String(format),
	))
}
