package workflow

import (
	"encoding/json"
	"testing"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/pkg/apperrors"
)

func TestRegistryRejectsDuplicateHandlers(t *testing.T) {
	_, err := NewRegistry(
		NewSourcesHandler(nil),
		NewSourcesHandler(nil),
	)
	if err == nil {
		t.Fatal("NewRegistry should reject two handlers for the same step")
	}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(
		NewSourcesHandler(nil),
		NewReviewHandler(nil),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if _, ok := r.Get(constant.StepSources); !ok {
		t.Error("expected sources handler to be registered")
	}
	if _, ok := r.Get("compress"); ok {
		t.Error("unknown step must not resolve")
	}
}

func TestPayloadValidationRejectsMalformedShapes(t *testing.T) {
	tests := []struct {
		name    string
		handler StepHandler
		payload string
		wantErr bool
	}{
		{"sources empty payload ok", NewSourcesHandler(nil), ``, false},
		{"sources explicit roots ok", NewSourcesHandler(nil), `{"source_roots":["/inbox"]}`, false},
		{"sources empty root rejected", NewSourcesHandler(nil), `{"source_roots":[""]}`, true},
		{"sources not json rejected", NewSourcesHandler(nil), `{{`, true},
		{"proposals limit ok", NewProposalsHandler(nil, nil, nil, nil, nil), `{"limit":50}`, false},
		{"proposals limit too large", NewProposalsHandler(nil, nil, nil, nil, nil), `{"limit":501}`, true},
		{"proposals limit negative", NewProposalsHandler(nil, nil, nil, nil, nil), `{"limit":-1}`, true},
		{"summarize max_files bounds", NewSummarizeHandler(nil, nil), `{"max_files":101}`, true},
		{"apply dry_run ok", NewApplyHandler(nil, nil, nil, nil, nil, "", nil), `{"dry_run":true}`, false},
		{"apply wrong type rejected", NewApplyHandler(nil, nil, nil, nil, nil, "", nil), `{"dry_run":"yes"}`, true},
		{"analytics empty ok", NewAnalyticsHandler(nil, nil, nil), ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.handler.ValidatePayload(json.RawMessage(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ValidatePayload() = nil, want error")
				}
				if !apperrors.IsCode(err, apperrors.CodeValidation) {
					t.Fatalf("ValidatePayload() = %v, want VALIDATION_ERROR", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidatePayload() error = %v", err)
			}
		})
	}
}

func TestHandlersDeclareUpstreamRequirements(t *testing.T) {
	tests := []struct {
		handler StepHandler
		want    string
	}{
		{NewIndexExtractHandler(nil), constant.StepSources},
		{NewSummarizeHandler(nil, nil), constant.StepIndexExtract},
		{NewProposalsHandler(nil, nil, nil, nil, nil), constant.StepSummarize},
		{NewReviewHandler(nil), constant.StepProposals},
		{NewApplyHandler(nil, nil, nil, nil, nil, "", nil), constant.StepReview},
		{NewAnalyticsHandler(nil, nil, nil), constant.StepApply},
	}

	for _, tt := range tests {
		requires := tt.handler.Requires()
		if len(requires) != 1 || requires[0] != tt.want {
			t.Errorf("%s.Requires() = %v, want [%s]", tt.handler.Name(), requires, tt.want)
		}
	}
	if got := NewSourcesHandler(nil).Requires(); len(got) != 0 {
		t.Errorf("sources.Requires() = %v, want empty", got)
	}
}
