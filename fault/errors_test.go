package fault

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestValidator_AccumulatesAllViolations(t *testing.T) {
	err := NewValidator(ReasonInvalidArgs).
		RequireText("MessageId", " ").
		RequireText("Token", "").
		RequireText("Mailbox", "ok").
		Check(true, "MessageId", "Must be known").
		Err()

	var ie *InvalidError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InvalidError, got %T", err)
	}
	if ie.Reason != ReasonInvalidArgs {
		t.Errorf("Reason = %q, want %q", ie.Reason, ReasonInvalidArgs)
	}
	want := Data{
		"MessageId": {TextRequired, "Must be known"},
		"Token":     {TextRequired},
	}
	if !reflect.DeepEqual(ie.Data, want) {
		t.Errorf("Data = %v, want %v", ie.Data, want)
	}
}

func TestValidator_NoViolations(t *testing.T) {
	if err := NewValidator(ReasonInvalidArgs).RequireText("Token", "abc").Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\t\n"} {
		if !IsBlank(s) {
			t.Errorf("IsBlank(%q) = false, want true", s)
		}
	}
	if IsBlank(" x ") {
		t.Error(`IsBlank(" x ") = true, want false`)
	}
}

func TestData_String(t *testing.T) {
	d := Data{"Token": {TextRequired}, "MessageId": {"a", "b"}}
	want := "MessageId => a, b;  Token => Text is required;  "
	if got := d.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestTranslate_OwnGuardBecomesValidation(t *testing.T) {
	guard := NewValidator(ReasonInvalidArgs).RequireText("Token", "").Err()

	err := For(TierProcessing).Translate(guard)

	if !Is(err, TierProcessing, KindValidation) {
		t.Fatalf("expected processing validation, got %v", err)
	}
	if got := ViolationsOf(err); !reflect.DeepEqual(got, Data{"Token": {TextRequired}}) {
		t.Errorf("Violations = %v", got)
	}
	if Depth(err) != 1 {
		t.Errorf("Depth = %d, want 1", Depth(err))
	}
}

func TestTranslate_LowerTierKinds(t *testing.T) {
	cause := errors.New("root")
	foundation := For(TierFoundation)

	tests := []struct {
		name  string
		lower *Error
		want  Kind
	}{
		{"validation", foundation.Validation(&InvalidError{Reason: ReasonInvalidArgs, Data: Data{"MessageId": {TextRequired}}}), KindDependencyValidation},
		{"dependency validation", foundation.DependencyValidation(cause), KindDependencyValidation},
		{"dependency", foundation.Dependency(cause), KindDependency},
		{"service", foundation.Service(cause), KindDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := For(TierProcessing).Translate(tt.lower)

			if !Is(err, TierProcessing, tt.want) {
				t.Fatalf("got %v, want processing %s", err, tt.want)
			}
			var fe *Error
			errors.As(err, &fe)
			if fe.Err != tt.lower {
				t.Errorf("cause = %v, want the lower-tier error itself", fe.Err)
			}
			if !reflect.DeepEqual(fe.Data, tt.lower.Data) {
				t.Errorf("Data = %v, want %v", fe.Data, tt.lower.Data)
			}
		})
	}
}

func TestTranslate_UnanticipatedBecomesService(t *testing.T) {
	raw := errors.New("boom")

	err := For(TierOrchestration).Translate(raw)

	if !Is(err, TierOrchestration, KindService) {
		t.Fatalf("got %v, want orchestration service", err)
	}
	var failed *FailedServiceError
	if !errors.As(err, &failed) {
		t.Fatal("expected FailedServiceError marker in chain")
	}
	if failed.Tier != TierOrchestration || failed.Err != raw {
		t.Errorf("marker = %+v", failed)
	}
}

func TestTranslate_SkippedTierIsService(t *testing.T) {
	// Orchestration only understands processing errors.
	err := For(TierOrchestration).Translate(For(TierFoundation).Dependency(errors.New("x")))
	if !Is(err, TierOrchestration, KindService) {
		t.Errorf("got %v, want orchestration service", err)
	}
}

func TestTranslate_Nil(t *testing.T) {
	if err := For(TierProcessing).Translate(nil); err != nil {
		t.Errorf("Translate(nil) = %v", err)
	}
}

func TestChain_DepthAndRootCause(t *testing.T) {
	transport := fmt.Errorf("dial tcp: %w", context.Canceled)
	foundation := For(TierFoundation).Dependency(transport)
	processing := For(TierProcessing).Translate(foundation)
	orchestration := For(TierOrchestration).Translate(processing)

	if Depth(processing) != 2 {
		t.Errorf("processing depth = %d, want 2", Depth(processing))
	}
	if Depth(orchestration) != 3 {
		t.Errorf("orchestration depth = %d, want 3", Depth(orchestration))
	}
	if !errors.Is(orchestration, context.Canceled) {
		t.Error("root cause must stay reachable")
	}
	if !Is(orchestration, TierOrchestration, KindDependency) {
		t.Errorf("got %v, want orchestration dependency", orchestration)
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindValidation:           "validation",
		KindDependencyValidation: "dependency_validation",
		KindDependency:           "dependency",
		KindService:              "service",
		Kind(99):                 "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestTier_Below(t *testing.T) {
	if TierOrchestration.Below() != TierProcessing {
		t.Error("orchestration should sit on processing")
	}
	if TierProcessing.Below() != TierFoundation {
		t.Error("processing should sit on foundation")
	}
	if TierFoundation.Below() != "" {
		t.Error("foundation has no tier beneath")
	}
}
