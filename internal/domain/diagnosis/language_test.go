package diagnosis

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubProvider scripts the reasoning provider for agent tests.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestLanguageNormalizer_EnglishPassthrough(t *testing.T) {
	provider := &stubProvider{reply: "should not be used"}
	a := NewLanguageNormalizer(provider)

	result := a.Run(context.Background(), PatientInput{Symptoms: "fever, cough", Language: "english"}, Context{})
	if !result.Success {
		t.Fatalf("stage failed: %s", result.Error)
	}
	if result.Language.NormalizedText != "fever, cough" {
		t.Errorf("expected passthrough, got %q", result.Language.NormalizedText)
	}
	if provider.calls != 0 {
		t.Error("provider must not be called for english input")
	}
}

func TestLanguageNormalizer_TermTableFallback(t *testing.T) {
	a := NewLanguageNormalizer(nil)

	result := a.Run(context.Background(), PatientInput{Symptoms: "bukhar aur sir dard", Language: "hindi"}, Context{})
	if !result.Success {
		t.Fatalf("stage failed: %s", result.Error)
	}
	normalized := result.Language.NormalizedText
	if !strings.Contains(normalized, "fever") || !strings.Contains(normalized, "headache") {
		t.Errorf("expected fever and headache in %q", normalized)
	}
	if len(result.Language.Annotations) != 2 {
		t.Errorf("expected one annotation per substitution, got %v", result.Language.Annotations)
	}
	if result.Language.PassedThrough {
		t.Error("a translated narrative must not be marked passed through")
	}
}

func TestLanguageNormalizer_ProviderTranslation(t *testing.T) {
	provider := &stubProvider{reply: " fever, headache "}
	a := NewLanguageNormalizer(provider)

	result := a.Run(context.Background(), PatientInput{Symptoms: "fiebre y dolor de cabeza", Language: "spanish"}, Context{})
	if !result.Success {
		t.Fatalf("stage failed: %s", result.Error)
	}
	if result.Language.NormalizedText != "fever, headache" {
		t.Errorf("expected trimmed provider reply, got %q", result.Language.NormalizedText)
	}
	if result.Language.OriginalText != "fiebre y dolor de cabeza" {
		t.Error("original text must be preserved")
	}
}

func TestLanguageNormalizer_ProviderErrorFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider down")}
	a := NewLanguageNormalizer(provider)

	result := a.Run(context.Background(), PatientInput{Symptoms: "fiebre, tos", Language: "spanish"}, Context{})
	if !result.Success {
		t.Fatalf("a provider failure must not fail the stage: %s", result.Error)
	}
	normalized := result.Language.NormalizedText
	if !strings.Contains(normalized, "fever") || !strings.Contains(normalized, "cough") {
		t.Errorf("expected term-table fallback in %q", normalized)
	}
}

func TestLanguageNormalizer_UnknownLanguage(t *testing.T) {
	a := NewLanguageNormalizer(nil)

	result := a.Run(context.Background(), PatientInput{Symptoms: "ondoko waku", Language: "klingon"}, Context{})
	if !result.Success {
		t.Fatalf("stage failed: %s", result.Error)
	}
	if result.Language.NormalizedText != "ondoko waku" {
		t.Errorf("expected untouched text, got %q", result.Language.NormalizedText)
	}
	if len(result.Language.Annotations) != 1 || !strings.Contains(result.Language.Annotations[0], "passed through") {
		t.Errorf("expected a passthrough annotation, got %v", result.Language.Annotations)
	}
	if !result.Language.PassedThrough {
		t.Error("expected the passed-through flag to be set")
	}
}

func TestLanguageNormalizer_Deterministic(t *testing.T) {
	a := NewLanguageNormalizer(nil)
	in := PatientInput{Symptoms: "bukhar, sir dard, badan dard, khansi", Language: "hindi"}

	first := a.Run(context.Background(), in, Context{})
	for i := 0; i < 5; i++ {
		again := a.Run(context.Background(), in, Context{})
		if again.Language.NormalizedText != first.Language.NormalizedText {
			t.Fatalf("normalization not deterministic: %q vs %q",
				again.Language.NormalizedText, first.Language.NormalizedText)
		}
	}
}
