package classify

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/types"
)

func newTestClassifier() *Classifier {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewClassifier(logger)
}

func TestNewClassifier(t *testing.T) {
	c := NewClassifier(nil)
	if c == nil {
		t.Fatal("NewClassifier() returned nil")
	}
	if c.logger == nil {
		t.Error("NewClassifier() did not substitute a logger")
	}
	if c.threshold != DefaultThreshold {
		t.Errorf("threshold = %v, want %v", c.threshold, DefaultThreshold)
	}
}

func TestClassifier_ClassifyArchiveResult(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		message string
		want    Outcome
	}{
		{
			name:    "no hath client",
			message: "You must have a H@H client assigned to your account to use this feature.",
			want:    OutcomeNoHathClient,
		},
		{
			name:    "client offline",
			message: "Your H@H client appears to be offline. Turn it on, then try again.",
			want:    OutcomeClientOffline,
		},
		{
			name:    "queued",
			message: "An original resolution download has been queued for client #12345.",
			want:    OutcomeQueued,
		},
		{
			name:    "extra whitespace and case",
			message: "  your h@h CLIENT   appears to be offline  ",
			want:    OutcomeClientOffline,
		},
		{
			name:    "unrelated",
			message: "Something else happened",
			want:    OutcomeUnknown,
		},
		{
			name:    "short fragment",
			message: "offline",
			want:    OutcomeUnknown,
		},
		{
			name:    "empty",
			message: "",
			want:    OutcomeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ClassifyArchiveResult(tt.message)
			if got.Outcome != tt.want {
				t.Errorf("ClassifyArchiveResult(%q).Outcome = %q, want %q (confidence %v)",
					tt.message, got.Outcome, tt.want, got.Confidence)
			}
			if got.Message != tt.message {
				t.Errorf("Message = %q, want %q", got.Message, tt.message)
			}
		})
	}
}

func TestClassifier_ClassifyCopyright(t *testing.T) {
	c := newTestClassifier()

	got := c.ClassifyCopyright("This gallery is unavailable due to a copyright claim by Example Media. Sorry about that.")
	if got.Outcome != OutcomeCopyright {
		t.Errorf("Outcome = %q, want %q", got.Outcome, OutcomeCopyright)
	}
	if got.Owner != "Example Media" {
		t.Errorf("Owner = %q, want %q", got.Owner, "Example Media")
	}
	if !got.IsKnown() {
		t.Error("IsKnown() = false, want true")
	}

	other := c.ClassifyCopyright("Gallery not found.")
	if other.Outcome != OutcomeUnknown || other.Owner != "" {
		t.Errorf("unrelated notice classified as %+v", other)
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier()

	if _, err := c.Classify("nope", "text"); !errors.Is(err, types.ErrUnknownKind) {
		t.Errorf("Classify() error = %v, want ErrUnknownKind", err)
	}

	got, err := c.Classify(KindArchiveResult, "Your H@H client appears to be offline.")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Outcome != OutcomeClientOffline {
		t.Errorf("Outcome = %q, want %q", got.Outcome, OutcomeClientOffline)
	}
}

func TestClassifier_WithThreshold(t *testing.T) {
	c := newTestClassifier()
	strict := c.WithThreshold(1.1)

	if c.threshold != DefaultThreshold {
		t.Error("WithThreshold() modified the receiver")
	}
	got := strict.ClassifyArchiveResult("Your H@H client appears to be offline.")
	if got.Outcome != OutcomeUnknown {
		t.Errorf("Outcome = %q with unreachable threshold, want unknown", got.Outcome)
	}
}

func TestMatchConfidence(t *testing.T) {
	tests := []struct {
		name    string
		phrase  string
		message string
		min     float64
		max     float64
	}{
		{"exact", "abc def", "abc def", 1.0, 1.0},
		{"case insensitive", "ABC def", "abc DEF", 1.0, 1.0},
		{"contained", "abc def", "xx abc def yy", 0.8, 1.0},
		{"fragment", "abc def ghi jkl", "abc", 0.3, 0.5},
		{"empty message", "abc", "", 0, 0},
		{"no match", "abc", "zzz", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchConfidence(tt.phrase, tt.message)
			if got < tt.min || got > tt.max {
				t.Errorf("MatchConfidence(%q, %q) = %v, want in [%v, %v]", tt.phrase, tt.message, got, tt.min, tt.max)
			}
		})
	}
}

// For any phrase and any surrounding text, a message embedding the phrase
// scores at least 0.8 and never above 1.0.
func TestProperty_ContainedPhraseConfidence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("embedded phrase scores high", prop.ForAll(
		func(prefix, phrase, suffix string) bool {
			if strings.TrimSpace(phrase) == "" {
				return true
			}
			got := MatchConfidence(phrase, prefix+" "+phrase+" "+suffix)
			return got >= 0.8 && got <= 1.0
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("confidence stays within bounds", prop.ForAll(
		func(phrase, message string) bool {
			got := MatchConfidence(phrase, message)
			return got >= 0 && got <= 1.0
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
