// Package classify maps the free-text messages of archive result and
// copyright pages onto a small set of known outcomes.
package classify

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/types"
)

// Outcome is the classified meaning of a server message.
type Outcome string

const (
	OutcomeNoHathClient  Outcome = "no_hath_client"
	OutcomeClientOffline Outcome = "client_offline"
	OutcomeQueued        Outcome = "queued"
	OutcomeCopyright     Outcome = "copyright"
	OutcomeUnknown       Outcome = "unknown"
)

// Message kinds accepted by Classify
const (
	KindArchiveResult = "archive_result"
	KindCopyright     = "copyright"
)

// DefaultThreshold is the minimum confidence for a non-unknown outcome.
const DefaultThreshold = 0.5

// knownPhrase ties a literal server phrase to its outcome.
type knownPhrase struct {
	phrase  string
	outcome Outcome
}

var archivePhrases = []knownPhrase{
	{phrase: "You must have a H@H client assigned to your account to use this feature", outcome: OutcomeNoHathClient},
	{phrase: "Your H@H client appears to be offline", outcome: OutcomeClientOffline},
	{phrase: "An original resolution download has been queued for client", outcome: OutcomeQueued},
	{phrase: "download has been queued for client", outcome: OutcomeQueued},
}

var copyrightPhrases = []knownPhrase{
	{phrase: "This gallery is unavailable due to a copyright claim by", outcome: OutcomeCopyright},
}

var ownerPattern = regexp.MustCompile(`copyright claim by (.+?)\.(?:\s|$)`)

// Result is a classified message.
type Result struct {
	Outcome    Outcome `json:"outcome"`
	Owner      string  `json:"owner,omitempty"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// IsKnown reports whether the message matched a known outcome.
func (r Result) IsKnown() bool {
	return r.Outcome != OutcomeUnknown
}

// Classifier matches messages against the known phrases, exactly first and
// fuzzily after that.
type Classifier struct {
	logger    *logrus.Logger
	threshold float64
}

// NewClassifier creates a classifier with the default threshold.
func NewClassifier(logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Classifier{
		logger:    logger,
		threshold: DefaultThreshold,
	}
}

// WithThreshold returns a copy of c using threshold.
func (c *Classifier) WithThreshold(threshold float64) *Classifier {
	cp := *c
	cp.threshold = threshold
	return &cp
}

// Classify dispatches message to the classifier for kind.
func (c *Classifier) Classify(kind, message string) (Result, error) {
	switch kind {
	case KindArchiveResult:
		return c.ClassifyArchiveResult(message), nil
	case KindCopyright:
		return c.ClassifyCopyright(message), nil
	}
	return Result{}, fmt.Errorf("%w: %q", types.ErrUnknownKind, kind)
}

// ClassifyArchiveResult classifies the message shown after an archive
// request.
func (c *Classifier) ClassifyArchiveResult(message string) Result {
	return c.classify("archive_result", message, archivePhrases)
}

// ClassifyCopyright classifies a takedown notice and extracts the claimant.
func (c *Classifier) ClassifyCopyright(message string) Result {
	result := c.classify("copyright", message, copyrightPhrases)
	if m := ownerPattern.FindStringSubmatch(message); m != nil {
		result.Owner = strings.TrimSpace(m[1])
		if result.Outcome == OutcomeUnknown {
			result.Outcome = OutcomeCopyright
			result.Confidence = 1.0
		}
	}
	return result
}

func (c *Classifier) classify(kind, message string, phrases []knownPhrase) Result {
	result := Result{Outcome: OutcomeUnknown, Message: message}
	if strings.TrimSpace(message) == "" {
		return result
	}

	for _, kp := range phrases {
		confidence := MatchConfidence(kp.phrase, message)
		if confidence > result.Confidence {
			result.Confidence = confidence
			if confidence >= c.threshold {
				result.Outcome = kp.outcome
			}
		}
	}

	c.logger.WithFields(logrus.Fields{
		"component":  "classifier",
		"kind":       kind,
		"outcome":    result.Outcome,
		"confidence": result.Confidence,
	}).Debug("Classified message")

	return result
}

// MatchConfidence scores between 0.0 and 1.0 how well message matches the
// known phrase. Containment scores at least 0.8; subsequence matches are
// capped at 0.7.
func MatchConfidence(phrase, message string) float64 {
	p := strings.ToLower(strings.Join(strings.Fields(phrase), " "))
	m := strings.ToLower(strings.Join(strings.Fields(message), " "))
	if p == "" || m == "" {
		return 0
	}

	if p == m {
		return 1.0
	}
	if strings.Contains(m, p) {
		ratio := float64(len(p)) / float64(len(m))
		return 0.8 + ratio*0.2
	}
	if strings.Contains(p, m) {
		ratio := float64(len(m)) / float64(len(p))
		return 0.3 + ratio*0.4
	}

	matches := fuzzy.Find(p, []string{m})
	if len(matches) == 0 {
		return 0
	}
	confidence := float64(matches[0].Score) / float64(len(p)*2) * 0.7
	if confidence > 0.7 {
		confidence = 0.7
	}
	if confidence < 0.1 {
		confidence = 0.1
	}
	return confidence
}
