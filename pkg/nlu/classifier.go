package nlu

import (
	"encoding/json"
	"math"
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/textutil"
)

// Prediction is the top label and its confidence from the statistical
// intent classifier.
type Prediction struct {
	Label      models.Intent
	Confidence float64
}

// IntentClassifier scores a prompt against the trained intent labels.
// The second return value is false when no model is available.
type IntentClassifier interface {
	PredictProba(text string) (Prediction, bool)
}

// nbModel is the serialized multinomial naive-Bayes artifact: class
// log-priors plus per-token log-likelihoods. UnknownLogProb is the
// smoothed likelihood applied to out-of-vocabulary tokens.
type nbModel struct {
	Classes        []string             `json:"classes"`
	ClassLogPrior  []float64            `json:"class_log_prior"`
	TokenLogProb   map[string][]float64 `json:"token_log_prob"`
	UnknownLogProb []float64            `json:"unknown_log_prob"`
}

func (m *nbModel) valid() bool {
	if len(m.Classes) == 0 || len(m.ClassLogPrior) != len(m.Classes) {
		return false
	}
	if len(m.UnknownLogProb) != len(m.Classes) {
		return false
	}
	for _, probs := range m.TokenLogProb {
		if len(probs) != len(m.Classes) {
			return false
		}
	}
	return true
}

// NaiveBayesClassifier loads a pre-trained model artifact lazily, once
// per process. A missing artifact is not fatal: PredictProba simply
// reports no prediction and the intent resolver falls back to its
// pattern cascade.
type NaiveBayesClassifier struct {
	path   string
	logger *zap.Logger

	once  sync.Once
	model *nbModel
}

// NewNaiveBayesClassifier creates a classifier reading its artifact
// from path on first use.
func NewNaiveBayesClassifier(path string, logger *zap.Logger) *NaiveBayesClassifier {
	return &NaiveBayesClassifier{path: path, logger: logger}
}

func (c *NaiveBayesClassifier) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read intent model", zap.String("path", c.path), zap.Error(err))
		}
		return
	}
	var m nbModel
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Warn("Failed to parse intent model", zap.String("path", c.path), zap.Error(err))
		return
	}
	if !m.valid() {
		c.logger.Warn("Intent model has inconsistent dimensions", zap.String("path", c.path))
		return
	}
	c.model = &m
	c.logger.Info("Loaded intent model",
		zap.String("path", c.path),
		zap.Int("classes", len(m.Classes)),
		zap.Int("vocabulary", len(m.TokenLogProb)))
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// PredictProba scores the text and returns the best label with its
// softmax probability.
func (c *NaiveBayesClassifier) PredictProba(text string) (Prediction, bool) {
	c.once.Do(c.load)
	if c.model == nil {
		return Prediction{}, false
	}

	tokens := tokenRe.FindAllString(textutil.Normalize(text), -1)
	scores := make([]float64, len(c.model.Classes))
	copy(scores, c.model.ClassLogPrior)
	for _, token := range tokens {
		probs, ok := c.model.TokenLogProb[token]
		if !ok {
			probs = c.model.UnknownLogProb
		}
		for i, p := range probs {
			scores[i] += p
		}
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}

	// softmax normalized against the max for numeric stability
	sum := 0.0
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}

	return Prediction{
		Label:      models.Intent(c.model.Classes[best]),
		Confidence: 1.0 / sum,
	}, true
}
