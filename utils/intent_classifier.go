package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"rentwheels-backend/models"
)

// ErrNotTrained is returned when inference is requested before Train has
// completed. Callers are expected to degrade rather than fail the chat path.
var ErrNotTrained = errors.New("intent classifier model not trained")

// TrainingExample pairs an utterance with its intent label.
type TrainingExample struct {
	Text  string
	Label models.Intent
}

// TrainingCorpus returns the fixed corpus the classifier is fitted on at
// startup. The utterances cover all four labels.
func TrainingCorpus() []TrainingExample {
	return []TrainingExample{
		// Agreement / booking intent
		{"That sounds good to me", models.IntentBookingIntent},
		{"I want to book this car", models.IntentBookingIntent},
		{"Let's finalize this deal", models.IntentBookingIntent},
		{"I agree with the price", models.IntentBookingIntent},
		{"Can we book it for this weekend", models.IntentBookingIntent},
		{"I would like to rent this vehicle", models.IntentBookingIntent},
		{"That works for me", models.IntentBookingIntent},
		{"deal", models.IntentBookingIntent},
		{"done", models.IntentBookingIntent},
		{"great, I'll take it", models.IntentBookingIntent},
		{"can I confirm this booking", models.IntentBookingIntent},
		{"when can I pick up the car", models.IntentBookingIntent},
		{"how do I pay for the rental", models.IntentBookingIntent},
		{"I'm ready to book", models.IntentBookingIntent},
		{"let's proceed with booking", models.IntentBookingIntent},

		// Non-booking conversation
		{"How many seats does it have", models.IntentGeneralInquiry},
		{"What's the fuel efficiency", models.IntentGeneralInquiry},
		{"Can you tell me more about it", models.IntentGeneralInquiry},
		{"Is there air conditioning", models.IntentGeneralInquiry},
		{"Does it have GPS", models.IntentGeneralInquiry},
		{"What color is the car", models.IntentGeneralInquiry},
		{"Is it manual or automatic", models.IntentGeneralInquiry},

		// Availability questions, not yet booking intent
		{"Is the car available next weekend", models.IntentAvailability},
		{"Are you free on Friday", models.IntentAvailability},
		{"Do you have availability on these dates", models.IntentAvailability},
		{"Is it available for the 15th", models.IntentAvailability},
		{"Can I rent it next month", models.IntentAvailability},

		// Price negotiation
		{"Can you lower the price", models.IntentNegotiation},
		{"That's a bit expensive", models.IntentNegotiation},
		{"Would you consider a discount", models.IntentNegotiation},
		{"How about a lower rate for longer rental", models.IntentNegotiation},
	}
}

// IntentClassifier is a multinomial naive Bayes text classifier over a
// bag-of-words. It is trained once at startup and is read-only afterwards,
// so concurrent Classify calls need no locking. Repeated identical calls
// return identical results.
type IntentClassifier struct {
	trained bool

	labels      []models.Intent
	docCounts   map[models.Intent]int
	tokenCounts map[models.Intent]map[string]int
	tokenTotals map[models.Intent]int
	vocab       map[string]struct{}
	totalDocs   int
}

func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		docCounts:   make(map[models.Intent]int),
		tokenCounts: make(map[models.Intent]map[string]int),
		tokenTotals: make(map[models.Intent]int),
		vocab:       make(map[string]struct{}),
	}
}

// Train fits the model on the given corpus. It fails if the corpus is empty
// or does not cover all four labels; a failure leaves the classifier
// untrained and Classify returning ErrNotTrained.
func (ic *IntentClassifier) Train(corpus []TrainingExample) error {
	if len(corpus) == 0 {
		return errors.New("training corpus is empty")
	}

	for _, ex := range corpus {
		tokens := Tokenize(ex.Text)
		if len(tokens) == 0 {
			return fmt.Errorf("training example %q has no tokens", ex.Text)
		}

		if _, seen := ic.docCounts[ex.Label]; !seen {
			ic.labels = append(ic.labels, ex.Label)
			ic.tokenCounts[ex.Label] = make(map[string]int)
		}
		ic.docCounts[ex.Label]++
		ic.totalDocs++

		for _, tok := range tokens {
			ic.tokenCounts[ex.Label][tok]++
			ic.tokenTotals[ex.Label]++
			ic.vocab[tok] = struct{}{}
		}
	}

	required := []models.Intent{
		models.IntentBookingIntent,
		models.IntentGeneralInquiry,
		models.IntentAvailability,
		models.IntentNegotiation,
	}
	for _, label := range required {
		if ic.docCounts[label] == 0 {
			return fmt.Errorf("training corpus has no examples for label %q", label)
		}
	}

	ic.trained = true
	return nil
}

// Trained reports whether the model is ready for inference.
func (ic *IntentClassifier) Trained() bool {
	return ic.trained
}

// Classify returns the most likely label for the text with a normalized
// posterior score in [0,1]. Empty or all-unknown text yields IntentUnknown
// with score 0 rather than an error.
func (ic *IntentClassifier) Classify(text string) (models.Intent, float64, error) {
	if !ic.trained {
		return models.IntentGeneralInquiry, 0, ErrNotTrained
	}

	tokens := Tokenize(text)
	known := 0
	for _, tok := range tokens {
		if _, ok := ic.vocab[tok]; ok {
			known++
		}
	}
	if known == 0 {
		return models.IntentUnknown, 0, nil
	}

	// Log-space naive Bayes with Laplace smoothing. Labels are scored in
	// insertion order so ties resolve deterministically.
	vocabSize := float64(len(ic.vocab))
	logProbs := make([]float64, len(ic.labels))
	for i, label := range ic.labels {
		lp := math.Log(float64(ic.docCounts[label]) / float64(ic.totalDocs))
		denom := float64(ic.tokenTotals[label]) + vocabSize
		for _, tok := range tokens {
			if _, ok := ic.vocab[tok]; !ok {
				continue
			}
			lp += math.Log((float64(ic.tokenCounts[label][tok]) + 1) / denom)
		}
		logProbs[i] = lp
	}

	best := 0
	for i := range logProbs {
		if logProbs[i] > logProbs[best] {
			best = i
		}
	}

	// Normalize to a posterior, shifting by the max for stability.
	var sum float64
	for _, lp := range logProbs {
		sum += math.Exp(lp - logProbs[best])
	}
	score := 1 / sum

	return ic.labels[best], score, nil
}

// Tokenize lowercases the text and splits it into letter/digit runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
