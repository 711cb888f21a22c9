package services

import (
	"errors"
	"log"
	"strings"

	"rentwheels-backend/models"
	"rentwheels-backend/utils"
)

// IntentModel is the classification contract the analyzer depends on. The
// concrete algorithm behind it is an implementation detail.
type IntentModel interface {
	Classify(text string) (models.Intent, float64, error)
	Trained() bool
}

// bookingKeywords is the lexical fallback scanned independently of the
// classifier. Explicit booking words co-occurring with a date phrase can
// trigger a suggestion even when the model is unconfident.
var bookingKeywords = []string{
	"book", "rent", "reserve", "deal", "done", "confirm", "agree", "take it",
}

// AnalyzerService turns a window of recent messages into an actionable
// verdict by combining the intent classifier, the date extractor and the
// keyword heuristic.
type AnalyzerService struct {
	classifier          IntentModel
	recentWindow        int
	confidenceThreshold float64
}

func NewAnalyzerService(classifier IntentModel, recentWindow int, confidenceThreshold float64) *AnalyzerService {
	return &AnalyzerService{
		classifier:          classifier,
		recentWindow:        recentWindow,
		confidenceThreshold: confidenceThreshold,
	}
}

// AnalyzeConversation inspects the trailing window of messages. With no
// messages it short-circuits to an unknown verdict without invoking the
// classifier.
//
// A conversation shows booking intent when either the classifier labels it
// booking_intent with a score strictly above the threshold, or booking
// keywords co-occur with at least one recognized date phrase.
func (s *AnalyzerService) AnalyzeConversation(messages []models.ChatMessage) models.AnalysisResult {
	if len(messages) == 0 {
		return models.AnalysisResult{
			Intent:         models.IntentUnknown,
			Score:          0,
			SuggestedDates: []string{},
		}
	}

	recent := messages
	if len(recent) > s.recentWindow {
		recent = recent[len(recent)-s.recentWindow:]
	}

	parts := make([]string, 0, len(recent))
	for _, m := range recent {
		parts = append(parts, m.Text)
	}
	combined := strings.Join(parts, " ")

	intent, score, err := s.classifier.Classify(combined)
	if err != nil {
		if !errors.Is(err, utils.ErrNotTrained) {
			log.Printf("Conversation analysis: classify failed: %v", err)
		}
		// Degraded mode: the lexical signals below still apply.
		intent, score = models.IntentGeneralInquiry, 0
	}

	suggestedDates := utils.ExtractDates(combined)

	lowered := strings.ToLower(combined)
	containsBookingKeywords := false
	for _, keyword := range bookingKeywords {
		if strings.Contains(lowered, keyword) {
			containsBookingKeywords = true
			break
		}
	}

	isBookingIntent := (intent == models.IntentBookingIntent && score > s.confidenceThreshold) ||
		(containsBookingKeywords && len(suggestedDates) > 0)

	if isBookingIntent {
		intent = models.IntentBookingIntent
	}

	return models.AnalysisResult{
		Intent:                  intent,
		Score:                   score,
		SuggestedDates:          suggestedDates,
		IsBookingIntent:         isBookingIntent,
		ContainsBookingKeywords: containsBookingKeywords,
	}
}
