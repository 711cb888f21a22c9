package utils

import (
	"errors"
	"testing"

	"rentwheels-backend/models"
)

func newTrainedClassifier(t *testing.T) *IntentClassifier {
	t.Helper()
	ic := NewIntentClassifier()
	if err := ic.Train(TrainingCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	return ic
}

func TestClassifyBeforeTraining(t *testing.T) {
	ic := NewIntentClassifier()

	intent, score, err := ic.Classify("I want to book this car")
	if !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
	if intent != models.IntentGeneralInquiry || score != 0 {
		t.Errorf("expected degraded verdict (general_inquiry, 0), got (%s, %v)", intent, score)
	}
	if ic.Trained() {
		t.Error("classifier should not report trained")
	}
}

func TestTrainRejectsEmptyCorpus(t *testing.T) {
	ic := NewIntentClassifier()
	if err := ic.Train(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
	if ic.Trained() {
		t.Error("failed training must leave the model untrained")
	}
}

func TestTrainRequiresAllLabels(t *testing.T) {
	ic := NewIntentClassifier()
	err := ic.Train([]TrainingExample{
		{"I want to book this car", models.IntentBookingIntent},
		{"How many seats does it have", models.IntentGeneralInquiry},
	})
	if err == nil {
		t.Fatal("expected error for corpus missing labels")
	}
}

func TestClassifyTrainingUtterances(t *testing.T) {
	ic := newTrainedClassifier(t)

	tests := []struct {
		text string
		want models.Intent
	}{
		{"I want to book this car", models.IntentBookingIntent},
		{"let's proceed with booking", models.IntentBookingIntent},
		{"How many seats does it have", models.IntentGeneralInquiry},
		{"Is the car available next weekend", models.IntentAvailability},
		{"Would you consider a discount", models.IntentNegotiation},
	}

	for _, tt := range tests {
		intent, score, err := ic.Classify(tt.text)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.text, err)
		}
		if intent != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, intent, tt.want)
		}
		if score <= 0 || score > 1 {
			t.Errorf("Classify(%q) score = %v, want in (0, 1]", tt.text, score)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	ic := newTrainedClassifier(t)

	const text = "Can we book it for this weekend"
	firstIntent, firstScore, err := ic.Classify(text)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	for i := 0; i < 50; i++ {
		intent, score, err := ic.Classify(text)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if intent != firstIntent || score != firstScore {
			t.Fatalf("call %d returned (%s, %v), first call returned (%s, %v)",
				i, intent, score, firstIntent, firstScore)
		}
	}
}

func TestClassifyEmptyAndGibberish(t *testing.T) {
	ic := newTrainedClassifier(t)

	for _, text := range []string{"", "   ", "xyzzy qwertyuiop", "!!! ???"} {
		intent, score, err := ic.Classify(text)
		if err != nil {
			t.Fatalf("Classify(%q): %v", text, err)
		}
		if intent != models.IntentUnknown {
			t.Errorf("Classify(%q) = %s, want %s", text, intent, models.IntentUnknown)
		}
		if score != 0 {
			t.Errorf("Classify(%q) score = %v, want 0", text, score)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Let's finalize, this DEAL 15th!")
	want := []string{"let", "s", "finalize", "this", "deal", "15th"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
}
