package utils

import "regexp"

// ---------- package-level compiled date patterns ----------

// One pattern per notation class. The same span may match more than one
// class; the final output is deduplicated by exact string value.
var datePatterns = []*regexp.Regexp{
	// MM/DD/YYYY or DD/MM/YYYY
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),

	// MM-DD-YYYY or DD-MM-YYYY
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),

	// Month Day or Month Day, Year (full or abbreviated month, optional
	// ordinal suffix)
	regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+\d{1,2}(?:st|nd|rd|th)?(?:\s*,?\s*\d{4})?\b`),

	// Day of week
	regexp.MustCompile(`(?i)\b(?:mon(?:day)?|tue(?:sday)?|wed(?:nesday)?|thu(?:rsday)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)\b`),

	// Next/this + timeframe
	regexp.MustCompile(`(?i)\b(?:next|this)\s+(?:weekend|week|month|(?:mon(?:day)?|tue(?:sday)?|wed(?:nesday)?|thu(?:rsday)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?))\b`),

	// Relative literals
	regexp.MustCompile(`(?i)\b(?:tomorrow|day after tomorrow|tonight)\b`),
}

// ExtractDates returns the substrings of text that look like date or
// relative time references, deduplicated in first-seen order. A text with
// no recognizable dates yields an empty slice.
func ExtractDates(text string) []string {
	seen := make(map[string]struct{})
	dates := []string{}

	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			dates = append(dates, match)
		}
	}

	return dates
}
