package speech

import (
	"regexp"
	"sort"
	"strings"
)

// PhraseMatch is a hook or CTA phrase located in the transcript. EstimatedTime
// places the phrase by interpolating its word position against total speaking
// time.
type PhraseMatch struct {
	Category      string  `json:"category"`
	Phrase        string  `json:"phrase"`
	WordPosition  int     `json:"word_position"`
	EstimatedTime float64 `json:"estimated_time"`
}

// CTACluster is a group of two or more CTAs within a five second span.
type CTACluster struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Count     int     `json:"count"`
}

type phrasePattern struct {
	category string
	re       *regexp.Regexp
}

var hookPatterns = []phrasePattern{
	{"question", regexp.MustCompile(`(?i)\b(did you know|have you ever|what if|why (do|does|is|are)|how (do|does|did|can))\b`)},
	{"hyperbole", regexp.MustCompile(`(?i)\b(amazing|incredible|insane|unbelievable|mind[- ]?blowing|craziest|epic|game[- ]?changer)\b`)},
	{"promise", regexp.MustCompile(`(?i)\b(you won'?t believe|wait (for|till|until)|watch (till|until) the end|i'?ll show you|by the end of this)\b`)},
	{"greeting", regexp.MustCompile(`(?i)\b(hey guys|hey everyone|hi everyone|welcome back|what'?s up)\b`)},
	{"value_prop", regexp.MustCompile(`(?i)\b(how to|top \d+|\d+ (tips|ways|tricks|secrets|reasons)|life hack|tutorial)\b`)},
}

var ctaPatterns = []phrasePattern{
	{"engagement", regexp.MustCompile(`(?i)\b(follow (me|us|for)|like (this|and)|drop a (like|comment)|leave a comment|comment below|tag (a|your) friend|share this)\b`)},
	{"traffic", regexp.MustCompile(`(?i)\b(link in (my )?bio|check (out|the) link|visit (my|our|the)|go to (my|our|the))\b`)},
	{"conversion", regexp.MustCompile(`(?i)\b(buy (now|it|this)|shop now|order (now|today)|use (my )?code|get yours|sign up)\b`)},
	{"save", regexp.MustCompile(`(?i)\b(save this( video| post)?|bookmark this|don'?t lose this)\b`)},
	{"viral", regexp.MustCompile(`(?i)\b(duet this|stitch this|make this go viral|send this to)\b`)},
}

// findPhrases scans the transcript with every pattern in the set and returns
// matches ordered by word position.
func findPhrases(transcript string, patterns []phrasePattern, wordCount int, speakingTime, firstWordTime float64) []PhraseMatch {
	matches := []PhraseMatch{}
	if transcript == "" {
		return matches
	}
	for _, pattern := range patterns {
		for _, loc := range pattern.re.FindAllStringIndex(transcript, -1) {
			position := len(strings.Fields(transcript[:loc[0]]))
			matches = append(matches, PhraseMatch{
				Category:      pattern.category,
				Phrase:        strings.ToLower(transcript[loc[0]:loc[1]]),
				WordPosition:  position,
				EstimatedTime: estimateTime(position, wordCount, speakingTime, firstWordTime),
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].WordPosition != matches[j].WordPosition {
			return matches[i].WordPosition < matches[j].WordPosition
		}
		return matches[i].Category < matches[j].Category
	})
	return matches
}

func estimateTime(position, wordCount int, speakingTime, firstWordTime float64) float64 {
	if wordCount == 0 {
		return round2(firstWordTime)
	}
	return round2(firstWordTime + float64(position)/float64(wordCount)*speakingTime)
}

// clusterCTAs groups time-sorted CTA matches within a rolling five second
// window. Only groups of two or more become clusters.
func clusterCTAs(ctas []PhraseMatch) []CTACluster {
	clusters := []CTACluster{}
	if len(ctas) == 0 {
		return clusters
	}
	sorted := make([]PhraseMatch, len(ctas))
	copy(sorted, ctas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EstimatedTime < sorted[j].EstimatedTime })

	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].EstimatedTime-sorted[i-1].EstimatedTime <= ctaClusterWindow {
			continue
		}
		if i-start >= 2 {
			clusters = append(clusters, CTACluster{
				StartTime: sorted[start].EstimatedTime,
				EndTime:   sorted[i-1].EstimatedTime,
				Count:     i - start,
			})
		}
		start = i
	}
	return clusters
}

var fillerWords = map[string]bool{
	"um": true, "uh": true, "like": true, "literally": true,
	"actually": true, "basically": true, "honestly": true, "right": true,
}

var directAddressWords = map[string]bool{
	"you": true, "your": true, "yours": true, "yourself": true,
}

var inclusiveWords = map[string]bool{
	"we": true, "us": true, "our": true, "ours": true, "together": true,
}

// ngram stoplist: phrases made only of these words are structural, not
// intentional repetition.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "to": true, "of": true, "in": true,
	"on": true, "it": true, "this": true, "that": true, "for": true,
	"with": true, "i": true, "you": true, "so": true,
}

func fillerRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	return float64(countLexicon(words, fillerWords)) / float64(len(words))
}

func inclusiveRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	return float64(countLexicon(words, inclusiveWords)) / float64(len(words))
}

func countLexicon(words []string, lexicon map[string]bool) int {
	count := 0
	for _, word := range words {
		if lexicon[normalizeWord(word)] {
			count++
		}
	}
	return count
}

func normalizeWord(word string) string {
	return strings.Trim(strings.ToLower(word), ".,!?;:\"'()")
}

// repeatedPhrases finds two and three word n-grams used at least twice,
// skipping n-grams made entirely of stop words.
func repeatedPhrases(words []string) []string {
	normalized := make([]string, len(words))
	for i, word := range words {
		normalized[i] = normalizeWord(word)
	}
	counts := map[string]int{}
	for _, n := range []int{2, 3} {
		for i := 0; i+n <= len(normalized); i++ {
			gram := normalized[i : i+n]
			if allStopWords(gram) {
				continue
			}
			counts[strings.Join(gram, " ")]++
		}
	}
	phrases := []string{}
	for phrase, count := range counts {
		if count >= 2 {
			phrases = append(phrases, phrase)
		}
	}
	sort.Strings(phrases)
	return phrases
}

func allStopWords(gram []string) bool {
	for _, word := range gram {
		if !stopWords[word] {
			return false
		}
	}
	return true
}

var interrogativeStart = regexp.MustCompile(`(?i)^\s*(what|why|how|when|where|who|which|do|does|did|can|could|would|will|is|are)\b`)

// countQuestions counts sentences that end with a question mark or, since
// transcripts are often unpunctuated, open with an interrogative word.
func countQuestions(transcript string) int {
	count := 0
	start := 0
	flush := func(end int, terminator byte) {
		sentence := strings.TrimSpace(transcript[start:end])
		if sentence == "" {
			return
		}
		if terminator == '?' || interrogativeStart.MatchString(sentence) {
			count++
		}
	}
	for i := 0; i < len(transcript); i++ {
		switch transcript[i] {
		case '.', '!', '?':
			flush(i, transcript[i])
			start = i + 1
		}
	}
	flush(len(transcript), 0)
	return count
}
