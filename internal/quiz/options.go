package quiz

import (
	"math/rand"
	"time"

	"physquiz-service/internal/domain"
)

// PrepareOptions builds the display option list for a question: blank entries
// dropped, unique by normalized value, with the correct answer guaranteed
// present, in shuffled order.
func PrepareOptions(q domain.Question) []string {
	return prepareOptions(q, true)
}

func prepareOptions(q domain.Question, shuffle bool) []string {
	seen := make(map[string]struct{}, len(q.Options))
	options := make([]string, 0, len(q.Options)+1)
	for _, opt := range q.Options {
		key := domain.Normalize(opt)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		options = append(options, opt)
	}

	if key := domain.Normalize(q.Answer); key != "" {
		if _, ok := seen[key]; !ok {
			options = append(options, q.Answer)
		}
	}

	if shuffle {
		shuffleOptions(options)
	}
	return options
}

// shuffleOptions applies a Fisher-Yates shuffle in place.
func shuffleOptions(options []string) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := len(options) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}
