// search/history.go
package search

import "strings"

const HistoryLimit = 10

// Commit records a term the user explicitly submitted. The history is most
// recent first, holds each term once and keeps at most HistoryLimit terms.
func Commit(history []string, term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return history
	}
	out := make([]string, 0, HistoryLimit)
	out = append(out, term)
	for _, h := range history {
		if h == term {
			continue
		}
		if len(out) == HistoryLimit {
			break
		}
		out = append(out, h)
	}
	return out
}

func Remove(history []string, term string) []string {
	out := make([]string, 0, len(history))
	for _, h := range history {
		if h != term {
			out = append(out, h)
		}
	}
	return out
}
