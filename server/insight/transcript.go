package insight

import (
	"regexp"
	"strings"
)

var (
	speakerRe = regexp.MustCompile(`(?i)^(agent|a|customer|c)\s*:\s*(.*)$`)
	wordRe    = regexp.MustCompile(`\w+`)
)

// ParseTranscript parses raw speaker-tagged text into a Transcript.
// Lines starting with "Agent:"/"A:" are agent speech, "Customer:"/"C:"
// customer speech; anything else is kept with an unknown speaker. Empty
// lines are dropped.
func ParseTranscript(raw string) Transcript {
	var t Transcript
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := speakerRe.FindStringSubmatch(line); m != nil {
			role := RoleCustomer
			switch strings.ToLower(m[1]) {
			case "agent", "a":
				role = RoleAgent
			}
			t = append(t, Utterance{Speaker: role, Text: m[2]})
			continue
		}

		t = append(t, Utterance{Speaker: RoleUnknown, Text: line})
	}
	return t
}

// countWords counts word tokens in a text.
func countWords(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}
