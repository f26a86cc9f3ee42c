package agent

import (
	"regexp"
	"strings"

	"moviesalon/backend/internal/constants"
)

// SelectionOutcome tells whether the moderator's reply named a speaker
type SelectionOutcome int

const (
	SelectionUnparsed SelectionOutcome = iota
	SelectionParsed
)

// Selection is the structured reading of a moderator selection reply
type Selection struct {
	Outcome SelectionOutcome
	Speaker string
	Comment string
	Raw     string
}

var (
	// Tags may appear anywhere in a line, wrapped in markdown emphasis, with either colon width
	speakerTag = regexp.MustCompile(`次の話者[\s*]*[：:]`)
	commentTag = regexp.MustCompile(`コメント[\s*]*[：:]`)
)

// ParseSelection reads the tagged "次の話者：" and "コメント：" parts. Both may share a line.
// The comment runs until the next speaker tag or the end of the reply. When the comment
// tag is missing the whole reply is the comment.
func ParseSelection(raw string) Selection {
	sel := Selection{Raw: raw}

	var (
		comment    []string
		inComment  bool
		hasComment bool
	)
	takeSpeaker := func(text string) {
		if name := cleanSpeakerName(text); name != "" {
			sel.Outcome = SelectionParsed
			sel.Speaker = name
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		sp := speakerTag.FindStringIndex(line)
		cm := commentTag.FindStringIndex(line)

		switch {
		case sp != nil && (cm == nil || sp[0] < cm[0]):
			if cm == nil {
				takeSpeaker(line[sp[1]:])
				inComment = false
				continue
			}
			takeSpeaker(line[sp[1]:cm[0]])
			comment = append(comment, line[cm[1]:])
			hasComment, inComment = true, true
		case cm != nil:
			hasComment = true
			if sp == nil {
				comment = append(comment, line[cm[1]:])
				inComment = true
				continue
			}
			comment = append(comment, line[cm[1]:sp[0]])
			takeSpeaker(line[sp[1]:])
			inComment = false
		case inComment:
			comment = append(comment, line)
		}
	}

	sel.Comment = strings.TrimSpace(strings.Join(comment, "\n"))
	if !hasComment || sel.Comment == "" {
		sel.Comment = strings.TrimSpace(raw)
	}
	return sel
}

// NextSpeaker returns the selected guest, or the undetermined sentinel when the
// reply named nobody or someone outside guests
func (s Selection) NextSpeaker(isGuest func(string) bool) string {
	if s.Outcome != SelectionParsed {
		return constants.SpeakerUndetermined
	}
	if isGuest(s.Speaker) {
		return s.Speaker
	}
	if name := strings.TrimSuffix(s.Speaker, "さん"); name != s.Speaker && isGuest(name) {
		return name
	}
	return constants.SpeakerUndetermined
}

func cleanSpeakerName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, "*_`「」『』【】\"' 　。、,")
	return strings.TrimSpace(name)
}
