package state

import (
	"fmt"
	"strings"

	"moviesalon/backend/internal/constants"
)

// TurnKind tells the consumer where a contribution belongs in the UI
type TurnKind string

const (
	KindMessage TurnKind = "message"
	KindSummary TurnKind = "summary"
)

// Profile is the fixed attribute record of a character
type Profile struct {
	Gender      string `json:"性別" yaml:"性別"`
	Age         string `json:"年齢" yaml:"年齢"`
	Occupation  string `json:"職業" yaml:"職業"`
	Hobby       string `json:"趣味" yaml:"趣味"`
	Personality string `json:"性格" yaml:"性格"`
}

// IsEmpty reports whether no attribute is set
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// SummaryEntry is one condensed contribution
type SummaryEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Conversation is the record threaded through every turn of one discussion.
// It is owned by exactly one orchestration run and never shared.
type Conversation struct {
	// Inputs, fixed at creation
	Topic        string             `json:"topic"`
	UserNote     string             `json:"user_note"`
	Genres       []string           `json:"genres"`
	SeenItems    string             `json:"seen_items"`
	Participants []string           `json:"participants"`
	Profiles     map[string]Profile `json:"profiles"`

	// Progress
	TurnCount       int            `json:"turn_count"`
	LastSpeaker     string         `json:"last_speaker"`
	LastComment     string         `json:"last_comment"`
	NextSpeaker     string         `json:"next_speaker"`
	Summaries       []SummaryEntry `json:"summaries"`
	Kind            TurnKind       `json:"kind"`
	AwaitingSummary bool           `json:"awaiting_summary"`
}

// NewConversation creates a conversation with zeroed counters
func NewConversation(topic, userNote string, genres []string, seenItems string, participants []string, profiles map[string]Profile) (*Conversation, error) {
	if profiles == nil {
		profiles = make(map[string]Profile)
	}
	c := &Conversation{
		Topic:        topic,
		UserNote:     userNote,
		Genres:       append([]string(nil), genres...),
		SeenItems:    seenItems,
		Participants: append([]string(nil), participants...),
		Profiles:     profiles,
		Summaries:    []SummaryEntry{},
		Kind:         KindMessage,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the creation-time invariants
func (c *Conversation) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return ErrInvalidConversation{Field: "topic", Reason: "cannot be empty"}
	}
	if len(c.Participants) == 0 {
		return ErrInvalidConversation{Field: "participants", Reason: "at least one participant is required"}
	}
	seen := make(map[string]bool, len(c.Participants))
	for i, name := range c.Participants {
		if strings.TrimSpace(name) == "" {
			return ErrInvalidConversation{Field: fmt.Sprintf("participants[%d]", i), Reason: "cannot be empty"}
		}
		if name == constants.SpeakerNone || name == constants.SpeakerUndetermined {
			return ErrInvalidConversation{Field: fmt.Sprintf("participants[%d]", i), Reason: "reserved name"}
		}
		if seen[name] {
			return ErrInvalidConversation{Field: "participants", Reason: fmt.Sprintf("duplicate name %q", name)}
		}
		seen[name] = true
	}
	return nil
}

// Host returns the participant possessed by the moderator. It never speaks as a guest.
func (c *Conversation) Host() string {
	return c.Participants[0]
}

// Guests returns every participant the moderator may select, in order
func (c *Conversation) Guests() []string {
	return append([]string(nil), c.Participants[1:]...)
}

// IsGuest reports whether name may be selected as the next speaker
func (c *Conversation) IsGuest(name string) bool {
	for _, g := range c.Participants[1:] {
		if g == name {
			return true
		}
	}
	return false
}

// Profile returns the profile of name, or the empty profile when none was resolved
func (c *Conversation) Profile(name string) Profile {
	return c.Profiles[name]
}

// AppendSummary is the only way the summary log grows
func (c *Conversation) AppendSummary(speaker, text string) {
	c.Summaries = append(c.Summaries, SummaryEntry{Speaker: speaker, Text: text})
}

// RenderSummaries formats the summary log as "speaker：text" lines
func (c *Conversation) RenderSummaries() string {
	lines := make([]string, 0, len(c.Summaries))
	for _, s := range c.Summaries {
		lines = append(lines, s.Speaker+"："+s.Text)
	}
	return strings.Join(lines, "\n")
}

// Terminated reports whether the moderator has closed the discussion
func (c *Conversation) Terminated() bool {
	return c.NextSpeaker == constants.SpeakerNone
}

// Errors

type ErrInvalidConversation struct {
	Field  string
	Reason string
}

func (e ErrInvalidConversation) Error() string {
	return fmt.Sprintf("invalid conversation: %s - %s", e.Field, e.Reason)
}
