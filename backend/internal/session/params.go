// Package session turns one client request into a paced stream of discussion events.
package session

import "strings"

// Params are the client-supplied inputs of one discussion
type Params struct {
	Topic        string
	UserNote     string
	Genres       []string
	SeenItems    string
	Participants []string
}

// ParseGenres splits a comma separated genre list, trimming items and dropping empties
func ParseGenres(raw string) []string {
	return splitList(raw)
}

// ParseParticipants splits a comma separated name list. The first name becomes the moderator.
func ParseParticipants(raw string) []string {
	return splitList(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
