package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const defaultMeetBaseURL = "https://meet.fitversal.app"

// MeetLinkFactory builds opaque meeting links for new sessions. Every call
// embeds a fresh UUID, so distinct occurrences always get distinct links.
type MeetLinkFactory struct {
	baseURL string
}

func NewMeetLinkFactory(baseURL string) *MeetLinkFactory {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultMeetBaseURL
	}
	return &MeetLinkFactory{baseURL: strings.TrimRight(baseURL, "/")}
}

func (f *MeetLinkFactory) GenerateLink(coachID, clientID int64, occurrence int) string {
	return fmt.Sprintf("%s/c%d-u%d-%d-%s", f.baseURL, coachID, clientID, occurrence+1, uuid.NewString())
}
