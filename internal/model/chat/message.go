package chat

import (
	"strings"
	"time"

	"github.com/caremeal/caremeal/app/internal/analysis/nutrition"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// DietLinkMarker asks the view layer to render a shortcut to the custom diet screen.
const DietLinkMarker = "[[CUSTOM_DIET_LINK]]"

// GreetingID is the id of the greeting that seeds an empty conversation.
const GreetingID = "init-1"

// Message is one entry of the chat transcript.
type Message struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Sender     Sender    `json:"sender"`
	Timestamp  time.Time `json:"timestamp"`
	Sources    []string  `json:"sources,omitempty"`
	Image      string    `json:"image,omitempty"`
	IsAnalysis bool      `json:"isAnalysis,omitempty"`
}

// Greeting returns the doctor's opening line.
func Greeting(now time.Time) Message {
	return Message{
		ID:        GreetingID,
		Text:      "안녕하세요, 환자분! CareMeal의 **김닥터**입니다. 👨‍⚕️\n오늘 식단이나 혈당 수치에 대해 궁금한 점이 있으신가요?",
		Sender:    SenderAI,
		Timestamp: now,
	}
}

// HasDietLink reports whether the reply carries the custom diet shortcut.
func (m Message) HasDietLink() bool {
	return strings.Contains(m.Text, DietLinkMarker)
}

// DisplayText strips machine-readable markers from the text.
func (m Message) DisplayText() string {
	text := strings.Replace(m.Text, DietLinkMarker, "", 1)
	text = strings.TrimSpace(text)
	return nutrition.StripBlock(text)
}

// View is a message as the view layer renders it.
type View struct {
	Message
	DisplayText string `json:"displayText"`
	DietLink    bool   `json:"dietLink,omitempty"`
}

// NewView attaches the rendered text to m.
func NewView(m Message) View {
	return View{Message: m, DisplayText: m.DisplayText(), DietLink: m.HasDietLink()}
}

// Views renders a transcript.
func Views(messages []Message) []View {
	out := make([]View, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewView(m))
	}
	return out
}
