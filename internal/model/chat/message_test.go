package chat

import (
	"testing"
	"time"
)

func TestDisplayTextStripsMarkers(t *testing.T) {
	msg := Message{Text: "비빔밥 분석 결과입니다.\n###JSON_START###{\"menu\":\"비빔밥\"}###JSON_END###\n[[CUSTOM_DIET_LINK]]"}

	if !msg.HasDietLink() {
		t.Fatal("expected diet link marker to be detected")
	}
	if got := msg.DisplayText(); got != "비빔밥 분석 결과입니다." {
		t.Fatalf("unexpected display text: %q", got)
	}
}

func TestDisplayTextPlain(t *testing.T) {
	msg := Message{Text: "  안녕하세요  "}
	if msg.HasDietLink() {
		t.Fatal("plain text should not carry a diet link")
	}
	if got := msg.DisplayText(); got != "안녕하세요" {
		t.Fatalf("unexpected display text: %q", got)
	}
}

func TestViewsRenderEveryMessage(t *testing.T) {
	views := Views([]Message{
		Greeting(time.Now()),
		{ID: "a", Sender: SenderAI, Text: "추천 식단입니다. " + DietLinkMarker},
	})
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].DietLink || views[0].ID != GreetingID {
		t.Fatalf("unexpected greeting view %+v", views[0])
	}
	if !views[1].DietLink || views[1].DisplayText != "추천 식단입니다." {
		t.Fatalf("unexpected view %+v", views[1])
	}
}
