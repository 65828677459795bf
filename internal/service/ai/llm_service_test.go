package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/caremeal/caremeal/app/internal/model/chat"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
)

func TestBuildSystemPromptWithProfile(t *testing.T) {
	profile := &diagnosis.Result{
		Name:         "김테스트",
		Gender:       "남성",
		Age:          "45",
		BMI:          25.9,
		WeightStatus: "과체중",
		Conditions:   []string{diagnosis.ConditionDiabetes},
		DiseaseDetails: &diagnosis.DiseaseDetails{
			Diabetes: diagnosis.DiabetesDetails{HbA1c: "6.8", MedType: []string{"경구제"}},
		},
	}

	prompt := BuildSystemPrompt(profile)
	for _, want := range []string{"김닥터", "김테스트", "25.9", "당뇨병", "6.8%", "경구제", "###JSON_START###"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPromptWithoutProfile(t *testing.T) {
	prompt := BuildSystemPrompt(nil)
	if !strings.Contains(prompt, "아직 영양진단을 완료하지 않은 환자") {
		t.Fatalf("unexpected prompt:\n%s", prompt)
	}
}

func TestBuildHistoryMessagesLimitsTurns(t *testing.T) {
	messages := []chat.Message{chat.Greeting(testTime)}
	for i := 0; i < 14; i++ {
		sender := chat.SenderUser
		if i%2 == 1 {
			sender = chat.SenderAI
		}
		messages = append(messages, chat.Message{ID: fmt.Sprint(i), Sender: sender, Text: fmt.Sprintf("msg-%d", i)})
	}

	history := buildHistoryMessages(messages)
	if len(history) != historyLimit {
		t.Fatalf("expected %d messages, got %d", historyLimit, len(history))
	}
	if history[0].Content != "msg-4" || history[0].Role != schema.User {
		t.Fatalf("unexpected first message: %+v", history[0])
	}
	if history[len(history)-1].Role != schema.Assistant {
		t.Fatalf("expected assistant last, got %s", history[len(history)-1].Role)
	}
}

func TestBuildHistorySkipsGreetingAndStripsMarkers(t *testing.T) {
	messages := []chat.Message{
		chat.Greeting(testTime),
		{ID: "a", Sender: chat.SenderAI, Text: "식단 추천입니다.\n[[CUSTOM_DIET_LINK]]"},
	}

	history := buildHistoryMessages(messages)
	if len(history) != 1 || history[0].Content != "식단 추천입니다." {
		t.Fatalf("unexpected history: %+v", history)
	}
}
