package api

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

type cannedReply struct {
	keywords []string
	reply    string
	sources  []string
}

var cannedReplies = []cannedReply{
	{
		keywords: []string{"안녕", "반가", "하이"},
		reply:    "안녕하세요, 환자분. CareMeal의 주치의 **김닥터**입니다. \n\n오늘 컨디션은 좀 어떠신가요? 식사는 규칙적으로 하셨는지 궁금하네요. 😊",
		sources:  []string{"당뇨 관리 가이드라인 2024", "대한당뇨병학회 인사말"},
	},
	{
		keywords: []string{"혈당", "수치", "높아", "낮아"},
		reply:    "혈당 수치 때문에 걱정이 많으시군요. \n\n식후 2시간 혈당이 **200mg/dL**를 넘지 않도록 관리하는 것이 중요합니다. \n\n최근에 드신 음식 중 탄수화물이 많은 메뉴가 있었나요? 저와 함께 식단을 점검해봅시다.",
		sources:  []string{"임상영양학 가이드", "혈당 관리 프로토콜 v1.2"},
	},
	{
		keywords: []string{"식단", "메뉴", "추천", "뭐 먹지"},
		reply:    "당뇨 관리에 좋은 식단을 찾으시는군요! 🥗\n\n**추천 식단:**\n- 현미밥 2/3공기\n- 닭가슴살 샐러드 (드레싱 최소화)\n- 시금치 나물\n\n단백질과 섬유질이 풍부한 식사는 혈당 스파이크를 예방하는 데 큰 도움이 됩니다.",
		sources:  []string{"CareMeal 영양 데이터베이스", "2024 당뇨 식단표"},
	},
	{
		keywords: []string{"운동", "걷기", "헬스"},
		reply:    "운동은 인슐린 감수성을 높이는 최고의 약입니다! 💪\n\n식사 후 **30분 뒤 가벼운 산책**을 하시는 것을 강력히 추천드립니다. 무리하지 마시고 하루 30분, 주 5회 꾸준히 실천해보세요.",
		sources:  []string{"운동생리학 저널", "미국당뇨병협회(ADA) 권고안"},
	},
}

const defaultCannedReply = "말씀해주셔서 감사합니다, 환자분. \n\n기록해주신 내용은 꼼꼼히 차트에 적어두겠습니다. 혹시 더 불편한 점이나 궁금한 점이 있으시다면 언제든 편하게 말씀해주세요. 제가 곁에서 돕겠습니다. 👨‍⚕️"

// MockReplier answers chat messages from a fixed keyword table after a
// simulated delay. It is the last fallback when no model is reachable.
type MockReplier struct {
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockReplier returns a replier that waits between min and max before answering.
func NewMockReplier(min, max time.Duration) *MockReplier {
	if max < min {
		max = min
	}
	return &MockReplier{
		minLatency: min,
		maxLatency: max,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Chat returns the canned reply for the first bucket whose keyword appears in the message.
func (m *MockReplier) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if delay := m.latency(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ChatResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	return CannedReply(req.UserMessage), nil
}

func (m *MockReplier) latency() time.Duration {
	spread := m.maxLatency - m.minLatency
	if spread <= 0 {
		return m.minLatency
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minLatency + time.Duration(m.rnd.Int63n(int64(spread)))
}

// CannedReply matches message against the keyword table.
func CannedReply(message string) ChatResponse {
	lowered := strings.ToLower(message)
	for _, bucket := range cannedReplies {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				return ChatResponse{
					Reply:   bucket.reply,
					Sources: append([]string(nil), bucket.sources...),
				}
			}
		}
	}
	return ChatResponse{Reply: defaultCannedReply, Sources: []string{}}
}
