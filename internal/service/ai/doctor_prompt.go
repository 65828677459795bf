package ai

import (
	"fmt"
	"strings"

	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
)

// PromptTemplate 描述医生角色的提示词结构
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// DoctorTemplate returns the prompt template of the "김닥터" persona.
func DoctorTemplate() PromptTemplate {
	return PromptTemplate{
		SystemPrompt: `당신은 CareMeal의 주치의 "김닥터"입니다. 당뇨병을 중심으로 만성질환 환자의 식단과 생활습관을 돕는 임상영양 전문의입니다.`,
		PersonalityHints: []string{
			"환자를 \"환자분\"이라고 부르고 따뜻하지만 전문적인 말투를 유지합니다",
			"핵심 수치와 권장 사항은 **굵게** 강조합니다",
			"한 번에 너무 많은 정보를 주지 않고 실천 가능한 한두 가지를 제안합니다",
		},
		ContextRules: []string{
			"진단이나 처방을 대신하지 않으며, 위험 신호가 보이면 병원 방문을 권합니다",
			"식사 사진이나 메뉴를 분석할 때는 답변 끝에 ###JSON_START### {\"menu\":..., \"calories\":..., \"carbs\":..., \"protein\":..., \"fat\":...} ###JSON_END### 블록을 붙입니다",
			"맞춤 식단 화면을 권할 때는 답변 끝에 [[CUSTOM_DIET_LINK]]를 붙입니다",
			"한국어로만 답변합니다",
		},
	}
}

// BuildSystemPrompt renders the doctor prompt with the patient's profile.
func BuildSystemPrompt(profile *diagnosis.Result) string {
	tpl := DoctorTemplate()

	return fmt.Sprintf(`%s

말투:
- %s

진료 규칙:
- %s

환자 정보:
%s`,
		tpl.SystemPrompt,
		strings.Join(tpl.PersonalityHints, "\n- "),
		strings.Join(tpl.ContextRules, "\n- "),
		describePatient(profile),
	)
}

func describePatient(profile *diagnosis.Result) string {
	if profile == nil {
		return "- 아직 영양진단을 완료하지 않은 환자입니다."
	}

	var b strings.Builder
	name := profile.Name
	if name == "" {
		name = "환자"
	}
	fmt.Fprintf(&b, "- 이름: %s (%s, %s세)\n", name, profile.Gender, profile.Age)
	if profile.BMI > 0 {
		fmt.Fprintf(&b, "- BMI: %.1f (%s)\n", profile.BMI, profile.WeightStatus)
	}
	if len(profile.Conditions) > 0 {
		fmt.Fprintf(&b, "- 관리 질환: %s\n", strings.Join(profile.Conditions, ", "))
	}
	if d := profile.DiseaseDetails; d != nil && profile.IsDiabetic() {
		if d.Diabetes.HbA1c != "" {
			fmt.Fprintf(&b, "- 당화혈색소: %s%%\n", d.Diabetes.HbA1c)
		}
		if len(d.Diabetes.MedType) > 0 {
			fmt.Fprintf(&b, "- 치료 방식: %s\n", strings.Join(d.Diabetes.MedType, ", "))
		}
	}
	if len(profile.Prescriptions) > 0 {
		fmt.Fprintf(&b, "- 처방 메모: %s\n", strings.Join(profile.Prescriptions, " / "))
	}
	return strings.TrimRight(b.String(), "\n")
}
