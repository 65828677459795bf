package survey

import (
	"time"

	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/service/session"
)

// TotalSteps is the number of pages in the questionnaire.
const TotalSteps = 7

const (
	msgBasicInfo  = "모든 기본 정보를 입력해주세요."
	msgConditions = "최소 하나 이상의 질환 또는 '일반건강'을 선택해주세요."
	msgConsents   = "필수 동의 항목에 체크해주세요."
)

// ValidationError explains why the wizard refused to advance.
type ValidationError struct {
	Step    int    `json:"step"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Wizard is one run through the questionnaire.
type Wizard struct {
	ID         string            `json:"id"`
	Step       int               `json:"step"`
	Form       diagnosis.Form    `json:"form"`
	Conditions []string          `json:"conditions"`
	Signup     bool              `json:"signup"`
	Completed  bool              `json:"completed"`
	Result     *diagnosis.Result `json:"result,omitempty"`
	BMI        float64           `json:"bmi"`
	Status     string            `json:"weightStatus"`
	UpdatedAt  time.Time         `json:"updatedAt"`

	credentials *session.Credentials
	finishing   bool
}

func newWizard(id string, creds *session.Credentials, now time.Time) *Wizard {
	name := ""
	if creds != nil {
		name = creds.Name
	}
	return &Wizard{
		ID:          id,
		Step:        1,
		Form:        diagnosis.NewForm(name),
		Conditions:  []string{},
		Signup:      creds != nil,
		UpdatedAt:   now,
		credentials: creds,
	}
}

// onlyGeneralHealth reports whether the disease detail page has nothing to ask.
func (w *Wizard) onlyGeneralHealth() bool {
	return len(w.Conditions) == 1 && w.Conditions[0] == diagnosis.ConditionGeneral
}

// toggle adds or removes a condition, keeping selection order.
func (w *Wizard) toggle(condition string) {
	for i, c := range w.Conditions {
		if c == condition {
			w.Conditions = append(w.Conditions[:i:i], w.Conditions[i+1:]...)
			return
		}
	}
	w.Conditions = append(w.Conditions, condition)
}

// advance validates the current page and moves forward. It reports true
// when the last page was accepted and the result should be produced.
func (w *Wizard) advance() (bool, error) {
	f := w.Form
	switch {
	case w.Step == 1 && (f.Name == "" || f.Age == "" || f.Height == "" || f.Weight == ""):
		return false, &ValidationError{Step: 1, Message: msgBasicInfo}
	case w.Step == 2 && len(w.Conditions) == 0:
		return false, &ValidationError{Step: 2, Message: msgConditions}
	case w.Step == 2 && w.onlyGeneralHealth():
		w.Step = 4
		return false, nil
	case w.Step == TotalSteps && (!f.ConsentHealth || !f.ConsentAI):
		return false, &ValidationError{Step: TotalSteps, Message: msgConsents}
	}

	if w.Step < TotalSteps {
		w.Step++
		return false, nil
	}
	return true, nil
}

// retreat moves one page back, skipping the disease details page when it was skipped on the way in.
func (w *Wizard) retreat() {
	switch {
	case w.Step <= 1:
		return
	case w.Step == 4 && w.onlyGeneralHealth():
		w.Step = 2
	default:
		w.Step--
	}
}

// buildResult turns the answers into the patient profile.
func (w *Wizard) buildResult() *diagnosis.Result {
	bmi := diagnosis.BMI(w.Form.Height, w.Form.Weight)
	form := w.Form
	details := form.DiseaseDetails

	return &diagnosis.Result{
		Name:           form.Name,
		Gender:         form.Gender,
		Age:            form.Age,
		Height:         form.Height,
		Weight:         form.Weight,
		Conditions:     append([]string{}, w.Conditions...),
		Interests:      append([]string{}, form.Interests...),
		BMI:            bmi,
		WeightStatus:   diagnosis.WeightStatus(bmi),
		HabitScore:     92,
		Prescriptions:  []string{"맞춤형 영양 분석 결과가 도출되었습니다."},
		Summary:        &form,
		DiseaseDetails: &details,
	}
}

func (w *Wizard) refreshDerived() {
	w.BMI = diagnosis.BMI(w.Form.Height, w.Form.Weight)
	w.Status = diagnosis.WeightStatus(w.BMI)
}

// snapshot copies the wizard so callers never share slices with the registry.
func (w *Wizard) snapshot() Wizard {
	cp := *w
	cp.credentials = nil
	cp.Conditions = append([]string{}, w.Conditions...)
	cp.Form.Interests = append([]string{}, w.Form.Interests...)
	cp.Form.DiseaseDetails.Diabetes.MedType = append([]string{}, w.Form.DiseaseDetails.Diabetes.MedType...)
	if w.Result != nil {
		r := *w.Result
		cp.Result = &r
	}
	return cp
}
