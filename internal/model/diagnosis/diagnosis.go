package diagnosis

import (
	"math"
	"strconv"
	"strings"
)

// Conditions selectable in the survey, in display order.
const (
	ConditionDiabetes       = "당뇨병"
	ConditionHypertension   = "고혈압"
	ConditionHyperlipidemia = "고지혈증"
	ConditionObesity        = "비만"
	ConditionKidney         = "신부전"
	ConditionGeneral        = "일반건강"
)

// ConditionOptions lists every selectable condition.
func ConditionOptions() []string {
	return []string{
		ConditionDiabetes,
		ConditionHypertension,
		ConditionHyperlipidemia,
		ConditionObesity,
		ConditionKidney,
		ConditionGeneral,
	}
}

// Result is the patient profile produced by the survey or returned by login.
type Result struct {
	Name           string          `json:"name"`
	Gender         string          `json:"gender"`
	Age            string          `json:"age"`
	Height         string          `json:"height"`
	Weight         string          `json:"weight"`
	Conditions     []string        `json:"conditions"`
	Interests      []string        `json:"interests"`
	BMI            float64         `json:"bmi"`
	WeightStatus   string          `json:"weightStatus"`
	HabitScore     int             `json:"habitScore"`
	Prescriptions  []string        `json:"prescriptions"`
	Summary        *Form           `json:"summary,omitempty"`
	DiseaseDetails *DiseaseDetails `json:"diseaseDetails,omitempty"`
	UserID         string          `json:"userId,omitempty"`
}

// IsDiabetic reports whether diabetes is among the selected conditions.
func (r *Result) IsDiabetic() bool {
	if r == nil {
		return false
	}
	for _, c := range r.Conditions {
		if c == ConditionDiabetes {
			return true
		}
	}
	return false
}

// Form is the full survey questionnaire.
type Form struct {
	Name           string         `json:"name"`
	Gender         string         `json:"gender"`
	Age            string         `json:"age"`
	Height         string         `json:"height"`
	Weight         string         `json:"weight"`
	Interests      []string       `json:"interests"`
	DiseaseDetails DiseaseDetails `json:"diseaseDetails"`
	HealthMetrics  HealthMetrics  `json:"healthMetrics"`
	EatingHabits   EatingHabits   `json:"eatingHabits"`
	Activity       string         `json:"activity"`
	Alcohol        string         `json:"alcohol"`
	Smoking        string         `json:"smoking"`
	ConsentHealth  bool           `json:"consentHealth"`
	ConsentAI      bool           `json:"consentAI"`
}

// DiseaseDetails holds the per-disease answers of step 3.
type DiseaseDetails struct {
	Diabetes     DiabetesDetails     `json:"diabetes"`
	Hypertension HypertensionDetails `json:"hypertension"`
	Kidney       KidneyDetails       `json:"kidney"`
	Lipid        LipidDetails        `json:"lipid"`
}

type DiabetesDetails struct {
	HbA1c   string   `json:"hbA1c"`
	Year    string   `json:"year"`
	MedType []string `json:"medType"`
}

type HypertensionDetails struct {
	AvgBP string `json:"avgBP"`
	Meds  string `json:"meds"`
}

type KidneyDetails struct {
	GFR      string `json:"gfr"`
	Dialysis string `json:"dialysis"`
}

type LipidDetails struct {
	LDL string `json:"ldl"`
	HDL string `json:"hdl"`
}

// HealthMetrics are the step 4 measurements.
type HealthMetrics struct {
	BloodSugar    string `json:"bloodSugar"`
	BloodPressure string `json:"bloodPressure"`
	Cholesterol   string `json:"cholesterol"`
}

// EatingHabits are the step 5 answers.
type EatingHabits struct {
	VeggieFrequency string `json:"veggieFrequency"`
	SugarIntake     string `json:"sugarIntake"`
	MeatType        string `json:"meatType"`
	SaltLevel       string `json:"saltLevel"`
}

// NewForm returns a questionnaire with the screen defaults.
func NewForm(name string) Form {
	return Form{
		Name:      name,
		Gender:    "여성",
		Interests: []string{},
		DiseaseDetails: DiseaseDetails{
			Diabetes:     DiabetesDetails{MedType: []string{}},
			Hypertension: HypertensionDetails{Meds: "복용중"},
			Kidney:       KidneyDetails{Dialysis: "안함"},
		},
		EatingHabits: EatingHabits{
			VeggieFrequency: "주 1-2회",
			SugarIntake:     "보통",
			MeatType:        "살코기 위주",
			SaltLevel:       "보통",
		},
		Activity: "보통",
		Alcohol:  "없음",
		Smoking:  "비흡연",
	}
}

// Options enumerates the choices shown for the select questions.
type Options struct {
	Genders         []string `json:"genders"`
	Conditions      []string `json:"conditions"`
	MedTypes        []string `json:"medTypes"`
	HypertensionMed []string `json:"hypertensionMeds"`
	Dialysis        []string `json:"dialysis"`
	VeggieFrequency []string `json:"veggieFrequency"`
	SugarIntake     []string `json:"sugarIntake"`
	MeatType        []string `json:"meatType"`
	SaltLevel       []string `json:"saltLevel"`
	Activity        []string `json:"activity"`
	Alcohol         []string `json:"alcohol"`
	Smoking         []string `json:"smoking"`
}

// FormOptions returns the select choices of the questionnaire.
func FormOptions() Options {
	return Options{
		Genders:         []string{"남성", "여성"},
		Conditions:      ConditionOptions(),
		MedTypes:        []string{"경구제", "인슐린", "조절안함"},
		HypertensionMed: []string{"복용중", "간헐적 복용", "복용안함"},
		Dialysis:        []string{"안함", "복막투석", "혈액투석"},
		VeggieFrequency: []string{"매 끼니", "하루 1회", "주 3-4회", "거의 안 함"},
		SugarIntake:     []string{"거의 안 함", "주 1-2회", "매일 1회", "매일 2회 이상"},
		MeatType:        []string{"살코기/생선", "적당한 지방", "기름진 부위", "가공육(햄 등)"},
		SaltLevel:       []string{"싱겁게", "보통", "짜게", "매우 짜게"},
		Activity:        []string{"거의 좌식", "가벼운 활동", "보통 활동", "강한 활동"},
		Alcohol:         []string{"안 함", "가끔", "자주"},
		Smoking:         []string{"비흡연", "과거", "현재"},
	}
}

// BMI computes weight / (height in m)^2 rounded to one decimal, or 0 when
// either value is missing or not a number.
func BMI(height, weight string) float64 {
	h := parseLeadingFloat(height) / 100
	w := parseLeadingFloat(weight)
	if h == 0 || w == 0 || math.IsNaN(h) || math.IsNaN(w) {
		return 0
	}
	return math.Round(w/(h*h)*10) / 10
}

// WeightStatus classifies a BMI value.
func WeightStatus(bmi float64) string {
	switch {
	case bmi == 0:
		return "-"
	case bmi >= 25:
		return "비만"
	case bmi >= 23:
		return "과체중"
	case bmi < 18.5:
		return "저체중"
	default:
		return "정상"
	}
}

// parseLeadingFloat reads the numeric prefix of s ("170cm" -> 170) and
// returns NaN when there is none.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			return parsePrefix(s[:end])
		}
	}
	return parsePrefix(s[:end])
}

func parsePrefix(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
