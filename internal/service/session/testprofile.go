package session

import "github.com/caremeal/caremeal/app/internal/model/diagnosis"

// TestUserID identifies the demo account.
const TestUserID = "test_user_diabetes"

// TestProfile is the diabetic demo patient used by the instant trial login.
func TestProfile() *diagnosis.Result {
	return &diagnosis.Result{
		Name:          "김테스트",
		Gender:        "남성",
		Age:           "45",
		Height:        "178",
		Weight:        "82",
		Conditions:    []string{diagnosis.ConditionDiabetes},
		Interests:     []string{"체중조절", "피로회복"},
		BMI:           25.9,
		WeightStatus:  "과체중",
		HabitScore:    88,
		Prescriptions: []string{"매일 30분 유산소 운동", "당류 섭취 제한 필요"},
		DiseaseDetails: &diagnosis.DiseaseDetails{
			Diabetes: diagnosis.DiabetesDetails{HbA1c: "6.8", Year: "2", MedType: []string{"경구제"}},
		},
		UserID: TestUserID,
	}
}
