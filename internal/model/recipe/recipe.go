package recipe

// Dietary preferences offered by the custom diet screen.
const (
	PreferenceMeat        = "고기"
	PreferenceSeafood     = "해산물"
	PreferencePoultry     = "가금류"
	PreferenceVegan       = "채식(비건)"
	PreferenceHighProtein = "고단백"
)

// DefaultPreference is selected when the screen opens.
const DefaultPreference = PreferenceHighProtein

// GeneralCondition is used when no condition was selected in the survey.
const GeneralCondition = "일반건강"

// Preference is one selectable dietary preference.
type Preference struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Recipe is a single recommended dish.
type Recipe struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Calories  int    `json:"calories"`
	Minutes   int    `json:"time"`
	Image     string `json:"image"`
	Condition string `json:"condition"`
	DietType  string `json:"dietType"`
}

// Guide lists what to eat and what to avoid for one disease.
type Guide struct {
	Name  string   `json:"name"`
	Desc  string   `json:"desc"`
	Dos   []string `json:"dos"`
	Donts []string `json:"donts"`
}

// HealthyMeal is a general wellness suggestion.
type HealthyMeal struct {
	Title    string `json:"title"`
	Calories string `json:"cal"`
	Tag      string `json:"tag"`
	Image    string `json:"img"`
}

// Preferences returns the preference chips in display order.
func Preferences() []Preference {
	return []Preference{
		{Name: PreferenceMeat, Icon: "🥩"},
		{Name: PreferenceSeafood, Icon: "🐟"},
		{Name: PreferencePoultry, Icon: "🐔"},
		{Name: PreferenceVegan, Icon: "🥗"},
		{Name: PreferenceHighProtein, Icon: "💪"},
	}
}

func img(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?w=400&q=80"
}

// Seed provides the recipe table, one dish per condition and preference.
func Seed() []Recipe {
	return []Recipe{
		// 당뇨병: 저당, 고식이섬유
		{ID: 1, Title: "소고기 야채 볶음 (저당)", Calories: 420, Minutes: 20, Image: img("1534939561126-755ecf116a9c"), Condition: "당뇨병", DietType: PreferenceMeat},
		{ID: 2, Title: "구운 연어와 아스파라거스", Calories: 380, Minutes: 25, Image: img("1467003909585-2f8a72700288"), Condition: "당뇨병", DietType: PreferenceSeafood},
		{ID: 3, Title: "수비드 닭가슴살 샐러드", Calories: 310, Minutes: 15, Image: img("1546069901-ba9599a7e63c"), Condition: "당뇨병", DietType: PreferencePoultry},
		{ID: 4, Title: "두부 아보카도 포케", Calories: 340, Minutes: 10, Image: img("1512621776951-a57141f2eefd"), Condition: "당뇨병", DietType: PreferenceVegan},
		{ID: 5, Title: "현미 니기리 스시 세트", Calories: 450, Minutes: 30, Image: img("1579871494447-9811cf80d66c"), Condition: "당뇨병", DietType: PreferenceHighProtein},

		// 고혈압: 저나트륨, DASH
		{ID: 11, Title: "저염 소불고기 쌈밥", Calories: 450, Minutes: 20, Image: img("1590301157890-4810ed352733"), Condition: "고혈압", DietType: PreferenceMeat},
		{ID: 12, Title: "데친 문어와 미역 초무침", Calories: 280, Minutes: 15, Image: img("1565557623262-b51c2513a641"), Condition: "고혈압", DietType: PreferenceSeafood},
		{ID: 13, Title: "견과류 닭안심 찜", Calories: 330, Minutes: 30, Image: img("1598515214211-89d3c73ae83b"), Condition: "고혈압", DietType: PreferencePoultry},
		{ID: 14, Title: "바나나 시금치 스무디볼", Calories: 260, Minutes: 10, Image: img("1577805947697-89e18249d767"), Condition: "고혈압", DietType: PreferenceVegan},
		{ID: 15, Title: "검은콩 귀노아 볶음밥", Calories: 410, Minutes: 20, Image: img("1512058560366-cd2429555614"), Condition: "고혈압", DietType: PreferenceHighProtein},

		// 고지혈증: 저포화지방, 고오메가3
		{ID: 21, Title: "기름기 뺀 수육과 부추겉절이", Calories: 480, Minutes: 60, Image: img("1529692236671-f1f6e9481bfa"), Condition: "고지혈증", DietType: PreferenceMeat},
		{ID: 22, Title: "고등어 카레 구이", Calories: 360, Minutes: 20, Image: img("1519708227418-c8fd9a32b7a2"), Condition: "고지혈증", DietType: PreferenceSeafood},
		{ID: 23, Title: "들깨 닭가슴살 미역국", Calories: 290, Minutes: 25, Image: img("1547592166-23ac45744acd"), Condition: "고지혈증", DietType: PreferencePoultry},
		{ID: 24, Title: "렌틸콩 월남쌈", Calories: 320, Minutes: 20, Image: img("1512621776951-a57141f2eefd"), Condition: "고지혈증", DietType: PreferenceVegan},
		{ID: 25, Title: "낫또와 야채 비빔밥", Calories: 390, Minutes: 10, Image: img("1585032226651-759b368d7246"), Condition: "고지혈증", DietType: PreferenceHighProtein},

		// 비만: 저칼로리, 고포만감
		{ID: 31, Title: "우둔살 스테이크 샐러드", Calories: 350, Minutes: 15, Image: img("1546241072-48010ad28c2c"), Condition: "비만", DietType: PreferenceMeat},
		{ID: 32, Title: "흰살생선 야채 찜", Calories: 240, Minutes: 20, Image: img("1534422298391-e4f8c170db76"), Condition: "비만", DietType: PreferenceSeafood},
		{ID: 33, Title: "닭가슴살 월남쌈", Calories: 280, Minutes: 20, Image: img("1539136788836-5699e78bac75"), Condition: "비만", DietType: PreferencePoultry},
		{ID: 34, Title: "곤약 야채 볶음면", Calories: 180, Minutes: 15, Image: img("1552611052-33e04de081de"), Condition: "비만", DietType: PreferenceVegan},
		{ID: 35, Title: "달걀 흰자 머핀과 샐러드", Calories: 220, Minutes: 15, Image: img("1525351484163-7529414344d8"), Condition: "비만", DietType: PreferenceHighProtein},

		// 신부전: 저단백 정밀, 저인/저칼륨
		{ID: 41, Title: "소고기 야채 말이 (소량)", Calories: 310, Minutes: 25, Image: img("1504674900247-0877df9cc836"), Condition: "신부전", DietType: PreferenceMeat},
		{ID: 42, Title: "데친 새우와 무나물", Calories: 210, Minutes: 15, Image: img("1559742811-822873691df8"), Condition: "신부전", DietType: PreferenceSeafood},
		{ID: 43, Title: "백숙 국물 없는 살코기", Calories: 250, Minutes: 40, Image: img("1604908176997-125f25cc6f3d"), Condition: "신부전", DietType: PreferencePoultry},
		{ID: 44, Title: "양배추 롤과 쌀밥", Calories: 290, Minutes: 20, Image: img("1547592166-23ac45744acd"), Condition: "신부전", DietType: PreferenceVegan},
		{ID: 45, Title: "조절된 양의 두부 부침", Calories: 200, Minutes: 10, Image: img("1546069901-ba9599a7e63c"), Condition: "신부전", DietType: PreferenceHighProtein},

		// 일반건강: 균형 영양
		{ID: 51, Title: "한우 안심 스테이크", Calories: 580, Minutes: 20, Image: img("1546833999-b9f581a1996d"), Condition: GeneralCondition, DietType: PreferenceMeat},
		{ID: 52, Title: "전복 버터 구이와 마늘", Calories: 420, Minutes: 15, Image: img("1534422298391-e4f8c170db76"), Condition: GeneralCondition, DietType: PreferenceSeafood},
		{ID: 53, Title: "치킨 브레스트 아보카도 샌드위치", Calories: 450, Minutes: 10, Image: img("1521390188846-e2a39b7ef4a8"), Condition: GeneralCondition, DietType: PreferencePoultry},
		{ID: 54, Title: "그리스식 샐러드와 페타치즈", Calories: 310, Minutes: 10, Image: img("1540189549336-e6e99c3679fe"), Condition: GeneralCondition, DietType: PreferenceVegan},
		{ID: 55, Title: "단백질 쉐이크와 견과류 세트", Calories: 350, Minutes: 5, Image: img("1593085512500-5d55148d6f0d"), Condition: GeneralCondition, DietType: PreferenceHighProtein},
	}
}

// Guides provides the disease tabs in display order.
func Guides() []Guide {
	return []Guide{
		{
			Name:  "당뇨",
			Desc:  "혈당 스파이크 방지",
			Dos:   []string{"현미/잡곡밥", "식이섬유 채소", "양질의 단백질"},
			Donts: []string{"설탕/시럽", "흰 밀가루 가공식품", "과일 주스"},
		},
		{
			Name:  "고혈압",
			Desc:  "저염식 및 DASH 식단",
			Dos:   []string{"칼륨 풍부 채소", "견과류", "저지방 유제품"},
			Donts: []string{"짠 장류", "국물 요리", "인스턴트 식품"},
		},
		{
			Name:  "고지혈증",
			Desc:  "콜레스테롤 및 중성지방 관리",
			Dos:   []string{"오메가3 풍부 생선", "해조류", "불포화지방산"},
			Donts: []string{"동물성 지방", "튀김류", "단순 당질"},
		},
		{
			Name:  "비만",
			Desc:  "저칼로리 고영양 식단",
			Dos:   []string{"수분 섭취", "포만감 높은 단백질", "천천히 씹기"},
			Donts: []string{"심야 야식", "고칼로리 소스", "탄산음료"},
		},
		{
			Name:  "신부전",
			Desc:  "단백질 및 전해질 제한",
			Dos:   []string{"정해진 양의 단백질", "칼륨 조절 채소", "적정 수분"},
			Donts: []string{"고칼륨 과일", "가공육", "고인산 식품"},
		},
	}
}

// HealthyMeals provides the general wellness list.
func HealthyMeals() []HealthyMeal {
	return []HealthyMeal{
		{Title: "지중해식 샐러드", Calories: "320kcal", Tag: "항산화", Image: img("1540189549336-e6e99c3679fe")},
		{Title: "수비드 닭가슴살 한끼", Calories: "410kcal", Tag: "고단백", Image: img("1467003909585-2f8a72700288")},
		{Title: "구운 야채와 현미밥", Calories: "380kcal", Tag: "식이섬유", Image: img("1547592166-23ac45744acd")},
		{Title: "연어 스테이크 정식", Calories: "450kcal", Tag: "오메가3", Image: img("1467003909585-2f8a72700288")},
	}
}
