package models

// FoodCategory is one of the fixed food groups.
type FoodCategory string

const (
	FoodFruits     FoodCategory = "fruits"
	FoodVegetables FoodCategory = "vegetables"
	FoodMeat       FoodCategory = "meat"
	FoodCarbs      FoodCategory = "carbs"
	FoodSweet      FoodCategory = "sweet"
	FoodSalty      FoodCategory = "salty"
)

// ActivityType is one of the fixed activity kinds.
type ActivityType string

const (
	ActivityScreens ActivityType = "screens"
	ActivityDance   ActivityType = "dance"
	ActivitySchool  ActivityType = "school"
	ActivityOutside ActivityType = "outside"
	ActivityToys    ActivityType = "toys"
	ActivityArts    ActivityType = "arts"
)

// Emotion is one of the fixed moods.
type Emotion string

const (
	EmotionSleepy  Emotion = "sleepy"
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionAngry   Emotion = "angry"
	EmotionAnxious Emotion = "anxious"
	EmotionCalm    Emotion = "calm"
	EmotionExcited Emotion = "excited"
	EmotionBored   Emotion = "bored"
)

// Kind selects one of the three collections of a DailyEntry.
type Kind string

const (
	KindFood     Kind = "foods"
	KindActivity Kind = "activities"
	KindMood     Kind = "moods"
)

type categoryInfo struct {
	name  string
	emoji string
	label string
}

var catalog = map[Kind][]categoryInfo{
	KindFood: {
		{string(FoodFruits), "🍎", "Fruits"},
		{string(FoodVegetables), "🥦", "Vegetables"},
		{string(FoodMeat), "🥩", "Meat/Protein"},
		{string(FoodCarbs), "🍞", "Carbs"},
		{string(FoodSweet), "🍪", "Sweet Snacks"},
		{string(FoodSalty), "🥨", "Salty Snacks"},
	},
	KindActivity: {
		{string(ActivityScreens), "📺", "Screens/TV/iPad"},
		{string(ActivityDance), "💃", "Dance"},
		{string(ActivitySchool), "🏫", "School"},
		{string(ActivityOutside), "🌳", "Play Outside"},
		{string(ActivityToys), "🧸", "Play with Toys"},
		{string(ActivityArts), "🎨", "Arts and Crafts"},
	},
	KindMood: {
		{string(EmotionSleepy), "😴", "Sleepy"},
		{string(EmotionHappy), "😊", "Happy"},
		{string(EmotionSad), "😢", "Sad"},
		{string(EmotionAngry), "😠", "Angry/Frustrated"},
		{string(EmotionAnxious), "😰", "Anxious/Worried"},
		{string(EmotionCalm), "😌", "Calm/Peaceful"},
		{string(EmotionExcited), "🤩", "Excited"},
		{string(EmotionBored), "😑", "Bored"},
	},
}

// Kinds returns the three collections in display order.
func Kinds() []Kind {
	return []Kind{KindFood, KindActivity, KindMood}
}

// ParseKind accepts the collection name or its singular form.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "foods", "food":
		return KindFood, true
	case "activities", "activity":
		return KindActivity, true
	case "moods", "mood":
		return KindMood, true
	}
	return "", false
}

// Title is the heading the entry form shows above a collection.
func (k Kind) Title() string {
	switch k {
	case KindFood:
		return "What You Ate"
	case KindActivity:
		return "What You Did"
	case KindMood:
		return "How You Felt"
	}
	return string(k)
}

// Categories returns the enumeration for k in canonical order.
func (k Kind) Categories() []string {
	infos := catalog[k]
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.name
	}
	return out
}

func (k Kind) lookup(category string) (categoryInfo, bool) {
	for _, info := range catalog[k] {
		if info.name == category {
			return info, true
		}
	}
	return categoryInfo{}, false
}

// Valid reports whether category belongs to k's enumeration.
func (k Kind) Valid(category string) bool {
	_, ok := k.lookup(category)
	return ok
}

// Emoji returns the fixed emoji for category, or "" when unknown.
func (k Kind) Emoji(category string) string {
	info, _ := k.lookup(category)
	return info.emoji
}

// Label returns the human label for category, falling back to the raw name.
func (k Kind) Label(category string) string {
	if info, ok := k.lookup(category); ok {
		return info.label
	}
	return category
}

// KindOf finds the collection a category belongs to. Category names are
// unique across the three enumerations.
func KindOf(category string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.Valid(category) {
			return k, true
		}
	}
	return "", false
}
