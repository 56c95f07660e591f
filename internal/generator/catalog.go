package generator

// Category groups topics by the kind of cause they describe. Policies weight
// categories, not individual topics.
type Category string

const (
	CategoryPhysiological Category = "physiological"
	CategoryNutritional   Category = "nutritional"
	CategoryBehavioral    Category = "behavioral"
	CategoryLifestyle     Category = "lifestyle"
	CategoryPsychological Category = "psychological"
)

// Topic is one bucket a query can be classified into. Keywords are matched
// against query tokens as prefixes, so "exhaust" matches "exhausted".
type Topic struct {
	Label    string
	Category Category
	Keywords []string
}

// Catalog is the ordered topic list. Order breaks ties between equally
// strong matches, which keeps classification deterministic.
var Catalog = []Topic{
	{
		Label:    "energy",
		Category: CategoryPhysiological,
		Keywords: []string{"tired", "fatigue", "exhaust", "energy", "sleepy", "drained", "letharg", "slump", "drowsy", "weary", "worn"},
	},
	{
		Label:    "sleep",
		Category: CategoryPhysiological,
		Keywords: []string{"sleep", "insomnia", "awake", "nap", "bedtime", "rest", "snor", "wake"},
	},
	{
		Label:    "hydration",
		Category: CategoryPhysiological,
		Keywords: []string{"water", "thirst", "dehydrat", "drink", "headache", "dizzy"},
	},
	{
		Label:    "nutrition",
		Category: CategoryNutritional,
		Keywords: []string{"eat", "food", "meal", "diet", "sugar", "lunch", "breakfast", "dinner", "snack", "hungry", "carb", "caffeine", "coffee"},
	},
	{
		Label:    "digestion",
		Category: CategoryNutritional,
		Keywords: []string{"stomach", "bloat", "digest", "nausea", "gut", "cramp"},
	},
	{
		Label:    "exercise",
		Category: CategoryLifestyle,
		Keywords: []string{"exercise", "workout", "gym", "walk", "run", "sedentary", "sitting", "train", "sport"},
	},
	{
		Label:    "daily routine",
		Category: CategoryBehavioral,
		Keywords: []string{"afternoon", "morning", "evening", "routine", "habit", "daily", "weekend", "every"},
	},
	{
		Label:    "work schedule",
		Category: CategoryBehavioral,
		Keywords: []string{"work", "job", "meeting", "shift", "office", "deadline", "commute", "overtime"},
	},
	{
		Label:    "screen time",
		Category: CategoryBehavioral,
		Keywords: []string{"screen", "phone", "computer", "laptop", "scroll", "tv", "gaming", "monitor"},
	},
	{
		Label:    "stress",
		Category: CategoryPsychological,
		Keywords: []string{"stress", "anxious", "anxiety", "overwhelm", "pressure", "worry", "tense", "burnout"},
	},
	{
		Label:    "mood",
		Category: CategoryPsychological,
		Keywords: []string{"sad", "mood", "unmotivated", "down", "irritab", "lonely", "depress"},
	},
	{
		Label:    "social life",
		Category: CategoryLifestyle,
		Keywords: []string{"friend", "family", "partner", "social", "alone", "isolat"},
	},
}

// topicIndex maps labels to catalog positions.
var topicIndex = func() map[string]int {
	m := make(map[string]int, len(Catalog))
	for i, t := range Catalog {
		m[t.Label] = i
	}
	return m
}()

// LookupTopic returns the catalog topic with the given label.
func LookupTopic(label string) (Topic, bool) {
	i, ok := topicIndex[label]
	if !ok {
		return Topic{}, false
	}
	return Catalog[i], true
}
