package trigger

// Category classifies what kind of durable fact a trigger detected.
// Categories drive how a memory is labeled at storage time and are
// ordered by priority in the built-in rule table: Important beats
// Health beats Preference beats Personal when several rules match.
type Category string

const (
	// CategoryImportant covers explicit "remember this" requests. These
	// always outrank implicit detections because the user asked directly.
	CategoryImportant Category = "important"

	// CategoryHealth covers allergies, conditions, and medication.
	CategoryHealth Category = "health"

	// CategoryPreference covers likes, dislikes, and habits.
	CategoryPreference Category = "preference"

	// CategoryPersonal covers identity facts: name, job, workplace.
	CategoryPersonal Category = "personal"
)

// ValidCategories maps valid category strings to their typed values.
var ValidCategories = map[string]Category{
	"important":  CategoryImportant,
	"health":     CategoryHealth,
	"preference": CategoryPreference,
	"personal":   CategoryPersonal,
}

// IsValidCategory returns true if the string is a recognized category.
func IsValidCategory(s string) bool {
	_, ok := ValidCategories[s]
	return ok
}
