package catalog

func ptr(v float64) *float64 { return &v }

// Builtin returns the fixed capability set for the coaching domain: body
// metrics, workouts, meals, coaching notes, behavior logs, and documents.
func Builtin() *Catalog {
	return MustNew(
		Capability{
			Name:        "create_health_metric",
			Description: "Record a body measurement such as weight or body fat.",
			ConfirmText: "Here's the health metric I'd like to record:",
			Fields: []Field{
				{Name: "date", Type: FieldDate, Description: "Date of the measurement", Required: true},
				{Name: "weight", Type: FieldNumber, Description: "Body weight in pounds", Min: ptr(50), Max: ptr(1000)},
				{Name: "body_fat_percent", Type: FieldNumber, Description: "Body fat percentage", Min: ptr(1), Max: ptr(70)},
				{Name: "notes", Type: FieldText, Description: "Optional context for the measurement"},
			},
		},
		Capability{
			Name:        "create_workout",
			Description: "Record a completed workout session.",
			ConfirmText: "Here's the workout I'd like to record:",
			Fields: []Field{
				{Name: "date", Type: FieldDate, Description: "Date of the workout", Required: true},
				{Name: "type", Type: FieldEnum, Description: "Kind of workout", Values: []string{"strength", "cardio", "mobility", "sport", "other"}, Required: true},
				{Name: "duration_minutes", Type: FieldNumber, Description: "Duration in minutes", Min: ptr(1), Max: ptr(600), Required: true},
				{Name: "intensity", Type: FieldNumber, Description: "Perceived intensity", Min: ptr(1), Max: ptr(10)},
				{Name: "notes", Type: FieldText, Description: "Exercises, sets, anything notable"},
			},
		},
		Capability{
			Name:        "create_meal",
			Description: "Record a meal or snack.",
			ConfirmText: "Here's the meal I'd like to record:",
			Fields: []Field{
				{Name: "date", Type: FieldDate, Description: "Date of the meal", Required: true},
				{Name: "name", Type: FieldText, Description: "What was eaten", Required: true},
				{Name: "calories", Type: FieldNumber, Description: "Estimated calories", Min: ptr(0), Max: ptr(10000)},
				{Name: "protein_grams", Type: FieldNumber, Description: "Protein in grams", Min: ptr(0), Max: ptr(1000)},
				{Name: "carbs_grams", Type: FieldNumber, Description: "Carbohydrates in grams", Min: ptr(0), Max: ptr(1000)},
				{Name: "fat_grams", Type: FieldNumber, Description: "Fat in grams", Min: ptr(0), Max: ptr(1000)},
				{Name: "notes", Type: FieldText, Description: "Optional context for the meal"},
			},
		},
		Capability{
			Name:        "create_coaching_note",
			Description: "Record a coaching observation or recommendation.",
			ConfirmText: "Here's the coaching note I'd like to record:",
			Fields: []Field{
				{Name: "date", Type: FieldDate, Description: "Date the note applies to", Required: true},
				{Name: "topic", Type: FieldText, Description: "Short topic for the note", Required: true},
				{Name: "note", Type: FieldText, Description: "The note body", Required: true},
			},
		},
		Capability{
			Name:        "create_behavior_log",
			Description: "Record a habit or behavior observation.",
			ConfirmText: "Here's the behavior entry I'd like to record:",
			Fields: []Field{
				{Name: "date", Type: FieldDate, Description: "Date of the behavior", Required: true},
				{Name: "behavior", Type: FieldText, Description: "The behavior observed", Required: true},
				{Name: "rating", Type: FieldNumber, Description: "Adherence or quality rating", Min: ptr(1), Max: ptr(10)},
				{Name: "triggers", Type: FieldTextList, Description: "Triggers or context tags"},
			},
		},
		Capability{
			Name:        "create_document",
			Description: "Store a free-form document such as a plan or summary.",
			ConfirmText: "Here's the document I'd like to store:",
			Fields: []Field{
				{Name: "title", Type: FieldText, Description: "Document title", Required: true},
				{Name: "content", Type: FieldText, Description: "Document body", Required: true},
				{Name: "tags", Type: FieldTextList, Description: "Classification tags"},
			},
		},
	)
}
