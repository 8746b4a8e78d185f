package badge

import "github.com/MiguelL1304/aquascape/internal/category"

// Catalog is the canonical badge list.
// Keep IDs stable: earned badges are stored by ID on the profile.
func Catalog() []Badge {
	return []Badge{
		{ID: "first_splash", Title: "First Splash", Description: "Complete your first task", Rule: RuleTaskCount, Threshold: 1},
		{ID: "tide_turner", Title: "Tide Turner", Description: "Complete 10 tasks", Rule: RuleTaskCount, Threshold: 10},
		{ID: "school_of_fish", Title: "School of Fish", Description: "Complete 50 tasks", Rule: RuleTaskCount, Threshold: 50},
		{ID: "ocean_master", Title: "Ocean Master", Description: "Complete 100 tasks", Rule: RuleTaskCount, Threshold: 100},

		{ID: "deep_breath", Title: "Deep Breath", Description: "Log 60 minutes of tasks", Rule: RuleMinutesLogged, Threshold: 60},
		{ID: "marathon_swimmer", Title: "Marathon Swimmer", Description: "Log 10 hours of tasks", Rule: RuleMinutesLogged, Threshold: 600},
		{ID: "abyss_explorer", Title: "Abyss Explorer", Description: "Log 50 hours of tasks", Rule: RuleMinutesLogged, Threshold: 3000},

		{ID: "busy_beaver", Title: "Busy Beaver", Description: "Complete 25 Work tasks", Rule: RuleCategoryCount, Category: category.Work, Threshold: 25},
		{ID: "wise_octopus", Title: "Wise Octopus", Description: "Complete 25 Study tasks", Rule: RuleCategoryCount, Category: category.Study, Threshold: 25},
		{ID: "swift_shark", Title: "Swift Shark", Description: "Complete 25 Fitness tasks", Rule: RuleCategoryCount, Category: category.Fitness, Threshold: 25},
		{ID: "tidy_crab", Title: "Tidy Crab", Description: "Complete 25 Chores tasks", Rule: RuleCategoryCount, Category: category.Chores, Threshold: 25},
		{ID: "calm_seal", Title: "Calm Seal", Description: "Complete 25 SelfCare tasks", Rule: RuleCategoryCount, Category: category.SelfCare, Threshold: 25},
	}
}
