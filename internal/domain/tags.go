package domain

// Canonical defect and behavior tag vocabulary. Every tag belongs to
// exactly one grade or difficulty category.

// GradeTags maps each grade to the defect tags that imply it.
var GradeTags = map[Grade][]string{
	GradeA: {
		"zero or one minor cosmetic flaw in final fold",
	},
	GradeB: {
		"rolled edge",
		"unfolded or flipped corner",
		"misaligned edge (> 1 inch)",
		"partial unfold during place",
		"other cosmetic issue in final fold",
		"inaccurate placement",
	},
	GradeC: {
		"failure to fold or place",
		"chaotic or uncertain movements",
		"inefficient path to fold",
		"complicated in-hand manipulation",
		"hand holding towel out of view",
	},
}

// DifficultyTags maps each difficulty to its behavior tags.
var DifficultyTags = map[Difficulty][]string{
	DifficultyHard: {
		"messy initial grab",
		"double grab/pinch",
		"dropped corner",
		"multiple tries for one motion",
		"more than 6 sec from grab to pre-fold layout",
	},
	DifficultyEasy: {
		"all motions logical and efficient",
	},
}

// TimeOptions are the episode duration buckets offered by the wizard,
// indexed by towel count minus one.
var TimeOptions = []string{
	"19 – 30 sec",
	"38 sec – 1 min 1 sec",
	"57 sec – 1 min 32 sec",
}
