package config

// CategoryWeights orders command categories in the help overview. Categories
// not listed come after these, alphabetically.
var CategoryWeights = map[string]int{
	"general": 0,
	"dota":    10,
	"music":   20,
}
