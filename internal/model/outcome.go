package model

// Outcome is the rendered result of a single check, shown in its panel.
type Outcome struct {
	Panel   string
	Passed  bool
	Content string
}
