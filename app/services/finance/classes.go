package finance

import "strings"

// Sentinel class levels returned when a shift walks off the ladder.
const (
	ClassPreAdmission = "PRE-ADMISSION"
	ClassGraduated    = "GRADUATED"
)

// classLadder is the school's class progression, lowest to highest.
var classLadder = []string{
	"BABY", "MIDDLE", "TOP",
	"P.1", "P.2", "P.3", "P.4", "P.5", "P.6", "P.7",
}

// classAliases maps regional spelling variants to canonical ladder labels.
// Keys are compacted (uppercased, dots and spaces stripped).
var classAliases = map[string]string{
	"BABYCLASS":    "BABY",
	"NURSERY":      "BABY",
	"MIDDLECLASS":  "MIDDLE",
	"TOPCLASS":     "TOP",
	"PRIMARYONE":   "P.1",
	"PRIMARYTWO":   "P.2",
	"PRIMARYTHREE": "P.3",
	"PRIMARYFOUR":  "P.4",
	"PRIMARYFIVE":  "P.5",
	"PRIMARYSIX":   "P.6",
	"PRIMARYSEVEN": "P.7",
}

var classIndexByKey = buildClassIndex()

func buildClassIndex() map[string]int {
	index := make(map[string]int)
	for i, label := range classLadder {
		index[compactClassKey(label)] = i
	}
	for alias, label := range classAliases {
		for i, canonical := range classLadder {
			if canonical == label {
				index[alias] = i
			}
		}
	}
	return index
}

func compactClassKey(label string) string {
	key := strings.ToUpper(strings.TrimSpace(label))
	key = strings.ReplaceAll(key, ".", "")
	key = strings.ReplaceAll(key, " ", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

// NormalizeClass resolves a raw class label to its canonical ladder form.
// Unknown labels are returned trimmed and uppercased so they stay visible
// downstream instead of silently disappearing.
func NormalizeClass(label string) string {
	if idx, ok := classIndexByKey[compactClassKey(label)]; ok {
		return classLadder[idx]
	}
	return strings.ToUpper(strings.TrimSpace(label))
}

// ShiftClass moves a class label up or down the ladder by deltaYears.
// Below the ladder start yields PRE-ADMISSION; past the end yields
// GRADUATED. Labels not on the ladder come back unchanged (normalized).
func ShiftClass(label string, deltaYears int) string {
	normalized := NormalizeClass(label)
	idx, ok := classIndexByKey[compactClassKey(normalized)]
	if !ok {
		return normalized
	}
	shifted := idx + deltaYears
	switch {
	case shifted < 0:
		return ClassPreAdmission
	case shifted >= len(classLadder):
		return ClassGraduated
	default:
		return classLadder[shifted]
	}
}
