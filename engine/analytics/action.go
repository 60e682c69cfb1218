package analytics

import (
	"fmt"

	"github.com/omniql-engine/queryguard/capability"
	"github.com/omniql-engine/queryguard/mapping"
)

// Action is the intent of an analytics question.
type Action int

// All actions. Unknown is the fallback for any classifier answer outside the label set.
const (
	CountAttacks Action = iota
	FetchLogs
	MostFrequentAttack
	AttackTrends
	ComparisonStats
	AnomalyDetection
	Unknown
)

var actionLabels = map[Action]string{
	CountAttacks:       mapping.ActionCountAttacks,
	FetchLogs:          mapping.ActionFetchLogs,
	MostFrequentAttack: mapping.ActionMostFrequentAttack,
	AttackTrends:       mapping.ActionAttackTrends,
	ComparisonStats:    mapping.ActionComparisonStats,
	AnomalyDetection:   mapping.ActionAnomalyDetection,
	Unknown:            mapping.ActionUnknown,
}

// String returns the classifier label of a.
func (a Action) String() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// MarshalText encodes a as its label.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAction maps raw classifier output to an Action.
func ParseAction(raw string) Action {
	label, ok := capability.Match(raw, mapping.ActionLabels)
	if !ok {
		return Unknown
	}
	for action, l := range actionLabels {
		if l == label {
			return action
		}
	}
	return Unknown
}
