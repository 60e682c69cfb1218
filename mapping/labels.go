package mapping

// Verdict labels answered by the statement classifier.
const (
	VerdictSafe      = "SAFE"
	VerdictMalicious = "MALICIOUS"
)

// VerdictLabels is the closed label set of the statement classifier.
var VerdictLabels = []string{VerdictSafe, VerdictMalicious}

// Analytics action labels answered by the question classifier.
const (
	ActionCountAttacks       = "COUNT_ATTACKS"
	ActionFetchLogs          = "FETCH_LOGS"
	ActionMostFrequentAttack = "MOST_FREQUENT_ATTACK"
	ActionAttackTrends       = "ATTACK_TRENDS"
	ActionComparisonStats    = "COMPARISON_STATS"
	ActionAnomalyDetection   = "ANOMALY_DETECTION"
	ActionUnknown            = "UNKNOWN"
)

// ActionLabels is the closed label set of the question classifier, in prompt order.
var ActionLabels = []string{
	ActionCountAttacks,
	ActionFetchLogs,
	ActionMostFrequentAttack,
	ActionAttackTrends,
	ActionComparisonStats,
	ActionAnomalyDetection,
	ActionUnknown,
}
