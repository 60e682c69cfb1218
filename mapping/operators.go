package mapping

// OperatorMap maps the comparison operators of the accepted SQL subset to MongoDB query operators.
// Usage: OperatorMap["<="] returns "$lte"
var OperatorMap = map[string]string{
	"=":  "$eq",
	"!=": "$ne",
	">":  "$gt",
	"<":  "$lt",
	">=": "$gte",
	"<=": "$lte",
}

// IsComparisonOperator reports whether op is one of the six supported comparison operators.
func IsComparisonOperator(op string) bool {
	_, ok := OperatorMap[op]
	return ok
}

// MongoOperator returns the MongoDB operator for op.
func MongoOperator(op string) (string, bool) {
	mongoOp, ok := OperatorMap[op]
	return mongoOp, ok
}
