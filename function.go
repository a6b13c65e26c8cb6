package geolingo

func function(name string, args ...interface{}) expression {
	return expression{builder: func(scope scope) (string, error) {
		valuesSql, err := commaValues(scope, args)
		if err != nil {
			return "", err
		}
		return name + "(" + valuesSql + ")", nil
	}}
}

// Function creates an expression of the call of the specified function.
func Function(name string, args ...interface{}) Expression {
	return function(name, args...)
}

// Count creates an expression of COUNT aggregator.
func Count(arg interface{}) NumberExpression {
	return function("COUNT", arg)
}

// Sum creates an expression of SUM aggregator.
func Sum(arg interface{}) NumberExpression {
	return function("SUM", arg)
}

// spatialFunction calls the dialect's function for op. The name is looked up
// when the SQL is generated, so the same expression renders for any database.
func spatialFunction(op spatialOp, args ...interface{}) expression {
	return expression{builder: func(scope scope) (string, error) {
		name, err := scope.dialect().functionName(op)
		if err != nil {
			return "", err
		}
		valuesSql, err := commaValues(scope, args)
		if err != nil {
			return "", err
		}
		return name + "(" + valuesSql + ")", nil
	}}
}
