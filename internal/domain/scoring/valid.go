package scoring

func (u Unit) Valid() bool {
	switch u {
	case UnitBinary, UnitPercentage, UnitNumeric:
		return true
	}
	return false
}

func (o Operator) Valid() bool {
	switch o {
	case OpGreaterOrEqual, OpGreater, OpLessOrEqual, OpLess, OpEqual:
		return true
	}
	return false
}

func (a Accumulation) Valid() bool {
	return a == PerPeriod || a == Cumulative
}

func (c ClosureRule) Valid() bool {
	switch c {
	case ClosureAverage, ClosureLastPeriod, ClosureThresholdCount:
		return true
	}
	return false
}
