package types

// Comparison is the result of a three-way compare.
type Comparison int

const (
	LT Comparison = -1
	EQ Comparison = 0
	GT Comparison = 1
)

// String returns the symbolic name of the comparison.
func (c Comparison) String() string {
	switch c {
	case LT:
		return "LT"
	case EQ:
		return "EQ"
	case GT:
		return "GT"
	default:
		return "invalid"
	}
}
