package commission

// Zero implements Model with no transaction cost.
type Zero struct{}

// NewZero creates a zero commission model.
func NewZero() *Zero {
	return &Zero{}
}

// Calculate implements Model.
func (c *Zero) Calculate(size float64, price float64, isSell bool) float64 {
	return 0.0
}
