package commission

// Model computes the transaction cost of a single fill. Implementations
// must be pure: no side effects and safe for concurrent use.
type Model interface {
	// Calculate returns the fee in CNY for a fill of the given size and
	// price. isSell selects sell-side charges such as stamp duty.
	Calculate(size float64, price float64, isSell bool) float64
}

type Broker string

const (
	BrokerAStock Broker = "a_stock"
	BrokerZero   Broker = "zero_commission"
)

var AllBrokers = []Broker{
	BrokerAStock,
	BrokerZero,
}

// GetModel returns the commission model for the given broker tag.
// Unknown tags fall back to the A-share model.
func GetModel(broker Broker) Model {
	switch broker {
	case BrokerAStock:
		return NewAStock()
	case BrokerZero:
		return NewZero()
	default:
		return NewAStock()
	}
}
