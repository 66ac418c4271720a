package enums

// BeerOrderStatus is stored as free text; NEW is the only status the
// service assigns.
type BeerOrderStatus string

const BeerOrderStatusNew BeerOrderStatus = "NEW"

func (s BeerOrderStatus) String() string {
	return string(s)
}

// OrderLineStatus is stored as free text on each order line.
type OrderLineStatus string

const OrderLineStatusNew OrderLineStatus = "NEW"

func (s OrderLineStatus) String() string {
	return string(s)
}
