package assistant

// Commerce value objects threaded through the transaction intents. The SDK
// validates required-field presence only; pricing and tax semantics belong
// to the integrating application.

// Price is an amount in a currency, split into whole units and nanos.
type Price struct {
	Type         string // "ESTIMATE" or "ACTUAL"
	CurrencyCode string
	Units        int64
	Nanos        int32
}

// Merchant identifies the selling party on a cart.
type Merchant struct {
	ID   string
	Name string
}

// LineItem is one purchasable entry of a cart.
type LineItem struct {
	id       string
	name     string
	itemType string
	quantity int
	price    *Price
	built    bool
}

// NewLineItem starts a line item draft with its id and display name.
func NewLineItem(id, name string) *LineItem {
	return &LineItem{id: id, name: name, quantity: 1}
}

func (li *LineItem) SetType(itemType string) *LineItem {
	if li.built {
		return li
	}
	li.itemType = itemType
	return li
}

func (li *LineItem) SetQuantity(quantity int) *LineItem {
	if li.built {
		return li
	}
	li.quantity = quantity
	return li
}

func (li *LineItem) SetPrice(p Price) *LineItem {
	if li.built {
		return li
	}
	p2 := p
	li.price = &p2
	return li
}

// Build validates required fields.
func (li *LineItem) Build() (*LineItem, error) {
	if li.id == "" {
		return nil, invalidShape("lineItem.id", "must not be empty")
	}
	if li.name == "" {
		return nil, invalidShape("lineItem.name", "must not be empty")
	}
	if li.quantity < 1 {
		return nil, invalidShape("lineItem.quantity", "must be at least 1")
	}
	li.built = true
	return li, nil
}

// Cart holds the line items of a proposed order.
type Cart struct {
	merchant  *Merchant
	lineItems []*LineItem
	notes     string
	built     bool
}

// NewCart starts an empty cart draft.
func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) SetMerchant(id, name string) *Cart {
	if c.built {
		return c
	}
	c.merchant = &Merchant{ID: id, Name: name}
	return c
}

func (c *Cart) SetNotes(notes string) *Cart {
	if c.built {
		return c
	}
	c.notes = notes
	return c
}

// AddLineItem appends a line item; validation is deferred to Build.
func (c *Cart) AddLineItem(item *LineItem) *Cart {
	if c.built {
		return c
	}
	c.lineItems = append(c.lineItems, item)
	return c
}

// Build validates the cart: at least one valid line item.
func (c *Cart) Build() (*Cart, error) {
	if len(c.lineItems) == 0 {
		return nil, invalidShape("cart.lineItems", "at least one line item is required")
	}
	for _, li := range c.lineItems {
		if _, err := li.Build(); err != nil {
			return nil, err
		}
	}
	c.built = true
	return c, nil
}

// Order is the proposed order put in front of the user on a transaction
// decision.
type Order struct {
	id         string
	cart       *Cart
	totalPrice *Price
	built      bool
}

// NewOrder starts an order draft with the integrator-chosen order id.
func NewOrder(id string) *Order {
	return &Order{id: id}
}

func (o *Order) SetCart(cart *Cart) *Order {
	if o.built {
		return o
	}
	o.cart = cart
	return o
}

func (o *Order) SetTotalPrice(p Price) *Order {
	if o.built {
		return o
	}
	p2 := p
	o.totalPrice = &p2
	return o
}

// Build validates the order: id and a valid cart are required.
func (o *Order) Build() (*Order, error) {
	if o.id == "" {
		return nil, invalidShape("order.id", "must not be empty")
	}
	if o.cart == nil {
		return nil, invalidShape("order.cart", "is required")
	}
	if _, err := o.cart.Build(); err != nil {
		return nil, err
	}
	o.built = true
	return o, nil
}

// Order update states reported back to the platform after a transaction
// decision.
const (
	OrderStateCreated   = "CREATED"
	OrderStateConfirmed = "CONFIRMED"
	OrderStateRejected  = "REJECTED"
	OrderStateCancelled = "CANCELLED"
)

// OrderUpdate reports an order's new state, attached to a final response
// after the user decided on a transaction.
type OrderUpdate struct {
	orderID string
	state   string
	label   string
	built   bool
}

// NewOrderUpdate starts an order update draft. label is the user-visible
// state description.
func NewOrderUpdate(orderID, state, label string) *OrderUpdate {
	return &OrderUpdate{orderID: orderID, state: state, label: label}
}

// Build validates required fields.
func (u *OrderUpdate) Build() (*OrderUpdate, error) {
	if u.orderID == "" {
		return nil, invalidShape("orderUpdate.orderId", "must not be empty")
	}
	if u.state == "" {
		return nil, invalidShape("orderUpdate.state", "must not be empty")
	}
	u.built = true
	return u, nil
}

// OrderOptions requests extra data alongside a transaction intent.
type OrderOptions struct {
	RequestDeliveryAddress bool
}
