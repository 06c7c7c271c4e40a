package payment

// Method is how the user settles the order. Cash is deferred settlement:
// capture happens outside this client's control flow.
type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

func (m Method) Valid() bool {
	return m == MethodCash || m == MethodCard
}

// RequiresCapture reports whether the method needs an immediate payment
// capture during checkout.
func (m Method) RequiresCapture() bool {
	return m == MethodCard
}

// Card is a saved payment card as returned by the card provider.
type Card struct {
	ID         string `json:"id"`
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	HolderName string `json:"holderName"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
}

// Result is the payment service's answer. Declined payments come back with
// Success=false and Error set; they are not transport errors.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Error         string `json:"error,omitempty"`
}
