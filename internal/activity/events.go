package activity

const (
	EventGuestCartMerged      = "GuestCartMerged"
	EventGuestCartMergeFailed = "GuestCartMergeFailed"
	EventCheckoutStarted      = "CheckoutStarted"
	EventCheckoutSucceeded    = "CheckoutSucceeded"
	EventCheckoutFailed       = "CheckoutFailed"
)

type GuestCartMerged struct {
	Identity string `json:"identity"`
	Lines    int    `json:"lines"`
}

type GuestCartMergeFailed struct {
	Identity  string `json:"identity"`
	Merged    int    `json:"merged"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason"`
}

type CheckoutStarted struct {
	Amount string `json:"amount,omitempty"`
}

type CheckoutSucceeded struct {
	OrderID int64 `json:"order_id"`
}

type CheckoutFailed struct {
	OrderID int64  `json:"order_id,omitempty"`
	Stage   string `json:"stage"`
	Reason  string `json:"reason"`
}
