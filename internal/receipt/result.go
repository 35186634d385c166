package receipt

// Item is a single line item extracted from the receipt's order summary.
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Result is the structured order record produced for one logical receipt.
// Recoverable extraction problems accumulate in Errors; IsValid is true only
// when a vendor keyword was found and Errors is empty.
type Result struct {
	OrderNumber string   `json:"order_number"`
	Restaurant  string   `json:"restaurant"`
	Items       []Item   `json:"items"`
	Subtotal    float64  `json:"subtotal"`
	Total       float64  `json:"total"`
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
}
