package entity

// RawProtocol is one entry of the upstream all_complex_protocol_list response.
type RawProtocol struct {
	Name           string             `json:"name"`
	LogoURL        string             `json:"logo_url"`
	PortfolioItems []RawPortfolioItem `json:"portfolio_item_list"`
}

// RawPortfolioItem is a single position inside a protocol (lending, LP, staking).
type RawPortfolioItem struct {
	Name   string           `json:"name"`
	Stats  RawPositionStats `json:"stats"`
	Detail RawPositionLegs  `json:"detail"`
}

// RawPositionStats carries the net USD value the upstream computed for a position.
type RawPositionStats struct {
	NetUSDValue float64 `json:"net_usd_value"`
}

// RawPositionLegs holds the supply/borrow token legs of a position. Both sides
// participate in the ETH exposure delta: supply adds, borrow subtracts.
type RawPositionLegs struct {
	SupplyTokens []RawLeg `json:"supply_token_list"`
	BorrowTokens []RawLeg `json:"borrow_token_list"`
}

// RawLeg is one token leg of a position.
type RawLeg struct {
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
}

// ProtocolValue is a protocol display name with its accumulated net value.
type ProtocolValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
