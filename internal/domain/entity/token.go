package entity

// RawToken is one entry of the upstream all_token_list response.
type RawToken struct {
	ID      string  `json:"id" yaml:"id"`
	Symbol  string  `json:"symbol" yaml:"symbol"`
	Name    string  `json:"name" yaml:"name"`
	Amount  float64 `json:"amount" yaml:"amount"`
	Price   float64 `json:"price" yaml:"price"`
	LogoURL string  `json:"logo_url" yaml:"logoUrl"`
}

// HoldingSource marks where a holding's value was observed.
type HoldingSource string

const (
	SourceWallet   HoldingSource = "wallet"
	SourceProtocol HoldingSource = "protocol"
)

// Holding is a normalized, aggregation-keyed position. Wallet tokens merge by
// display name across wallets; protocol positions are keyed "protocol: position".
type Holding struct {
	Symbol   string        `json:"symbol"`
	Name     string        `json:"name"`
	Amount   float64       `json:"amount"`
	Price    float64       `json:"price"`
	USDValue float64       `json:"usdValue"`
	LogoURL  string        `json:"logoUrl,omitempty"`
	Source   HoldingSource `json:"source"`
	Protocol string        `json:"protocol,omitempty"`
}
