package entity

// WalletSpec identifies one tracked wallet as configured.
type WalletSpec struct {
	Address string `json:"address" yaml:"address"`
	Name    string `json:"name"    yaml:"name"`
	Icon    string `json:"icon,omitempty" yaml:"icon"`
	Emoji   string `json:"emoji,omitempty" yaml:"emoji"`
}

// StaticWallet is a configured wallet whose value is not fetched from any API;
// its balance and synthetic token entries come straight from configuration.
type StaticWallet struct {
	WalletSpec   `yaml:",inline"`
	TotalBalance float64    `json:"totalBalance" yaml:"totalBalance"`
	Tokens       []RawToken `json:"tokens"       yaml:"tokens"`
}

// WalletResult is the raw fetch result for one wallet before aggregation.
type WalletResult struct {
	WalletSpec
	TotalBalance float64
	Tokens       []RawToken
	Protocols    []RawProtocol
	IsStatic     bool
}

// WalletSummary is the per-wallet line of the aggregate snapshot.
type WalletSummary struct {
	Address      string  `json:"address"`
	Name         string  `json:"name"`
	Emoji        string  `json:"emoji,omitempty"`
	TotalBalance float64 `json:"totalBalance"`
	IsStatic     bool    `json:"isStatic,omitempty"`
}

// WalletError records a wallet whose fetch failed during a refresh cycle.
type WalletError struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Message string `json:"message"`
}
