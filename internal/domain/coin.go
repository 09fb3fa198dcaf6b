package domain

// Coin is a catalog entry for a tradable market. The cash market ("KRW") is
// modeled as a coin too so the ledger can hold the cash leg under the same key
// scheme.
type Coin struct {
	Market      string
	KoreanName  string
	EnglishName string
}
