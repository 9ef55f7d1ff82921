package market

import "time"

// OptionKind 期权类型："call" 或 "put"。
type OptionKind string

const (
	KindCall OptionKind = "call"
	KindPut  OptionKind = "put"
)

// InstrumentType distinguishes the hedgeable underlying from its options.
type InstrumentType string

const (
	TypeStock  InstrumentType = "stock"
	TypeOption InstrumentType = "option"
)

// Instrument is one tradeable product on the exchange.
// Expiry, Strike and Kind are only meaningful for options.
type Instrument struct {
	ID     string
	Type   InstrumentType
	Expiry time.Time
	Strike float64
	Kind   OptionKind
}

// Stock builds a stock instrument.
func Stock(id string) Instrument {
	return Instrument{ID: id, Type: TypeStock}
}

// Option builds an option instrument.
func Option(id string, expiry time.Time, strike float64, kind OptionKind) Instrument {
	return Instrument{ID: id, Type: TypeOption, Expiry: expiry, Strike: strike, Kind: kind}
}
