package fiscal

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is a typed string identifying a transaction command.
type Kind string

// Kinds of transactions the ledger records.
const (
	KindBuy         Kind = "buy"
	KindSell        Kind = "sell"
	KindTransferIn  Kind = "transfer-in"
	KindTransferOut Kind = "transfer-out"
)

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBuy, KindSell, KindTransferIn, KindTransferOut:
		return Kind(s), nil
	default:
		return "", invalidf("unknown transaction kind %q", s)
	}
}

// Transaction is the common interface of all ledger records.
//
// Transactions are immutable once recorded: the replay engine derives every
// state from them and never writes back.
type Transaction interface {
	ID() string     // unique identifier, assigned at creation
	What() Kind     // command type ("buy", "sell", ...)
	When() Date     // date on which the transaction occurred
	Ticker() string // security ticker
	Equal(Transaction) bool
	Validate() error
}

// baseTx carries the fields common to all transactions.
type baseTx struct {
	TxID     string
	Command  Kind
	Date     Date
	Security string
	Name     string // optional display name of the security
}

func (t baseTx) ID() string     { return t.TxID }
func (t baseTx) What() Kind     { return t.Command }
func (t baseTx) When() Date     { return t.Date }
func (t baseTx) Ticker() string { return t.Security }

// validate checks the fields every transaction must carry.
func (t baseTx) validate() error {
	if t.Security == "" {
		return invalidf("%s transaction is missing a ticker", t.Command)
	}
	if t.Date.IsZero() {
		return invalidf("%s transaction of %s is missing a date", t.Command, t.Security)
	}
	return nil
}

// newBaseTx assigns a fresh id; decoding from storage keeps the stored one.
func newBaseTx(kind Kind, day Date, ticker, name string) baseTx {
	return baseTx{TxID: uuid.NewString(), Command: kind, Date: day, Security: ticker, Name: name}
}

// tradeTx carries the quantity/price/commission triple shared by Buy, Sell
// and TransferIn.
type tradeTx struct {
	baseTx
	Quantity   Quantity
	Price      Money // unit price
	Commission Money
}

func (t tradeTx) validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return invalidf("%s transaction of %s quantity must be positive, got %s", t.Command, t.Security, t.Quantity)
	}
	if t.Price.IsNegative() {
		return invalidf("%s transaction of %s price must not be negative, got %s", t.Command, t.Security, t.Price)
	}
	if t.Commission.IsNegative() {
		return invalidf("%s transaction of %s commission must not be negative, got %s", t.Command, t.Security, t.Commission)
	}
	return nil
}

// Currency returns the currency the trade is denominated in.
func (t tradeTx) Currency() string { return t.Price.Currency() }

// GrossAmount is quantity times unit price, commission excluded.
func (t tradeTx) GrossAmount() Money { return t.Price.Mul(t.Quantity) }

// Buy represents the acquisition of a quantity of a security.
type Buy struct {
	tradeTx
}

// NewBuy creates a new Buy transaction.
func NewBuy(day Date, ticker, name string, quantity Quantity, price, commission Money) Buy {
	return Buy{tradeTx{baseTx: newBaseTx(KindBuy, day, ticker, name), Quantity: quantity, Price: price, Commission: commission}}
}

// Cost returns the commission-inclusive acquisition cost of the lot.
func (t Buy) Cost() Money { return t.GrossAmount().Add(t.Commission) }

func (t Buy) Validate() error { return t.tradeTx.validate() }

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.baseTx == o.baseTx && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Commission.Equal(o.Commission)
}

// Sell represents the disposal of a quantity of a security.
//
// GainOverride, when valid, is the realized gain already converted to the
// accounting currency (e.g. computed by the broker for a foreign-currency
// sale). It takes precedence over the price-based computation.
type Sell struct {
	tradeTx
	GainOverride decimal.NullDecimal
}

// NewSell creates a new Sell transaction.
func NewSell(day Date, ticker, name string, quantity Quantity, price, commission Money) Sell {
	return Sell{tradeTx: tradeTx{baseTx: newBaseTx(KindSell, day, ticker, name), Quantity: quantity, Price: price, Commission: commission}}
}

// WithGainOverride returns a copy of the sell carrying a pre-converted
// accounting-currency realized gain.
func (t Sell) WithGainOverride(gain decimal.Decimal) Sell {
	t.GainOverride = decimal.NullDecimal{Decimal: gain, Valid: true}
	return t
}

// NetProceeds is quantity times unit price, minus commission.
func (t Sell) NetProceeds() Money { return t.GrossAmount().Sub(t.Commission) }

func (t Sell) Validate() error { return t.tradeTx.validate() }

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.baseTx == o.baseTx && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Commission.Equal(o.Commission) &&
		t.GainOverride.Valid == o.GainOverride.Valid &&
		t.GainOverride.Decimal.Equal(o.GainOverride.Decimal)
}

// TransferIn represents units arriving from another fund in a fiscally
// neutral transfer (traspaso). The lot enters the book at the inherited
// fiscal cost basis, not at the transfer-day market price.
type TransferIn struct {
	tradeTx
	CostBasis Money // inherited fiscal cost of the transferred units; zero means unknown
}

// NewTransferIn creates a new TransferIn transaction. A zero costBasis means
// the inherited cost is unknown and the transfer price is used instead.
func NewTransferIn(day Date, ticker, name string, quantity Quantity, price, costBasis Money) TransferIn {
	return TransferIn{
		tradeTx:   tradeTx{baseTx: newBaseTx(KindTransferIn, day, ticker, name), Quantity: quantity, Price: price},
		CostBasis: costBasis,
	}
}

// LotCost returns the fiscal cost the incoming lot carries: the inherited
// cost basis when supplied, the transfer gross amount otherwise.
func (t TransferIn) LotCost() Money {
	if t.CostBasis.IsPositive() {
		return t.CostBasis
	}
	return t.GrossAmount()
}

func (t TransferIn) Validate() error {
	if err := t.tradeTx.validate(); err != nil {
		return err
	}
	if t.CostBasis.IsNegative() {
		return invalidf("transfer-in of %s cost basis must not be negative, got %s", t.Security, t.CostBasis)
	}
	return nil
}

func (t TransferIn) Equal(other Transaction) bool {
	o, ok := other.(TransferIn)
	return ok && t.baseTx == o.baseTx && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.CostBasis.Equal(o.CostBasis)
}

// TransferOut represents units leaving for another fund in a fiscally
// neutral transfer. It realizes no gain: every open lot is reduced
// proportionally, carrying its cost along.
type TransferOut struct {
	baseTx
	Quantity Quantity
	Price    Money // transfer-day unit price, informational only
}

// NewTransferOut creates a new TransferOut transaction.
func NewTransferOut(day Date, ticker, name string, quantity Quantity, price Money) TransferOut {
	return TransferOut{baseTx: newBaseTx(KindTransferOut, day, ticker, name), Quantity: quantity, Price: price}
}

func (t TransferOut) Validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return invalidf("transfer-out of %s quantity must be positive, got %s", t.Security, t.Quantity)
	}
	if t.Price.IsNegative() {
		return invalidf("transfer-out of %s price must not be negative, got %s", t.Security, t.Price)
	}
	return nil
}

func (t TransferOut) Equal(other Transaction) bool {
	o, ok := other.(TransferOut)
	return ok && t.baseTx == o.baseTx && t.Quantity.Equal(o.Quantity) && t.Price.Equal(o.Price)
}
