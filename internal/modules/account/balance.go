// Package account runs the broker balance view and the KIS credentials
// settings form.
package account

import (
	"context"
	"net/http"
	"strings"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CredentialsMissingMessage replaces the backend's 400 on the balance call
const CredentialsMissingMessage = "KIS API 인증 정보가 설정되지 않았습니다. 설정 페이지에서 먼저 설정해주세요."

var hundred = decimal.NewFromInt(100)

// BalanceBackend is the part of the resource client the balance view uses
type BalanceBackend interface {
	Balance(ctx context.Context) (*domain.KISBalance, error)
}

// Holding is one parsed position
type Holding struct {
	Name              string          `json:"name"`
	Symbol            string          `json:"symbol"`
	Quantity          int64           `json:"quantity"`
	AvgPrice          decimal.Decimal `json:"avg_price"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	MarketValue       decimal.Decimal `json:"market_value"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
	Weight            decimal.Decimal `json:"weight"`
}

// Summary is the parsed account summary
type Summary struct {
	TotalBalance      decimal.Decimal `json:"total_balance"`
	Cash              decimal.Decimal `json:"cash_balance"`
	Available         decimal.Decimal `json:"available_balance"`
	StockValue        decimal.Decimal `json:"stock_value"`
	TotalProfitLoss   decimal.Decimal `json:"total_profit_loss"`
	PurchaseTotal     decimal.Decimal `json:"purchase_total"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
	StockWeight       decimal.Decimal `json:"stock_weight"`
}

// Balance is the parsed broker balance. Summary is nil when the broker
// sent no summary row.
type Balance struct {
	Summary  *Summary  `json:"summary"`
	Holdings []Holding `json:"holdings"`
}

// ParseBalance converts the broker's string fields. Blank or malformed
// numbers read as zero.
func ParseBalance(raw domain.KISBalance) Balance {
	b := Balance{Holdings: make([]Holding, 0, len(raw.Output1))}

	if len(raw.Output2) > 0 {
		s := raw.Output2[0]
		sum := &Summary{
			TotalBalance:    parseAmount(s.TotalEvalAmount),
			Cash:            parseAmount(s.Deposit),
			Available:       parseAmount(s.Withdrawable),
			StockValue:      parseAmount(s.StockEvalAmount),
			TotalProfitLoss: parseAmount(s.EvalProfitLossTotal),
			PurchaseTotal:   parseAmount(s.PurchaseAmountTotal),
		}
		sum.ProfitLossPercent = percentOf(sum.TotalProfitLoss, sum.PurchaseTotal)
		sum.StockWeight = percentOf(sum.StockValue, sum.TotalBalance)
		b.Summary = sum
	}

	for _, h := range raw.Output1 {
		holding := Holding{
			Name:              strings.TrimSpace(h.ProductName),
			Symbol:            strings.TrimSpace(h.ProductNo),
			Quantity:          parseAmount(h.HoldingQty).IntPart(),
			AvgPrice:          parseAmount(h.PurchaseAvg),
			CurrentPrice:      parseAmount(h.CurrentPrice),
			MarketValue:       parseAmount(h.EvalAmount),
			ProfitLoss:        parseAmount(h.EvalProfitLoss),
			ProfitLossPercent: parseAmount(h.EvalProfitRate),
		}
		if b.Summary != nil {
			holding.Weight = percentOf(holding.MarketValue, b.Summary.StockValue)
		}
		b.Holdings = append(b.Holdings, holding)
	}
	return b
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// percentOf returns part/whole*100, or zero when whole is not positive
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// BalanceController holds the balance view
type BalanceController struct {
	backend BalanceBackend
	balance *fetchstate.Controller[struct{}, Balance]
}

// NewBalanceController creates an unmounted balance controller
func NewBalanceController(b BalanceBackend, em *events.Manager, log zerolog.Logger) *BalanceController {
	c := &BalanceController{backend: b}
	c.balance = fetchstate.New(c.fetch, fetchstate.Options{
		Name:     "account.balance",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("account"),
	})
	return c
}

func (c *BalanceController) fetch(ctx context.Context, _ struct{}) (Balance, error) {
	raw, err := c.backend.Balance(ctx)
	if err != nil {
		if backend.IsBadRequest(err) {
			return Balance{}, &backend.APIError{
				Kind:       backend.KindClient,
				StatusCode: http.StatusBadRequest,
				Message:    CredentialsMissingMessage,
				Err:        err,
			}
		}
		return Balance{}, err
	}
	return ParseBalance(*raw), nil
}

// Load mounts the view
func (c *BalanceController) Load() error {
	_, err := c.balance.SetDeps(struct{}{})
	return err
}

// Refresh re-fetches the balance
func (c *BalanceController) Refresh() error {
	return c.balance.Refresh()
}

// Snapshot returns the balance state
func (c *BalanceController) Snapshot() fetchstate.Snapshot[Balance] {
	return c.balance.Snapshot()
}

// Await waits for the balance to settle
func (c *BalanceController) Await(ctx context.Context) error {
	_, err := c.balance.Await(ctx)
	return err
}

// Close unmounts the view
func (c *BalanceController) Close() {
	c.balance.Close()
}
