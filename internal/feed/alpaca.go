package feed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"tablero/internal/config"
	"tablero/internal/domain"
)

// Broker is the subset of the Alpaca trading client the broker sources use.
// *alpaca.Client satisfies it.
type Broker interface {
	GetPositions() ([]alpaca.Position, error)
	GetOrders(req alpaca.GetOrdersRequest) ([]alpaca.Order, error)
}

// NewAlpacaClient builds a trading client from configuration.
func NewAlpacaClient(cfg config.Alpaca) *alpaca.Client {
	return alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
}

func decValue(d *decimal.Decimal) domain.Value {
	if d == nil {
		return domain.Null()
	}
	return domain.Number(d.InexactFloat64())
}

// PositionsSource maps open broker positions onto the position table
// columns (Titulo, Nominales, Px Mercado, Valuacion, PnL) with valuation
// and PnL totals.
type PositionsSource struct {
	name   string
	class  string
	broker Broker
	logger *slog.Logger
	now    func() time.Time
}

// NewPositionsSource builds a positions source. class filters by asset
// class ("crypto", "us_equity"); empty keeps every position.
func NewPositionsSource(name, class string, broker Broker, logger *slog.Logger) *PositionsSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionsSource{name: name, class: class, broker: broker, logger: logger.With("stream", name), now: time.Now}
}

// Poll lists positions. The SDK call does not take a context, so
// cancellation is checked before the call only.
func (s *PositionsSource) Poll(ctx context.Context) domain.Snapshot {
	if ctx.Err() != nil {
		return domain.Failure(s.name, MsgUnavailable, s.now())
	}
	positions, err := s.broker.GetPositions()
	at := s.now()
	if err != nil {
		s.logger.Debug("listing positions", "err", err)
		return domain.Failure(s.name, MsgUnavailable, at)
	}

	snap := domain.Snapshot{Stream: s.name, Success: true, ReceivedAt: at, Rows: []domain.Row{}}
	valuation, pnl := decimal.Zero, decimal.Zero
	for _, p := range positions {
		if s.class != "" && !strings.EqualFold(string(p.AssetClass), s.class) {
			continue
		}
		snap.Rows = append(snap.Rows, domain.Row{
			"Titulo":     domain.String(p.Symbol),
			"Nominales":  domain.Number(p.Qty.InexactFloat64()),
			"Px Mercado": decValue(p.CurrentPrice),
			"Valuacion":  decValue(p.MarketValue),
			"PnL":        decValue(p.UnrealizedPL),
			"PnL diario": decValue(p.UnrealizedIntradayPL),
		})
		if p.MarketValue != nil {
			valuation = valuation.Add(*p.MarketValue)
		}
		if p.UnrealizedPL != nil {
			pnl = pnl.Add(*p.UnrealizedPL)
		}
	}
	snap.Totals = domain.Totals{
		domain.TotalValuation: domain.Number(valuation.InexactFloat64()),
		domain.TotalPnL:       domain.Number(pnl.InexactFloat64()),
	}
	return snap
}

// OrdersSource maps open broker orders onto the pending table columns
// (Ticker, TIPO, VN, PX). Sell quantities are negative.
type OrdersSource struct {
	name   string
	limit  int
	broker Broker
	logger *slog.Logger
	now    func() time.Time
}

// NewOrdersSource builds an open-orders source returning at most limit
// orders.
func NewOrdersSource(name string, limit int, broker Broker, logger *slog.Logger) *OrdersSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersSource{name: name, limit: limit, broker: broker, logger: logger.With("stream", name), now: time.Now}
}

// Poll lists open orders, newest first.
func (s *OrdersSource) Poll(ctx context.Context) domain.Snapshot {
	if ctx.Err() != nil {
		return domain.Failure(s.name, MsgUnavailable, s.now())
	}
	orders, err := s.broker.GetOrders(alpaca.GetOrdersRequest{Status: "open", Limit: s.limit})
	at := s.now()
	if err != nil {
		s.logger.Debug("listing orders", "err", err)
		return domain.Failure(s.name, MsgUnavailable, at)
	}

	snap := domain.Snapshot{Stream: s.name, Success: true, ReceivedAt: at, Rows: make([]domain.Row, 0, len(orders))}
	for _, o := range orders {
		qty := decValue(o.Qty)
		if qty.IsNumber() && o.Side == alpaca.Sell {
			qty = domain.Number(-qty.Num)
		}
		px := decValue(o.LimitPrice)
		if px.Kind == domain.KindNull {
			px = decValue(o.StopPrice)
		}
		snap.Rows = append(snap.Rows, domain.Row{
			"Ticker": domain.String(o.Symbol),
			"TIPO":   domain.String(strings.ToUpper(string(o.Type))),
			"VN":     qty,
			"PX":     px,
			"Fecha":  domain.String(o.SubmittedAt.Format(time.DateOnly)),
		})
	}
	return snap
}
