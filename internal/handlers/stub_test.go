package handlers

import (
	"context"
	"time"

	"moneta/internal/aggregator"
)

// fakeAggregatorStub satisfies aggregator.Client with empty responses; the
// handler tests only need the wiring, not upstream data.
type fakeAggregatorStub struct {
	removed bool
}

func (f *fakeAggregatorStub) GetAccounts(ctx context.Context, token string) ([]aggregator.AccountRecord, error) {
	return nil, nil
}

func (f *fakeAggregatorStub) GetTransactions(ctx context.Context, token string, start, end time.Time) ([]aggregator.TransactionRecord, error) {
	return nil, nil
}

func (f *fakeAggregatorStub) GetHoldings(ctx context.Context, token string) (*aggregator.HoldingsResponse, error) {
	return &aggregator.HoldingsResponse{}, nil
}

func (f *fakeAggregatorStub) GetInvestmentTransactions(ctx context.Context, token string, start, end time.Time) ([]aggregator.InvestmentTransactionRecord, error) {
	return nil, nil
}

func (f *fakeAggregatorStub) GetLiabilities(ctx context.Context, token string) (*aggregator.LiabilitiesResponse, error) {
	return &aggregator.LiabilitiesResponse{}, nil
}

func (f *fakeAggregatorStub) GetRecurringStreams(ctx context.Context, token string) ([]aggregator.RecurringStreamRecord, error) {
	return nil, nil
}

func (f *fakeAggregatorStub) RemoveItem(ctx context.Context, token string) error {
	f.removed = true
	return nil
}
