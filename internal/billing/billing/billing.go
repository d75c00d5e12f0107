// Package billing implements the bill-generation aggregator (C8): it
// pulls every weighing transaction in a window from the weight
// service, restricts to one provider's trucks, and prices each
// product against the rate book. A weight-service outage degrades to
// an empty, zero-total bill rather than failing the request.
package billing

import (
	"context"
	"strconv"
	"strings"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/billing/rates"
	"ganshmuel/platform/internal/billing/store"
	"ganshmuel/platform/internal/billing/weightclient"
)

type ProductLine struct {
	Product string `json:"product"`
	Count   string `json:"count"`
	Amount  int    `json:"amount"`
	Rate    int    `json:"rate"`
	Pay     int    `json:"pay"`
}

type Bill struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	TruckCount   int           `json:"truckCount"`
	SessionCount int           `json:"sessionCount"`
	Products     []ProductLine `json:"products"`
	Total        int           `json:"total"`
}

type Service struct {
	providers *store.ProviderRepo
	trucks    *store.TruckRepo
	rates     *rates.Service
	weightCl  *weightclient.Client
}

func New(providers *store.ProviderRepo, trucks *store.TruckRepo, rates *rates.Service, weightCl *weightclient.Client) *Service {
	return &Service{providers: providers, trucks: trucks, rates: rates, weightCl: weightCl}
}

// Generate builds a provider's bill over [from, to] per §4.8: resolve
// the provider, restrict to its trucks, group retained transactions by
// product, and price each group via the rate book.
func (s *Service) Generate(ctx context.Context, providerID int64, from, to string) (*Bill, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, apperr.NotFound("provider %d not found", providerID)
	}

	trucks, err := s.trucks.ByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	truckSet := make(map[string]bool, len(trucks))
	for _, t := range trucks {
		truckSet[t.ID] = true
	}

	bill := &Bill{ID: provider.ID, Name: provider.Name, From: from, To: to, TruckCount: len(trucks)}

	txs, err := s.weightCl.TransactionsInWindow(ctx, from, to)
	if err != nil {
		return bill, nil
	}

	type acc struct {
		count  int
		amount int
		rate   int
	}
	totals := make(map[string]*acc)
	order := make([]string, 0)
	sessions := make(map[string]bool)

	for _, tx := range txs {
		if !truckSet[tx.Truck] {
			continue
		}
		if tx.Neto == nil || *tx.Neto <= 0 {
			continue
		}
		product := strings.ToLower(strings.TrimSpace(tx.Produce))
		if product == "" || product == "na" {
			continue
		}

		rate, err := s.rates.Resolve(ctx, product, providerID)
		if err != nil {
			continue
		}

		a, ok := totals[product]
		if !ok {
			a = &acc{rate: rate}
			totals[product] = a
			order = append(order, product)
		}
		a.count++
		a.amount += *tx.Neto
		sessions[tx.SessionID] = true
	}

	bill.SessionCount = len(sessions)
	for _, product := range order {
		a := totals[product]
		pay := a.amount * a.rate
		bill.Products = append(bill.Products, ProductLine{
			Product: product,
			Count:   strconv.Itoa(a.count),
			Amount:  a.amount,
			Rate:    a.rate,
			Pay:     pay,
		})
		bill.Total += pay
	}

	return bill, nil
}
