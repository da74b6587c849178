package usecase

import (
	"context"
	"net/http"
	"time"

	repo "ecommerce-admin/internal/repository"

	"github.com/shopspring/decimal"
)

type MonthlySales struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Count   int64           `json:"count"`
}

type SalesUsecase struct {
	orders repo.OrderRepository
	now    func() time.Time
}

func NewSalesUsecase(orders repo.OrderRepository) *SalesUsecase {
	return &SalesUsecase{orders: orders, now: time.Now}
}

// 月別の売上。注文のない月も0で返す。
// from が nil なら5か月前の月初、to が nil なら現在。
func (u *SalesUsecase) MonthlySummary(ctx context.Context, storeID string, from *time.Time, to *time.Time) ([]MonthlySales, error) {
	now := u.now().UTC()

	end := now
	if to != nil {
		end = to.UTC()
	}
	start := time.Date(now.Year(), now.Month()-5, 1, 0, 0, 0, 0, time.UTC)
	if from != nil {
		start = from.UTC()
	}
	if start.After(end) {
		return nil, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	orders, err := u.orders.ListForSummary(ctx, storeID, start, end)
	if err != nil {
		return nil, dbError(err)
	}

	//月の枠を先に作る
	var out []MonthlySales
	index := map[string]int{}
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		index[key] = len(out)
		out = append(out, MonthlySales{Month: key, Revenue: decimal.Zero})
	}

	for _, o := range orders {
		i, ok := index[o.CreatedAt.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		out[i].Revenue = out[i].Revenue.Add(o.Total)
		out[i].Count++
	}
	return out, nil
}
