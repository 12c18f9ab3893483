package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"bijouterie/internal/models"
	"bijouterie/internal/repository"
)

const recentOrdersLimit = 5

// GetStats builds the dashboard figures. Revenue only counts orders whose
// status is in models.RevenueStatuses.
func GetStats(store repository.Store, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		const route = "GET /api/stats"
		defer handlePanic(c, route)

		ctx, cancel := dbContext(c)
		defer cancel()

		today := now().UTC()
		var stats models.Stats
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			stats.CollectionsCount, err = store.Collections.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			stats.ProductsCount, err = store.Products.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			stats.OrdersCount, err = store.Orders.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			stats.RecentOrders, err = store.Orders.Recent(ctx, recentOrdersLimit)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalRevenue, err = store.Orders.Revenue(ctx, models.RevenueStatuses)
			return err
		})
		g.Go(func() (err error) {
			stats.RevenueByDay, err = store.Orders.RevenueSeries(ctx, models.RevenueStatuses,
				today.AddDate(0, 0, -30), repository.PeriodDay)
			return err
		})
		g.Go(func() (err error) {
			stats.RevenueByMonth, err = store.Orders.RevenueSeries(ctx, models.RevenueStatuses,
				today.AddDate(0, -11, 0), repository.PeriodMonth)
			return err
		})
		g.Go(func() (err error) {
			stats.RevenueByYear, err = store.Orders.RevenueSeries(ctx, models.RevenueStatuses,
				today.AddDate(-4, 0, 0), repository.PeriodYear)
			return err
		})

		if err := g.Wait(); err != nil {
			respondInternal(c, route, "error fetching statistics", err)
			return
		}

		if stats.RecentOrders == nil {
			stats.RecentOrders = []models.Order{}
		}
		for _, series := range []*[]models.RevenuePoint{&stats.RevenueByDay, &stats.RevenueByMonth, &stats.RevenueByYear} {
			if *series == nil {
				*series = []models.RevenuePoint{}
			}
		}
		respondOK(c, http.StatusOK, stats)
	}
}
