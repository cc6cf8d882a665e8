package service

import (
	"context"
	"time"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
)

const (
	// analyticsSampleSize — сколько подписчиков выгружается для расчёта.
	analyticsSampleSize = 1000
	// growthMonths — окно графика роста, включая текущий месяц.
	growthMonths = 6
)

// tierPrices — прайс за месяц для оценки MRR.
var tierPrices = map[model.Tier]int{
	model.TierL1: 99,
	model.TierL2: 299,
	model.TierL3: 999,
}

// TierShare — доля подписчиков уровня.
type TierShare struct {
	Tier       model.Tier
	Label      string
	Count      int
	Percentage float64
}

// MonthCount — число подписчиков, созданных в месяце.
type MonthCount struct {
	Month string
	Start time.Time
	Count int
}

// QuickStats — сводные показатели.
type QuickStats struct {
	ActiveRate        float64
	AvgUsersPerTenant float64
	EstimatedMRR      int
}

// Analytics — результат расчёта по выборке подписчиков.
type Analytics struct {
	SampleSize int
	Tiers      []TierShare
	Growth     []MonthCount
	Stats      QuickStats
}

// ComputeAnalytics считает распределение по уровням, рост за последние месяцы и сводку.
// Подписчики неизвестного уровня в распределение и MRR не входят.
func ComputeAnalytics(subs []model.Subscriber, now time.Time) Analytics {
	divisor := float64(max(len(subs), 1))

	counts := make(map[model.Tier]int, len(model.Tiers))
	var active, users int
	for _, s := range subs {
		if _, ok := tierPrices[s.Tier]; ok {
			counts[s.Tier]++
		}
		if s.Status == model.SubscriberActive {
			active++
		}
		users += s.UserCount
	}

	out := Analytics{SampleSize: len(subs)}
	mrr := 0
	for _, t := range model.Tiers {
		out.Tiers = append(out.Tiers, TierShare{
			Tier:       t,
			Label:      t.Name() + " (" + string(t) + ")",
			Count:      counts[t],
			Percentage: float64(counts[t]) / divisor * 100,
		})
		mrr += counts[t] * tierPrices[t]
	}
	out.Growth = monthlyGrowth(subs, now)
	out.Stats = QuickStats{
		ActiveRate:        float64(active) / divisor * 100,
		AvgUsersPerTenant: float64(users) / divisor,
		EstimatedMRR:      mrr,
	}
	return out
}

// monthlyGrowth раскладывает даты создания по календарным месяцам в часовом поясе now.
func monthlyGrowth(subs []model.Subscriber, now time.Time) []MonthCount {
	loc := now.Location()
	months := make([]MonthCount, 0, growthMonths)
	for i := growthMonths - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, loc)
		months = append(months, MonthCount{Month: start.Format("Jan 06"), Start: start})
	}
	for _, s := range subs {
		created, err := time.Parse(time.RFC3339, s.CreatedAt)
		if err != nil {
			continue
		}
		created = created.In(loc)
		for i := range months {
			if created.Year() == months[i].Start.Year() && created.Month() == months[i].Start.Month() {
				months[i].Count++
				break
			}
		}
	}
	return months
}

// AnalyticsService загружает подписчиков и считает аналитику.
type AnalyticsService struct {
	client *api.Client
	now    func() time.Time
}

// NewAnalyticsService конструктор. now == nil означает time.Now.
func NewAnalyticsService(c *api.Client, now func() time.Time) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{client: c, now: now}
}

// Load выгружает до analyticsSampleSize подписчиков и считает по ним аналитику.
func (s *AnalyticsService) Load(ctx context.Context) (Analytics, error) {
	page, err := s.client.ListSubscribers(ctx, api.SubscriberQuery{PageSize: analyticsSampleSize})
	if err != nil {
		return Analytics{}, err
	}
	return ComputeAnalytics(page.Items, s.now()), nil
}
