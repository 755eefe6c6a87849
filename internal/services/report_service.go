package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Dashboard is the current-month snapshot the landing view renders.
type Dashboard struct {
	Month        string                 `json:"month"`
	Totals       core.Totals            `json:"totals"`
	MonthTotals  core.Totals            `json:"month_totals"`
	Recent       []core.Transaction     `json:"recent_transactions"`
	TopExpenses  []core.CategorySummary `json:"top_expense_categories"`
	MonthlyTrend []core.MonthlySummary  `json:"monthly_trend"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// Report is a range-scoped aggregation.
type Report struct {
	Start             string                 `json:"start"`
	End               string                 `json:"end"`
	Totals            core.Totals            `json:"totals"`
	IncomeByCategory  []core.CategorySummary `json:"income_by_category"`
	ExpenseByCategory []core.CategorySummary `json:"expense_by_category"`
	MonthlySummaries  []core.MonthlySummary  `json:"monthly_summaries"`
	YearlySummaries   []core.YearlySummary   `json:"yearly_summaries"`
}

const (
	recentCount      = 5
	topCategoryCount = 5
	trendMonths      = 6
)

// ReportService computes dashboards and reports from the transaction
// history, with read-through caching keyed by the collection version.
type ReportService struct {
	transactions *TransactionService
	dashboards   cache.Cache[Dashboard]
	reports      cache.Cache[Report]
	logger       *log.Logger
}

func NewReportService(transactions *TransactionService, dashboards cache.Cache[Dashboard], reports cache.Cache[Report], logger *log.Logger) *ReportService {
	return &ReportService{
		transactions: transactions,
		dashboards:   dashboards,
		reports:      reports,
		logger:       logger.WithComponent(log.ComponentReport),
	}
}

// Dashboard computes the snapshot for the month containing now. Cache
// keys carry the collection version, so a mutation makes the previous
// entry unreachable instead of requiring eviction hooks.
func (s *ReportService) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	month := now.Format("2006-01")
	key := fmt.Sprintf("v%d:%s", s.transactions.Version(), month)

	if s.dashboards != nil {
		if d, ok := s.dashboards.Get(key); ok {
			return d, nil
		}
	}

	ts, err := s.transactions.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	monthTs := core.FilterByRange(ts, core.MonthRangeAt(now))

	allMonths := core.SummarizeByMonth(ts)
	byKey := make(map[string]core.MonthlySummary, len(allMonths))
	for _, m := range allMonths {
		byKey[m.Month] = m
	}
	trend := make([]core.MonthlySummary, 0, trendMonths)
	for _, k := range core.LastNMonths(now, trendMonths) {
		m, ok := byKey[k]
		if !ok {
			m = core.MonthlySummary{Month: k}
		}
		trend = append(trend, m)
	}

	d := Dashboard{
		Month:        month,
		Totals:       core.ComputeTotals(ts),
		MonthTotals:  core.ComputeTotals(monthTs),
		Recent:       core.Recent(ts, recentCount),
		TopExpenses:  core.TopWithOther(core.SummarizeByCategory(monthTs, core.Expense), topCategoryCount),
		MonthlyTrend: trend,
		GeneratedAt:  time.Now(),
	}

	if s.dashboards != nil {
		s.dashboards.Set(key, d)
	}
	return d, nil
}

// Report aggregates the transactions falling inside the range.
func (s *ReportService) Report(ctx context.Context, r core.DateRange) (Report, error) {
	if err := r.Validate(); err != nil {
		return Report{}, err
	}

	key := fmt.Sprintf("v%d:%s:%s", s.transactions.Version(), r.Start.ISO(), r.End.ISO())
	if s.reports != nil {
		if rep, ok := s.reports.Get(key); ok {
			return rep, nil
		}
	}

	ts, err := s.transactions.List(ctx)
	if err != nil {
		return Report{}, err
	}
	scoped := core.FilterByRange(ts, r)
	months := core.SummarizeByMonth(scoped)

	rep := Report{
		Start:             r.Start.ISO(),
		End:               r.End.ISO(),
		Totals:            core.ComputeTotals(scoped),
		IncomeByCategory:  core.SummarizeByCategory(scoped, core.Income),
		ExpenseByCategory: core.SummarizeByCategory(scoped, core.Expense),
		MonthlySummaries:  months,
		YearlySummaries:   core.SummarizeByYear(months),
	}

	if s.reports != nil {
		s.reports.Set(key, rep)
	}
	return rep, nil
}
