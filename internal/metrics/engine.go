// Package metrics answers dashboard queries over the current star-schema
// snapshot: time series, top suppliers, per-account variance and KPIs.
package metrics

import (
	"fmt"
	"sort"

	"OrcaBI/internal/config"
	"OrcaBI/internal/starschema"

	"github.com/shopspring/decimal"
)

type TemporalPoint struct {
	Period   string  `json:"period"`
	Budgeted float64 `json:"orcado"`
	Realized float64 `json:"realizado"`
}

type SupplierTotal struct {
	Supplier string  `json:"razaoSocial"`
	Amount   float64 `json:"valor"`
}

// AccountVariance is one line of the DRE (income statement) comparison.
type AccountVariance struct {
	Account  string  `json:"conta"`
	Budgeted float64 `json:"orcado"`
	Realized float64 `json:"realizado"`
	Variance float64 `json:"variacao"`
}

type KPIs struct {
	TotalBudgeted  float64 `json:"total_orcado"`
	TotalRealized  float64 `json:"total_realizado"`
	Adherence      float64 `json:"adherence"`
	TotalSuppliers int     `json:"total_suppliers"`
	TotalAccounts  int     `json:"total_accounts"`
	TotalMarkets   int     `json:"total_markets"`
}

// Filters lists the values still selectable after the current filters.
type Filters struct {
	Suppliers []string `json:"suppliers"`
	Accounts  []string `json:"accounts"`
	Markets   []string `json:"markets"`
	Periods   []string `json:"periods"`
}

type Result struct {
	Temporal         []TemporalPoint   `json:"temporal_data"`
	TopSuppliers     []SupplierTotal   `json:"top_suppliers"`
	DRE              []AccountVariance `json:"dre_data"`
	KPIs             KPIs              `json:"kpis"`
	AvailableFilters Filters           `json:"available_filters"`
}

// Source supplies the snapshot a query runs against.
type Source interface {
	Current() *starschema.Snapshot
}

type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Compute runs q against the snapshot current at call time.
func (e *Engine) Compute(q Query) (*Result, error) {
	return Compute(e.src.Current(), q)
}

// Compute aggregates one snapshot. Any failure aborts the whole query; no
// partial result is returned. The query is validated before the snapshot is
// looked at, so a bad period or date fails with ErrInvalidPeriod or
// ErrInvalidDate even when nothing is loaded; ErrNoData comes after.
func Compute(snap *starschema.Snapshot, q Query) (res *Result, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Period == "" {
		q.Period = config.DefaultPeriod
	}
	if snap == nil || len(snap.Budget) == 0 || len(snap.Realized) == 0 {
		return nil, ErrNoData
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("metrics: aggregation failed: %v", r)
		}
	}()

	budget, realized := applyFilters(snap, q)

	res = &Result{
		Temporal:     temporal(budget, realized, q.Period),
		TopSuppliers: topSuppliers(realized, config.TopSuppliersLimit),
		DRE:          dre(budget, realized),
	}
	res.AvailableFilters = availableFilters(budget, realized, q.Period)
	res.KPIs = kpis(budget, realized, res.AvailableFilters)
	return res, nil
}

func applyFilters(snap *starschema.Snapshot, q Query) ([]starschema.BudgetFact, []starschema.RealizedFact) {
	suppliers := newStringSet(q.Suppliers)
	accounts := newStringSet(q.Accounts)
	markets := newStringSet(q.Markets)
	ranged := q.hasRange()

	budget := make([]starschema.BudgetFact, 0, len(snap.Budget))
	for _, f := range snap.Budget {
		if ranged && !q.inRange(f.Date) {
			continue
		}
		if !accounts.allows(f.AccountCode) || !markets.allows(f.MicroMarketCode) {
			continue
		}
		budget = append(budget, f)
	}

	// budget lines carry no supplier, so the supplier filter only narrows
	// the realized side
	realized := make([]starschema.RealizedFact, 0, len(snap.Realized))
	for _, f := range snap.Realized {
		if ranged && !q.inRange(f.Date) {
			continue
		}
		if !accounts.allows(f.AccountCode) || !markets.allows(f.MicroMarketCode) || !suppliers.allows(f.Supplier) {
			continue
		}
		realized = append(realized, f)
	}
	return budget, realized
}

// bucketKey returns the time bucket of a fact for the given period. Custom
// queries are not bucketed.
func bucketKey(p Period, year, month int, date string) (string, bool) {
	switch p {
	case Annual:
		return fmt.Sprintf("%04d", year), true
	case Monthly:
		return fmt.Sprintf("%04d-%02d", year, month), true
	case Daily:
		return date, true
	}
	return "", false
}

// sums accumulates exact decimal totals per key, remembering first-seen order.
type sums struct {
	order []string
	vals  map[string]decimal.Decimal
}

func newSums() *sums {
	return &sums{vals: make(map[string]decimal.Decimal)}
}

func (s *sums) add(key string, v float64) {
	cur, ok := s.vals[key]
	if !ok {
		s.order = append(s.order, key)
	}
	s.vals[key] = cur.Add(decimal.NewFromFloat(v))
}

func (s *sums) get(key string) float64 {
	return s.vals[key].InexactFloat64()
}

func (s *sums) total() float64 {
	t := decimal.Zero
	for _, k := range s.order {
		t = t.Add(s.vals[k])
	}
	return t.InexactFloat64()
}

// outerKeys returns the sorted union of keys from both sides.
func outerKeys(a, b *sums) []string {
	seen := make(map[string]bool, len(a.order)+len(b.order))
	keys := make([]string, 0, len(a.order)+len(b.order))
	for _, s := range []*sums{a, b} {
		for _, k := range s.order {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func temporal(budget []starschema.BudgetFact, realized []starschema.RealizedFact, p Period) []TemporalPoint {
	out := []TemporalPoint{}
	if p == Custom {
		return out
	}
	b, r := newSums(), newSums()
	for _, f := range budget {
		if k, ok := bucketKey(p, f.Year, f.Month, f.Date); ok {
			b.add(k, f.BudgetedAmount)
		}
	}
	for _, f := range realized {
		if k, ok := bucketKey(p, f.Year, f.Month, f.Date); ok {
			r.add(k, f.RealizedAmount)
		}
	}
	for _, k := range outerKeys(b, r) {
		out = append(out, TemporalPoint{Period: k, Budgeted: b.get(k), Realized: r.get(k)})
	}
	return out
}

// topSuppliers ranks suppliers by realized total. Equal totals keep the order
// in which the suppliers first appear.
func topSuppliers(realized []starschema.RealizedFact, limit int) []SupplierTotal {
	s := newSums()
	for _, f := range realized {
		s.add(f.Supplier, f.RealizedAmount)
	}
	ranked := make([]SupplierTotal, 0, len(s.order))
	for _, name := range s.order {
		ranked = append(ranked, SupplierTotal{Supplier: name, Amount: s.get(name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

func dre(budget []starschema.BudgetFact, realized []starschema.RealizedFact) []AccountVariance {
	b, r := newSums(), newSums()
	for _, f := range budget {
		b.add(f.AccountCode, f.BudgetedAmount)
	}
	for _, f := range realized {
		r.add(f.AccountCode, f.RealizedAmount)
	}
	out := []AccountVariance{}
	for _, k := range outerKeys(b, r) {
		bv, rv := b.get(k), r.get(k)
		out = append(out, AccountVariance{
			Account:  k,
			Budgeted: bv,
			Realized: rv,
			Variance: percentOf(rv-bv, bv),
		})
	}
	return out
}

func kpis(budget []starschema.BudgetFact, realized []starschema.RealizedFact, f Filters) KPIs {
	b, r := newSums(), newSums()
	for _, x := range budget {
		b.add("", x.BudgetedAmount)
	}
	for _, x := range realized {
		r.add("", x.RealizedAmount)
	}
	tb, tr := b.total(), r.total()
	return KPIs{
		TotalBudgeted:  tb,
		TotalRealized:  tr,
		Adherence:      percentOf(tr, tb),
		TotalSuppliers: len(f.Suppliers),
		TotalAccounts:  len(f.Accounts),
		TotalMarkets:   len(f.Markets),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func availableFilters(budget []starschema.BudgetFact, realized []starschema.RealizedFact, p Period) Filters {
	suppliers, accounts, markets, periods := map[string]bool{}, map[string]bool{}, map[string]bool{}, map[string]bool{}
	period := func(year, month int, date string) string {
		if k, ok := bucketKey(p, year, month, date); ok {
			return k
		}
		return date
	}
	for _, f := range budget {
		accounts[f.AccountCode] = true
		markets[f.MicroMarketCode] = true
		periods[period(f.Year, f.Month, f.Date)] = true
	}
	for _, f := range realized {
		suppliers[f.Supplier] = true
		accounts[f.AccountCode] = true
		markets[f.MicroMarketCode] = true
		periods[period(f.Year, f.Month, f.Date)] = true
	}
	return Filters{
		Suppliers: sortedKeys(suppliers),
		Accounts:  sortedKeys(accounts),
		Markets:   sortedKeys(markets),
		Periods:   sortedKeys(periods),
	}
}
