package metrics

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"testing"

	"OrcaBI/internal/starschema"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func budgetFact(date, market, account string, amount float64) starschema.BudgetFact {
	var y, m int
	fmt.Sscanf(date, "%d-%d", &y, &m)
	return starschema.BudgetFact{ID: "orc_" + date, Year: y, Month: m, Date: date, MicroMarketCode: market, AccountCode: account, BudgetedAmount: amount}
}

func realizedFact(date, market, account, supplier string, amount float64) starschema.RealizedFact {
	var y, m int
	fmt.Sscanf(date, "%d-%d", &y, &m)
	return starschema.RealizedFact{ID: "real_" + date, Year: y, Month: m, Date: date, MicroMarketCode: market, AccountCode: account, Supplier: supplier, RealizedAmount: amount}
}

func testSnapshot() *starschema.Snapshot {
	return &starschema.Snapshot{
		Budget: []starschema.BudgetFact{
			budgetFact("2024-01-01", "MM01", "4101", 100),
			budgetFact("2024-02-01", "MM01", "4101", 50),
			budgetFact("2024-02-01", "MM02", "4102", 0.1),
			budgetFact("2023-12-01", "MM02", "4103", 0.2),
		},
		Realized: []starschema.RealizedFact{
			realizedFact("2024-01-01", "MM01", "4101", "Energia", 80),
			realizedFact("2024-03-01", "MM02", "4102", "Agua", 30),
			realizedFact("2024-03-01", "MM02", "4104", "Energia", 200),
		},
		Meta: starschema.Meta{BatchID: "b1"},
	}
}

func TestTemporal_MonthlyBucketsWithoutRealized(t *testing.T) {
	budget := []starschema.BudgetFact{
		budgetFact("2024-01-01", "", "", 100),
		budgetFact("2024-02-01", "", "", 50),
	}
	got := temporal(budget, nil, Monthly)
	want := []TemporalPoint{
		{Period: "2024-01", Budgeted: 100, Realized: 0},
		{Period: "2024-02", Budgeted: 50, Realized: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("temporal = %+v, want %+v", got, want)
	}
}

func TestCompute_OuterJoinsBuckets(t *testing.T) {
	res, err := Compute(testSnapshot(), Query{Period: Monthly})
	if err != nil {
		t.Fatal(err)
	}
	var periods []string
	for _, p := range res.Temporal {
		periods = append(periods, p.Period)
	}
	want := []string{"2023-12", "2024-01", "2024-02", "2024-03"}
	if !reflect.DeepEqual(periods, want) {
		t.Fatalf("periods = %v, want %v", periods, want)
	}
	if p := res.Temporal[3]; p.Budgeted != 0 || p.Realized != 230 {
		t.Errorf("march bucket = %+v", p)
	}
	if p := res.Temporal[2]; !almostEqual(p.Budgeted, 50.1) {
		t.Errorf("february bucket = %+v", p)
	}
}

func TestCompute_AnnualAndDaily(t *testing.T) {
	res, err := Compute(testSnapshot(), Query{Period: Annual})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Temporal) != 2 || res.Temporal[0].Period != "2023" || res.Temporal[1].Period != "2024" {
		t.Errorf("annual buckets = %+v", res.Temporal)
	}
	if !reflect.DeepEqual(res.AvailableFilters.Periods, []string{"2023", "2024"}) {
		t.Errorf("annual periods = %v", res.AvailableFilters.Periods)
	}

	res, err = Compute(testSnapshot(), Query{Period: Daily})
	if err != nil {
		t.Fatal(err)
	}
	if res.Temporal[0].Period != "2023-12-01" {
		t.Errorf("daily buckets = %+v", res.Temporal)
	}
}

func TestCompute_VarianceWithZeroBudget(t *testing.T) {
	res, err := Compute(testSnapshot(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	byAccount := map[string]AccountVariance{}
	for _, row := range res.DRE {
		byAccount[row.Account] = row
	}
	if row := byAccount["4104"]; row.Budgeted != 0 || row.Realized != 200 || row.Variance != 0 {
		t.Errorf("account without budget = %+v", row)
	}
	if row := byAccount["4101"]; !almostEqual(row.Variance, (80.0-150.0)/150.0*100) {
		t.Errorf("account 4101 variance = %v", row.Variance)
	}
	if !sort.SliceIsSorted(res.DRE, func(i, j int) bool { return res.DRE[i].Account < res.DRE[j].Account }) {
		t.Errorf("DRE not sorted: %+v", res.DRE)
	}
}

func TestCompute_KPIs(t *testing.T) {
	res, err := Compute(testSnapshot(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	k := res.KPIs
	if !almostEqual(k.TotalBudgeted, 150.3) || k.TotalRealized != 310 {
		t.Errorf("totals = %+v", k)
	}
	if !almostEqual(k.Adherence, 310/150.3*100) {
		t.Errorf("adherence = %v", k.Adherence)
	}
	if k.TotalSuppliers != 2 || k.TotalAccounts != 4 || k.TotalMarkets != 2 {
		t.Errorf("distinct counts = %+v", k)
	}
}

func TestTopSuppliers_CappedAndStable(t *testing.T) {
	var realized []starschema.RealizedFact
	for i := 0; i < 15; i++ {
		amount := float64(i % 4)
		realized = append(realized, realizedFact("2024-01-01", "MM", "1", fmt.Sprintf("S%02d", i), amount))
	}
	top := topSuppliers(realized, 10)
	if len(top) != 10 {
		t.Fatalf("expected 10 suppliers, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Amount > top[i-1].Amount {
			t.Fatalf("not sorted descending: %+v", top)
		}
	}
	// amount 3 belongs to S03, S07, S11 in encounter order
	if top[0].Supplier != "S03" || top[1].Supplier != "S07" || top[2].Supplier != "S11" {
		t.Errorf("ties not stable: %+v", top[:3])
	}
}

func TestCompute_AbsentSupplier(t *testing.T) {
	res, err := Compute(testSnapshot(), Query{Suppliers: []string{"Ninguem"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.TopSuppliers) != 0 {
		t.Errorf("expected no suppliers, got %+v", res.TopSuppliers)
	}
	if res.KPIs.TotalRealized != 0 || res.KPIs.Adherence != 0 || res.KPIs.TotalSuppliers != 0 {
		t.Errorf("expected zero realized KPIs, got %+v", res.KPIs)
	}
	if res.TopSuppliers == nil || res.AvailableFilters.Suppliers == nil {
		t.Error("empty lists must encode as [] not null")
	}
}

func TestCompute_Filters(t *testing.T) {
	res, err := Compute(testSnapshot(), Query{Markets: []string{"MM02"}, Suppliers: []string{"Energia"}})
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(res.KPIs.TotalBudgeted, 0.3) || res.KPIs.TotalRealized != 200 {
		t.Errorf("filtered totals = %+v", res.KPIs)
	}
	if !reflect.DeepEqual(res.AvailableFilters.Markets, []string{"MM02"}) {
		t.Errorf("markets = %v", res.AvailableFilters.Markets)
	}
	if !reflect.DeepEqual(res.AvailableFilters.Accounts, []string{"4102", "4103", "4104"}) {
		t.Errorf("accounts = %v", res.AvailableFilters.Accounts)
	}
}

func TestCompute_CustomRangeIsInclusive(t *testing.T) {
	q := Query{Period: Custom, StartDate: "2024-01-01", EndDate: "2024-02-01"}
	res, err := Compute(testSnapshot(), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Temporal) != 0 {
		t.Errorf("custom queries are not bucketed, got %+v", res.Temporal)
	}
	if !almostEqual(res.KPIs.TotalBudgeted, 150.1) || res.KPIs.TotalRealized != 80 {
		t.Errorf("range totals = %+v", res.KPIs)
	}
	if !reflect.DeepEqual(res.AvailableFilters.Periods, []string{"2024-01-01", "2024-02-01"}) {
		t.Errorf("periods = %v", res.AvailableFilters.Periods)
	}

	open, err := Compute(testSnapshot(), Query{Period: Custom, StartDate: "2024-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if open.KPIs.TotalRealized != 310 {
		t.Errorf("missing bound should not restrict, got %+v", open.KPIs)
	}
}

func TestCompute_Errors(t *testing.T) {
	if _, err := Compute(&starschema.Snapshot{}, Query{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty snapshot: got %v", err)
	}
	if _, err := Compute(nil, Query{}); !errors.Is(err, ErrNoData) {
		t.Errorf("nil snapshot: got %v", err)
	}
	if _, err := Compute(testSnapshot(), Query{Period: "weekly"}); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("weekly: got %v", err)
	}
	if _, err := Compute(testSnapshot(), Query{Period: Custom, StartDate: "01/02/2024"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad date: got %v", err)
	}
	// validation runs before the no-data check
	if _, err := Compute(&starschema.Snapshot{}, Query{Period: "weekly"}); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("weekly on empty snapshot: got %v", err)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"Energia", []string{"Energia"}},
		{" Energia , Agua,,", []string{"Energia", "Agua"}},
	}
	for _, tt := range tests {
		if got := ParseList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != Monthly {
		t.Errorf("blank period = %q, %v", p, err)
	}
	if p, err := ParsePeriod(" Annual "); err != nil || p != Annual {
		t.Errorf("annual = %q, %v", p, err)
	}
	if _, err := ParsePeriod("quarterly"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("quarterly: got %v", err)
	}
}

type fixedSource struct{ snap *starschema.Snapshot }

func (f fixedSource) Current() *starschema.Snapshot { return f.snap }

func TestEngine_UsesCurrentSnapshot(t *testing.T) {
	store := starschema.NewStore()
	e := NewEngine(store)
	if _, err := e.Compute(Query{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("before ingestion: got %v", err)
	}
	store.Swap(testSnapshot())
	if _, err := e.Compute(Query{}); err != nil {
		t.Fatalf("after swap: %v", err)
	}
	if _, err := NewEngine(fixedSource{testSnapshot()}).Compute(Query{Period: Annual}); err != nil {
		t.Fatal(err)
	}
}
