package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCalculateBillCostsMonthlyTimesWeeksPerMonth(t *testing.T) {
	amount := d("100")
	for _, cycle := range []ChargeCycle{
		ChargeCycleWeekly, ChargeCycleBiweekly, ChargeCycleMonthly, ChargeCycleBimonthly,
		ChargeCycleQuarterly, ChargeCycleSemiannual, ChargeCycleAnnual,
	} {
		costs := CalculateBillCosts(amount, cycle)
		want := costs.Weekly.Mul(d("4.33")).Round(2)
		// Rounding weekly before multiplying can drift a cent either way.
		diff := costs.Monthly.Sub(want).Abs()
		if diff.GreaterThan(d("0.05")) {
			t.Errorf("cycle %s: monthly %s != weekly*4.33 %s", cycle, costs.Monthly, want)
		}
	}
}

func TestCalculateBillCostsKnownValues(t *testing.T) {
	costs := CalculateBillCosts(d("100"), ChargeCycleMonthly)
	if !costs.Weekly.Equal(d("23.08")) {
		t.Errorf("monthly cycle weekly cost = %s, want 23.08", costs.Weekly)
	}

	costs = CalculateBillCosts(d("52"), ChargeCycleWeekly)
	if !costs.Weekly.Equal(d("52")) {
		t.Errorf("weekly cycle weekly cost = %s, want 52", costs.Weekly)
	}
}

func TestCalculateBillCostsCustomIsZero(t *testing.T) {
	costs := CalculateBillCosts(d("100"), ChargeCycleCustom)
	if !costs.Weekly.IsZero() || !costs.Monthly.IsZero() {
		t.Errorf("custom cycle should cost zero, got weekly=%s monthly=%s", costs.Weekly, costs.Monthly)
	}
}

func TestCalculateBillCostsUnknownCycleIsZero(t *testing.T) {
	costs := CalculateBillCosts(d("100"), ChargeCycle("fortnightly-ish"))
	if !costs.Weekly.IsZero() || !costs.Monthly.IsZero() {
		t.Errorf("unknown cycle should cost zero, got weekly=%s monthly=%s", costs.Weekly, costs.Monthly)
	}
}

func TestBreakdownMonthlyBill(t *testing.T) {
	bills := []*FinanceBill{{
		ID:             1,
		CompanyName:    "Acme Power",
		Amount:         d("100"),
		ChargeCycle:    ChargeCycleMonthly,
		MultiplierType: MultiplierTypeMonthly,
		NextDueDate:    datePtr(2025, time.January, 15),
	}}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	results := CalculateBillsBreakdown(bills, nil, start, end, 30)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.TotalPayments != 1 {
		t.Errorf("totalPayments = %d, want 1", r.TotalPayments)
	}
	if !r.RemainingThisMonth.Equal(d("23.08")) {
		t.Errorf("remainingThisMonth = %s, want 23.08", r.RemainingThisMonth)
	}
}

func TestBreakdownMonthlyDayClampsToShortMonth(t *testing.T) {
	// Due on the 31st, evaluated in a 30-day month: clamps to the 30th,
	// still exactly one occurrence.
	bills := []*FinanceBill{{
		ID:             1,
		Amount:         d("50"),
		ChargeCycle:    ChargeCycleMonthly,
		MultiplierType: MultiplierTypeMonthly,
		NextDueDate:    datePtr(2025, time.March, 31),
	}}
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)

	results := CalculateBillsBreakdown(bills, nil, start, end, 29)
	if results[0].TotalPayments != 1 {
		t.Errorf("totalPayments = %d, want 1 (clamped to Apr 30)", results[0].TotalPayments)
	}
}

func TestBreakdownMonthlyCappedAtOnePerCycle(t *testing.T) {
	// Cycle spans two months; monthly bills still bill once per cycle.
	bills := []*FinanceBill{{
		ID:             1,
		Amount:         d("100"),
		ChargeCycle:    ChargeCycleMonthly,
		MultiplierType: MultiplierTypeMonthly,
		NextDueDate:    datePtr(2025, time.January, 15),
	}}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)

	results := CalculateBillsBreakdown(bills, nil, start, end, 58)
	if results[0].TotalPayments != 1 {
		t.Errorf("totalPayments = %d, want 1", results[0].TotalPayments)
	}
}

func TestBreakdownWeeklyBill(t *testing.T) {
	// payment_day = 1 (Monday), 14-day cycle starting on a Monday -> 2 payments.
	bills := []*FinanceBill{{
		ID:             2,
		Amount:         d("25"),
		ChargeCycle:    ChargeCycleWeekly,
		MultiplierType: MultiplierTypeWeekly,
		PaymentDay:     1,
	}}
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC) // a Monday
	end := start.AddDate(0, 0, 13)

	results := CalculateBillsBreakdown(bills, nil, start, end, 14)
	r := results[0]
	if r.TotalPayments != 2 {
		t.Errorf("totalPayments = %d, want 2", r.TotalPayments)
	}
	if !r.RemainingThisMonth.Equal(d("50")) {
		t.Errorf("remainingThisMonth = %s, want 50", r.RemainingThisMonth)
	}
}

func TestBreakdownFullyPaidRemainingZero(t *testing.T) {
	weekly := &FinanceBill{
		ID:             1,
		Amount:         d("25"),
		ChargeCycle:    ChargeCycleWeekly,
		MultiplierType: MultiplierTypeWeekly,
		PaymentDay:     1,
	}
	monthly := &FinanceBill{
		ID:             2,
		Amount:         d("100"),
		ChargeCycle:    ChargeCycleMonthly,
		MultiplierType: MultiplierTypeMonthly,
		NextDueDate:    datePtr(2025, time.January, 10),
	}
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 13)

	paid := map[int]int{1: 2, 2: 1}
	results := CalculateBillsBreakdown([]*FinanceBill{weekly, monthly}, paid, start, end, 14)
	for _, r := range results {
		if !r.RemainingThisMonth.IsZero() {
			t.Errorf("bill %d: remaining = %s, want 0", r.BillId, r.RemainingThisMonth)
		}
		if r.Overpaid {
			t.Errorf("bill %d: unexpectedly flagged overpaid", r.BillId)
		}
	}
}

func TestBreakdownOverpaidClampsAndFlags(t *testing.T) {
	bills := []*FinanceBill{{
		ID:             1,
		Amount:         d("25"),
		ChargeCycle:    ChargeCycleWeekly,
		MultiplierType: MultiplierTypeWeekly,
		PaymentDay:     1,
	}}
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 13)

	results := CalculateBillsBreakdown(bills, map[int]int{1: 5}, start, end, 14)
	r := results[0]
	if !r.RemainingThisMonth.IsZero() {
		t.Errorf("remaining = %s, want 0", r.RemainingThisMonth)
	}
	if !r.Overpaid {
		t.Error("expected overpaid flag")
	}
}

func TestBreakdownOneOffBill(t *testing.T) {
	inside := &FinanceBill{
		ID:             1,
		Amount:         d("300"),
		ChargeCycle:    ChargeCycleCustom,
		MultiplierType: MultiplierTypeOneOff,
		NextDueDate:    datePtr(2025, time.January, 10),
	}
	outside := &FinanceBill{
		ID:             2,
		Amount:         d("300"),
		ChargeCycle:    ChargeCycleCustom,
		MultiplierType: MultiplierTypeOneOff,
		NextDueDate:    datePtr(2025, time.March, 10),
	}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	results := CalculateBillsBreakdown([]*FinanceBill{inside, outside}, nil, start, end, 30)
	if results[0].TotalPayments != 1 {
		t.Errorf("in-cycle one_off totalPayments = %d, want 1", results[0].TotalPayments)
	}
	if !results[0].RemainingThisMonth.Equal(d("300")) {
		t.Errorf("in-cycle one_off remaining = %s, want 300", results[0].RemainingThisMonth)
	}
	if results[1].TotalPayments != 0 {
		t.Errorf("out-of-cycle one_off totalPayments = %d, want 0", results[1].TotalPayments)
	}
}

func TestBreakdownUnknownMultiplierEstimatesMonthly(t *testing.T) {
	bills := []*FinanceBill{{
		ID:             1,
		Amount:         d("100"),
		ChargeCycle:    ChargeCycleMonthly,
		MultiplierType: MultiplierType("quarterly-ish"),
	}}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	results := CalculateBillsBreakdown(bills, nil, start, end, 30)
	if results[0].TotalPayments != 1 {
		t.Errorf("totalPayments = %d, want 1", results[0].TotalPayments)
	}
}

func TestBreakdownWeeksRemainingRecomputed(t *testing.T) {
	bills := []*FinanceBill{{
		ID:             1,
		Amount:         d("25"),
		ChargeCycle:    ChargeCycleWeekly,
		MultiplierType: MultiplierTypeWeekly,
		PaymentDay:     1,
	}}
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 27) // 4 payment occurrences

	results := CalculateBillsBreakdown(bills, nil, start, end, 10)
	r := results[0]
	if r.TotalPayments != 4 {
		t.Errorf("totalPayments = %d, want 4", r.TotalPayments)
	}
	// ceil(10/7) = 2, independent of the 4 scheduled payments
	if r.WeeksRemaining != 2 {
		t.Errorf("weeksRemaining = %d, want 2", r.WeeksRemaining)
	}
}

func TestCalculateTotalBillsRemaining(t *testing.T) {
	if !CalculateTotalBillsRemaining(nil).IsZero() {
		t.Error("empty breakdown list should total 0")
	}

	total := CalculateTotalBillsRemaining([]BillBreakdown{
		{RemainingThisMonth: d("23.08")},
		{RemainingThisMonth: d("50")},
	})
	if !total.Equal(d("73.08")) {
		t.Errorf("total = %s, want 73.08", total)
	}
}

func TestCashFlowProjection(t *testing.T) {
	balances := []decimal.Decimal{d("1000"), d("500")}
	p := CalculateCashFlowProjection(balances, d("300"), 14)

	if !p.TotalAvailable.Equal(d("1500")) {
		t.Errorf("totalAvailable = %s, want 1500", p.TotalAvailable)
	}
	if !p.CashAvailable.Equal(d("1200")) {
		t.Errorf("cashAvailable = %s, want 1200", p.CashAvailable)
	}
	if p.CashPerWeek == nil || !p.CashPerWeek.Equal(d("600")) {
		t.Errorf("cashPerWeek = %v, want 600", p.CashPerWeek)
	}
	if p.SpendingPerDay == nil || !p.SpendingPerDay.Equal(d("85.71")) {
		t.Errorf("spendingPerDay = %v, want 85.71", p.SpendingPerDay)
	}
}

func TestCashFlowProjectionNoDaysRemaining(t *testing.T) {
	for _, days := range []int{0, -3} {
		p := CalculateCashFlowProjection([]decimal.Decimal{d("100")}, d("20"), days)
		if p.CashPerWeek != nil || p.SpendingPerDay != nil {
			t.Errorf("daysRemaining=%d: rates should be nil, got perWeek=%v perDay=%v",
				days, p.CashPerWeek, p.SpendingPerDay)
		}
		if !p.CashAvailable.Equal(d("80")) {
			t.Errorf("cashAvailable = %s, want 80", p.CashAvailable)
		}
	}
}
