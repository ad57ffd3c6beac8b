package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pure cycle math. No DB, no clock reads: callers pass the billing cycle
// bounds and days remaining so results are deterministic and testable.

var (
	weeksPerYear   = decimal.NewFromInt(52)
	weeksPerMonth  = decimal.RequireFromString("4.33")
	daysPerWeekDec = decimal.NewFromInt(7)
)

type BillCosts struct {
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// CalculateBillCosts converts a bill amount to weekly and monthly cost.
// weekly = amount * cyclesPerYear / 52, monthly = weekly * 4.33.
// Unknown cycles contribute zero (legacy rows predate write-time validation).
func CalculateBillCosts(amount decimal.Decimal, cycle ChargeCycle) BillCosts {
	weekly := amount.Mul(cycle.CyclesPerYear()).Div(weeksPerYear)
	monthly := weekly.Mul(weeksPerMonth)
	return BillCosts{
		Weekly:  weekly.Round(2),
		Monthly: monthly.Round(2),
	}
}

type BillBreakdown struct {
	BillId             int             `json:"bill_id"`
	CompanyName        string          `json:"company_name"`
	TotalWeeklyCost    decimal.Decimal `json:"total_weekly_cost"`
	TotalMonthlyCost   decimal.Decimal `json:"total_monthly_cost"`
	RemainingThisMonth decimal.Decimal `json:"remaining_this_month"`
	WeeksRemaining     int             `json:"weeks_remaining"`
	TotalPayments      int             `json:"total_payments"`
	PaymentsPaid       int             `json:"payments_paid"`
	Overpaid           bool            `json:"overpaid"`
}

// normalizeDay strips the time component so date comparisons are calendar-day math.
func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clampDayOfMonth returns the given day in year/month, pulled back to the last
// day of the month when the month is shorter (Jan 31 -> Feb 28).
func clampDayOfMonth(year int, month time.Month, day int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// countMonthlyOccurrences counts due dates for a monthly bill inside
// [start, end], capped at one occurrence per cycle.
func countMonthlyOccurrences(dueDay int, start, end time.Time) int {
	year, month := start.Year(), start.Month()
	for {
		due := clampDayOfMonth(year, month, dueDay)
		if due.After(end) {
			return 0
		}
		if !due.Before(start) {
			// a billing cycle pays a monthly bill at most once
			return 1
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
}

// countWeeklyOccurrences steps by 7 days from the first date in [start, end]
// whose weekday matches paymentDay (0 = Sunday).
func countWeeklyOccurrences(paymentDay int, start, end time.Time) int {
	offset := (paymentDay - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)
	if first.After(end) {
		return 0
	}
	return int(end.Sub(first).Hours()/(24*7)) + 1
}

// CalculateBillsBreakdown computes per-bill payment counts and remaining cost
// for a billing cycle. weeksRemaining is recomputed from daysRemaining for
// every bill; it is a display field, never the payment count.
func CalculateBillsBreakdown(bills []*FinanceBill, paymentsPaid map[int]int, cycleStart, cycleEnd time.Time, daysRemaining int) []BillBreakdown {
	start := normalizeDay(cycleStart)
	end := normalizeDay(cycleEnd)

	weeksRemaining := 0
	if daysRemaining > 0 {
		weeksRemaining = (daysRemaining + 6) / 7
	}

	results := make([]BillBreakdown, 0, len(bills))
	for _, bill := range bills {
		costs := CalculateBillCosts(bill.Amount, bill.ChargeCycle)

		var totalPayments int
		monthlyStyle := false
		switch bill.MultiplierType {
		case MultiplierTypeMonthly:
			dueDay := 1
			if bill.NextDueDate != nil {
				dueDay = bill.NextDueDate.Day()
			}
			totalPayments = countMonthlyOccurrences(dueDay, start, end)
			monthlyStyle = true
		case MultiplierTypeWeekly:
			totalPayments = countWeeklyOccurrences(bill.PaymentDay, start, end)
		case MultiplierTypeOneOff:
			if bill.NextDueDate != nil {
				due := normalizeDay(*bill.NextDueDate)
				if !due.Before(start) && !due.After(end) {
					totalPayments = 1
				}
			}
		default:
			// unrecognized multipliers estimate as a single monthly occurrence
			totalPayments = 1
			monthlyStyle = true
		}

		paid := paymentsPaid[bill.ID]
		unpaid := totalPayments - paid
		overpaid := false
		if unpaid < 0 {
			// more payments recorded than the cycle schedules: clamp and flag
			unpaid = 0
			overpaid = true
		}
		// Monthly-style bills owe the cycle-prorated cost once; weekly and
		// one_off bills owe the full amount per unpaid occurrence.
		var remaining decimal.Decimal
		if monthlyStyle {
			if unpaid > 0 {
				remaining = costs.Weekly
			} else {
				remaining = decimal.Zero
			}
		} else {
			remaining = bill.Amount.Mul(decimal.NewFromInt(int64(unpaid))).Round(2)
		}

		results = append(results, BillBreakdown{
			BillId:             bill.ID,
			CompanyName:        bill.CompanyName,
			TotalWeeklyCost:    costs.Weekly,
			TotalMonthlyCost:   costs.Monthly,
			RemainingThisMonth: remaining,
			WeeksRemaining:     weeksRemaining,
			TotalPayments:      totalPayments,
			PaymentsPaid:       paid,
			Overpaid:           overpaid,
		})
	}
	return results
}

// CalculateTotalBillsRemaining sums remaining cost across breakdowns (0 for empty).
func CalculateTotalBillsRemaining(breakdowns []BillBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, b := range breakdowns {
		total = total.Add(b.RemainingThisMonth)
	}
	return total
}

type CashFlowProjection struct {
	TotalAvailable decimal.Decimal  `json:"total_available"`
	BillsRemaining decimal.Decimal  `json:"bills_remaining"`
	CashAvailable  decimal.Decimal  `json:"cash_available"`
	DaysRemaining  int              `json:"days_remaining"`
	CashPerWeek    *decimal.Decimal `json:"cash_per_week"`
	SpendingPerDay *decimal.Decimal `json:"spending_per_day"`
}

// CalculateCashFlowProjection derives spendable cash for the rest of the cycle.
// Rates are nil when daysRemaining <= 0 (no divide-by-zero, no bogus numbers
// after a cycle ends).
func CalculateCashFlowProjection(accountBalances []decimal.Decimal, billsRemaining decimal.Decimal, daysRemaining int) CashFlowProjection {
	total := decimal.Zero
	for _, b := range accountBalances {
		total = total.Add(b)
	}

	cash := total.Sub(billsRemaining)
	result := CashFlowProjection{
		TotalAvailable: total.Round(2),
		BillsRemaining: billsRemaining.Round(2),
		CashAvailable:  cash.Round(2),
		DaysRemaining:  daysRemaining,
	}

	if daysRemaining > 0 {
		days := decimal.NewFromInt(int64(daysRemaining))
		perWeek := cash.Div(days.Div(daysPerWeekDec)).Round(2)
		perDay := cash.Div(days).Round(2)
		result.CashPerWeek = &perWeek
		result.SpendingPerDay = &perDay
	}
	return result
}
