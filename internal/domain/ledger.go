package domain

import "time"

// ComputeBalance derives a household's financial position from its
// contribution start date and full transaction history.
//
// TotalDays counts calendar days from startDate through today inclusive,
// clamped to zero when the start date lies in the future. TotalObligation
// is the day-count estimate TotalDays × DailyRate, independent of how
// many DEBIT rows the accrual feed actually materialized. Balance is the
// ledger truth: sum of CREDIT amounts minus sum of DEBIT amounts. When
// the feed has gaps the obligation and the DEBIT sum drift apart; both
// views are returned without reconciliation.
func ComputeBalance(household Household, today time.Time, txs []Transaction) BalanceInfo {
	totalDays := DaysInclusive(household.ContributionStartDate, today)

	var debits, credits int64
	for _, tx := range txs {
		switch tx.Type {
		case TypeDebit:
			debits += tx.Amount
		case TypeCredit:
			credits += tx.Amount
		}
	}

	return BalanceInfo{
		Balance:         credits - debits,
		TotalDays:       totalDays,
		TotalObligation: int64(totalDays) * DailyRate,
		TotalPayments:   credits,
	}
}

// ComputePeriodReport builds one report row per household for the given
// collection period. Households with no activity still get a row so they
// surface as UNPAID.
//
// TotalDue sums DEBIT amounts dated within the period's window. TotalPaid
// sums CREDIT amounts explicitly linked to the period via PeriodID;
// unscoped CREDITs are excluded from period totals. Equality of paid and
// due counts as PAID. Row order follows the input household order; any
// presentation sorting is the caller's concern.
func ComputePeriodReport(period CollectionPeriod, households []Household, txs []Transaction) []PeriodReportRow {
	type tally struct {
		due  int64
		paid int64
	}
	tallies := make(map[string]*tally, len(households))
	for _, h := range households {
		tallies[h.ID] = &tally{}
	}

	for _, tx := range txs {
		t, ok := tallies[tx.HouseholdID]
		if !ok {
			continue
		}
		switch tx.Type {
		case TypeDebit:
			if WithinRange(tx.TransactionDate, period.StartDate, period.EndDate) {
				t.due += tx.Amount
			}
		case TypeCredit:
			if tx.PeriodID == period.ID {
				t.paid += tx.Amount
			}
		}
	}

	rows := make([]PeriodReportRow, 0, len(households))
	for _, h := range households {
		t := tallies[h.ID]
		status := StatusUnpaid
		if t.paid >= t.due {
			status = StatusPaid
		}
		rows = append(rows, PeriodReportRow{
			HouseholdID:   h.ID,
			HouseholdName: h.Name,
			TotalDue:      t.due,
			TotalPaid:     t.paid,
			Status:        status,
		})
	}
	return rows
}

// ComputeSummary aggregates per-household balances into the dashboard
// figures. Debt and deposit accounting is restricted to active
// households; totalCash is the system-wide CREDIT sum and is passed in
// because it covers inactive households too. The result is independent
// of input order, and an empty household set yields an all-zero summary.
func ComputeSummary(households []HouseholdWithBalance, totalCash int64) DashboardSummary {
	s := DashboardSummary{
		TotalHouseholds:    len(households),
		TotalCashCollected: totalCash,
	}
	for _, h := range households {
		if h.Status != HouseholdActive {
			continue
		}
		s.ActiveHouseholds++
		switch {
		case h.Balance < 0:
			s.HouseholdsInDebt++
			s.TotalDebtAmount += -h.Balance
		case h.Balance > 0:
			s.HouseholdsWithDeposit++
			s.TotalDepositAmount += h.Balance
		}
	}
	return s
}
