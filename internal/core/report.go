package core

// ReportItem is one line of a monthly report. Recurring expenses appear once,
// dated at the first day of the month.
type ReportItem struct {
	ExpenseID   int64       `json:"expenseId"`
	CategoryID  int64       `json:"categoryId"`
	Description string      `json:"description"`
	Amount      Money       `json:"amount"`
	Date        Date        `json:"date"`
	Type        ExpenseType `json:"type"`
	Virtual     bool        `json:"isVirtual"`
}

// CategoryTotal is the summed amount of one category in a report.
type CategoryTotal struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
	Total        Money  `json:"total"`
	Count        int    `json:"count"`
}

// MonthlyReport is the expense breakdown for one calendar month.
type MonthlyReport struct {
	MonthStart Date            `json:"monthStart"`
	MonthEnd   Date            `json:"monthEnd"`
	Total      Money           `json:"total"`
	ByCategory []CategoryTotal `json:"byCategory"`
	Items      []ReportItem    `json:"items"`
}

// PeriodSummary is the income and expense balance over a window.
type PeriodSummary struct {
	TotalIncome  Money `json:"totalIncome"`
	TotalExpense Money `json:"totalExpense"`
	NetBalance   Money `json:"netBalance"`
}

// NewPeriodSummary computes the net balance, which may be negative.
func NewPeriodSummary(income, expense Money) PeriodSummary {
	return PeriodSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		NetBalance:   income.Sub(expense),
	}
}

// BudgetAlert flags a month where expenses exceed income.
type BudgetAlert struct {
	Alert   bool   `json:"alert"`
	Message string `json:"message"`
}
