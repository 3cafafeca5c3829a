package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Human readable activity names
const (
	ActivityBuyOrder          = "Buy Order"
	ActivitySellOrder         = "Sell Order"
	ActivityJournalDeposit    = "Journal Deposit"
	ActivityJournalWithdrawal = "Journal Withdrawal"
	ActivityACHDeposit        = "ACH Deposit"
	ActivityACHWithdrawal     = "ACH Withdrawal"
	ActivityREGFee            = "REG Fee"
	ActivityTAFFee            = "TAF Fee"
	ActivityFee               = "Fee"
	ActivityDividend          = "Dividend"
	ActivitySplit             = "Split"
	ActivitySpinOff           = "Spin-off"
	ActivityMerger            = "Merger / Acquisition"
	ActivityStockJournal      = "Stock Journal"
)

// Activity is an account activity as reported by the broker, plus its
// display name.
type Activity struct {
	ID              string           `json:"id"`
	AccountID       string           `json:"account_id,omitempty"`
	ActivityType    string           `json:"activity_type"`
	Date            string           `json:"date,omitempty"`
	TransactionTime *time.Time       `json:"transaction_time,omitempty"`
	NetAmount       decimal.Decimal  `json:"net_amount"`
	Description     string           `json:"description,omitempty"`
	Symbol          string           `json:"symbol,omitempty"`
	Qty             *decimal.Decimal `json:"qty,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Side            string           `json:"side,omitempty"`
	Status          string           `json:"status,omitempty"`
	Name            string           `json:"activity_name"`
}

type activityRule struct {
	activityType string
	match        func(a *Activity) bool
	name         string
}

func always(*Activity) bool { return true }

func sideIs(side string) func(*Activity) bool {
	return func(a *Activity) bool { return strings.HasPrefix(strings.ToLower(a.Side), side) }
}

func credit(a *Activity) bool { return !a.NetAmount.IsNegative() }

func debit(a *Activity) bool { return a.NetAmount.IsNegative() }

func describes(token string) func(*Activity) bool {
	return func(a *Activity) bool { return strings.Contains(strings.ToUpper(a.Description), token) }
}

// First match wins. Types without a rule keep their raw code as name.
var activityRules = []activityRule{
	{"FILL", sideIs("buy"), ActivityBuyOrder},
	{"FILL", sideIs("sell"), ActivitySellOrder},
	{"JNLC", credit, ActivityJournalDeposit},
	{"JNLC", debit, ActivityJournalWithdrawal},
	{"CSD", always, ActivityACHDeposit},
	{"CSW", always, ActivityACHWithdrawal},
	{"TRANS", credit, ActivityACHDeposit},
	{"TRANS", debit, ActivityACHWithdrawal},
	{"FEE", describes("REG"), ActivityREGFee},
	{"FEE", describes("TAF"), ActivityTAFFee},
	{"FEE", always, ActivityFee},
	{"DIV", always, ActivityDividend},
	{"SPLIT", always, ActivitySplit},
	{"SPIN", always, ActivitySpinOff},
	{"MA", always, ActivityMerger},
	{"JNLS", always, ActivityStockJournal},
}

// ClassifyActivity returns the display name for an activity
func ClassifyActivity(a *Activity) string {
	activityType := strings.ToUpper(a.ActivityType)
	for _, rule := range activityRules {
		if rule.activityType == activityType && rule.match(a) {
			return rule.name
		}
	}
	return a.ActivityType
}

// ClassifyActivities sets the display name of every activity in place
func ClassifyActivities(activities []Activity) []Activity {
	for i := range activities {
		activities[i].Name = ClassifyActivity(&activities[i])
	}
	return activities
}
