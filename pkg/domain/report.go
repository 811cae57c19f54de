package domain

// Period is the resolved time window of a report.
type Period struct {
	From Timestamp `json:"from"`
	To   Timestamp `json:"to"`
}

// MoneyFlow sums one direction of payments.
type MoneyFlow struct {
	SumCompletedUSD Number `json:"sum_completed_usd"`
	SumAllUSD       Number `json:"sum_all_usd"`
}

// DashboardKPIs are the headline numbers of the dashboard.
type DashboardKPIs struct {
	ProfitUSD             Number    `json:"profit_usd"`
	DepositsSumUSD        Number    `json:"deposits_sum_usd"`
	WinsUSD               Number    `json:"wins_usd"`
	LossesUSD             Number    `json:"losses_usd"`
	SpinsCount            Int       `json:"spins_count"`
	NewUsers              Int       `json:"new_users"`
	NewUsersFromReferrals Int       `json:"new_users_from_referrals"`
	Deposits              MoneyFlow `json:"deposits"`
	Withdrawals           MoneyFlow `json:"withdrawals"`
}

// CaseTypeSpins counts spins per case type.
type CaseTypeSpins struct {
	TypeID Int    `json:"type_id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Spins  Int    `json:"spins"`
}

// TopUser is a row of the dashboard leaderboards.
type TopUser struct {
	UserID        Int    `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Spins         Int    `json:"spins"`
	UserProfitUSD Number `json:"user_profit_usd"`
}

// NewUser is an account registered inside the dashboard period.
type NewUser struct {
	ID           Int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DateJoined   Timestamp `json:"date_joined"`
	BalanceUSD   Number    `json:"profile__balance_usd"`
	ReferredByID Int       `json:"referral__referred_by_id"`
}

// Dashboard is the payload of /api/admin/dashboard/.
type Dashboard struct {
	Period       *Period         `json:"period"`
	KPIs         DashboardKPIs   `json:"kpis"`
	SpinsByType  []CaseTypeSpins `json:"spins_by_type"`
	TopUsers     TopUsers        `json:"top_users"`
	NewUsersList []NewUser       `json:"new_users_list"`
}

// TopUsers are the dashboard leaderboards.
type TopUsers struct {
	BySpins      []TopUser `json:"by_spins"`
	ByUserProfit []TopUser `json:"by_user_profit"`
}

// DepositStatus is a payment state code with its display name.
type DepositStatus struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Deposit is one incoming payment.
type Deposit struct {
	ID          Int           `json:"id"`
	User        User          `json:"user"`
	AmountUSD   Number        `json:"amount_usd"`
	Method      string        `json:"method"`
	Status      DepositStatus `json:"status"`
	CreatedAt   Timestamp     `json:"created_at"`
	ProcessedAt Timestamp     `json:"processed_at"`
}

// DepositPage is one page of /api/admin/deposits/.
type DepositPage struct {
	Deposits []Deposit `json:"deposits"`
	Total    Int       `json:"total"`
	Period   *Period   `json:"period"`
}

// Promocode is a balance top-up code.
type Promocode struct {
	ID                   Int       `json:"id"`
	Code                 string    `json:"code"`
	PromoType            string    `json:"promo_type"`
	AmountUSD            Number    `json:"amount_usd"`
	MaxActivations       Int       `json:"max_activations"`
	RemainingActivations Int       `json:"remaining_activations"`
	IsActive             bool      `json:"is_active"`
	StartsAt             Timestamp `json:"starts_at"`
	EndsAt               Timestamp `json:"ends_at"`
}

// SingleUse reports whether the code can be redeemed once per account.
func (p Promocode) SingleUse() bool {
	return p.PromoType == "single"
}

// PromocodeActivation records one redemption.
type PromocodeActivation struct {
	ID        Int          `json:"id"`
	Promocode PromocodeRef `json:"promocode"`
	User      User         `json:"user"`
	AmountUSD Number       `json:"amount_usd"`
	CreatedAt Timestamp    `json:"created_at"`
}

// PromocodeRef names the code an activation used.
type PromocodeRef struct {
	Code string `json:"code"`
}

// ReferralBonus is a commission paid to a referrer for a referral's deposit.
type ReferralBonus struct {
	ID        Int        `json:"id"`
	CreatedAt Timestamp  `json:"created_at"`
	Referrer  User       `json:"referrer"`
	Referral  User       `json:"referral"`
	Deposit   DepositRef `json:"deposit"`
	Level     Int        `json:"level"`
	Percent   Number     `json:"percent"`
	AmountUSD Number     `json:"amount_usd"`
}

// DepositRef is the deposit a referral bonus was paid on.
type DepositRef struct {
	ID        Int    `json:"id"`
	AmountUSD Number `json:"amount_usd"`
}

// Pagination describes a page of a paged report.
type Pagination struct {
	Page       Int `json:"page"`
	TotalPages Int `json:"total_pages"`
	TotalCount Int `json:"total_count"`
}

// ReferralBonusPage is one page of /api/admin/referral-bonuses/.
type ReferralBonusPage struct {
	Items       []ReferralBonus `json:"items"`
	Pagination  Pagination      `json:"pagination"`
	TotalSumUSD Number          `json:"total_sum_usd"`
	Period      *Period         `json:"period"`
}

// RefLevel is the commission percent of one referral level.
type RefLevel struct {
	ID      Int    `json:"id"`
	Level   Int    `json:"level"`
	Percent Number `json:"percent"`
}

// CashbackSetting is the loss cashback percent.
type CashbackSetting struct {
	ID      Int    `json:"id"`
	Percent Number `json:"percent"`
}
