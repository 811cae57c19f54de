package domain

import "time"

// User is the identity returned by /api/auth/me/.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Privileged reports whether the account may use the admin console.
func (u *User) Privileged() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// DisplayName prefers the username and falls back to the email.
func (u User) DisplayName() string {
	return firstNonEmpty(u.Username, u.Email)
}

// Profile holds a customer's running balances.
type Profile struct {
	BalanceUSD      Number `json:"balance_usd"`
	DepositTotalUSD Number `json:"deposit_total_usd"`
	WonTotalUSD     Number `json:"won_total_usd"`
	LostTotalUSD    Number `json:"lost_total_usd"`
}

// UserRow is one entry of the admin user list.
type UserRow struct {
	User
	Profile Profile `json:"profile"`
}

// Referral is an invited account on one of the two referral levels.
type Referral struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Percent    Number `json:"percent"`
	ReferredBy *User  `json:"referred_by,omitempty"`
}

// Referrals groups a user's invitees by level.
type Referrals struct {
	Level1Percent Number     `json:"level1_percent"`
	Level2Percent Number     `json:"level2_percent"`
	Level1        []Referral `json:"level1"`
	Level2        []Referral `json:"level2"`
}

// SpinSummary is a spin as listed in a user's history.
type SpinSummary struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Case      CaseRef   `json:"case"`
	Prize     PrizeRef  `json:"prize"`
}

// UserDetails is the payload of /api/admin/users/{id}/details/.
type UserDetails struct {
	User      UserRow       `json:"user"`
	Referrals Referrals     `json:"referrals"`
	Spins     []SpinSummary `json:"spins"`
}
