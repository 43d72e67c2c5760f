package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
)

type Student struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Registration string  `json:"registration"`
	CreditRatio  float64 `json:"credit_ratio"`

	Bank        null.String `json:"bank"`
	BankBranch  null.String `json:"bank_branch"`
	BankAccount null.String `json:"bank_account"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// HasBankingDetails reports whether the student can receive scholarship
// payments. All three fields are required before a scholarship is accepted.
func (s Student) HasBankingDetails() bool {
	return s.Bank.String != "" && s.BankBranch.String != "" && s.BankAccount.String != ""
}

// BankingDetails defines what information may be provided to update a
// student's payment data.
type BankingDetails struct {
	Bank        string `json:"bank" validate:"required"`
	BankBranch  string `json:"bank_branch" validate:"required"`
	BankAccount string `json:"bank_account" validate:"required"`
}

func (bd *BankingDetails) Validate() error {
	bd.Bank = core.CleanString(bd.Bank)
	bd.BankBranch = core.CleanString(bd.BankBranch)
	bd.BankAccount = core.CleanString(bd.BankAccount)
	return core.Validate.Struct(bd)
}
