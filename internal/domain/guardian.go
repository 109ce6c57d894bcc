package domain

import "github.com/google/uuid"

// Guardian is the read model of a billed guardian. Guardian CRUD lives in
// another domain; reconciliation only needs the fields candidate scoring and
// passbook posting read.
type Guardian struct {
	ID         uuid.UUID
	GuardianNo string // external ID referenced by transfer guardian-number hints
	Name       string
	NameKana   string
	Aliases    []string // alternative registered payer names (grandparent, employer, ...)
}
