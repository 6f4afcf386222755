package refstore

import (
	"strings"

	"pointake/internal"
	"pointake/internal/match"
	"pointake/internal/util"
)

type Snapshot struct {
	parts     []internal.Part
	customers []internal.Customer

	partsByCode     map[string]internal.Part
	customersByName map[string][]internal.Customer
	byAccount       map[string]internal.Customer

	partEntries     []match.Entry
	customerEntries []match.Entry
}

func BuildSnapshot(parts []internal.Part, customers []internal.Customer) *Snapshot {
	snap := &Snapshot{
		parts:           parts,
		customers:       customers,
		partsByCode:     map[string]internal.Part{},
		customersByName: map[string][]internal.Customer{},
		byAccount:       map[string]internal.Customer{},
	}

	snap.partEntries = make([]match.Entry, 0, len(parts))
	for _, p := range parts {
		code := util.NormalizeCode(p.InternalPartNumber)
		if code != "" {
			snap.partsByCode[code] = p
		}
		text := strings.TrimSpace(p.InternalPartNumber + " " + p.Description)
		snap.partEntries = append(snap.partEntries, match.Entry{Key: p.InternalPartNumber, Text: text})
	}

	snap.customerEntries = make([]match.Entry, 0, len(customers))
	for _, c := range customers {
		name := util.NormalizeText(c.CompanyName)
		if name != "" {
			snap.customersByName[name] = append(snap.customersByName[name], c)
		}
		snap.byAccount[c.AccountNumber] = c
		snap.customerEntries = append(snap.customerEntries, match.Entry{Key: c.AccountNumber, Text: c.CompanyName})
	}

	return snap
}

func (s *Snapshot) PartByCode(code string) (internal.Part, bool) {
	p, ok := s.partsByCode[code]
	return p, ok
}

func (s *Snapshot) PartByNumber(number string) (internal.Part, bool) {
	for _, p := range s.parts {
		if p.InternalPartNumber == number {
			return p, true
		}
	}
	return internal.Part{}, false
}

func (s *Snapshot) CustomersByName(normalized string) []internal.Customer {
	return s.customersByName[normalized]
}

func (s *Snapshot) CustomerByAccount(account string) (internal.Customer, bool) {
	c, ok := s.byAccount[account]
	return c, ok
}

func (s *Snapshot) PartEntries() []match.Entry { return s.partEntries }

func (s *Snapshot) CustomerEntries() []match.Entry { return s.customerEntries }

func (s *Snapshot) PartCount() int { return len(s.parts) }

func (s *Snapshot) CustomerCount() int { return len(s.customers) }
