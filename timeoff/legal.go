package timeoff

import "sort"

// =============================================================================
// LEGAL ENTITLEMENT TABLE
// =============================================================================

// LegalSubType names the qualifying event inside a legal category.
type LegalSubType string

const (
	SubOwnMarriage       LegalSubType = "own_marriage"
	SubChildMarriage     LegalSubType = "child_marriage"
	SubParentDeath       LegalSubType = "parent_death"
	SubSpouseDeath       LegalSubType = "spouse_death"
	SubSpouseParentDeath LegalSubType = "spouse_parent_death"
	SubGrandparentDeath  LegalSubType = "grandparent_death"
	SubSiblingDeath      LegalSubType = "sibling_death"
	SubSpouseChildbirth  LegalSubType = "spouse_childbirth"

	SubReserveForces LegalSubType = "reserve_forces"
	SubCivilDefense  LegalSubType = "civil_defense"
	SubCourtSummons  LegalSubType = "court_summons"
	SubVoting        LegalSubType = "voting"
	SubHealthCheckup LegalSubType = "health_checkup"
)

// LegalEntitlement is the statutory allowance for one event.
// ActualDuration means the allowance is the length of the event itself.
type LegalEntitlement struct {
	Category       Category     `json:"category"`
	SubType        LegalSubType `json:"sub_type"`
	Days           int          `json:"days"`
	ActualDuration bool         `json:"actual_duration"`
}

type legalKey struct {
	category Category
	subType  LegalSubType
}

var legalTable = map[legalKey]LegalEntitlement{}

func init() {
	for _, e := range []LegalEntitlement{
		{Category: CategoryFamilyEvent, SubType: SubOwnMarriage, Days: 5},
		{Category: CategoryFamilyEvent, SubType: SubChildMarriage, Days: 1},
		{Category: CategoryFamilyEvent, SubType: SubParentDeath, Days: 5},
		{Category: CategoryFamilyEvent, SubType: SubSpouseDeath, Days: 5},
		{Category: CategoryFamilyEvent, SubType: SubSpouseParentDeath, Days: 5},
		{Category: CategoryFamilyEvent, SubType: SubGrandparentDeath, Days: 3},
		{Category: CategoryFamilyEvent, SubType: SubSiblingDeath, Days: 1},
		{Category: CategoryFamilyEvent, SubType: SubSpouseChildbirth, Days: 10},

		{Category: CategoryCivilDuty, SubType: SubReserveForces, ActualDuration: true},
		{Category: CategoryCivilDuty, SubType: SubCivilDefense, ActualDuration: true},
		{Category: CategoryCivilDuty, SubType: SubCourtSummons, ActualDuration: true},
		{Category: CategoryCivilDuty, SubType: SubVoting, ActualDuration: true},
		{Category: CategoryCivilDuty, SubType: SubHealthCheckup, Days: 1},
	} {
		legalTable[legalKey{e.Category, e.SubType}] = e
	}
}

// LookupLegal returns the statutory entitlement for (category, subType).
// ok is false when no statutory entitlement exists; that is not the same
// as an entitlement of zero days.
func LookupLegal(category Category, subType LegalSubType) (LegalEntitlement, bool) {
	e, ok := legalTable[legalKey{category, subType}]
	return e, ok
}

// LegalEntitlements lists the whole table, ordered by category and sub-type.
func LegalEntitlements() []LegalEntitlement {
	out := make([]LegalEntitlement, 0, len(legalTable))
	for _, e := range legalTable {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].SubType < out[j].SubType
	})
	return out
}
