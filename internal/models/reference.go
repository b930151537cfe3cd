package models

// PaymentPlan is a billing cadence
type PaymentPlan struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	MonthsPerCycle int    `json:"months_per_cycle"`
	CyclesPerYear  int    `json:"cycles_per_year"`
}

// ContractType is a contract term length
type ContractType struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Years int    `json:"years"`
}

// Payment plan ids
const (
	PaymentPlanMonthly    uint = 1
	PaymentPlanQuarterly  uint = 2
	PaymentPlanSemiAnnual uint = 3
	PaymentPlanAnnual     uint = 4
)

// Contract type ids
const (
	ContractTypeOneYear   uint = 1
	ContractTypeTwoYear   uint = 2
	ContractTypeThreeYear uint = 3
)

var paymentPlans = []PaymentPlan{
	{ID: PaymentPlanMonthly, Name: "月繳", MonthsPerCycle: 1, CyclesPerYear: 12},
	{ID: PaymentPlanQuarterly, Name: "季繳", MonthsPerCycle: 3, CyclesPerYear: 4},
	{ID: PaymentPlanSemiAnnual, Name: "半年繳", MonthsPerCycle: 6, CyclesPerYear: 2},
	{ID: PaymentPlanAnnual, Name: "年繳", MonthsPerCycle: 12, CyclesPerYear: 1},
}

var contractTypes = []ContractType{
	{ID: ContractTypeOneYear, Name: "一年約", Years: 1},
	{ID: ContractTypeTwoYear, Name: "二年約", Years: 2},
	{ID: ContractTypeThreeYear, Name: "三年約", Years: 3},
}

// FindPaymentPlan looks up a plan in the fixed reference set
func FindPaymentPlan(id uint) (PaymentPlan, bool) {
	for _, p := range paymentPlans {
		if p.ID == id {
			return p, true
		}
	}
	return PaymentPlan{}, false
}

// FindContractType looks up a contract type in the fixed reference set
func FindContractType(id uint) (ContractType, bool) {
	for _, ct := range contractTypes {
		if ct.ID == id {
			return ct, true
		}
	}
	return ContractType{}, false
}

// PaymentPlans returns a copy of the reference set
func PaymentPlans() []PaymentPlan {
	out := make([]PaymentPlan, len(paymentPlans))
	copy(out, paymentPlans)
	return out
}

// ContractTypes returns a copy of the reference set
func ContractTypes() []ContractType {
	out := make([]ContractType, len(contractTypes))
	copy(out, contractTypes)
	return out
}
