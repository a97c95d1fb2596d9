package entitlements

import (
	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
)

// Quota is the per-cycle allowance for one resource kind. Unlimited always
// compares greater than any finite usage count.
type Quota int64

// Unlimited marks a tier without a cap for a resource kind.
const Unlimited Quota = -1

// IsUnlimited reports whether the quota has no cap.
func (q Quota) IsUnlimited() bool {
	return q == Unlimited
}

// Allows reports whether one more unit may be consumed at the given usage.
// Reaching the quota exactly blocks the next unit.
func (q Quota) Allows(used int64) bool {
	if q.IsUnlimited() {
		return true
	}
	return used < int64(q)
}

// Quotas groups the three per-kind allowances of a plan tier.
type Quotas struct {
	Proposals  Quota
	Contracts  Quota
	AIMessages Quota
}

// For returns the allowance matching the resource kind.
func (q Quotas) For(kind enums.ResourceKind) Quota {
	switch kind {
	case enums.ResourceProposal:
		return q.Proposals
	case enums.ResourceContract:
		return q.Contracts
	case enums.ResourceAIMessage:
		return q.AIMessages
	default:
		return 0
	}
}

// planQuotas is the single source of truth for plan economics. Changing tier
// limits means changing this table, never account data.
var planQuotas = map[enums.PlanName]Quotas{
	enums.PlanFree:         {Proposals: 3, Contracts: 1, AIMessages: 10},
	enums.PlanProfessional: {Proposals: 100, Contracts: 50, AIMessages: 500},
	enums.PlanBusiness:     {Proposals: Unlimited, Contracts: Unlimited, AIMessages: Unlimited},
}

// QuotasFor returns the allowances for the plan. Unrecognized plans fall back
// to the Free tier row; the lookup never fails.
func QuotasFor(plan enums.PlanName) Quotas {
	if quotas, ok := planQuotas[plan]; ok {
		return quotas
	}
	return planQuotas[enums.PlanFree]
}

// QuotaFor returns the allowance for one plan/kind pair.
func QuotaFor(plan enums.PlanName, kind enums.ResourceKind) Quota {
	return QuotasFor(plan).For(kind)
}

// UsedCount returns the counter matching the resource kind. This is the only
// place that maps kinds onto subscription fields.
func UsedCount(sub *models.Subscription, kind enums.ResourceKind) int64 {
	if sub == nil {
		return 0
	}
	switch kind {
	case enums.ResourceProposal:
		return sub.ProposalsUsed
	case enums.ResourceContract:
		return sub.ContractsUsed
	case enums.ResourceAIMessage:
		return sub.AIMessagesUsed
	default:
		return 0
	}
}

// CanConsume reports whether the subscription may consume one more unit of the
// resource kind. Pure; safe to call concurrently.
func CanConsume(sub *models.Subscription, kind enums.ResourceKind) bool {
	if sub == nil {
		return false
	}
	return QuotaFor(sub.Plan, kind).Allows(UsedCount(sub, kind))
}
