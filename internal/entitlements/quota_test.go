package entitlements

import (
	"testing"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
)

func TestQuotasForKnownPlans(t *testing.T) {
	tests := []struct {
		plan      enums.PlanName
		kind      enums.ResourceKind
		wantQuota Quota
	}{
		{enums.PlanFree, enums.ResourceProposal, 3},
		{enums.PlanFree, enums.ResourceContract, 1},
		{enums.PlanFree, enums.ResourceAIMessage, 10},
		{enums.PlanProfessional, enums.ResourceProposal, 100},
		{enums.PlanProfessional, enums.ResourceContract, 50},
		{enums.PlanProfessional, enums.ResourceAIMessage, 500},
		{enums.PlanBusiness, enums.ResourceProposal, Unlimited},
		{enums.PlanBusiness, enums.ResourceContract, Unlimited},
		{enums.PlanBusiness, enums.ResourceAIMessage, Unlimited},
	}
	for _, tc := range tests {
		if got := QuotaFor(tc.plan, tc.kind); got != tc.wantQuota {
			t.Fatalf("QuotaFor(%s, %s) = %d, want %d", tc.plan, tc.kind, got, tc.wantQuota)
		}
	}
}

func TestQuotasForUnknownPlanFallsBackToFree(t *testing.T) {
	got := QuotasFor(enums.PlanName("Enterprise-Legacy"))
	want := planQuotas[enums.PlanFree]
	if got != want {
		t.Fatalf("unknown plan quotas = %+v, want Free quotas %+v", got, want)
	}
}

func TestCanConsumeStrictlyBelowLimit(t *testing.T) {
	sub := &models.Subscription{Plan: enums.PlanFree, ProposalsUsed: 2}
	if !CanConsume(sub, enums.ResourceProposal) {
		t.Fatal("expected 2 of 3 proposals to allow consumption")
	}

	sub.ProposalsUsed = 3
	if CanConsume(sub, enums.ResourceProposal) {
		t.Fatal("expected 3 of 3 proposals to block consumption")
	}
}

func TestCanConsumeAtAndAboveLimit(t *testing.T) {
	sub := &models.Subscription{Plan: enums.PlanFree, ContractsUsed: 1}
	if CanConsume(sub, enums.ResourceContract) {
		t.Fatal("expected contract at limit to block")
	}

	// Counters above the limit can appear after a downgrade; they must still block.
	sub.ContractsUsed = 7
	if CanConsume(sub, enums.ResourceContract) {
		t.Fatal("expected contract above limit to block")
	}
}

func TestCanConsumeUnlimited(t *testing.T) {
	sub := &models.Subscription{Plan: enums.PlanBusiness, AIMessagesUsed: 999999}
	if !CanConsume(sub, enums.ResourceAIMessage) {
		t.Fatal("expected Business plan to never block")
	}
}

func TestCanConsumeNilSubscription(t *testing.T) {
	if CanConsume(nil, enums.ResourceProposal) {
		t.Fatal("expected nil subscription to block")
	}
}

func TestQuotaAllows(t *testing.T) {
	if !Unlimited.Allows(1 << 40) {
		t.Fatal("expected unlimited quota to allow any count")
	}
	if Quota(3).Allows(3) {
		t.Fatal("expected quota 3 to reject used=3")
	}
	if !Quota(3).Allows(2) {
		t.Fatal("expected quota 3 to allow used=2")
	}
}
