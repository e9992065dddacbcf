package model

import "testing"

func TestParseTier(t *testing.T) {
	tests := []struct {
		input string
		want  Tier
		ok    bool
	}{
		{input: "basic", want: TierBasic, ok: true},
		{input: "professional", want: TierProfessional, ok: true},
		{input: "enterprise", want: TierEnterprise, ok: true},
		{input: "Basic", ok: false},
		{input: "", ok: false},
		{input: "gold", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTier(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("tier = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTierRankOrder(t *testing.T) {
	if !(TierBasic.Rank() < TierProfessional.Rank() && TierProfessional.Rank() < TierEnterprise.Rank()) {
		t.Errorf("unexpected order: basic=%d professional=%d enterprise=%d",
			TierBasic.Rank(), TierProfessional.Rank(), TierEnterprise.Rank())
	}
	if Tier("gold").Rank() != -1 {
		t.Errorf("rank of unknown tier = %d, want -1", Tier("gold").Rank())
	}
}

func TestTierPriceCents(t *testing.T) {
	want := map[Tier]int64{
		TierBasic:        900,
		TierProfessional: 2900,
		TierEnterprise:   7900,
		Tier("gold"):     0,
	}
	for tier, cents := range want {
		if got := tier.PriceCents(); got != cents {
			t.Errorf("%s price = %d, want %d", tier, got, cents)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusActive, StatusCancelled, StatusExpired} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("past_due").Valid() {
		t.Error("past_due should not be valid")
	}
}
