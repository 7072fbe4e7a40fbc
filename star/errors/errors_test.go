package errors

import "testing"

func TestParseModuleErrorsMasterOnly(t *testing.T) {
	entries, residue := ParseModuleErrors("C0TPid0001er00/00")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Module != "" || entries[0].Code != "00" {
		t.Fatalf("entries = %+v", entries)
	}
	if residue != "C0TPid0001" {
		t.Fatalf("residue = %q", residue)
	}
}

func TestParseModuleErrorsChannelized(t *testing.T) {
	entries, _ := ParseModuleErrors("C0TPid0001er00/00 P101/71 P300/00")
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[1].Module != "P1" || entries[1].Code != "01" || entries[1].Trace != "71" {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
}

func TestPromoteChannelizedTooLittleLiquid(t *testing.T) {
	entries, _ := ParseModuleErrors("er00/00 P101/71 P300/00")
	err := Promote(entries)
	ce, ok := err.(*ChannelizedError)
	if !ok {
		t.Fatalf("Promote = %#v, want *ChannelizedError", err)
	}
	fe, ok := ce.Errors[0]
	if !ok {
		t.Fatal("expected channel 0 (P1) in channelized error")
	}
	if fe.Kind != KindTooLittleLiquid {
		t.Fatalf("kind = %v, want KindTooLittleLiquid", fe.Kind)
	}
	if _, ok := ce.Errors[2]; ok {
		t.Fatal("channel 2 (P3) succeeded, must not be in error set")
	}
}

func TestPromoteNoFailures(t *testing.T) {
	entries, _ := ParseModuleErrors("er00/00 P100/00")
	if err := Promote(entries); err != nil {
		t.Fatalf("Promote = %v, want nil", err)
	}
}

func TestPromoteSharedCode99Dedup(t *testing.T) {
	entries, _ := ParseModuleErrors("er99/00 H001/02")
	err := Promote(entries)
	ae, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("Promote = %#v, want *AggregateError", err)
	}
	if len(ae.Errors) != 1 {
		t.Fatalf("got %d errors, want 1 (master er99 deduped)", len(ae.Errors))
	}
	if ae.Errors[0].Module != "H0" || ae.Errors[0].Kind != KindHardware {
		t.Fatalf("errors[0] = %+v", ae.Errors[0])
	}
}

func TestPromoteMixedModulesNotChannelized(t *testing.T) {
	entries, _ := ParseModuleErrors("er00/00 P101/08 R013/00")
	err := Promote(entries)
	if _, ok := err.(*ChannelizedError); ok {
		t.Fatal("mixed P+R failures must not be channelized")
	}
	ae, ok := err.(*AggregateError)
	if !ok || len(ae.Errors) != 2 {
		t.Fatalf("Promote = %#v", err)
	}
}

func TestClassifyUnknownCodePreservesRaw(t *testing.T) {
	fe := Classify(ModuleError{Module: "P1", Code: "88", Trace: "00", Raw: "P188/00"})
	if fe.Kind != KindUnknown {
		t.Fatalf("kind = %v, want KindUnknown", fe.Kind)
	}
	if fe.Code != "88" || fe.Raw != "P188/00" {
		t.Fatalf("fe = %+v", fe)
	}
}

func TestChannelIndex(t *testing.T) {
	cases := []struct {
		module string
		want   int
		ok     bool
	}{
		{"P1", 0, true},
		{"P9", 8, true},
		{"PA", 9, true},
		{"PG", 15, true},
		{"H0", 0, false},
		{"R0", 0, false},
	}
	for _, c := range cases {
		idx, ok := ChannelIndex(c.module)
		if ok != c.ok || (ok && idx != c.want) {
			t.Errorf("ChannelIndex(%q) = %d,%v want %d,%v", c.module, idx, ok, c.want, c.ok)
		}
	}
}
