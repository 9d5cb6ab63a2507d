package domain

import (
	"context"
	"testing"
)

func TestCaller_Permissions(t *testing.T) {
	account := &Account{ID: "acc-1", ParentID: "parent-1"}

	tests := []struct {
		name     string
		caller   Caller
		owner    bool
		guardian bool
	}{
		{name: "owning child", caller: Caller{ID: "child-1", Role: RoleChild, AccountID: "acc-1"}, owner: true},
		{name: "other child", caller: Caller{ID: "child-2", Role: RoleChild, AccountID: "acc-2"}},
		{name: "owning parent", caller: Caller{ID: "parent-1", Role: RoleParent}, guardian: true},
		{name: "other parent", caller: Caller{ID: "parent-2", Role: RoleParent}},
		{name: "parent id reused as child", caller: Caller{ID: "parent-1", Role: RoleChild, AccountID: "acc-9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caller.IsOwner(account); got != tt.owner {
				t.Errorf("IsOwner = %v, want %v", got, tt.owner)
			}
			if got := tt.caller.IsGuardian(account); got != tt.guardian {
				t.Errorf("IsGuardian = %v, want %v", got, tt.guardian)
			}
			if got := tt.caller.CanView(account); got != (tt.owner || tt.guardian) {
				t.Errorf("CanView = %v", got)
			}
		})
	}
}

func TestCallerContext(t *testing.T) {
	if _, ok := CallerFromContext(context.Background()); ok {
		t.Fatal("expected no caller in empty context")
	}

	caller := &Caller{ID: "parent-1", Role: RoleParent}
	got, ok := CallerFromContext(WithCaller(context.Background(), caller))
	if !ok || got != caller {
		t.Fatalf("expected caller round trip, got %v %v", got, ok)
	}

	if !RoleParent.IsValid() || Role("admin").IsValid() {
		t.Fatal("unexpected role validity")
	}
}
