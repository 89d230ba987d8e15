package menu

import "testing"

func restricted(rules ...Restriction) *Menu {
	return &Menu{ID: 1, GuildID: "g", Restrictions: rules}
}

func TestIsPermittedDenyFirst(t *testing.T) {
	m := restricted(
		Restriction{RoleID: "allowed", Type: Allow},
		Restriction{RoleID: "banned", Type: Disallow},
	)

	// DISALLOW wins even when the user also holds an allowed role.
	if m.IsPermitted([]string{"allowed", "banned"}) {
		t.Fatalf("disallowed role must override allow")
	}
}

func TestIsPermittedTable(t *testing.T) {
	cases := []struct {
		name  string
		rules []Restriction
		held  []string
		want  bool
	}{
		{"open menu, no rules", nil, []string{"r1"}, true},
		{"open menu, empty roles", nil, nil, true},
		{
			"disallow hit",
			[]Restriction{{RoleID: "bad", Type: Disallow}},
			[]string{"bad"},
			false,
		},
		{
			"disallow miss keeps menu open",
			[]Restriction{{RoleID: "bad", Type: Disallow}},
			[]string{"other"},
			true,
		},
		{
			"allow present and held",
			[]Restriction{{RoleID: "vip", Type: Allow}},
			[]string{"vip"},
			true,
		},
		{
			"allow present, not held",
			[]Restriction{{RoleID: "vip", Type: Allow}},
			[]string{"pleb"},
			false,
		},
		{
			"allow present, no roles at all",
			[]Restriction{{RoleID: "vip", Type: Allow}},
			nil,
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := restricted(tc.rules...)
			if got := m.IsPermitted(tc.held); got != tc.want {
				t.Fatalf("IsPermitted(%v) = %v, want %v", tc.held, got, tc.want)
			}
		})
	}
}

func TestSortedOptionsStableOrder(t *testing.T) {
	m := &Menu{Options: []Option{
		{ID: 4, Order: 1, Label: "d"},
		{ID: 2, Order: 0, Label: "b"},
		{ID: 3, Order: 0, Label: "c"},
		{ID: 1, Order: 2, Label: "a"},
	}}

	got := m.SortedOptions()
	wantIDs := []int64{2, 3, 4, 1}
	for i, opt := range got {
		if opt.ID != wantIDs[i] {
			t.Fatalf("position %d: got option %d, want %d", i, opt.ID, wantIDs[i])
		}
	}

	// Sorting must not reorder the menu's own slice.
	if m.Options[0].ID != 4 {
		t.Fatalf("SortedOptions mutated the receiver")
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParseItemKind("ROLE"); err != nil {
		t.Fatalf("ROLE should parse: %v", err)
	}
	if _, err := ParseItemKind("role"); err == nil {
		t.Fatalf("lowercase kind should not parse")
	}
	if _, err := ParseRestrictionType("DISALLOW"); err != nil {
		t.Fatalf("DISALLOW should parse: %v", err)
	}
	if _, err := ParseRestrictionType("BLOCK"); err == nil {
		t.Fatalf("unknown restriction type should not parse")
	}
}
