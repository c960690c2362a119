package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNotificationPreferences_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want NotificationPreferences
	}{
		{
			name: "nil resets",
			src:  nil,
			want: NotificationPreferences{},
		},
		{
			name: "bytes",
			src:  []byte(`{"channels":["email"],"alert_types":["downtime"]}`),
			want: NotificationPreferences{Channels: []string{"email"}, AlertTypes: []string{"downtime"}},
		},
		{
			name: "string",
			src:  `{"channels":["slack"]}`,
			want: NotificationPreferences{Channels: []string{"slack"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p NotificationPreferences
			if err := p.Scan(tt.src); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if !reflect.DeepEqual(p, tt.want) {
				t.Errorf("Scan() = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestNotificationPreferences_ScanUnsupported(t *testing.T) {
	var p NotificationPreferences
	if err := p.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

func TestNotificationPreferences_ValueRoundTrip(t *testing.T) {
	orig := NotificationPreferences{
		Channels:   []string{"email", "slack"},
		AlertTypes: []string{"downtime"},
	}

	v, err := orig.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	data, ok := v.([]byte)
	if !ok {
		t.Fatalf("Value() returned %T, want []byte", v)
	}

	var got NotificationPreferences
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round trip = %+v, want %+v", got, orig)
	}
}

func TestUser_HasBillingCustomer(t *testing.T) {
	empty := ""
	cus := "cus_123"

	tests := []struct {
		name string
		id   *string
		want bool
	}{
		{"nil", nil, false},
		{"empty", &empty, false},
		{"linked", &cus, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{StripeCustomerID: tt.id}
			if got := u.HasBillingCustomer(); got != tt.want {
				t.Errorf("HasBillingCustomer() = %v, want %v", got, tt.want)
			}
		})
	}
}
