package schema

import (
	"encoding/json"
	"testing"
)

func validRecord() *CanonicalRecord {
	return &CanonicalRecord{
		TransactionSeq:       1,
		UserSeq:              42,
		ReceivingCountry:     "KR",
		CountryCode:          "VN",
		IDType:               "ID",
		StayQualify:          "YES",
		VisaExpireDate:       "2025-06-01",
		UserName:             "Unknown",
		PaymentMethod:        "CASH",
		RegisterDate:         "2020-01-01",
		FirstTransactionDate: "2020-02-01",
		BirthDate:            "1980-01-01",
		RecheckDate:          "2024-01-01",
		InviteCode:           "INV-0001",
		FacePinDate:          "2024-01-01",
		Label:                0,
		CreateDT:             "2024-01-01 10:00:00",
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	t.Run("valid record", func(t *testing.T) {
		if err := v.Validate(validRecord()); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*CanonicalRecord)
	}{
		{"empty country code", func(r *CanonicalRecord) { r.CountryCode = "" }},
		{"empty payment method", func(r *CanonicalRecord) { r.PaymentMethod = "" }},
		{"bad create_dt layout", func(r *CanonicalRecord) { r.CreateDT = "2024-01-01T10:00:00" }},
		{"empty create_dt", func(r *CanonicalRecord) { r.CreateDT = "" }},
		{"bad birth date", func(r *CanonicalRecord) { r.BirthDate = "01/01/1980" }},
		{"label out of range", func(r *CanonicalRecord) { r.Label = 2 }},
		{"negative label", func(r *CanonicalRecord) { r.Label = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(rec)
			if err := v.Validate(rec); err == nil {
				t.Error("Validate() error = nil, want validation failure")
			}
		})
	}
}

func TestCanonicalRecord_WireNames(t *testing.T) {
	data, err := json.Marshal(validRecord())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []string{
		"transaction_seq", "user_seq", "receiving_country", "country_code",
		"id_type", "stay_qualify", "visa_expire_date", "user_name",
		"payment_method", "autodebit_account", "register_date",
		"first_transaction_date", "birth_date", "recheck_date",
		"invite_code", "face_pin_date", "transaction_count_24hour",
		"transaction_amount_24hour", "transaction_count_1week",
		"transaction_amount_1week", "transaction_count_1month",
		"transaction_amount_1month", "label", "create_dt", "deposit_amount",
	}

	if len(m) != len(want) {
		t.Errorf("wire record has %d fields, want %d", len(m), len(want))
	}
	for _, field := range want {
		if _, ok := m[field]; !ok {
			t.Errorf("wire record missing field %q", field)
		}
	}
}
