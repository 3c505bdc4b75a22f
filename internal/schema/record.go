// Package schema defines the canonical transaction record published to the
// clean topic and the loosely-typed raw event shape consumed from the wire.
// All raw events are normalized to CanonicalRecord before publication.
package schema

// DateTimeLayout is the canonical timestamp format expected by the Pinot
// ingestion table.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the canonical format for date-only fields.
const DateLayout = "2006-01-02"

// CanonicalRecord is the fixed-shape, fully-typed record published
// downstream. Every field is always present and well-typed once a raw event
// passes through the normalizer; no field is ever null or absent in the
// output.
type CanonicalRecord struct {
	TransactionSeq          int64   `json:"transaction_seq"`
	UserSeq                 int64   `json:"user_seq"`
	ReceivingCountry        string  `json:"receiving_country" validate:"required"`
	CountryCode             string  `json:"country_code" validate:"required"`
	IDType                  string  `json:"id_type" validate:"required"`
	StayQualify             string  `json:"stay_qualify" validate:"required"`
	VisaExpireDate          string  `json:"visa_expire_date" validate:"required,datetime=2006-01-02"`
	UserName                string  `json:"user_name" validate:"required"`
	PaymentMethod           string  `json:"payment_method" validate:"required"`
	AutodebitAccount        float64 `json:"autodebit_account"`
	RegisterDate            string  `json:"register_date" validate:"required,datetime=2006-01-02"`
	FirstTransactionDate    string  `json:"first_transaction_date" validate:"required,datetime=2006-01-02"`
	BirthDate               string  `json:"birth_date" validate:"required,datetime=2006-01-02"`
	RecheckDate             string  `json:"recheck_date" validate:"required,datetime=2006-01-02"`
	InviteCode              string  `json:"invite_code" validate:"required"`
	FacePinDate             string  `json:"face_pin_date" validate:"required,datetime=2006-01-02"`
	TransactionCount24Hour  int64   `json:"transaction_count_24hour"`
	TransactionAmount24Hour int64   `json:"transaction_amount_24hour"`
	TransactionCount1Week   int64   `json:"transaction_count_1week"`
	TransactionAmount1Week  int64   `json:"transaction_amount_1week"`
	TransactionCount1Month  int64   `json:"transaction_count_1month"`
	TransactionAmount1Month int64   `json:"transaction_amount_1month"`
	Label                   int     `json:"label" validate:"min=0,max=1"`
	CreateDT                string  `json:"create_dt" validate:"required,record_datetime"`
	DepositAmount           float64 `json:"deposit_amount"`
}
