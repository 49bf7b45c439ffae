package models

import "github.com/localnerve/crmdb/internal/types"

// Booking and payment statuses
const (
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
	PaymentStatusPending   = "Pending"
	PaymentStatusPaid      = "Paid"
)

// Loan tracks a client's home-loan application
type Loan struct {
	Key    string            `json:"key"`
	Name   string            `json:"name"`
	Amount types.FlexFloat64 `json:"amount"`
	Bank   string            `json:"bank,omitempty"`
	Status string            `json:"status,omitempty"`
}

func (l Loan) RecordKey() string { return l.Key }

func (l Loan) WithKey(key string) Loan {
	l.Key = key
	return l
}

// Booking reserves a unit (property key) for a contact
type Booking struct {
	Key           string            `json:"key"`
	UnitID        string            `json:"unitId,omitempty"`
	ContactID     string            `json:"contactId,omitempty"`
	DealID        string            `json:"dealId,omitempty"`
	BookingDate   types.Date        `json:"bookingDate"`
	Status        string            `json:"status,omitempty"`
	Amount        types.FlexFloat64 `json:"amount"`
	PaymentStatus string            `json:"paymentStatus,omitempty"`
}

func (b Booking) RecordKey() string { return b.Key }

func (b Booking) WithKey(key string) Booking {
	b.Key = key
	return b
}

// Transaction is a payment received against a booking
type Transaction struct {
	Key       string            `json:"key"`
	BookingID string            `json:"bookingId,omitempty"`
	Amount    types.FlexFloat64 `json:"amount"`
	Date      types.Date        `json:"date"`
	Type      string            `json:"type,omitempty"`
	Reference string            `json:"reference,omitempty"`
}

func (t Transaction) RecordKey() string { return t.Key }

func (t Transaction) WithKey(key string) Transaction {
	t.Key = key
	return t
}

// PaymentMethod is a bank account or gateway the company accepts payment on
type PaymentMethod struct {
	Key           string `json:"key"`
	Method        string `json:"method"`
	BankName      string `json:"bankName,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	UPIID         string `json:"upiId,omitempty"`
	Status        string `json:"status,omitempty"`
}

func (p PaymentMethod) RecordKey() string { return p.Key }

func (p PaymentMethod) WithKey(key string) PaymentMethod {
	p.Key = key
	return p
}
