package model

import (
	"fmt"
	"time"
)

// PunchKind distinguishes clock-in (entrada) from clock-out (saida) punches.
type PunchKind string

const (
	KindEntrada PunchKind = "entrada"
	KindSaida   PunchKind = "saida"
)

// Valid reports whether k is one of the known punch kinds.
func (k PunchKind) Valid() bool {
	return k == KindEntrada || k == KindSaida
}

// PunchRecord is a single punch event. Records are append-only: once stored
// they are never updated or deleted, so the punch log doubles as an audit trail.
// ResponsibleAdmin is set only on saidas created through the administrative
// override path; those carry no photo or signature evidence.
type PunchRecord struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	Kind             PunchKind `json:"kind"`
	Timestamp        time.Time `json:"timestamp"`
	PhotoRef         string    `json:"photoRef,omitempty"`
	SignatureRef     string    `json:"signatureRef,omitempty"`
	ResponsibleAdmin string    `json:"responsibleAdmin,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Administrative reports whether the punch was synthesized by an administrator.
func (p PunchRecord) Administrative() bool {
	return p.ResponsibleAdmin != ""
}

// BusinessDay is a calendar date in the deployment's reference time zone.
// It is comparable and safe to use as a map key.
type BusinessDay struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// BusinessDayOf returns the business day a timestamp falls on in loc.
func BusinessDayOf(t time.Time, loc *time.Location) BusinessDay {
	y, m, d := t.In(loc).Date()
	return BusinessDay{Year: y, Month: m, Day: d}
}

// ParseBusinessDay parses a date in YYYY-MM-DD form, the format the
// front end sends on its por-data queries.
func ParseBusinessDay(s string) (BusinessDay, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return BusinessDay{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return BusinessDay{Year: y, Month: m, Day: d}, nil
}

// Before reports whether d is strictly earlier than other.
func (d BusinessDay) Before(other BusinessDay) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Start returns the instant the business day begins in loc.
func (d BusinessDay) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Next returns the following calendar day.
func (d BusinessDay) Next() BusinessDay {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	y, m, day := t.Date()
	return BusinessDay{Year: y, Month: m, Day: day}
}

func (d BusinessDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DailyPunchPair is the derived entrada/saida pairing for one employee on one
// business day. It is recomputed from the punch log on every read and never
// stored. Either side may be missing: an entrada with no saida is an open
// pair, a saida with no entrada is a stray half pair kept for auditing.
type DailyPunchPair struct {
	EmployeeID string       `json:"employeeId"`
	Day        BusinessDay  `json:"day"`
	Entrada    *PunchRecord `json:"entrada,omitempty"`
	Saida      *PunchRecord `json:"saida,omitempty"`
}

// Open reports whether the pair has an entrada but no saida yet.
func (p DailyPunchPair) Open() bool {
	return p.Entrada != nil && p.Saida == nil
}

// AdministrativeExit reports whether the pair was closed by an administrator.
func (p DailyPunchPair) AdministrativeExit() bool {
	return p.Saida != nil && p.Saida.Administrative()
}

// PendingExit marks an employee whose earliest open pair sits on a prior
// business day. It is a blocking condition for new entradas.
type PendingExit struct {
	EmployeeID string       `json:"employeeId"`
	Day        BusinessDay  `json:"day"`
	Entrada    *PunchRecord `json:"entrada"`
}

// PaymentRecord links a wage payment and its comprovante to exactly one punch
// pair, referenced by the pair's entrada punch ID. The store enforces the
// at-most-one-payment-per-pair rule with a unique constraint on PontoID.
type PaymentRecord struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employeeId"`
	PontoID        string    `json:"pontoId"`
	ComprovanteRef string    `json:"comprovanteRef"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DailyReportEntry is one row of the administrative dashboards: a pair plus
// its payment, when one exists.
type DailyReportEntry struct {
	Pair    DailyPunchPair `json:"pair"`
	Payment *PaymentRecord `json:"payment,omitempty"`
}

// ClosureStatus tracks downstream propagation of a closed pair to the legacy
// payroll system.
type ClosureStatus string

const (
	StatusClosurePending    ClosureStatus = "PENDING"
	StatusClosureProcessing ClosureStatus = "PROCESSING"
	StatusClosureCompleted  ClosureStatus = "COMPLETED"
	StatusClosureFailed     ClosureStatus = "FAILED"
)

// EmailStatus tracks the administrative-exit notification email.
type EmailStatus string

const (
	StatusEmailPending   EmailStatus = "PENDING"
	StatusEmailCompleted EmailStatus = "COMPLETED"
	StatusEmailFailed    EmailStatus = "FAILED"
)

// ClosureJob is the processing state for one closed pair, keyed by the
// entrada punch ID. It lives outside the punch log so punch records stay
// immutable.
type ClosureJob struct {
	EntradaID         string        `json:"entradaId"`
	EmployeeID        string        `json:"employeeId"`
	ClosureStatus     ClosureStatus `json:"closureStatus"`
	ClosureRetryCount int           `json:"closureRetryCount"`
	EmailStatus       EmailStatus   `json:"emailStatus"`
	EmailRetryCount   int           `json:"emailRetryCount"`
}
