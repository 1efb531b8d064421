package messaging

import "time"

// PairClosedEvent is the JSON payload published when a daily punch pair is
// closed, by a normal saida or an administrative exit. The closure worker
// forwards it to the legacy payroll intake.
type PairClosedEvent struct {
	EntradaID        string    `json:"entradaId"`
	EmployeeID       string    `json:"employeeId"`
	ClockIn          time.Time `json:"clockIn"`
	ClockOut         time.Time `json:"clockOut"`
	Administrative   bool      `json:"administrative"`
	ResponsibleAdmin string    `json:"responsibleAdmin,omitempty"`
}

// AdminExitEvent is the JSON payload published when an administrator closes
// an open pair out-of-band. The email worker turns it into a notification.
type AdminExitEvent struct {
	EntradaID        string    `json:"entradaId"`
	EmployeeID       string    `json:"employeeId"`
	ResponsibleAdmin string    `json:"responsibleAdmin"`
	EffectiveAt      time.Time `json:"effectiveAt"`
	OccurredAt       time.Time `json:"occurredAt"`
}
