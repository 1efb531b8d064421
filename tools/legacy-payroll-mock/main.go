package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// A simple struct to capture the incoming event data
type PairClosedEvent struct {
	EntradaID        string    `json:"entradaId"`
	EmployeeID       string    `json:"employeeId"`
	ClockIn          time.Time `json:"clockIn"`
	ClockOut         time.Time `json:"clockOut"`
	Administrative   bool      `json:"administrative"`
	ResponsibleAdmin string    `json:"responsibleAdmin"`
}

func closureHandler(w http.ResponseWriter, r *http.Request) {
	var event PairClosedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	log.Printf("Received closure for EmployeeID: %s, worked %s (admin=%v)",
		event.EmployeeID, event.ClockOut.Sub(event.ClockIn), event.Administrative)
	w.WriteHeader(http.StatusOK)
}

func main() {
	http.HandleFunc("/", closureHandler)
	log.Println("Legacy payroll mock server starting on port 8081...")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
