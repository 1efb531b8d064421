package main

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func punchBody(employeeID, kind string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	w.WriteField("funcionario_id", employeeID)
	w.WriteField("tipo", kind)
	foto, _ := w.CreateFormFile("foto", "foto.jpg")
	foto.Write([]byte("fake-jpeg"))
	assinatura, _ := w.CreateFormFile("assinatura", "assinatura.png")
	assinatura.Write([]byte("fake-png"))
	w.Close()
	return buf, w.FormDataContentType()
}

func main() {
	// Configuration
	url := "http://localhost:8080/api/v1/pontos"

	numEmployees := 5000
	totalRequests := numEmployees * 2 // one entrada and one saida each
	concurrency := 50                 // Number of concurrent requests to avoid local port exhaustion

	fmt.Printf("Starting load test: %d employees (entrada + saida) to %s with concurrency %d\n", numEmployees, url, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		employeeID := fmt.Sprintf("load-test-emp-%d", i)

		go func(empID string) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			for _, kind := range []string{"entrada", "saida"} {
				body, contentType := punchBody(empID, kind)
				resp, err := http.Post(url, contentType, body)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(employeeID)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
