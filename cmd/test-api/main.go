// Package main is a smoke-test utility that verifies the CigarDB HTTP API is
// reachable and returning valid responses. It checks the health endpoint and
// then issues a real authenticated brand listing, printing the status code
// and response body of each, making it useful for quick post-deployment
// checks without needing external tooling like curl or a full integration
// test suite.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

func main() {
	baseURL := os.Getenv("CDB_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	fetch(baseURL + "/health")

	apiKey := os.Getenv("CDB_API_KEY")
	if apiKey == "" {
		fmt.Println("CDB_API_KEY not set, skipping authenticated check")
		return
	}
	fetch(baseURL + "/brands?api_key=" + apiKey)
}

func fetch(url string) {
	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading body: %v\n", err)
		return
	}

	fmt.Printf("GET %s\nStatus: %d\nResponse:\n%s\n\n", url, resp.StatusCode, string(body))
}
