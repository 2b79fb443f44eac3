package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8102"
	}
	key := os.Getenv("ADMIN_API_KEY")
	if key == "" {
		key, _, _ = strings.Cut(os.Getenv("ADMIN_API_KEYS"), ",")
	}
	if key == "" {
		fmt.Println("Set ADMIN_API_KEY to an admin key.")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Project name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Name is required.")
		return
	}

	fmt.Print("URL to monitor (e.g., https://example.com): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		return
	}

	body, _ := json.Marshal(map[string]string{"name": name, "url": raw})
	req, err := http.NewRequest(http.MethodPost, api+"/api/admin/projects", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Bad API_BASE:", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", key)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var p struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&p)
		fmt.Printf("Added project %s. It shows up on / after the first check.\n", p.ID)
	} else {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		fmt.Println("API returned status:", resp.Status, e.Error)
	}
}
