// Command probe submits one audio job to a running gateway and polls it to
// completion, printing each response as a JSON line. Exit code 0 means the
// job completed, 1 means it failed or the wait expired.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	gateway := flag.String("gateway", "http://localhost:8000", "gateway base URL")
	service := flag.String("service", "mix_analysis", "service type to submit")
	file := flag.String("file", "", "audio file URL to process")
	style := flag.String("style", "", "musical style hint (mastering and mixing only)")
	interval := flag.Duration("interval", 5*time.Second, "polling interval")
	wait := flag.Duration("wait", 10*time.Minute, "maximum time to wait for completion")
	flag.Parse()

	if strings.TrimSpace(*file) == "" {
		fmt.Fprintln(os.Stderr, "usage: probe -file <url> [-service <type>] [-gateway <url>]")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	base := strings.TrimRight(*gateway, "/")

	submit := map[string]any{
		"service_type": *service,
		"file_url":     *file,
	}
	if *style != "" {
		submit["musical_style"] = *style
	}

	body, status, err := post(client, base+"/process", submit)
	if err != nil {
		fatalf("process request failed: %v", err)
	}
	printLine(body)
	if status != http.StatusOK {
		fatalf("process returned HTTP %d", status)
	}

	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		fatalf("no job_id in process response")
	}

	deadline := time.Now().Add(*wait)
	for {
		time.Sleep(*interval)

		body, status, err = post(client, base+"/status", map[string]any{
			"job_id":       jobID,
			"service_type": *service,
		})
		if err != nil {
			fatalf("status request failed: %v", err)
		}
		printLine(body)
		if status != http.StatusOK {
			fatalf("status returned HTTP %d", status)
		}

		switch body["status"] {
		case "completed":
			return
		case "failed":
			os.Exit(1)
		}

		if time.Now().After(deadline) {
			fatalf("job %s still processing after %s", jobID, *wait)
		}
	}
}

func post(client *http.Client, url string, payload map[string]any) (map[string]any, int, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	res, err := client.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, res.StatusCode, fmt.Errorf("non-JSON response: %s", strings.TrimSpace(string(raw)))
	}
	return body, res.StatusCode, nil
}

func printLine(body map[string]any) {
	out, _ := json.Marshal(body)
	fmt.Println(string(out))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
