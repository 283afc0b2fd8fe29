// Package revalidate tells the frontend to rebuild its cached pages after
// content changes.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Notifier posts {"secret", "resource"} to the frontend revalidation hook.
// With no URL configured it does nothing.
type Notifier struct {
	url     string
	secret  string
	client  *http.Client
	pending sync.WaitGroup
}

func New(url, secret string) *Notifier {
	if url == "" {
		log.Println("NEXT_REVALIDATION_URL is not set, revalidation disabled")
	}
	return &Notifier{url: url, secret: secret, client: &http.Client{Timeout: 10 * time.Second}}
}

// Notify triggers revalidation in the background. Failures are only logged:
// the write that caused it has already succeeded.
func (n *Notifier) Notify(resource string) {
	if n == nil || n.url == "" {
		return
	}
	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		if err := n.send(context.Background(), resource); err != nil {
			log.Printf("Error triggering revalidation for %s: %v", resource, err)
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (n *Notifier) Wait() {
	if n != nil {
		n.pending.Wait()
	}
}

func (n *Notifier) send(ctx context.Context, resource string) error {
	payload, err := json.Marshal(map[string]string{"secret": n.secret, "resource": resource})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status code %d", resp.StatusCode)
	}
	return nil
}
