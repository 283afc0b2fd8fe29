package revalidate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		got = append(got, body)
		mu.Unlock()
	}))
	defer srv.Close()

	n := New(srv.URL, "s3cret")
	n.Notify("projects")
	n.Notify("skills")
	n.Wait()

	assert.ElementsMatch(t, []map[string]string{
		{"secret": "s3cret", "resource": "projects"},
		{"secret": "s3cret", "resource": "skills"},
	}, got)
}

func TestNotifyFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(srv.URL, "")
	n.Notify("projects")
	n.Wait()
}

func TestNotifyDisabled(t *testing.T) {
	New("", "x").Notify("projects")
	var n *Notifier
	n.Notify("projects")
	n.Wait()
}
