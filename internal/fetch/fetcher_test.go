package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/extract"
)

const contactPage = `<html><body>
<p>Reach us at hello@acme.co.uk</p>
<footer>Tel: 020 7123 4567</footer>
</body></html>`

func TestFetchContactsExtractsFromLivePage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(contactPage))
	}))
	defer srv.Close()

	f := New(Config{}, extract.New(), NewExponentialRetryPolicy(3, time.Millisecond, 10*time.Millisecond), nil, nil)
	set := f.FetchContacts(context.Background(), srv.URL)

	require.False(t, set.Err)
	require.Equal(t, []string{"hello@acme.co.uk"}, set.Emails)
	require.Equal(t, []string{"020 7123 4567"}, set.Phones)
}

func TestFetchContactsRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(contactPage))
	}))
	defer srv.Close()

	f := New(Config{}, extract.New(), NewExponentialRetryPolicy(3, time.Millisecond, 10*time.Millisecond), nil, nil)
	set := f.FetchContacts(context.Background(), srv.URL)

	require.False(t, set.Err)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, []string{"hello@acme.co.uk"}, set.Emails)
}

func TestFetchContactsErrorSentinelAfterExhaustedRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(Config{}, extract.New(), NewExponentialRetryPolicy(3, time.Millisecond, 10*time.Millisecond), nil, nil)
	set := f.FetchContacts(context.Background(), srv.URL)

	require.True(t, set.Err)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, enrich.ErrorField, set.EmailsField())
	require.Equal(t, enrich.ErrorField, set.PhonesField())
}

func TestFetchContactsSingleAttemptWithNilPolicy(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(Config{}, extract.New(), nil, nil, nil)
	set := f.FetchContacts(context.Background(), srv.URL)

	require.True(t, set.Err)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchContactsEmptyDomainIsError(t *testing.T) {
	t.Parallel()

	f := New(Config{}, extract.New(), nil, nil, nil)
	require.True(t, f.FetchContacts(context.Background(), "  ").Err)
}

func TestFetchContactsCanceledContextStopsRetrying(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{}, extract.New(), NewExponentialRetryPolicy(3, time.Second, time.Second), nil, nil)
	start := time.Now()
	set := f.FetchContacts(ctx, srv.URL)

	require.True(t, set.Err)
	require.Less(t, time.Since(start), time.Second, "canceled context must not sit out the backoff")
}
