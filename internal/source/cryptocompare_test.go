package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PriceHistorian/internal/model"
)

func testDay(s string) time.Time {
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return model.Midnight(d)
}

func newTestSource(url string) *CryptoCompareSource {
	return NewCryptoCompareSource(url, "BTC", "USD", "test-key", "")
}

func TestFetchOpeningPrice_Success(t *testing.T) {
	day := testDay("2024-01-02")
	ts := day.Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("fsym") != "BTC" || q.Get("tsym") != "USD" || q.Get("limit") != "1" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("toTs") != fmt.Sprint(ts) {
			t.Errorf("toTs = %s, want %d", q.Get("toTs"), ts)
		}
		if q.Get("api_key") != "test-key" {
			t.Errorf("api_key = %s", q.Get("api_key"))
		}
		// The provider returns a trailing window; only the exact day counts.
		fmt.Fprintf(w, `{"Response":"Success","Data":{"Data":[
			{"time":%d,"open":42000.5},
			{"time":%d,"open":43000.25}
		]}}`, ts-86400, ts)
	}))
	defer srv.Close()

	point, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !point.Day.Equal(day) {
		t.Errorf("day = %s, want %s", point.Day, day)
	}
	if point.Price.String() != "43000.25" {
		t.Errorf("price = %s, want 43000.25", point.Price)
	}
}

func TestFetchOpeningPrice_DayAbsentFromWindow(t *testing.T) {
	day := testDay("2024-01-02")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Response":"Success","Data":{"Data":[{"time":%d,"open":42000}]}}`, day.Unix()-86400)
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), day)
	var dnf *DataNotFoundError
	if !errors.As(err, &dnf) {
		t.Fatalf("expected DataNotFoundError, got %v", err)
	}
	if !dnf.Day.Equal(day) {
		t.Errorf("error day = %s, want %s", dnf.Day, day)
	}
}

func TestFetchOpeningPrice_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"Error","Message":"rate limit exceeded","Data":{"Data":[]}}`)
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), testDay("2024-01-02"))
	var dnf *DataNotFoundError
	if !errors.As(err, &dnf) {
		t.Fatalf("expected DataNotFoundError, got %v", err)
	}
}

func TestFetchOpeningPrice_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"Success","Data":{"Data":[]}}`)
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), testDay("2024-01-02"))
	var dnf *DataNotFoundError
	if !errors.As(err, &dnf) {
		t.Fatalf("expected DataNotFoundError, got %v", err)
	}
}

func TestFetchOpeningPrice_MissingOpen(t *testing.T) {
	day := testDay("2024-01-02")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Response":"Success","Data":{"Data":[{"time":%d}]}}`, day.Unix())
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), day)
	var dnf *DataNotFoundError
	if !errors.As(err, &dnf) {
		t.Fatalf("expected DataNotFoundError, got %v", err)
	}
}

func TestFetchOpeningPrice_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"Success","Data":{`)
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), testDay("2024-01-02"))
	var mal *MalformedResponseError
	if !errors.As(err, &mal) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestFetchOpeningPrice_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), testDay("2024-01-02"))
	var tr *TransportError
	if !errors.As(err, &tr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFetchOpeningPrice_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection to a closed server fails at the transport level

	_, err := newTestSource(srv.URL).FetchOpeningPrice(context.Background(), testDay("2024-01-02"))
	var tr *TransportError
	if !errors.As(err, &tr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
