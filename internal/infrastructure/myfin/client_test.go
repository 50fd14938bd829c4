package myfin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

func testFilter() domain.SnapshotFilter {
	return domain.SnapshotFilter{City: "tbilisi", IncludeOnline: true, Availability: "All"}
}

func TestExchangeRates_Success(t *testing.T) {
	var gotRequest snapshotRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/exchangeRates", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"best": {"USD": {"buy": 2.70, "sell": 2.72, "nbg": 2.71}},
			"organizations": [{
				"id": "org-1", "type": "Bank", "link": "https://example.ge",
				"name": {"en": "Test Bank", "ka": "..."},
				"best": {},
				"offices": [{
					"id": "office-1",
					"name": {"en": "Main Branch"},
					"address": {"en": "1 Rustaveli Ave"},
					"rates": {"USD": {"buy": 2.65, "sell": 2.70, "time": "2024-05-01T10:00:00Z", "timeFrom": "2024-05-01T09:00:00Z"}}
				}]
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.ExchangeRates(context.Background(), testFilter())
	require.NoError(t, err)

	assert.Equal(t, "tbilisi", gotRequest.City)
	assert.True(t, gotRequest.IncludeOnline)
	assert.Equal(t, "All", gotRequest.Availability)

	require.Len(t, resp.Organizations, 1)
	org := resp.Organizations[0]
	assert.Equal(t, "Test Bank", org.Name.En)
	require.Len(t, org.Offices, 1)
	assert.Equal(t, 2.65, org.Offices[0].Rates["USD"].Buy)
	assert.Equal(t, 2.71, resp.Best["USD"].NBG)
}

func TestPostSnapshot_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"best": {}, "organizations": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3), WithBackoff(time.Millisecond))
	_, err := client.ExchangeRates(context.Background(), testFilter())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPostSnapshot_FailsFastOnClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3), WithBackoff(time.Millisecond))
	_, err := client.ExchangeRates(context.Background(), testFilter())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPostSnapshot_ExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(2), WithBackoff(time.Millisecond))
	_, err := client.ExchangeRates(context.Background(), testFilter())
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestOfficeCoordinates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchangeRates/map", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"best": {},
			"offices": [{
				"id": "office-1",
				"organizationId": "org-1",
				"latitude": 41.7151,
				"longitude": 44.8271,
				"schedule": [{"start": {"en": "Monday"}, "end": {"en": "Friday"}, "intervals": ["09:00-18:00"]}],
				"rates": {}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.OfficeCoordinates(context.Background(), testFilter())
	require.NoError(t, err)

	require.Len(t, resp.Offices, 1)
	office := resp.Offices[0]
	assert.Equal(t, 41.7151, office.Latitude)
	require.Len(t, office.Schedule, 1)
	assert.Equal(t, "Monday", office.Schedule[0].Start.En)
	require.NotNil(t, office.Schedule[0].End)
	assert.Equal(t, "Friday", office.Schedule[0].End.En)
}

func TestPostSnapshot_ParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExchangeRates(context.Background(), testFilter())
	assert.Error(t, err)
}
