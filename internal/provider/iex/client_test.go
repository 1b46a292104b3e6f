package iex_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/provider/iex"
)

func jsonResponse(t *testing.T, status int, body any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(body))
	return &http.Response{StatusCode: status, Body: io.NopCloser(buffer)}
}

// newClient points the client at a fixed host so request paths can be
// asserted without the production /stable prefix.
func newClient(httpClient iex.HTTPClient) *iex.Client {
	return iex.New("secret", iex.WithHTTPClient(httpClient), iex.WithBaseURL("http://iex.test"))
}

func TestDefaultBaseURL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "cloud.iexapis.com", req.URL.Host)
			require.Equal(t, "/stable/stock/TSLA/quote", req.URL.Path)
			return jsonResponse(t, http.StatusOK, map[string]any{"symbol": "TSLA"}), nil
		}).
		Times(1)

	_, err := iex.New("secret", iex.WithHTTPClient(httpClient)).Quote(t.Context(), "tsla")
	require.NoError(t, err)
}

func TestWithBaseURLAndToken(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock http client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	baseURL := "http://localhost:8080"

	// Assert: the request targets the overridden base and carries the token
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			require.Equal(t, "/stock/TSLA/quote", req.URL.Path)
			require.Equal(t, "secret", req.URL.Query().Get("token"))
			require.Equal(t, "bar", req.Header.Get("foo"))
			return jsonResponse(t, http.StatusOK, map[string]any{
				"symbol": "TSLA", "companyName": "Tesla Inc", "latestPrice": 420.5, "changePercent": 0.0123,
			}), nil
		}).
		Times(1)

	client := iex.New("secret",
		iex.WithHTTPClient(httpClient),
		iex.WithBaseURL(baseURL),
		iex.WithHeader(http.Header{"foo": []string{"bar"}}),
	)

	// Act
	q, err := client.Quote(t.Context(), "tsla")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "Tesla Inc", q.CompanyName)
	require.True(t, decimal.RequireFromString("420.5").Equal(q.LatestPrice))
	require.True(t, decimal.RequireFromString("0.0123").Equal(q.ChangePercent))
}

func TestQuote_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader("Unknown symbol"))}, nil).
		Times(1)

	client := newClient(httpClient)

	_, err := client.Quote(t.Context(), "zzzz")
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestQuote_TransportError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(nil, errors.New("dial tcp: i/o timeout")).Times(1)

	client := newClient(httpClient)

	_, err := client.Quote(t.Context(), "tsla")
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestNextDividend(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/data-points/MSFT/NEXTDIVIDENDDATE", req.URL.Path)
			return jsonResponse(t, http.StatusOK, "2024-06-13"), nil
		}).
		Times(1)

	client := newClient(httpClient)

	div, err := client.NextDividend(t.Context(), "msft")
	require.NoError(t, err)
	require.Equal(t, "MSFT", div.Symbol)
	require.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), div.Date)
}

func TestNextDividend_EmptyDate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(jsonResponse(t, http.StatusOK, ""), nil).Times(1)

	client := newClient(httpClient)

	_, err := client.NextDividend(t.Context(), "tsla")
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestNews(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/stock/AAPL/news/last/3", req.URL.Path)
			return jsonResponse(t, http.StatusOK, []map[string]any{
				{"headline": "Apple ships", "url": "https://example.com/1", "source": "Wire"},
				{"headline": "Apple sells", "url": "https://example.com/2", "source": "Wire"},
			}), nil
		}).
		Times(1)

	client := newClient(httpClient)

	news, err := client.News(t.Context(), "aapl")
	require.NoError(t, err)
	require.Len(t, news, 2)
	require.Equal(t, "Apple ships", news[0].Headline)
	require.Equal(t, "https://example.com/2", news[1].URL)
}

func TestCompanyAndStats(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			switch req.URL.Path {
			case "/stock/AAPL/company":
				return jsonResponse(t, http.StatusOK, map[string]any{
					"symbol": "AAPL", "companyName": "Apple Inc", "website": "https://apple.com",
					"industry": "Hardware", "sector": "Technology", "CEO": "Tim Cook", "description": "Phones",
				}), nil
			case "/stock/AAPL/stats":
				return jsonResponse(t, http.StatusOK, map[string]any{
					"companyName": "Apple Inc", "marketcap": 2500000000000, "week52high": 199.62,
					"week52low": 124.17, "peRatio": 29.1, "dividendYield": 0.0055, "nextEarningsDate": "2024-08-01",
				}), nil
			}
			t.Fatalf("unexpected path %s", req.URL.Path)
			return nil, nil
		}).
		Times(2)

	client := newClient(httpClient)

	co, err := client.Company(t.Context(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "Tim Cook", co.CEO)
	require.Equal(t, "Technology", co.Sector)

	st, err := client.Stats(t.Context(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "2024-08-01", st.NextEarningsDate)
	require.True(t, decimal.RequireFromString("199.62").Equal(st.Week52High))
}

func TestIntraday_SkipsEmptyMinutes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(t, http.StatusOK, []map[string]any{
			{"date": "2024-05-01", "minute": "09:30", "open": 10, "high": 11, "low": 9, "close": 10.5, "volume": 100},
			{"date": "2024-05-01", "minute": "09:31", "open": nil, "high": nil, "low": nil, "close": nil, "volume": 0},
			{"date": "2024-05-01", "minute": "09:32", "open": 10.5, "high": 12, "low": 10, "close": 11.5, "volume": 50},
		}), nil).
		Times(1)

	client := newClient(httpClient)

	series, err := client.Intraday(t.Context(), "tsla")
	require.NoError(t, err)
	require.Len(t, series.Bars, 2)
	require.Equal(t, time.Date(2024, 5, 1, 9, 32, 0, 0, time.UTC), series.Bars[1].Time)
	require.True(t, decimal.RequireFromString("11.5").Equal(series.Bars[1].Close))
}

func TestChart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/stock/TSLA/chart/1m", req.URL.Path)
			return jsonResponse(t, http.StatusOK, []map[string]any{
				{"date": "2024-04-01", "open": 1, "high": 2, "low": 1, "close": 2, "volume": 10},
				{"date": "2024-04-02", "open": 2, "high": 3, "low": 2, "close": 3, "volume": 20},
			}), nil
		}).
		Times(1)

	client := newClient(httpClient)

	series, err := client.Chart(t.Context(), "tsla")
	require.NoError(t, err)
	require.Equal(t, "TSLA", series.Symbol)
	require.Len(t, series.Bars, 2)
}

func TestPing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	gomock.InOrder(
		httpClient.EXPECT().Do(gomock.Any()).Return(jsonResponse(t, http.StatusOK, map[string]any{"status": "up"}), nil),
		httpClient.EXPECT().Do(gomock.Any()).Return(jsonResponse(t, http.StatusOK, map[string]any{"status": "down"}), nil),
	)

	client := newClient(httpClient)

	require.NoError(t, client.Ping(t.Context()))
	require.ErrorIs(t, client.Ping(t.Context()), apperrors.ErrDataSourceUnavailable)
}
