package screener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyPage = `<html><body>
<h1>Tata Consultancy Services Ltd</h1>
<div class="company-links">
  <a href="/market/IN04/sector/">IT - Software</a>
  <a href="/market/IN04/IN0401/industry/">Computers - Software - Large</a>
</div>
<ul id="top-ratios">
  <li><span class="name">Market Cap</span><span class="value">₹ 12,50,000 Cr.</span></li>
  <li><span class="name">Current Price</span><span class="value">₹ 3,450</span></li>
  <li><span class="name">High / Low</span><span class="value">₹ 4,255 / 3,070</span></li>
  <li><span class="name">Stock P/E</span><span class="value">26.4</span></li>
  <li><span class="name">Book Value</span><span class="value">₹ 262</span></li>
  <li><span class="name">ROCE</span><span class="value">64.6 %</span></li>
  <li><span class="name">ROE</span><span class="value">51.5 %</span></li>
  <li><span class="name">Face Value</span><span class="value">₹ 1.00</span></li>
</ul>
<section id="profit-loss"><table><tbody>
  <tr><td>Sales</td><td>2,25,458</td><td>2,40,893</td></tr>
  <tr><td>Net Profit +</td><td>42,303</td><td>46,099</td></tr>
</tbody></table></section>
</body></html>`

func TestFetchQuote(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		_, _ = w.Write([]byte(companyPage))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL, time.Second, 0)
	q, err := s.FetchQuote(context.Background(), "tcs.ns")
	require.NoError(t, err)

	assert.Equal(t, "/company/TCS/", gotPath)
	assert.Equal(t, "TCS", q.Symbol)
	assert.Equal(t, "Tata Consultancy Services Ltd", q.Name)
	assert.Equal(t, "IT - Software", q.Sector)
	assert.Equal(t, "Computers - Software - Large", q.Industry)
	assert.Equal(t, 1250000.0, q.MarketCap)
	assert.Equal(t, 3450.0, q.CurrentPrice)
	assert.Equal(t, 4255.0, q.High52Week)
	assert.Equal(t, 3070.0, q.Low52Week)
	assert.Equal(t, 26.4, q.StockPE)
	assert.Equal(t, 1.0, q.FaceValue)
	assert.Equal(t, 46099.0, q.NetProfit)
	assert.InDelta(t, 362.3188, q.SharesOutstanding, 1e-4)
}

func TestFetchQuoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewScraper(srv.URL, time.Second, 0).FetchQuote(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFetchQuoteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewScraper(srv.URL, time.Second, 0).FetchQuote(context.Background(), "TCS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestWaitHonoursContext(t *testing.T) {
	s := NewScraper("http://unused", time.Second, time.Hour)
	s.lastRequest = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.wait(ctx), context.Canceled)
}

func TestParseNumber(t *testing.T) {
	tests := map[string]float64{
		"₹ 1,234 Cr.": 1234,
		"12.5 %":      12.5,
		"-3.2":        -3.2,
		"":            0,
		"n/a":         0,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseNumber(in), in)
	}
}
