package filings

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

const announcements = `<html><body>
<a href="/xml-data/ar1.pdf">Annual Report 2023</a>
<a href="/xml-data/ar2.pdf">Annual Report 2022</a>
<a href="/xml-data/ar3.pdf">Annual Report 2021</a>
<a href="/xml-data/ar-page.html">Annual Report viewer</a>
<a href="/xml-data/c1.pdf">Transcript of Earning Call Q4</a>
<a href="/xml-data/c2.pdf">Conference Call recording</a>
<a href="/xml-data/p1.pdf">Investor Presentation Q4</a>
<a href="/xml-data/r1.pdf">Financial Results for March 2023</a>
<a href="/xml-data/r2.pdf">Financial Result Q3</a>
<a href="/xml-data/r3.pdf">Financial Result Q2</a>
<a href="/xml-data/r4.pdf">Financial Result Q1</a>
<a href="/xml-data/r5.pdf">Financial Result Q4 prior</a>
<a href="/other">Board meeting</a>
</body></html>`

func TestFetch(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/corporates/ann.aspx", r.URL.Path)
		_, _ = w.Write([]byte(announcements))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second)
	got, err := f.Fetch(context.Background(), "tcs")
	require.NoError(t, err)

	assert.Equal(t, "scrip=532540&dur=A", gotQuery)
	assert.Equal(t, "Mozilla/5.0", gotUA)
	assert.Equal(t, "Tata Consultancy Services", got.Company.Name)

	reports := got.Links[AnnualReport]
	require.Len(t, reports, 2)
	assert.Equal(t, srv.URL+"/xml-data/ar1.pdf", reports[0].URL)
	assert.Equal(t, "Annual Report 2023", reports[0].Title)

	assert.Len(t, got.Links[EarningsCall], 2)
	assert.Len(t, got.Links[InvestorPresentation], 1)
	assert.Len(t, got.Links[FinancialResult], 4)
}

func TestFetchUnknownCompany(t *testing.T) {
	_, err := NewFetcher("http://unused", time.Second).Fetch(context.Background(), "ACME")
	assert.True(t, errors.Is(err, ErrUnknownCompany))
	assert.Contains(t, err.Error(), "HDFCBANK, INFY, ITC, RELIANCE, TCS")
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, time.Second).Fetch(context.Background(), "INFY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetchEmptyPageHasEveryCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	got, err := NewFetcher(srv.URL, time.Second).Fetch(context.Background(), "ITC")
	require.NoError(t, err)
	for _, c := range []Category{AnnualReport, EarningsCall, InvestorPresentation, FinancialResult} {
		assert.NotNil(t, got.Links[c])
		assert.Empty(t, got.Links[c])
	}
}
