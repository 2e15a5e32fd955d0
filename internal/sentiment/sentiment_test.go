package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconLabelBoundaries(t *testing.T) {
	cases := []struct {
		in   float64
		want Label
	}{
		{0.05, Positive},
		{0.0499, Neutral},
		{0, Neutral},
		{-0.0499, Neutral},
		{-0.05, Negative},
		{0.9, Positive},
		{-1, Negative},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LexiconLabel(c.in), "compound=%v", c.in)
	}
}

func TestPolarityLabelBoundaries(t *testing.T) {
	assert.Equal(t, Neutral, PolarityLabel(0))
	assert.Equal(t, Positive, PolarityLabel(1e-9))
	assert.Equal(t, Negative, PolarityLabel(-1e-9))
}

func TestStarsLabel(t *testing.T) {
	want := map[int]Label{1: Negative, 2: Negative, 3: Neutral, 4: Positive, 5: Positive}
	for s, l := range want {
		assert.Equal(t, l, StarsLabel(s), "stars=%d", s)
	}
}

func TestLexiconCompound(t *testing.T) {
	l := NewLexicon()
	good := l.Compound("good")
	assert.InDelta(t, 0.4404, good, 1e-4)

	assert.Less(t, l.Compound("not good"), 0.0)
	assert.Greater(t, l.Compound("very good"), good)
	assert.Greater(t, l.Compound("good!!!"), good)
	assert.Greater(t, l.Compound("GOOD day"), l.Compound("good day"))
	assert.Less(t, l.Compound("The food was good but the service was terrible"), -0.05)
	assert.Equal(t, 0.0, l.Compound("The table is brown"))
	assert.Equal(t, 0.0, l.Compound(""))

	for _, s := range []string{
		"This product sucks",
		"The delivery ruined my weekend",
		"Total fraud, they kill the battery",
	} {
		assert.Equal(t, Negative, LexiconLabel(l.Compound(s)), "text=%q", s)
	}

	for _, s := range []string{"I love it", "worst purchase ever, total waste", "meh"} {
		c := l.Compound(s)
		assert.GreaterOrEqual(t, c, -1.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestLexiconAnalyze(t *testing.T) {
	r, err := NewLexicon().Analyze(context.Background(), "What an awful, horrible day")
	require.NoError(t, err)
	assert.Equal(t, Negative, r.Label)
	assert.Equal(t, "What an awful, horrible day", r.Text)

	r, err = NewLexicon().Analyze(context.Background(), "It is a chair")
	require.NoError(t, err)
	assert.Equal(t, Neutral, r.Label)
}

func TestPolarityScores(t *testing.T) {
	p := NewPolarity()
	pol, subj := p.Scores("good")
	assert.InDelta(t, 0.7, pol, 1e-12)
	assert.InDelta(t, 0.6, subj, 1e-12)

	pol, subj = p.Scores("very good")
	assert.InDelta(t, 0.91, pol, 1e-12)
	assert.InDelta(t, 0.78, subj, 1e-12)

	pol, _ = p.Scores("not good")
	assert.InDelta(t, -0.35, pol, 1e-12)

	pol, subj = p.Scores("The table is brown")
	assert.Equal(t, 0.0, pol)
	assert.Equal(t, 0.0, subj)
}

func TestPolarityZeroIsNeutral(t *testing.T) {
	r, err := NewPolarity().Analyze(context.Background(), "good and bad")
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Score)
	assert.Equal(t, Neutral, r.Label)
	assert.Greater(t, r.Subjectivity, 0.0)
}

func TestRegistry(t *testing.T) {
	names := []string{}
	for _, b := range Backends() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{BackendLexicon, BackendPolarity, BackendStars}, names)

	info, ok := Lookup(BackendPolarity)
	require.True(t, ok)
	assert.True(t, info.Subjectivity)

	ok, err := Available(BackendLexicon, Config{})
	assert.True(t, ok)
	assert.NoError(t, err)

	_, err = Get("nope", Config{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
}

func TestStarsUnavailableWithoutConfig(t *testing.T) {
	cases := []Config{
		{},
		{StarsEndpoint: "https://api-inference.huggingface.co", StarsModel: "m"},
		{StarsEndpoint: "http://127.0.0.1:9", StarsModel: ""},
		{StarsEndpoint: "not a url", StarsModel: "m"},
	}
	for i, c := range cases {
		ok, err := Available(BackendStars, c)
		assert.False(t, ok, "case %d", i)
		assert.True(t, errors.Is(err, ErrBackendUnavailable), "case %d: %v", i, err)
		var ue *UnavailableError
		assert.True(t, errors.As(err, &ue), "case %d", i)
	}
	ok, err := Available(BackendStars, Config{StarsEndpoint: "http://127.0.0.1:9", StarsModel: "m"})
	assert.True(t, ok)
	assert.NoError(t, err)
}

func newStars(t *testing.T, url string) Backend {
	t.Helper()
	b, err := Get(BackendStars, Config{
		StarsEndpoint: url,
		StarsModel:    "acme/stars",
		StarsAPIToken: "tok",
		BaseDelay:     time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		RetryMax:      3,
	})
	require.NoError(t, err)
	return b
}

func TestStarsAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/acme/stars", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["inputs"] {
		case "loved it":
			_, _ = w.Write([]byte(`[[{"label":"5 stars","score":0.2},{"label":"4 stars","score":0.6},{"label":"1 star","score":0.2}]]`))
		default:
			_, _ = w.Write([]byte(`[{"label":"2 stars","score":0.7},{"label":"3 stars","score":0.3}]`))
		}
	}))
	defer srv.Close()

	b := newStars(t, srv.URL)
	r, err := b.Analyze(context.Background(), "loved it")
	require.NoError(t, err)
	assert.Equal(t, 4, r.Stars)
	assert.Equal(t, Positive, r.Label)
	assert.InDelta(t, 0.6, r.Score, 1e-12)

	r, err = b.Analyze(context.Background(), "meh")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Stars)
	assert.Equal(t, Negative, r.Label)
}

func TestStarsRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"model is loading"}`))
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"3 stars","score":0.9}]]`))
	}))
	defer srv.Close()

	r, err := newStars(t, srv.URL).Analyze(context.Background(), "fine")
	require.NoError(t, err)
	assert.Equal(t, Neutral, r.Label)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStarsHonorsRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"5 stars","score":0.8}]]`))
	}))
	defer srv.Close()

	b, err := Get(BackendStars, Config{
		StarsEndpoint: srv.URL,
		StarsModel:    "acme/stars",
		StarsAPIToken: "tok",
		BaseDelay:     time.Millisecond,
		RetryMax:      2,
		RateLimitRPS:  50,
	})
	require.NoError(t, err)

	start := time.Now()
	r, err := b.Analyze(context.Background(), "great")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Stars)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, time.Since(start), 700*time.Millisecond, "retry should wait for Retry-After")
}

func TestStarsRateLimitExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b, err := Get(BackendStars, Config{
		StarsEndpoint: srv.URL,
		StarsModel:    "acme/stars",
		StarsAPIToken: "tok",
		RetryMax:      1,
		RateLimitRPS:  50,
	})
	require.NoError(t, err)

	_, err = b.Analyze(context.Background(), "x")
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, time.Second, rl.RetryAfter)
}

func TestStarsModelNotFoundIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Model acme/stars does not exist"}`))
	}))
	defer srv.Close()

	_, err := newStars(t, srv.URL).Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	var nf *ModelNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestStarsUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newStars(t, url).Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestStarsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"POSITIVE","score":0.9}]]`))
	}))
	defer srv.Close()

	_, err := newStars(t, srv.URL).Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
}

func TestAnalyzeAll(t *testing.T) {
	res, err := AnalyzeAll(context.Background(), NewLexicon(), []string{"great", "terrible", "chair"})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []Label{Positive, Negative, Neutral}, []Label{res[0].Label, res[1].Label, res[2].Label})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = AnalyzeAll(ctx, NewLexicon(), []string{"great"})
	assert.True(t, errors.Is(err, context.Canceled))
}
