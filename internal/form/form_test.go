// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package form

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/internscout/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		city     string
		industry string
		want     types.SearchQuery
		wantErr  error
	}{
		{
			name:     "splits and trims industries",
			city:     "  Troy, NY ",
			industry: " software, Civil Engineering ",
			want: types.SearchQuery{
				City:       "Troy, NY",
				Industry:   "software, Civil Engineering",
				Industries: []string{"software", "Civil Engineering"},
			},
		},
		{
			name: "blank industry leaves industries empty",
			city: "Boston",
			want: types.SearchQuery{City: "Boston"},
		},
		{
			name:     "blank parts kept",
			city:     "Austin",
			industry: "software,, ,design",
			want:     types.SearchQuery{City: "Austin", Industry: "software,, ,design", Industries: []string{"software", "", "", "design"}},
		},
		{
			name:     "only commas",
			city:     "Austin",
			industry: " , ",
			want:     types.SearchQuery{City: "Austin", Industry: ",", Industries: []string{"", ""}},
		},
		{name: "empty city", city: "", wantErr: ErrMissingCity},
		{name: "whitespace city", city: " \t\n ", industry: "software", wantErr: ErrMissingCity},
		{name: "city too long", city: strings.Repeat("a", 101), wantErr: ErrInputTooLong},
		{name: "industry too long", city: "Austin", industry: strings.Repeat("b", 101), wantErr: ErrInputTooLong},
		{
			name: "exactly 100 after trimming is accepted",
			city: "  " + strings.Repeat("c", 100) + "  ",
			want: types.SearchQuery{City: strings.Repeat("c", 100)},
		},
		{
			name: "length counts characters not bytes",
			city: strings.Repeat("é", 100),
			want: types.SearchQuery{City: strings.Repeat("é", 100)},
		},
		{
			name: "characters outside the BMP count twice",
			city: strings.Repeat("😀", 50),
			want: types.SearchQuery{City: strings.Repeat("😀", 50)},
		},
		{name: "51 emoji exceed the limit", city: strings.Repeat("😀", 51), wantErr: ErrInputTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.city, tt.industry)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitIndustries(t *testing.T) {
	assert.Equal(t, []string{"software", "Civil Engineering"}, SplitIndustries("software, Civil Engineering"))
	assert.Nil(t, SplitIndustries(""))
	assert.Nil(t, SplitIndustries("   "))
	assert.Equal(t, []string{"", ""}, SplitIndustries(","))
	assert.Equal(t, []string{"a", "", "b"}, SplitIndustries("a,,b"))
	assert.Equal(t, []string{"software", ""}, SplitIndustries("software, "))
	assert.Equal(t, []string{"a"}, SplitIndustries("a"))
}

// fakeSearcher records calls and blocks until released.
type fakeSearcher struct {
	calls   []types.SearchQuery
	err     error
	release chan struct{}
	started chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, q types.SearchQuery) error {
	f.calls = append(f.calls, q)
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.err
}

func TestSubmitRejectsBlankCityWithoutSearching(t *testing.T) {
	for _, city := range []string{"", "   ", "\t"} {
		s := &fakeSearcher{}
		rec := &Recorder{}
		c := NewController(s, rec)

		err := c.Submit(context.Background(), city, "software")
		assert.ErrorIs(t, err, ErrMissingCity)
		assert.Empty(t, s.calls, "no search for city %q", city)

		n, ok := rec.Last()
		require.True(t, ok)
		assert.Equal(t, KindMissingCity, n.Kind)
		assert.Equal(t, "Please enter a city", n.Title)
		assert.True(t, n.Destructive)
		assert.False(t, c.Busy())
	}
}

func TestSubmitRejectsLongInput(t *testing.T) {
	s := &fakeSearcher{}
	rec := &Recorder{}
	c := NewController(s, rec)

	err := c.Submit(context.Background(), "Austin", strings.Repeat("x", 101))
	assert.ErrorIs(t, err, ErrInputTooLong)
	assert.Empty(t, s.calls)

	n, _ := rec.Last()
	assert.Equal(t, KindInputTooLong, n.Kind)
	assert.Equal(t, "Input too long", n.Title)
}

func TestSubmitSuccessNotifies(t *testing.T) {
	tests := []struct {
		industry string
		want     string
	}{
		{"software", "Searching for software internships in Troy, NY..."},
		{"", "Searching for all internships in Troy, NY..."},
	}
	for _, tt := range tests {
		s := &fakeSearcher{}
		rec := &Recorder{}
		c := NewController(s, rec)

		require.NoError(t, c.Submit(context.Background(), " Troy, NY ", tt.industry))
		require.Len(t, s.calls, 1)
		assert.Equal(t, "Troy, NY", s.calls[0].City)

		n, _ := rec.Last()
		assert.Equal(t, KindSubmitted, n.Kind)
		assert.Equal(t, "Search submitted!", n.Title)
		assert.Equal(t, tt.want, n.Description)
		assert.False(t, n.Destructive)
	}
}

func TestSubmitFailureNotifiesAndClearsBusy(t *testing.T) {
	boom := errors.New("backend down")
	s := &fakeSearcher{err: boom}
	rec := &Recorder{}
	c := NewController(s, rec)

	err := c.Submit(context.Background(), "Austin", "")
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Busy())

	n, _ := rec.Last()
	assert.Equal(t, KindSearchFailed, n.Kind)
	assert.Equal(t, "Something went wrong", n.Title)
	assert.Len(t, rec.All(), 1)
	assert.Len(t, s.calls, 1, "no automatic retry")
}

func TestBusyDuringSearchAndOverlapRejected(t *testing.T) {
	for _, searchErr := range []error{nil, errors.New("fail")} {
		s := &fakeSearcher{err: searchErr, release: make(chan struct{}), started: make(chan struct{})}
		c := NewController(s, nil)

		done, err := c.Start(context.Background(), "Seattle", "")
		require.NoError(t, err)
		<-s.started
		assert.True(t, c.Busy())

		_, err = c.Start(context.Background(), "Boston", "")
		assert.ErrorIs(t, err, ErrBusy)

		close(s.release)
		select {
		case err := <-done:
			assert.Equal(t, searchErr, err)
		case <-time.After(2 * time.Second):
			t.Fatal("search did not finish")
		}
		assert.False(t, c.Busy(), "busy cleared after search (err=%v)", searchErr)
		assert.Len(t, s.calls, 1)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := Notifiers{LogNotifier{Logger: zerolog.New(&buf)}, &Recorder{}}
	n.Notify(FailedNotice())
	n.Notify(SubmittedNotice(types.SearchQuery{City: "Austin"}))

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"Something went wrong"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, "Searching for all internships in Austin...")
}
