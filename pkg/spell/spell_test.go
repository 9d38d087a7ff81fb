package spell

import (
	"context"
	"errors"
	"testing"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	tests := []struct {
		description string
		query       string
		want        []string
	}{
		{"plain words", "quick brown fox", []string{"quick", "brown", "fox"}},
		{"punctuation trimmed", "  \"quick,\" (brown) fox!", []string{"quick", "brown", "fox"}},
		{"inner punctuation kept", "don't stop", []string{"don't", "stop"}},
		{"only punctuation", "-- ... !!", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := Words(tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatic(t *testing.T) {
	s := Static{
		"brwn": {"brown", "brawn"},
		"quik": {"quick"},
	}
	got, err := s.Correct(context.Background(), "Quik brwn fox")
	require.NoError(t, err)
	assert.Equal(t, []Correction{
		{Word: "Quik", Suggestions: []string{"quick"}},
		{Word: "brwn", Suggestions: []string{"brown", "brawn"}},
		{Word: "fox"},
	}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Correct(ctx, "fox")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDictionary(t *testing.T) {
	d := NewDictionary(DefaultDictionaryOptions())
	d.AddWords(map[string]int{
		"brown": 60,
		"brawn": 20,
		"quick": 50,
		"quirk": 10,
		"fox":   70,
	})
	d.Add("Brown", 10)
	assert.Equal(t, 5, d.Len())
	assert.True(t, d.Contains("BROWN"))

	got, err := d.Correct(context.Background(), "brwn quick fx")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "brwn", got[0].Word)
	assert.Equal(t, []string{"brown", "brawn"}, got[0].Suggestions, "same distance, higher score first")
	assert.Empty(t, got[1].Suggestions, "known words need no correction")
	assert.Empty(t, got[2].Suggestions, "words under the minimum length pass through")
}

func TestDictionaryOptions(t *testing.T) {
	d := NewDictionary(DictionaryOptions{MaxDistance: 1, MaxSuggestions: 1, MinWordLength: 2})
	d.AddWords(map[string]int{"cat": 1, "cot": 5, "bet": 9})

	got, err := d.Correct(context.Background(), "cet")
	require.NoError(t, err)
	assert.Equal(t, []string{"bet"}, got[0].Suggestions, "without SameInitial any letter may start a candidate")

	d.opts.SameInitial = true
	got, err = d.Correct(context.Background(), "cet")
	require.NoError(t, err)
	assert.Equal(t, []string{"cot"}, got[0].Suggestions)

	got, err = d.Correct(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, got[0].Suggestions)
}

func TestDictionaryReplace(t *testing.T) {
	d := NewDictionary(DefaultDictionaryOptions())
	d.Add("brown", 1)
	d.Replace(map[string]int{"Quick": 3, "quick": 5, "fox": 2, " ": 9})
	assert.Equal(t, 2, d.Len())
	assert.False(t, d.Contains("brown"))

	got, err := d.Correct(context.Background(), "quack")
	require.NoError(t, err)
	assert.Equal(t, []string{"quick"}, got[0].Suggestions)
}

func TestEmptyDictionaryPassesThrough(t *testing.T) {
	d := NewDictionary(DefaultDictionaryOptions())
	got, err := d.Correct(context.Background(), "anything goes")
	require.NoError(t, err)
	assert.Equal(t, []Correction{{Word: "anything"}, {Word: "goes"}}, got)
}

func TestFuzzy(t *testing.T) {
	f := NewFuzzy(2, 3)
	f.AddWords(map[string]int{"quick": 5, "brown": 4})

	got, err := f.Correct(context.Background(), "Quick quck")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Suggestions)
	assert.Contains(t, got[1].Suggestions, "quick")
}

type fakeConn struct {
	reply interface{}
	err   error
	cmd   string
	args  []interface{}
}

func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Err() error   { return nil }
func (c *fakeConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	c.cmd, c.args = cmd, args
	return c.reply, c.err
}
func (c *fakeConn) Send(string, ...interface{}) error { return nil }
func (c *fakeConn) Flush() error                      { return nil }
func (c *fakeConn) Receive() (interface{}, error)     { return nil, nil }

type fakePool struct{ conn *fakeConn }

func (p fakePool) Get() redis.Conn { return p.conn }
func (p fakePool) Close() error    { return nil }

func spellcheckEntry(term string, pairs ...string) interface{} {
	var sugg []interface{}
	for i := 0; i+1 < len(pairs); i += 2 {
		sugg = append(sugg, []interface{}{[]byte(pairs[i]), []byte(pairs[i+1])})
	}
	return []interface{}{[]byte("TERM"), []byte(term), sugg}
}

func TestRediSearch(t *testing.T) {
	conn := &fakeConn{reply: []interface{}{
		spellcheckEntry("brwn", "0.6", "brown", "0.2", "brawn"),
		spellcheckEntry("qik"),
	}}
	r := NewRediSearch(fakePool{conn}, "docs", RediSearchOptions{Distance: 2, Include: []string{"extra"}})

	got, err := r.Correct(context.Background(), "Brwn qik fox")
	require.NoError(t, err)
	assert.Equal(t, []Correction{
		{Word: "Brwn", Suggestions: []string{"brown", "brawn"}},
		{Word: "qik"},
		{Word: "fox"},
	}, got)

	assert.Equal(t, "FT.SPELLCHECK", conn.cmd)
	assert.Equal(t, []interface{}{"docs", "Brwn qik fox", "DISTANCE", 2, "TERMS", "INCLUDE", "extra"}, conn.args)
}

func TestRediSearchErrors(t *testing.T) {
	conn := &fakeConn{err: errors.New("connection refused")}
	r := NewRediSearch(fakePool{conn}, "docs", RediSearchOptions{})
	_, err := r.Correct(context.Background(), "fox")
	assert.ErrorContains(t, err, "connection refused")

	conn.err = nil
	conn.reply = []interface{}{[]interface{}{[]byte("TERM")}}
	_, err = r.Correct(context.Background(), "fox")
	assert.Error(t, err)

	conn.reply = []interface{}{spellcheckEntry("fx", "high", "fox")}
	_, err = r.Correct(context.Background(), "fx")
	assert.ErrorContains(t, err, "score")
}
