package urls

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var paramName = rapid.StringMatching(`[a-z][a-z0-9_]{0,7}`)
var paramValue = rapid.StringMatching(`[a-zA-Z0-9-]{1,10}`)

func TestProperty_RequiredParametersRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(paramName, 1, 5, rapid.ID[string]).Draw(rt, "names")
		segments := make([]string, len(names))
		values := make(map[string]string, len(names))
		for i, n := range names {
			segments[i] = ":" + n
			values[n] = paramValue.Draw(rt, "value_"+n)
		}
		r := NewRegistry(nil)
		_, err := r.URL("/"+strings.Join(segments, "/"), Module("m"), "p")
		require.NoError(rt, err)

		got, err := r.Resolve("p", values)
		require.NoError(rt, err)
		want := make([]string, len(names))
		for i, n := range names {
			want[i] = values[n]
		}
		require.Equal(rt, "/"+strings.Join(want, "/"), got)

		p, _ := r.Lookup("p")
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		require.Equal(rt, sorted, p.Required())
	})
}

func TestProperty_MissingRequiredAlwaysFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(paramName, 1, 4, rapid.ID[string]).Draw(rt, "names")
		drop := rapid.IntRange(0, len(names)-1).Draw(rt, "drop")
		values := map[string]string{}
		segments := make([]string, len(names))
		for i, n := range names {
			segments[i] = ":" + n
			if i != drop {
				values[n] = "v"
			}
		}
		r := NewRegistry(nil)
		_, err := r.URL("/"+strings.Join(segments, "/"), Module("m"), "p")
		require.NoError(rt, err)
		_, err = r.Resolve("p", values)
		require.ErrorIs(rt, err, ErrMissingParameter)
	})
}

func TestProperty_OptionalParametersNeverFail(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(paramName, 1, 4, rapid.ID[string]).Draw(rt, "names")
		segments := make([]string, len(names))
		values := map[string]string{}
		var want []string
		for i, n := range names {
			segments[i] = "::" + n
			if rapid.Bool().Draw(rt, "set_"+n) {
				v := paramValue.Draw(rt, "value_"+n)
				values[n] = v
				want = append(want, v)
			}
		}
		r := NewRegistry(nil)
		_, err := r.URL("/base/"+strings.Join(segments, "/"), Module("m"), "p")
		require.NoError(rt, err)
		got, err := r.Resolve("p", values)
		require.NoError(rt, err)
		require.Equal(rt, strings.Join(append([]string{"/base"}, want...), "/"), got)
	})
}

func TestParseTerm(t *testing.T) {
	require.Equal(t, term{param: "id"}, parseTerm(":id"))
	require.Equal(t, term{param: "id", optional: true}, parseTerm("::id"))
	require.Equal(t, term{literal: ":"}, parseTerm(":"))
	require.Equal(t, term{literal: "::"}, parseTerm("::"))
	require.Equal(t, term{literal: "blog"}, parseTerm("blog"))
}
