package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseDefaultsAndBounds(t *testing.T) {
	p, err := Parse("", "")
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 1, Limit: 10}, p)

	p, err = Parse("3", "500")
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, p)

	for _, bad := range [][2]string{
		{"0", "10"}, {"-1", "10"}, {"1", "0"}, {"x", "10"}, {"1", "ten"},
		{"92233720368547760", "100"},
		{"922337203685477600", "100"},
		{"9223372036854775807", "1"},
	} {
		_, err := Parse(bad[0], bad[1])
		assert.Error(t, err, "page=%s limit=%s", bad[0], bad[1])
	}
}

func TestParseLargestPageKeepsSkipPositive(t *testing.T) {
	p, err := Parse("92233720368547758", "100")
	require.NoError(t, err)
	assert.Positive(t, p.Skip())
	assert.Positive(t, p.Skip()+p.Limit)

	_, err = Parse("92233720368547759", "100")
	assert.Error(t, err)
}

// slice pages an in-memory sequence the way FacetStage pages a collection.
func slice[T any](all []T, p Params) Page[T] {
	n := int64(len(all))
	lo := max(min(p.Skip(), n), 0)
	hi := max(min(p.Skip()+p.Limit, n), lo)
	return New(all[lo:hi], n, p)
}

func TestPagesReassembleFullSequence(t *testing.T) {
	for n := 0; n <= 23; n++ {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		for limit := int64(1); limit <= 7; limit++ {
			var joined []int
			first := slice(all, Params{Page: 1, Limit: limit})
			for page := int64(1); page <= first.TotalPages; page++ {
				got := slice(all, Params{Page: page, Limit: limit})
				assert.LessOrEqual(t, int64(len(got.Items)), limit)
				assert.Equal(t, int64(n), got.TotalItems)
				assert.Equal(t, page, got.CurrentPage)
				joined = append(joined, got.Items...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, all, joined, "n=%d limit=%d", n, limit)
		}
	}
}

func TestPageBeyondEndIsEmpty(t *testing.T) {
	got := slice([]string{"a", "b", "c"}, Params{Page: 5, Limit: 2})
	assert.Empty(t, got.Items)
	assert.NotNil(t, got.Items)
	assert.Equal(t, int64(2), got.TotalPages)
	assert.False(t, got.HasNextPage)
	assert.True(t, got.HasPrevPage)
}

func TestFacetStage(t *testing.T) {
	stage := FacetStage(Params{Page: 3, Limit: 20})
	require.Len(t, stage, 1)
	assert.Equal(t, "$facet", stage[0].Key)

	facet := stage[0].Value.(bson.M)
	items := facet["items"].(bson.A)
	assert.Equal(t, bson.M{"$skip": int64(40)}, items[0])
	assert.Equal(t, bson.M{"$limit": int64(20)}, items[1])

	withJoin := FacetStage(Params{Page: 1, Limit: 5}, bson.D{{Key: "$project", Value: bson.M{"title": 1}}})
	joined := withJoin[0].Value.(bson.M)["items"].(bson.A)
	require.Len(t, joined, 3)
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.M{"title": 1}}}, joined[2])
}

func TestFacetResultPage(t *testing.T) {
	var r FacetResult[string]
	r.Items = []string{"x"}
	r.Total = append(r.Total, struct {
		Count int64 `bson:"count"`
	}{Count: 11})

	page := r.Page(Params{Page: 2, Limit: 5})
	assert.Equal(t, int64(11), page.TotalItems)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.True(t, page.HasNextPage)

	empty := FacetResult[string]{}.Page(Params{Page: 1, Limit: 5})
	assert.Equal(t, int64(0), empty.TotalPages)
	assert.Equal(t, []string{}, empty.Items)
}
