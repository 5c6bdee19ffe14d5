package dataset

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pokedexCSV = "\ufeffNo,Name,Type,Height\n1,Bulbasaur,Grass,0.7\n4,Charmander,Fire,0.6\n7,Squirtle,Water,0.5\n"

func TestParse(t *testing.T) {
	ds, err := Parse(strings.NewReader(pokedexCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"No", "Name", "Type", "Height"}, ds.Header)
	assert.Equal(t, 3, ds.Len())

	rec := ds.Record(1)
	assert.Equal(t, Record{
		{Name: "No", Value: "4"},
		{Name: "Name", Value: "Charmander"},
		{Name: "Type", Value: "Fire"},
		{Name: "Height", Value: "0.6"},
	}, rec)

	v, ok := rec.Get("Type")
	assert.True(t, ok)
	assert.Equal(t, "Fire", v)
}

func TestParse_ShortRowPadsMissingFields(t *testing.T) {
	ds, err := Parse(strings.NewReader("a,b,c\n1,2\n"))
	require.NoError(t, err)

	rec := ds.Record(0)
	require.Len(t, rec, 3)
	assert.Equal(t, "", rec[2].Value)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"header only", "a,b,c\n"},
		{"bad quoting", "a,b\n\"1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestSample_Uniform(t *testing.T) {
	ds, err := Parse(strings.NewReader(pokedexCSV))
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(1, 2))
	seen := map[string]int{}
	for range 300 {
		rec, err := ds.Sample(r)
		require.NoError(t, err)
		name, _ := rec.Get("Name")
		seen[name]++
	}
	assert.Len(t, seen, 3)
	for name, n := range seen {
		assert.Greater(t, n, 50, "row %s picked too rarely", name)
	}
}

func TestSample_Empty(t *testing.T) {
	var ds *Dataset
	_, err := ds.Sample(nil)

	var unavailable *ErrDataUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokedex.csv")
	require.NoError(t, os.WriteFile(path, []byte(pokedexCSV), 0o644))

	ds, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestFileSource_Missing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	var unavailable *ErrDataUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewSource_NoLocation(t *testing.T) {
	_, err := NewSource(context.Background(), "")

	var unavailable *ErrDataUnavailable
	require.ErrorAs(t, err, &unavailable)
}

type fakeS3 struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{body: pokedexCSV}
	src := &S3Source{Client: client, Bucket: "quiz-data", Key: "pokedex/pokedex.csv"}

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "quiz-data", *client.input.Bucket)
	assert.Equal(t, "pokedex/pokedex.csv", *client.input.Key)
}

func TestS3Source_Error(t *testing.T) {
	src := &S3Source{Client: &fakeS3{err: errors.New("access denied")}, Bucket: "b", Key: "k.csv"}

	_, err := src.Load(context.Background())

	var unavailable *ErrDataUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "s3://b/k.csv", unavailable.Location)
	assert.Contains(t, err.Error(), "access denied")
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := parseS3URI("s3://quiz-data/a/b.csv")
	require.NoError(t, err)
	assert.Equal(t, "quiz-data", bucket)
	assert.Equal(t, "a/b.csv", key)

	_, _, err = parseS3URI("s3://quiz-data/")
	assert.Error(t, err)

	_, err = NewSource(context.Background(), "s3:///key.csv")
	var unavailable *ErrDataUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestStaticSource(t *testing.T) {
	ds := &Dataset{Header: []string{"a"}, Rows: [][]string{{"1"}}}
	got, err := (&StaticSource{Dataset: ds}).Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, ds, got)

	_, err = (&StaticSource{}).Load(context.Background())
	assert.Error(t, err)
}
