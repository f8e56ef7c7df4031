package lookupcache_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"

	"musictaste/internal/lookupcache"
)

type release struct {
	Name  string `json:"name"`
	Years []int  `json:"years"`
}

type enrichedRecord struct {
	ID         string            `json:"id"`
	Count      int64             `json:"count"`
	Score      float64           `json:"score"`
	Explicit   bool              `json:"explicit"`
	Tags       []string          `json:"tags"`
	Attributes map[string]int    `json:"attributes"`
	Releases   []release         `json:"releases"`
	Credits    map[string]string `json:"credits,omitempty"`
}

var recordGen = rapid.Custom(func(t *rapid.T) enrichedRecord {
	return enrichedRecord{
		ID:         rapid.String().Draw(t, "id"),
		Count:      rapid.Int64().Draw(t, "count"),
		Score:      rapid.Float64().Draw(t, "score"),
		Explicit:   rapid.Bool().Draw(t, "explicit"),
		Tags:       rapid.SliceOf(rapid.String()).Draw(t, "tags"),
		Attributes: rapid.MapOf(rapid.String(), rapid.Int()).Draw(t, "attributes"),
		Releases: rapid.SliceOfN(rapid.Custom(func(t *rapid.T) release {
			return release{
				Name:  rapid.String().Draw(t, "name"),
				Years: rapid.SliceOf(rapid.IntRange(1900, 2100)).Draw(t, "years"),
			}
		}), 0, 4).Draw(t, "releases"),
		Credits: rapid.MapOfN(rapid.StringMatching(`[a-z]{1,6}`), rapid.String(), 0, 3).Draw(t, "credits"),
	}
})

var recordShape = lookupcache.ShapeOf[enrichedRecord]("record")

func TestCodecRoundTripRecords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		want := recordGen.Draw(t, "record")
		data, err := lookupcache.Encode(want)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := recordShape.Decode(data)
		if err != nil {
			t.Fatalf("Decode %s: %v", data, err)
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCodecRoundTripIntegers(t *testing.T) {
	shape := lookupcache.ShapeOf[int]("year")
	rapid.Check(t, func(t *rapid.T) {
		want := rapid.Int().Draw(t, "n")
		data, err := lookupcache.Encode(want)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := shape.Decode(data)
		if err != nil || got != want {
			t.Fatalf("Decode(%s) = %d, %v; want %d", data, got, err, want)
		}
	})
}

func TestUpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	c := openCache(t, testConfig(t.TempDir()))
	defer c.Close()

	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringMatching(`(track|album|artist)/[a-z0-9]{1,8}`).Draw(t, "key")
		first := recordGen.Draw(t, "first")
		second := recordGen.Draw(t, "second")

		if err := c.Store(ctx, key, first); err != nil {
			t.Fatalf("Store first: %v", err)
		}
		if err := c.Store(ctx, key, second); err != nil {
			t.Fatalf("Store second: %v", err)
		}
		got, ok, err := lookupcache.Fetch(ctx, c, key, recordShape)
		if err != nil || !ok {
			t.Fatalf("Fetch = ok %v err %v", ok, err)
		}
		if diff := cmp.Diff(second, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("last write lost (-want +got):\n%s", diff)
		}
		keys, err := c.Keys(ctx, key)
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		matches := 0
		for _, k := range keys {
			if k == key {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("key %q stored %d times", key, matches)
		}
	})
}

func TestWriteThenReadAgainstModel(t *testing.T) {
	ctx := context.Background()
	c := openCache(t, testConfig(t.TempDir()))
	defer c.Close()

	intShape := lookupcache.ShapeOf[int]("count")
	run := 0
	rapid.Check(t, func(t *rapid.T) {
		run++
		prefix := fmt.Sprintf("run%d/", run)
		model := map[string]int{}

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			key := prefix + rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "key")
			if rapid.Bool().Draw(t, "store") {
				value := rapid.Int().Draw(t, "value")
				if err := c.Store(ctx, key, value); err != nil {
					t.Fatalf("Store: %v", err)
				}
				model[key] = value
				continue
			}
			got, ok, err := lookupcache.Fetch(ctx, c, key, intShape)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			want, present := model[key]
			if ok != present || got != want {
				t.Fatalf("Fetch(%s) = %d,%v; model has %d,%v", key, got, ok, want, present)
			}
		}
	})
}
